package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mes-platform/reflow-service/internal/domain"
	"github.com/mes-platform/reflow-service/pkg/logging"
	"github.com/mes-platform/reflow-service/pkg/metrics"
)

// ReflowInput is the full batch for one scheduling run. Work centers are
// supplied per request; the engine holds no state between runs.
type ReflowInput struct {
	WorkOrders          []*domain.WorkOrder
	WorkCenters         []*domain.WorkCenter
	ManufacturingOrders []*domain.ManufacturingOrder
}

// ReflowResult is the outcome of a successful run: every work order with its
// final placement, the set of changes with reasons, the run-wide explanation
// trail and the derived utilization metrics.
type ReflowResult struct {
	RunID             string
	UpdatedWorkOrders []*domain.WorkOrder
	Changes           []*domain.ReflowChange
	Explanation       []string
	Metrics           *domain.OptimizationMetrics
}

// ReflowService orchestrates scheduling runs over the domain engine.
type ReflowService struct {
	logger      *logging.Logger
	metrics     *metrics.Metrics
	horizonDays int
}

// Option configures a ReflowService.
type Option func(*ReflowService)

// WithHorizonDays overrides the default placement lookahead.
func WithHorizonDays(days int) Option {
	return func(s *ReflowService) {
		if days > 0 {
			s.horizonDays = days
		}
	}
}

// NewReflowService creates a new ReflowService.
func NewReflowService(logger *logging.Logger, m *metrics.Metrics, opts ...Option) *ReflowService {
	s := &ReflowService{
		logger:      logger,
		metrics:     m,
		horizonDays: domain.DefaultHorizonDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reflow runs one scheduling pass over the batch. Fixed (maintenance) work
// orders are committed first at their requested timing, then movable work
// orders are placed in dependency order, each pushed to the earliest instant
// that satisfies its dependencies and the work center calendar. Failures are
// isolated per work order and collected; any violation fails the run as a
// whole and no partial result is returned. The caller's input is never
// mutated.
func (s *ReflowService) Reflow(ctx context.Context, input ReflowInput) (*ReflowResult, error) {
	runID := uuid.New().String()
	started := time.Now()
	ctx = logging.ContextWithRunID(ctx, runID)

	s.logger.ReflowRunStart(ctx, runID, len(input.WorkOrders), len(input.WorkCenters))

	clones := make([]*domain.WorkOrder, len(input.WorkOrders))
	byID := make(map[string]*domain.WorkOrder, len(input.WorkOrders))
	for i, wo := range input.WorkOrders {
		c := wo.Clone()
		c.Start = c.Start.UTC()
		c.End = c.End.UTC()
		clones[i] = c
		byID[c.ID] = c
	}

	// Graph-structure problems abort before any placement.
	ordered, err := domain.OrderWorkOrders(clones)
	if err != nil {
		return nil, s.failRun(ctx, runID, started, graphViolations(err))
	}

	workCenters := make(map[string]*domain.WorkCenter, len(input.WorkCenters))
	for _, wc := range input.WorkCenters {
		workCenters[wc.ID] = wc
	}

	schedule := domain.NewGlobalSchedule(input.WorkCenters, domain.WithHorizonDays(s.horizonDays))

	var violations []*domain.ConstraintViolation
	fail := func(err error) {
		if v, ok := domain.AsViolation(err); ok {
			violations = append(violations, v)
			s.metrics.RecordWorkOrderFailed(v.Code)
			return
		}
		violations = append(violations, domain.NewViolation(domain.CodeScheduleFailed, "", "%v", err))
		s.metrics.RecordWorkOrderFailed(domain.CodeScheduleFailed)
	}

	placed := make(map[string]*domain.WorkOrder, len(clones))
	var explanation []string

	// Fixed work orders first, in input order. Their timing is
	// authoritative: a dependency that would push one later is a hard
	// failure, never a reschedule.
	for _, wo := range clones {
		if !wo.IsMaintenance {
			continue
		}
		if err := domain.ValidatePreSchedule(wo, workCenters); err != nil {
			fail(err)
			continue
		}
		earliest := wo.Start
		for _, depID := range wo.DependsOn {
			if dep, ok := byID[depID]; ok && dep.End.After(earliest) {
				earliest = dep.End
			}
		}
		if err := domain.ValidateFixedNotRescheduled(wo, earliest); err != nil {
			fail(err)
			continue
		}
		if err := schedule.PlaceFixed(wo); err != nil {
			fail(err)
			continue
		}
		placed[wo.ID] = wo
		explanation = append(explanation, fmt.Sprintf("Work order %s scheduled with no conflicts", wo.ID))
	}

	var changes []*domain.ReflowChange

	for _, wo := range ordered {
		if err := domain.ValidatePreSchedule(wo, workCenters); err != nil {
			fail(err)
			continue
		}

		originalStart, originalEnd := wo.Start, wo.End

		var reasons []string
		earliest := wo.Start
		for _, depID := range wo.DependsOn {
			parent, ok := placed[depID]
			if !ok {
				continue
			}
			if parent.End.After(earliest) {
				earliest = parent.End
				reasons = append(reasons, fmt.Sprintf("Delayed by dependency %s", depID))
			}
		}
		wo.Start = earliest

		placement, err := schedule.Place(wo)
		if err != nil {
			fail(err)
			continue
		}
		if err := domain.ValidatePostSchedule(wo, placement, schedule.HorizonDays()); err != nil {
			fail(err)
			continue
		}
		if err := domain.ValidateSessionsNoOverlap(wo.ID, placement.Sessions); err != nil {
			fail(err)
			continue
		}

		wo.Sessions = placement.Sessions
		wo.Start = placement.Start()
		wo.End = placement.End()

		if err := domain.ValidateDependenciesSatisfied(wo, wo.Start, placed); err != nil {
			fail(err)
			continue
		}
		placed[wo.ID] = wo

		reasons = append(reasons, placement.Explanation...)

		changed := !wo.Start.Equal(originalStart) || !wo.End.Equal(originalEnd)
		s.metrics.RecordWorkOrderScheduled(changed)
		if !changed {
			explanation = append(explanation, placement.Explanation...)
			explanation = append(explanation, fmt.Sprintf("Work order %s scheduled with no conflicts", wo.ID))
			continue
		}

		if len(reasons) == 0 {
			reasons = append(reasons, "Rescheduled to avoid work center conflicts")
		}
		explanation = append(explanation, reasons...)
		change := &domain.ReflowChange{
			WorkOrderID:   wo.ID,
			OriginalStart: originalStart,
			OriginalEnd:   originalEnd,
			NewStart:      wo.Start,
			NewEnd:        wo.End,
			Reason:        reasons,
		}
		changes = append(changes, change)
		s.metrics.RecordScheduleDelay(change.DelayMinutes())
		s.logger.WorkOrderPlaced(ctx, wo.ID, wo.WorkCenterID, len(placement.Sessions), change.DelayMinutes())
	}

	if len(violations) > 0 {
		return nil, s.failRun(ctx, runID, started, violations)
	}

	updated := make([]*domain.WorkOrder, len(clones))
	copy(updated, clones)
	sort.SliceStable(updated, func(i, j int) bool {
		if updated[i].Start.Equal(updated[j].Start) {
			return updated[i].ID < updated[j].ID
		}
		return updated[i].Start.Before(updated[j].Start)
	})

	optimization := s.computeMetrics(schedule, updated, changes)
	for _, m := range optimization.WorkCenterMetrics {
		s.metrics.SetWorkCenterUtilization(m.WorkCenterID, m.Utilization)
	}

	s.metrics.RecordReflowRun(true, time.Since(started))
	s.logger.ReflowRunComplete(ctx, runID, time.Since(started), true, len(changes), 0)

	return &ReflowResult{
		RunID:             runID,
		UpdatedWorkOrders: updated,
		Changes:           changes,
		Explanation:       explanation,
		Metrics:           optimization,
	}, nil
}

// computeMetrics derives run metrics over the window spanned by the final
// placements.
func (s *ReflowService) computeMetrics(schedule *domain.GlobalSchedule, updated []*domain.WorkOrder, changes []*domain.ReflowChange) *domain.OptimizationMetrics {
	var obsStart, obsEnd time.Time
	for _, wo := range updated {
		if obsStart.IsZero() || wo.Start.Before(obsStart) {
			obsStart = wo.Start
		}
		if wo.End.After(obsEnd) {
			obsEnd = wo.End
		}
	}

	var centers []domain.WorkCenterMetrics
	if !obsStart.IsZero() {
		centers = schedule.ComputeWorkCenterMetrics(obsStart, obsEnd)
	}

	totalDelay := 0
	for _, c := range changes {
		totalDelay += c.DelayMinutes()
	}

	return &domain.OptimizationMetrics{
		TotalDelayMinutes:        totalDelay,
		WorkOrdersAffectedCount:  len(changes),
		WorkOrdersUnchangedCount: len(updated) - len(changes),
		OverallUtilization:       domain.Overall(centers),
		WorkCenterMetrics:        centers,
	}
}

func (s *ReflowService) failRun(ctx context.Context, runID string, started time.Time, violations []*domain.ConstraintViolation) error {
	s.metrics.RecordReflowRun(false, time.Since(started))
	s.logger.ReflowRunComplete(ctx, runID, time.Since(started), false, 0, len(violations))
	return &domain.AggregateError{Violations: violations}
}

func graphViolations(err error) []*domain.ConstraintViolation {
	if v, ok := domain.AsViolation(err); ok {
		return []*domain.ConstraintViolation{v}
	}
	return []*domain.ConstraintViolation{
		domain.NewViolation(domain.CodeScheduleFailed, "", "%v", err),
	}
}
