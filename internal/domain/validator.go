package domain

import (
	"sort"
	"time"
)

// The validators are pure, stateless precondition and postcondition checks.
// Every failure is a typed ConstraintViolation with a stable code; there are
// no silent defaults.

// ValidatePreSchedule checks a work order before any placement is attempted.
func ValidatePreSchedule(wo *WorkOrder, workCenters map[string]*WorkCenter) error {
	wc, ok := workCenters[wo.WorkCenterID]
	if !ok {
		return NewViolation(CodeWorkCenterNotFound, wo.ID, "work center %s not found", wo.WorkCenterID)
	}
	if !wc.HasShifts() {
		return NewViolation(CodeNoShifts, wo.ID, "work center %s has no shifts", wc.ID)
	}
	if s, bad := wc.InvalidShift(); bad {
		return NewViolation(CodeInvalidShift, wo.ID,
			"work center %s has an invalid shift: day %d, hours %d-%d",
			wc.ID, s.DayOfWeek, s.StartHour, s.EndHour)
	}
	if wo.DurationMinutes <= 0 {
		return NewViolation(CodeInvalidDuration, wo.ID, "duration must be positive, got %d", wo.DurationMinutes)
	}
	if wo.SetupTimeMinutes < 0 {
		return NewViolation(CodeInvalidSetup, wo.ID, "setup time must not be negative, got %d", wo.SetupTimeMinutes)
	}
	if wo.Start.IsZero() {
		return NewViolation(CodeInvalidStart, wo.ID, "start date is not a valid instant")
	}
	if wo.DependsOnID(wo.ID) {
		return NewViolation(CodeSelfReference, wo.ID, "work order %s depends on itself", wo.ID)
	}
	return nil
}

// ValidateFixedNotRescheduled rejects a fixed (maintenance) work order whose
// dependency-forced earliest start exceeds its requested start. Fixed timing
// never moves; a dependency that would require it to is a hard failure.
func ValidateFixedNotRescheduled(wo *WorkOrder, earliestStart time.Time) error {
	if wo.IsMaintenance && earliestStart.After(wo.Start) {
		return NewViolation(CodeMaintReschedule, wo.ID,
			"maintenance work order %s cannot be rescheduled: dependency requires start %s after fixed start %s",
			wo.ID, earliestStart.Format(time.RFC3339), wo.Start.Format(time.RFC3339))
	}
	return nil
}

// ValidateDependenciesSatisfied checks that every already-placed dependency
// finishes no later than the given start. Dependencies absent from the
// placed map are ignored, not an error.
func ValidateDependenciesSatisfied(wo *WorkOrder, start time.Time, placed map[string]*WorkOrder) error {
	for _, depID := range wo.DependsOn {
		parent, ok := placed[depID]
		if !ok {
			continue
		}
		if parent.End.After(start) {
			return NewViolation(CodeDepUnsatisfied, wo.ID,
				"work order %s starts before dependency %s ends", wo.ID, depID)
		}
	}
	return nil
}

// ValidatePostSchedule checks a finished placement: all work consumed, at
// least one session, and the overall span within the scheduling horizon.
func ValidatePostSchedule(wo *WorkOrder, p *Placement, horizonDays int) error {
	if p.RemainingMinutes > 0 {
		return NewViolation(CodeIncomplete, wo.ID,
			"not fully scheduled: %d minutes remaining", p.RemainingMinutes)
	}
	if len(p.Sessions) == 0 {
		return NewViolation(CodeNoSessions, wo.ID, "no scheduled sessions")
	}
	span := p.End().Sub(wo.Start)
	if span > time.Duration(horizonDays)*24*time.Hour {
		return NewViolation(CodeHorizonExceeded, wo.ID,
			"placement exceeds %d-day scheduling horizon", horizonDays)
	}
	return nil
}

// ValidateSessionsNoOverlap checks that no two sessions of a work order
// overlap in time.
func ValidateSessionsNoOverlap(workOrderID string, sessions []Session) error {
	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start.Before(sorted[i-1].End) {
			return NewViolation(CodeSessionOverlap, workOrderID,
				"sessions overlap: %s > %s",
				sorted[i-1].End.Format(time.RFC3339), sorted[i].Start.Format(time.RFC3339))
		}
	}
	return nil
}
