package application

import (
	"fmt"
	"time"

	"github.com/mes-platform/reflow-service/internal/domain"
	"github.com/mes-platform/reflow-service/pkg/errors"
)

// parseInstant parses an RFC3339 timestamp and normalizes it to UTC. An
// empty string maps to the zero time, which pre-validation rejects for
// required fields.
func parseInstant(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ToReflowInput converts a bound request into domain entities. Unparsable
// timestamps are reported per field as a validation error.
func ToReflowInput(req *ReflowRequest) (ReflowInput, *errors.AppError) {
	fields := make(map[string]string)

	input := ReflowInput{
		WorkOrders:          make([]*domain.WorkOrder, 0, len(req.WorkOrders)),
		WorkCenters:         make([]*domain.WorkCenter, 0, len(req.WorkCenters)),
		ManufacturingOrders: make([]*domain.ManufacturingOrder, 0, len(req.ManufacturingOrders)),
	}

	parse := func(field, value string) time.Time {
		t, err := parseInstant(value)
		if err != nil {
			fields[field] = "must be a valid RFC3339 timestamp"
		}
		return t
	}

	for i, wc := range req.WorkCenters {
		center := &domain.WorkCenter{
			ID:     wc.WorkCenterID,
			Name:   wc.Name,
			Shifts: make([]domain.Shift, 0, len(wc.Shifts)),
		}
		for _, s := range wc.Shifts {
			center.Shifts = append(center.Shifts, domain.Shift{
				DayOfWeek: s.DayOfWeek,
				StartHour: s.StartHour,
				EndHour:   s.EndHour,
			})
		}
		for j, mw := range wc.MaintenanceWindows {
			center.MaintenanceWindows = append(center.MaintenanceWindows, domain.MaintenanceWindow{
				Start:  parse(fmt.Sprintf("workCenters[%d].maintenanceWindows[%d].startDate", i, j), mw.StartDate),
				End:    parse(fmt.Sprintf("workCenters[%d].maintenanceWindows[%d].endDate", i, j), mw.EndDate),
				Reason: mw.Reason,
			})
		}
		input.WorkCenters = append(input.WorkCenters, center)
	}

	for i, wo := range req.WorkOrders {
		order := &domain.WorkOrder{
			ID:                   wo.WorkOrderID,
			Number:               wo.WorkOrderNumber,
			ManufacturingOrderID: wo.ManufacturingOrderID,
			WorkCenterID:         wo.WorkCenterID,
			DurationMinutes:      wo.DurationMinutes,
			SetupTimeMinutes:     wo.SetupTimeMinutes,
			Start:                parse(fmt.Sprintf("workOrders[%d].startDate", i), wo.StartDate),
			End:                  parse(fmt.Sprintf("workOrders[%d].endDate", i), wo.EndDate),
			IsMaintenance:        wo.IsMaintenance,
			DependsOn:            append([]string{}, wo.DependsOnWorkOrderIDs...),
		}
		input.WorkOrders = append(input.WorkOrders, order)
	}

	for i, mo := range req.ManufacturingOrders {
		input.ManufacturingOrders = append(input.ManufacturingOrders, &domain.ManufacturingOrder{
			ID:       mo.ManufacturingOrderID,
			Number:   mo.ManufacturingOrderNumber,
			ItemID:   mo.ItemID,
			Quantity: mo.Quantity,
			DueDate:  parse(fmt.Sprintf("manufacturingOrders[%d].dueDate", i), mo.DueDate),
		})
	}

	if len(fields) > 0 {
		return ReflowInput{}, errors.ErrValidationWithFields("invalid timestamps in request", fields)
	}
	return input, nil
}

// ToReflowResponse converts a run result back to wire DTOs.
func ToReflowResponse(result *ReflowResult) ReflowResponse {
	resp := ReflowResponse{
		RunID:             result.RunID,
		UpdatedWorkOrders: make([]WorkOrderDTO, 0, len(result.UpdatedWorkOrders)),
		Changes:           make([]ReflowChangeDTO, 0, len(result.Changes)),
		Explanation:       result.Explanation,
		Metrics:           toMetricsDTO(result.Metrics),
	}
	if resp.Explanation == nil {
		resp.Explanation = []string{}
	}

	for _, wo := range result.UpdatedWorkOrders {
		resp.UpdatedWorkOrders = append(resp.UpdatedWorkOrders, toWorkOrderDTO(wo))
	}
	for _, c := range result.Changes {
		resp.Changes = append(resp.Changes, ReflowChangeDTO{
			WorkOrderID:       c.WorkOrderID,
			OriginalStartDate: formatInstant(c.OriginalStart),
			OriginalEndDate:   formatInstant(c.OriginalEnd),
			NewStartDate:      formatInstant(c.NewStart),
			NewEndDate:        formatInstant(c.NewEnd),
			DelayMinutes:      c.DelayMinutes(),
			Reason:            c.Reason,
		})
	}
	return resp
}

func toWorkOrderDTO(wo *domain.WorkOrder) WorkOrderDTO {
	dto := WorkOrderDTO{
		WorkOrderID:           wo.ID,
		WorkOrderNumber:       wo.Number,
		ManufacturingOrderID:  wo.ManufacturingOrderID,
		WorkCenterID:          wo.WorkCenterID,
		DurationMinutes:       wo.DurationMinutes,
		SetupTimeMinutes:      wo.SetupTimeMinutes,
		StartDate:             formatInstant(wo.Start),
		EndDate:               formatInstant(wo.End),
		Sessions:              make([]SessionDTO, 0, len(wo.Sessions)),
		IsMaintenance:         wo.IsMaintenance,
		DependsOnWorkOrderIDs: wo.DependsOn,
	}
	for _, s := range wo.Sessions {
		dto.Sessions = append(dto.Sessions, SessionDTO{
			SetupTimeMinutes:    s.SetupTimeMinutes,
			DurationTimeMinutes: s.DurationTimeMinutes,
			StartDate:           formatInstant(s.Start),
			EndDate:             formatInstant(s.End),
		})
	}
	return dto
}

func toMetricsDTO(m *domain.OptimizationMetrics) OptimizationMetricsDTO {
	dto := OptimizationMetricsDTO{
		TotalDelayMinutes:        m.TotalDelayMinutes,
		WorkOrdersAffectedCount:  m.WorkOrdersAffectedCount,
		WorkOrdersUnchangedCount: m.WorkOrdersUnchangedCount,
		OverallUtilization:       m.OverallUtilization,
		WorkCenterMetrics:        make([]WorkCenterMetricsDTO, 0, len(m.WorkCenterMetrics)),
	}
	for _, wc := range m.WorkCenterMetrics {
		dto.WorkCenterMetrics = append(dto.WorkCenterMetrics, WorkCenterMetricsDTO{
			WorkCenterID:        wc.WorkCenterID,
			WorkCenterName:      wc.WorkCenterName,
			TotalShiftMinutes:   wc.TotalShiftMinutes,
			TotalWorkingMinutes: wc.TotalWorkingMinutes,
			TotalIdleMinutes:    wc.TotalIdleMinutes,
			Utilization:         wc.Utilization,
		})
	}
	return dto
}

// ToViolationsResponse converts an aggregate failure to wire DTOs.
func ToViolationsResponse(agg *domain.AggregateError) ReflowViolationsResponse {
	resp := ReflowViolationsResponse{
		Violations: make([]ViolationDTO, 0, len(agg.Violations)),
	}
	for _, v := range agg.Violations {
		resp.Violations = append(resp.Violations, ViolationDTO{
			Code:        v.Code,
			WorkOrderID: v.WorkOrderID,
			Message:     v.Message,
		})
	}
	return resp
}
