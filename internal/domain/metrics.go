package domain

// WorkCenterMetrics is the derived utilization breakdown for one work center
// over the observation window spanned by a reflow run's final schedule.
// TotalWorkingMinutes counts total occupied time, setup included.
type WorkCenterMetrics struct {
	WorkCenterID        string  `json:"workCenterId"`
	WorkCenterName      string  `json:"workCenterName"`
	TotalShiftMinutes   int     `json:"totalShiftMinutes"`
	TotalWorkingMinutes int     `json:"totalWorkingMinutes"`
	TotalIdleMinutes    int     `json:"totalIdleMinutes"`
	Utilization         float64 `json:"utilization"`
}

// OptimizationMetrics aggregates a run's outcome: cumulative delay
// introduced by changes, affected/unchanged counts and capacity utilization
// overall and per work center.
type OptimizationMetrics struct {
	TotalDelayMinutes        int                 `json:"totalDelayMinutes"`
	WorkOrdersAffectedCount  int                 `json:"workOrdersAffectedCount"`
	WorkOrdersUnchangedCount int                 `json:"workOrdersUnchangedCount"`
	OverallUtilization       float64             `json:"overallUtilization"`
	WorkCenterMetrics        []WorkCenterMetrics `json:"workCenterMetrics"`
}

// Overall computes the capacity-weighted utilization across work centers.
func Overall(centers []WorkCenterMetrics) float64 {
	capacity, occupied := 0, 0
	for _, m := range centers {
		capacity += m.TotalShiftMinutes
		occupied += m.TotalWorkingMinutes
	}
	if capacity == 0 {
		return 0
	}
	return float64(occupied) / float64(capacity)
}
