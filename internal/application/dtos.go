package application

// Wire DTOs for the reflow API. All timestamps are RFC3339 strings; the
// mappers normalize them to UTC on the way in and render them at seconds
// precision on the way out.

// ShiftDTO is one recurring working window on a weekday.
type ShiftDTO struct {
	DayOfWeek int `json:"dayOfWeek" binding:"gte=0,lte=6"`
	StartHour int `json:"startHour" binding:"shift_hour"`
	EndHour   int `json:"endHour" binding:"shift_hour"`
}

// MaintenanceWindowDTO is an absolute blocked interval on a work center.
type MaintenanceWindowDTO struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason,omitempty"`
}

// WorkCenterDTO describes a work center and its calendar.
type WorkCenterDTO struct {
	WorkCenterID       string                 `json:"workCenterId" binding:"required,work_center_id"`
	Name               string                 `json:"name"`
	Shifts             []ShiftDTO             `json:"shifts" binding:"dive"`
	MaintenanceWindows []MaintenanceWindowDTO `json:"maintenanceWindows" binding:"dive"`
}

// SessionDTO is one uninterrupted setup-plus-work block.
type SessionDTO struct {
	SetupTimeMinutes    int    `json:"setupTimeMinutes"`
	DurationTimeMinutes int    `json:"durationTimeMinutes"`
	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate"`
}

// WorkOrderDTO is a work order on the wire.
type WorkOrderDTO struct {
	WorkOrderID           string       `json:"workOrderId" binding:"required,work_order_id"`
	WorkOrderNumber       string       `json:"workOrderNumber"`
	ManufacturingOrderID  string       `json:"manufacturingOrderId"`
	WorkCenterID          string       `json:"workCenterId" binding:"required,work_center_id"`
	DurationMinutes       int          `json:"durationMinutes"`
	SetupTimeMinutes      int          `json:"setupTimeMinutes"`
	StartDate             string       `json:"startDate" binding:"required"`
	EndDate               string       `json:"endDate"`
	Sessions              []SessionDTO `json:"sessions"`
	IsMaintenance         bool         `json:"isMaintenance"`
	DependsOnWorkOrderIDs []string     `json:"dependsOnWorkOrderIds"`
}

// ManufacturingOrderDTO carries pass-through business context.
type ManufacturingOrderDTO struct {
	ManufacturingOrderID     string `json:"manufacturingOrderId" binding:"required"`
	ManufacturingOrderNumber string `json:"manufacturingOrderNumber"`
	ItemID                   string `json:"itemId"`
	Quantity                 int    `json:"quantity"`
	DueDate                  string `json:"dueDate"`
}

// ReflowRequest is the request body for a scheduling run.
type ReflowRequest struct {
	WorkOrders          []WorkOrderDTO          `json:"workOrders" binding:"required,dive"`
	WorkCenters         []WorkCenterDTO         `json:"workCenters" binding:"required,min=1,dive"`
	ManufacturingOrders []ManufacturingOrderDTO `json:"manufacturingOrders" binding:"dive"`
}

// ReflowChangeDTO records one rescheduled work order.
type ReflowChangeDTO struct {
	WorkOrderID       string   `json:"workOrderId"`
	OriginalStartDate string   `json:"originalStartDate"`
	OriginalEndDate   string   `json:"originalEndDate"`
	NewStartDate      string   `json:"newStartDate"`
	NewEndDate        string   `json:"newEndDate"`
	DelayMinutes      int      `json:"delayMinutes"`
	Reason            []string `json:"reason"`
}

// WorkCenterMetricsDTO is the utilization breakdown for one work center.
type WorkCenterMetricsDTO struct {
	WorkCenterID        string  `json:"workCenterId"`
	WorkCenterName      string  `json:"workCenterName"`
	TotalShiftMinutes   int     `json:"totalShiftMinutes"`
	TotalWorkingMinutes int     `json:"totalWorkingMinutes"`
	TotalIdleMinutes    int     `json:"totalIdleMinutes"`
	Utilization         float64 `json:"utilization"`
}

// OptimizationMetricsDTO aggregates a run's outcome.
type OptimizationMetricsDTO struct {
	TotalDelayMinutes        int                    `json:"totalDelayMinutes"`
	WorkOrdersAffectedCount  int                    `json:"workOrdersAffectedCount"`
	WorkOrdersUnchangedCount int                    `json:"workOrdersUnchangedCount"`
	OverallUtilization       float64                `json:"overallUtilization"`
	WorkCenterMetrics        []WorkCenterMetricsDTO `json:"workCenterMetrics"`
}

// ViolationDTO is one coded constraint violation.
type ViolationDTO struct {
	Code        string `json:"code"`
	WorkOrderID string `json:"workOrderId,omitempty"`
	Message     string `json:"message"`
}

// ReflowResponse is the success response body for a scheduling run.
type ReflowResponse struct {
	RunID             string                 `json:"runId"`
	UpdatedWorkOrders []WorkOrderDTO         `json:"updatedWorkOrders"`
	Changes           []ReflowChangeDTO      `json:"changes"`
	Explanation       []string               `json:"explanation"`
	Metrics           OptimizationMetricsDTO `json:"metrics"`
}

// ReflowViolationsResponse is the failure response body carrying the full
// violation set for a rejected run.
type ReflowViolationsResponse struct {
	RunID      string         `json:"runId,omitempty"`
	Violations []ViolationDTO `json:"violations"`
}
