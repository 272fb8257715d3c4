package domain

import "time"

// Session is one uninterrupted block of capacity consumed by a work order:
// setup followed by productive work, with End - Start = setup + work.
// Resuming the same work order after any interruption starts a new session
// and pays setup again.
type Session struct {
	SetupTimeMinutes    int       `json:"setupTimeMinutes"`
	DurationTimeMinutes int       `json:"durationTimeMinutes"`
	Start               time.Time `json:"startDate"`
	End                 time.Time `json:"endDate"`
}

// WorkOrder is a unit of work bound to exactly one work center. Start/End
// carry the requested placement on input and the final placement on output;
// Sessions is always fully replaced by a reflow run.
type WorkOrder struct {
	ID                   string    `json:"workOrderId"`
	Number               string    `json:"workOrderNumber"`
	ManufacturingOrderID string    `json:"manufacturingOrderId"`
	WorkCenterID         string    `json:"workCenterId"`
	DurationMinutes      int       `json:"durationMinutes"`
	SetupTimeMinutes     int       `json:"setupTimeMinutes"`
	Start                time.Time `json:"startDate"`
	End                  time.Time `json:"endDate"`
	Sessions             []Session `json:"sessions"`
	// IsMaintenance marks a fixed work order: its timing is authoritative
	// and never moves. A dependency that would force it later is a hard
	// failure, not a reschedule.
	IsMaintenance bool     `json:"isMaintenance"`
	DependsOn     []string `json:"dependsOnWorkOrderIds"`
}

// Clone returns a deep copy so a reflow run never mutates caller state.
func (wo *WorkOrder) Clone() *WorkOrder {
	c := *wo
	c.Sessions = make([]Session, len(wo.Sessions))
	copy(c.Sessions, wo.Sessions)
	c.DependsOn = make([]string, len(wo.DependsOn))
	copy(c.DependsOn, wo.DependsOn)
	return &c
}

// DependsOnID reports whether the work order lists the given dependency.
func (wo *WorkOrder) DependsOnID(id string) bool {
	for _, dep := range wo.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// ManufacturingOrder carries business context for a batch of work orders.
// It is accepted as input and passed through; no scheduling decision in the
// engine consumes it.
type ManufacturingOrder struct {
	ID       string    `json:"manufacturingOrderId"`
	Number   string    `json:"manufacturingOrderNumber"`
	ItemID   string    `json:"itemId"`
	Quantity int       `json:"quantity"`
	DueDate  time.Time `json:"dueDate"`
}

// ScheduledEvent is a committed occupancy record derived from a placed
// session, indexed per work center per UTC calendar day. Events are
// append-only for the lifetime of one reflow run.
type ScheduledEvent struct {
	WorkOrderID          string    `json:"workOrderId"`
	WorkCenterID         string    `json:"workCenterId"`
	ManufacturingOrderID string    `json:"manufacturingOrderId,omitempty"`
	IsMaintenance        bool      `json:"isMaintenance"`
	SetupTimeMinutes     int       `json:"setupTimeMinutes"`
	DurationTimeMinutes  int       `json:"durationTimeMinutes"`
	Start                time.Time `json:"startDate"`
	End                  time.Time `json:"endDate"`
}

// ReflowChange records a work order whose final placement differs from its
// requested placement, with the ordered human-readable reasons.
type ReflowChange struct {
	WorkOrderID   string    `json:"workOrderId"`
	OriginalStart time.Time `json:"originalStartDate"`
	OriginalEnd   time.Time `json:"originalEndDate"`
	NewStart      time.Time `json:"newStartDate"`
	NewEnd        time.Time `json:"newEndDate"`
	Reason        []string  `json:"reason"`
}

// DelayMinutes is the start delay introduced by the change, never negative.
func (c *ReflowChange) DelayMinutes() int {
	d := int(c.NewStart.Sub(c.OriginalStart).Minutes())
	if d < 0 {
		return 0
	}
	return d
}
