package domain

import "time"

// Shift is a recurring weekly availability window for a work center.
// Hours are interpreted in UTC; at most one shift per day of week is
// meaningful for lookups.
type Shift struct {
	DayOfWeek int `json:"dayOfWeek"` // 0-6, Sunday = 0
	StartHour int `json:"startHour"` // 0-23
	EndHour   int `json:"endHour"`   // 0-23, must be > StartHour
}

// MaintenanceWindow is an absolute, non-recurring interval during which a
// work center has zero capacity. Windows need not be sorted or disjoint;
// overlapping windows all block.
type MaintenanceWindow struct {
	Start  time.Time `json:"startDate"`
	End    time.Time `json:"endDate"`
	Reason string    `json:"reason,omitempty"`
}

// WorkCenter is a production resource with weekly shifts and blocked
// maintenance intervals. It is immutable for the duration of a reflow run.
type WorkCenter struct {
	ID                 string              `json:"workCenterId"`
	Name               string              `json:"name"`
	Shifts             []Shift             `json:"shifts"`
	MaintenanceWindows []MaintenanceWindow `json:"maintenanceWindows,omitempty"`
}

// ShiftFor returns the shift configured for the given weekday, if any.
func (wc *WorkCenter) ShiftFor(day time.Weekday) (Shift, bool) {
	for _, s := range wc.Shifts {
		if s.DayOfWeek == int(day) {
			return s, true
		}
	}
	return Shift{}, false
}

// HasShifts reports whether the work center has any shift configured.
func (wc *WorkCenter) HasShifts() bool {
	return len(wc.Shifts) > 0
}

// IsValid reports whether the shift satisfies the calendar contract:
// weekday 0-6, hours 0-23 and a non-empty window. An inverted or empty
// window grants no capacity and must never enter the placement search.
func (s Shift) IsValid() bool {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return false
	}
	if s.StartHour < 0 || s.EndHour > 23 {
		return false
	}
	return s.StartHour < s.EndHour
}

// InvalidShift returns the first malformed shift, if any.
func (wc *WorkCenter) InvalidShift() (Shift, bool) {
	for _, s := range wc.Shifts {
		if !s.IsValid() {
			return s, true
		}
	}
	return Shift{}, false
}
