package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Stable failure codes. Every failure surfaced by the engine carries one of
// these so callers can pinpoint the faulty work order without inspecting
// engine internals.
const (
	CodeWorkCenterNotFound = "WC_NOT_FOUND"
	CodeNoShifts           = "NO_SHIFTS"
	CodeNoShiftFound       = "NO_SHIFT_FOUND"
	CodeInvalidShift       = "INVALID_SHIFT"
	CodeInvalidDuration    = "INVALID_DURATION"
	CodeInvalidSetup       = "INVALID_SETUP"
	CodeInvalidStart       = "INVALID_START"
	CodeSelfReference      = "SELF_REF"
	CodeMaintReschedule    = "MAINT_RESCHEDULE"
	CodeDuplicateID        = "DUPLICATE_ID"
	CodeMissingDependency  = "MISSING_DEPENDENCY"
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"
	CodeDepUnsatisfied     = "DEP_UNSATISFIED"
	CodeIncomplete         = "INCOMPLETE"
	CodeNoSessions         = "NO_SESSIONS"
	CodeHorizonExceeded    = "HORIZON_EXCEEDED"
	CodeSessionOverlap     = "SESSION_OVERLAP"
	CodeScheduleFailed     = "SCHEDULE_FAILED"
)

// ConstraintViolation is a typed, coded failure for one work order.
type ConstraintViolation struct {
	Code        string `json:"code"`
	WorkOrderID string `json:"workOrderId"`
	Message     string `json:"message"`
}

// Error implements the error interface.
func (v *ConstraintViolation) Error() string {
	if v.WorkOrderID == "" {
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
	return fmt.Sprintf("%s: work order %s: %s", v.Code, v.WorkOrderID, v.Message)
}

// NewViolation creates a ConstraintViolation with a formatted message.
func NewViolation(code, workOrderID, format string, args ...any) *ConstraintViolation {
	return &ConstraintViolation{
		Code:        code,
		WorkOrderID: workOrderID,
		Message:     fmt.Sprintf(format, args...),
	}
}

// AsViolation extracts a ConstraintViolation from an error chain.
func AsViolation(err error) (*ConstraintViolation, bool) {
	var v *ConstraintViolation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AggregateError collects every constraint violation recorded during one
// reflow run. The run fails as a whole when any violation was recorded, but
// all work orders are still attempted so the caller receives the complete
// set of problems in one pass.
type AggregateError struct {
	Violations []*ConstraintViolation
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("reflow failed with 1 violation: %s", e.Violations[0].Error())
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("reflow failed with %d violations: %s", len(e.Violations), strings.Join(msgs, "; "))
}

// HasCode reports whether any collected violation carries the given code.
func (e *AggregateError) HasCode(code string) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// AsAggregate extracts an AggregateError from an error chain.
func AsAggregate(err error) (*AggregateError, bool) {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg, true
	}
	return nil, false
}
