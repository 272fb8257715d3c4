package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePreSchedule(t *testing.T) {
	workCenters := map[string]*WorkCenter{
		"WC-001":  weekdayCenter(),
		"WC-BARE": {ID: "WC-BARE", Name: "No Calendar"},
		"WC-INV": {ID: "WC-INV", Name: "Inverted Shift", Shifts: []Shift{
			{DayOfWeek: 1, StartHour: 17, EndHour: 8},
		}},
		"WC-H24": {ID: "WC-H24", Name: "Out of Range Hour", Shifts: []Shift{
			{DayOfWeek: 1, StartHour: 8, EndHour: 24},
		}},
	}
	validStart := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		wo       *WorkOrder
		wantCode string
	}{
		{
			name: "Valid work order passes",
			wo:   &WorkOrder{ID: "WO-1", WorkCenterID: "WC-001", DurationMinutes: 60, Start: validStart},
		},
		{
			name:     "Unknown work center",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-GHOST", DurationMinutes: 60, Start: validStart},
			wantCode: CodeWorkCenterNotFound,
		},
		{
			name:     "Work center without shifts",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-BARE", DurationMinutes: 60, Start: validStart},
			wantCode: CodeNoShifts,
		},
		{
			name:     "Inverted shift window",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-INV", DurationMinutes: 60, Start: validStart},
			wantCode: CodeInvalidShift,
		},
		{
			name:     "Shift hour out of range",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-H24", DurationMinutes: 60, Start: validStart},
			wantCode: CodeInvalidShift,
		},
		{
			name:     "Zero duration",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-001", DurationMinutes: 0, Start: validStart},
			wantCode: CodeInvalidDuration,
		},
		{
			name:     "Negative duration",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-001", DurationMinutes: -10, Start: validStart},
			wantCode: CodeInvalidDuration,
		},
		{
			name:     "Negative setup",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-001", DurationMinutes: 60, SetupTimeMinutes: -1, Start: validStart},
			wantCode: CodeInvalidSetup,
		},
		{
			name:     "Missing start instant",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-001", DurationMinutes: 60},
			wantCode: CodeInvalidStart,
		},
		{
			name:     "Self dependency",
			wo:       &WorkOrder{ID: "WO-1", WorkCenterID: "WC-001", DurationMinutes: 60, Start: validStart, DependsOn: []string{"WO-1"}},
			wantCode: CodeSelfReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePreSchedule(tt.wo, workCenters)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			v, ok := AsViolation(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, v.Code)
			assert.Equal(t, tt.wo.ID, v.WorkOrderID)
		})
	}
}

func TestValidateFixedNotRescheduled(t *testing.T) {
	fixedStart := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	maint := &WorkOrder{ID: "MAINT-1", IsMaintenance: true, Start: fixedStart}

	assert.NoError(t, ValidateFixedNotRescheduled(maint, fixedStart))
	assert.NoError(t, ValidateFixedNotRescheduled(maint, fixedStart.Add(-time.Hour)))

	err := ValidateFixedNotRescheduled(maint, fixedStart.Add(time.Hour))
	require.Error(t, err)
	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeMaintReschedule, v.Code)

	movable := &WorkOrder{ID: "WO-1", Start: fixedStart}
	assert.NoError(t, ValidateFixedNotRescheduled(movable, fixedStart.Add(time.Hour)))
}

func TestValidateDependenciesSatisfied(t *testing.T) {
	depEnd := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	placed := map[string]*WorkOrder{
		"WO-A": {ID: "WO-A", End: depEnd},
	}
	child := &WorkOrder{ID: "WO-B", DependsOn: []string{"WO-A"}}

	assert.NoError(t, ValidateDependenciesSatisfied(child, depEnd, placed))
	assert.NoError(t, ValidateDependenciesSatisfied(child, depEnd.Add(time.Hour), placed))

	err := ValidateDependenciesSatisfied(child, depEnd.Add(-time.Minute), placed)
	require.Error(t, err)
	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeDepUnsatisfied, v.Code)

	// Dependencies that never made it into the placed set are not checked.
	orphan := &WorkOrder{ID: "WO-C", DependsOn: []string{"WO-GONE"}}
	assert.NoError(t, ValidateDependenciesSatisfied(orphan, depEnd, placed))
}

func TestValidatePostSchedule(t *testing.T) {
	start := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	wo := &WorkOrder{ID: "WO-1", Start: start}

	session := Session{
		DurationTimeMinutes: 60,
		Start:               start,
		End:                 start.Add(time.Hour),
	}

	tests := []struct {
		name     string
		p        *Placement
		wantCode string
	}{
		{
			name: "Complete placement passes",
			p:    &Placement{Sessions: []Session{session}},
		},
		{
			name:     "Remaining work",
			p:        &Placement{Sessions: []Session{session}, RemainingMinutes: 30},
			wantCode: CodeIncomplete,
		},
		{
			name:     "No sessions",
			p:        &Placement{},
			wantCode: CodeNoSessions,
		},
		{
			name: "Span beyond horizon",
			p: &Placement{Sessions: []Session{{
				Start: start.AddDate(0, 0, 400),
				End:   start.AddDate(0, 0, 400).Add(time.Hour),
			}}},
			wantCode: CodeHorizonExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostSchedule(wo, tt.p, DefaultHorizonDays)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			v, ok := AsViolation(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, v.Code)
		})
	}
}

func TestValidateSessionsNoOverlap(t *testing.T) {
	base := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	assert.NoError(t, ValidateSessionsNoOverlap("WO-1", nil))
	assert.NoError(t, ValidateSessionsNoOverlap("WO-1", []Session{
		{Start: at(0), End: at(2)},
		{Start: at(3), End: at(4)},
	}))
	// Back to back is not an overlap.
	assert.NoError(t, ValidateSessionsNoOverlap("WO-1", []Session{
		{Start: at(0), End: at(2)},
		{Start: at(2), End: at(3)},
	}))

	err := ValidateSessionsNoOverlap("WO-1", []Session{
		{Start: at(0), End: at(2)},
		{Start: at(1), End: at(3)},
	})
	require.Error(t, err)
	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeSessionOverlap, v.Code)
}
