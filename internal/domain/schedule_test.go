package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleWO(id, wcID string, duration, setup int, start time.Time) *WorkOrder {
	return &WorkOrder{
		ID:               id,
		Number:           id,
		WorkCenterID:     wcID,
		DurationMinutes:  duration,
		SetupTimeMinutes: setup,
		Start:            start,
	}
}

func totalWork(sessions []Session) int {
	total := 0
	for _, s := range sessions {
		total += s.DurationTimeMinutes
	}
	return total
}

func TestPlace_SingleSession(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})
	wo := scheduleWO("WO-1", "WC-001", 120, 0, mustTime(t, "2024-01-15T08:00:00Z"))

	p, err := s.Place(wo)
	require.NoError(t, err)
	require.Len(t, p.Sessions, 1)

	assert.Equal(t, mustTime(t, "2024-01-15T08:00:00Z"), p.Sessions[0].Start)
	assert.Equal(t, mustTime(t, "2024-01-15T10:00:00Z"), p.Sessions[0].End)
	assert.Equal(t, 0, p.RemainingMinutes)
	assert.Empty(t, p.Explanation)
}

func TestPlace_SetupChargedOncePerSession(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})
	wo := scheduleWO("WO-1", "WC-001", 120, 30, mustTime(t, "2024-01-15T08:00:00Z"))

	p, err := s.Place(wo)
	require.NoError(t, err)
	require.Len(t, p.Sessions, 1)

	assert.Equal(t, 30, p.Sessions[0].SetupTimeMinutes)
	assert.Equal(t, 120, p.Sessions[0].DurationTimeMinutes)
	assert.Equal(t, mustTime(t, "2024-01-15T10:30:00Z"), p.Sessions[0].End)
}

func TestPlace_SplitsAroundMaintenanceWindow(t *testing.T) {
	wc := weekdayCenter()
	wc.MaintenanceWindows = []MaintenanceWindow{{
		Start:  mustTime(t, "2024-01-15T10:00:00Z"),
		End:    mustTime(t, "2024-01-15T11:00:00Z"),
		Reason: "calibration",
	}}
	s := NewGlobalSchedule([]*WorkCenter{wc})

	wo := scheduleWO("WO-1", "WC-001", 180, 0, mustTime(t, "2024-01-15T08:00:00Z"))
	p, err := s.Place(wo)
	require.NoError(t, err)
	require.Len(t, p.Sessions, 2)

	assert.Equal(t, mustTime(t, "2024-01-15T08:00:00Z"), p.Sessions[0].Start)
	assert.Equal(t, mustTime(t, "2024-01-15T10:00:00Z"), p.Sessions[0].End)
	assert.Equal(t, 120, p.Sessions[0].DurationTimeMinutes)

	assert.Equal(t, mustTime(t, "2024-01-15T11:00:00Z"), p.Sessions[1].Start)
	assert.Equal(t, mustTime(t, "2024-01-15T12:00:00Z"), p.Sessions[1].End)
	assert.Equal(t, 60, p.Sessions[1].DurationTimeMinutes)

	assert.Equal(t, 180, totalWork(p.Sessions))
	assert.Equal(t, 0, p.RemainingMinutes)
}

func TestPlace_SpansShiftsWithSetupPerSession(t *testing.T) {
	wc := &WorkCenter{
		ID:   "WC-SHORT",
		Name: "Short Shifts",
		Shifts: []Shift{
			{DayOfWeek: 1, StartHour: 8, EndHour: 12},
			{DayOfWeek: 2, StartHour: 8, EndHour: 12},
		},
	}
	s := NewGlobalSchedule([]*WorkCenter{wc})

	wo := scheduleWO("WO-1", "WC-SHORT", 360, 30, mustTime(t, "2024-01-15T08:00:00Z"))
	p, err := s.Place(wo)
	require.NoError(t, err)
	require.Len(t, p.Sessions, 2)

	// Monday: 30 setup + 210 work fills the whole shift.
	assert.Equal(t, 30, p.Sessions[0].SetupTimeMinutes)
	assert.Equal(t, 210, p.Sessions[0].DurationTimeMinutes)
	assert.Equal(t, mustTime(t, "2024-01-15T12:00:00Z"), p.Sessions[0].End)

	// Tuesday: setup repeats, remaining 150 minutes of work.
	assert.Equal(t, 30, p.Sessions[1].SetupTimeMinutes)
	assert.Equal(t, 150, p.Sessions[1].DurationTimeMinutes)
	assert.Equal(t, mustTime(t, "2024-01-16T08:00:00Z"), p.Sessions[1].Start)
	assert.Equal(t, mustTime(t, "2024-01-16T11:00:00Z"), p.Sessions[1].End)

	assert.Equal(t, 360, totalWork(p.Sessions))
}

func TestPlace_SkipsSlotTooShortForSetup(t *testing.T) {
	wc := weekdayCenter()
	wc.MaintenanceWindows = []MaintenanceWindow{{
		Start: mustTime(t, "2024-01-15T08:30:00Z"),
		End:   mustTime(t, "2024-01-15T09:00:00Z"),
	}}
	s := NewGlobalSchedule([]*WorkCenter{wc})

	// The 30-minute slot before the window cannot cover a 45-minute setup.
	wo := scheduleWO("WO-1", "WC-001", 60, 45, mustTime(t, "2024-01-15T08:00:00Z"))
	p, err := s.Place(wo)
	require.NoError(t, err)
	require.Len(t, p.Sessions, 1)

	assert.Equal(t, mustTime(t, "2024-01-15T09:00:00Z"), p.Sessions[0].Start)
	assert.Equal(t, mustTime(t, "2024-01-15T10:45:00Z"), p.Sessions[0].End)
}

func TestPlace_AvoidsCommittedEvents(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})

	first, err := s.Place(scheduleWO("WO-1", "WC-001", 120, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)
	require.Equal(t, mustTime(t, "2024-01-15T10:00:00Z"), first.End())

	second, err := s.Place(scheduleWO("WO-2", "WC-001", 60, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)
	require.Len(t, second.Sessions, 1)

	assert.Equal(t, mustTime(t, "2024-01-15T10:00:00Z"), second.Sessions[0].Start)
	assert.Equal(t, mustTime(t, "2024-01-15T11:00:00Z"), second.Sessions[0].End)
}

func TestPlace_NoTwoEventsOverlapOnWorkCenter(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})

	starts := mustTime(t, "2024-01-15T08:00:00Z")
	for _, id := range []string{"WO-1", "WO-2", "WO-3", "WO-4"} {
		_, err := s.Place(scheduleWO(id, "WC-001", 150, 15, starts))
		require.NoError(t, err)
	}

	var all []Interval
	for day := DayKey(starts); day <= DayKey(starts)+5; day++ {
		for _, ev := range s.EventsOn("WC-001", day) {
			all = append(all, Interval{Start: ev.Start, End: ev.End})
		}
	}
	require.NotEmpty(t, all)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t, all[i].Overlaps(all[j]),
				"events %v and %v overlap", all[i], all[j])
		}
	}
}

func TestPlaceFixed_BlocksLaterPlacements(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})

	maint := &WorkOrder{
		ID:              "MAINT-1",
		WorkCenterID:    "WC-001",
		DurationMinutes: 120,
		IsMaintenance:   true,
		Start:           mustTime(t, "2024-01-15T10:00:00Z"),
		End:             mustTime(t, "2024-01-15T12:00:00Z"),
	}
	require.NoError(t, s.PlaceFixed(maint))

	p, err := s.Place(scheduleWO("WO-1", "WC-001", 180, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)
	require.Len(t, p.Sessions, 2)

	assert.Equal(t, mustTime(t, "2024-01-15T10:00:00Z"), p.Sessions[0].End)
	assert.Equal(t, mustTime(t, "2024-01-15T12:00:00Z"), p.Sessions[1].Start)
	assert.Equal(t, mustTime(t, "2024-01-15T13:00:00Z"), p.Sessions[1].End)
}

func TestPlace_NoShiftOnInitialDate(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})

	// 2024-01-13 is a Saturday.
	p, err := s.Place(scheduleWO("WO-1", "WC-001", 60, 0, mustTime(t, "2024-01-13T08:00:00Z")))
	require.NoError(t, err)
	require.Len(t, p.Sessions, 1)

	assert.Contains(t, p.Explanation, "No shift available on initial date")
	assert.Equal(t, mustTime(t, "2024-01-15T08:00:00Z"), p.Sessions[0].Start)
}

func TestPlace_ExplainsConflictJump(t *testing.T) {
	wc := weekdayCenter()
	wc.MaintenanceWindows = []MaintenanceWindow{{
		Start: mustTime(t, "2024-01-15T08:00:00Z"),
		End:   mustTime(t, "2024-01-15T09:00:00Z"),
	}}
	s := NewGlobalSchedule([]*WorkCenter{wc})

	p, err := s.Place(scheduleWO("WO-1", "WC-001", 60, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)

	assert.Contains(t, p.Explanation, "Maintenance window conflict")
	assert.Equal(t, mustTime(t, "2024-01-15T09:00:00Z"), p.Start())
}

func TestPlace_HorizonExhausted(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()}, WithHorizonDays(2))

	p, err := s.Place(scheduleWO("WO-1", "WC-001", 10000, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)

	assert.Positive(t, p.RemainingMinutes)
	assert.Less(t, totalWork(p.Sessions), 10000)
}

func TestPlace_TerminatesOnInvertedShift(t *testing.T) {
	// An end-before-start shift yields no capacity. The cursor must still
	// advance every iteration so the search runs out instead of spinning.
	wc := &WorkCenter{
		ID:     "WC-INV",
		Name:   "Inverted Shift",
		Shifts: []Shift{{DayOfWeek: 1, StartHour: 17, EndHour: 8}},
	}
	s := NewGlobalSchedule([]*WorkCenter{wc}, WithHorizonDays(8))

	p, err := s.Place(scheduleWO("WO-1", "WC-INV", 60, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)

	assert.Empty(t, p.Sessions)
	assert.Equal(t, 60, p.RemainingMinutes)
}

func TestPlaceFixed_RejectsInvalidInterval(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})

	tests := []struct {
		name string
		end  time.Time
	}{
		{name: "Zero end"},
		{name: "Reversed end", end: mustTime(t, "2024-01-15T07:00:00Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wo := scheduleWO("MAINT-1", "WC-001", 60, 0, mustTime(t, "2024-01-15T08:00:00Z"))
			wo.IsMaintenance = true
			wo.End = tt.end

			err := s.PlaceFixed(wo)
			require.Error(t, err)

			v, ok := AsViolation(err)
			require.True(t, ok)
			assert.Equal(t, CodeInvalidStart, v.Code)
			assert.Equal(t, "MAINT-1", v.WorkOrderID)

			// Nothing was committed for the malformed interval.
			assert.Empty(t, s.EventsOn("WC-001", DayKey(wo.Start)))
		})
	}
}

func TestPlace_UnknownWorkCenter(t *testing.T) {
	s := NewGlobalSchedule([]*WorkCenter{weekdayCenter()})

	_, err := s.Place(scheduleWO("WO-1", "WC-GHOST", 60, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.Error(t, err)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeWorkCenterNotFound, v.Code)
	assert.Equal(t, "WO-1", v.WorkOrderID)
}

func TestComputeWorkCenterMetrics(t *testing.T) {
	wc := &WorkCenter{
		ID:     "WC-001",
		Name:   "Assembly Line A",
		Shifts: []Shift{{DayOfWeek: 1, StartHour: 8, EndHour: 12}},
	}
	s := NewGlobalSchedule([]*WorkCenter{wc})

	_, err := s.Place(scheduleWO("WO-1", "WC-001", 120, 0, mustTime(t, "2024-01-15T08:00:00Z")))
	require.NoError(t, err)

	t.Run("Fully occupied window", func(t *testing.T) {
		metrics := s.ComputeWorkCenterMetrics(
			mustTime(t, "2024-01-15T08:00:00Z"),
			mustTime(t, "2024-01-15T10:00:00Z"),
		)
		require.Len(t, metrics, 1)

		assert.Equal(t, 120, metrics[0].TotalShiftMinutes)
		assert.Equal(t, 120, metrics[0].TotalWorkingMinutes)
		assert.Equal(t, 0, metrics[0].TotalIdleMinutes)
		assert.InDelta(t, 1.0, metrics[0].Utilization, 1e-9)
	})

	t.Run("Half occupied window", func(t *testing.T) {
		metrics := s.ComputeWorkCenterMetrics(
			mustTime(t, "2024-01-15T08:00:00Z"),
			mustTime(t, "2024-01-15T12:00:00Z"),
		)
		require.Len(t, metrics, 1)

		assert.Equal(t, 240, metrics[0].TotalShiftMinutes)
		assert.Equal(t, 120, metrics[0].TotalWorkingMinutes)
		assert.Equal(t, 120, metrics[0].TotalIdleMinutes)
		assert.InDelta(t, 0.5, metrics[0].Utilization, 1e-9)
	})
}
