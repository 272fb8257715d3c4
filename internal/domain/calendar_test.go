package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.UTC()
}

// weekdayCenter has a Monday-Friday 08:00-17:00 calendar.
func weekdayCenter() *WorkCenter {
	return &WorkCenter{
		ID:   "WC-001",
		Name: "Assembly Line A",
		Shifts: []Shift{
			{DayOfWeek: 1, StartHour: 8, EndHour: 17},
			{DayOfWeek: 2, StartHour: 8, EndHour: 17},
			{DayOfWeek: 3, StartHour: 8, EndHour: 17},
			{DayOfWeek: 4, StartHour: 8, EndHour: 17},
			{DayOfWeek: 5, StartHour: 8, EndHour: 17},
		},
	}
}

func TestDayKey(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{"Same UTC day", "2024-01-15T00:00:00Z", "2024-01-15T23:59:59Z", true},
		{"Adjacent days", "2024-01-15T23:59:59Z", "2024-01-16T00:00:00Z", false},
		{"Offset normalized to UTC", "2024-01-16T01:00:00+02:00", "2024-01-15T22:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DayKey(mustTime(t, tt.a))
			b := DayKey(mustTime(t, tt.b))
			if tt.same {
				assert.Equal(t, a, b)
			} else {
				assert.NotEqual(t, a, b)
			}
		})
	}
}

func TestNextShiftInterval(t *testing.T) {
	wc := weekdayCenter()

	tests := []struct {
		name      string
		at        string
		wantStart string
		wantEnd   string
	}{
		{
			// 2024-01-15 is a Monday.
			name:      "Instant inside shift returns containing shift",
			at:        "2024-01-15T10:30:00Z",
			wantStart: "2024-01-15T08:00:00Z",
			wantEnd:   "2024-01-15T17:00:00Z",
		},
		{
			name:      "Instant before shift start returns same-day shift",
			at:        "2024-01-15T06:00:00Z",
			wantStart: "2024-01-15T08:00:00Z",
			wantEnd:   "2024-01-15T17:00:00Z",
		},
		{
			name:      "Instant after shift end rolls to next day",
			at:        "2024-01-15T18:00:00Z",
			wantStart: "2024-01-16T08:00:00Z",
			wantEnd:   "2024-01-16T17:00:00Z",
		},
		{
			name:      "Saturday rolls to Monday",
			at:        "2024-01-13T09:00:00Z",
			wantStart: "2024-01-15T08:00:00Z",
			wantEnd:   "2024-01-15T17:00:00Z",
		},
		{
			name:      "Exact shift start is contained",
			at:        "2024-01-15T08:00:00Z",
			wantStart: "2024-01-15T08:00:00Z",
			wantEnd:   "2024-01-15T17:00:00Z",
		},
		{
			name:      "Exact shift end rolls forward",
			at:        "2024-01-15T17:00:00Z",
			wantStart: "2024-01-16T08:00:00Z",
			wantEnd:   "2024-01-16T17:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := NextShiftInterval(wc, mustTime(t, tt.at), DefaultHorizonDays)
			require.NoError(t, err)
			assert.Equal(t, mustTime(t, tt.wantStart), iv.Start)
			assert.Equal(t, mustTime(t, tt.wantEnd), iv.End)
		})
	}
}

func TestNextShiftInterval_NoShiftWithinHorizon(t *testing.T) {
	wc := &WorkCenter{ID: "WC-EMPTY", Name: "No Calendar"}

	_, err := NextShiftInterval(wc, mustTime(t, "2024-01-15T08:00:00Z"), 30)
	require.Error(t, err)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeNoShiftFound, v.Code)
}

func TestNextShiftInterval_SingleShiftDay(t *testing.T) {
	// Only Wednesdays have capacity.
	wc := &WorkCenter{
		ID:     "WC-WED",
		Shifts: []Shift{{DayOfWeek: 3, StartHour: 9, EndHour: 13}},
	}

	iv, err := NextShiftInterval(wc, mustTime(t, "2024-01-15T08:00:00Z"), DefaultHorizonDays)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2024-01-17T09:00:00Z"), iv.Start)
	assert.Equal(t, mustTime(t, "2024-01-17T13:00:00Z"), iv.End)
}

func TestIsDuringShift(t *testing.T) {
	wc := weekdayCenter()

	assert.True(t, IsDuringShift(wc, mustTime(t, "2024-01-15T08:00:00Z")))
	assert.True(t, IsDuringShift(wc, mustTime(t, "2024-01-15T16:59:00Z")))
	assert.False(t, IsDuringShift(wc, mustTime(t, "2024-01-15T17:00:00Z")))
	assert.False(t, IsDuringShift(wc, mustTime(t, "2024-01-13T10:00:00Z"))) // Saturday
}

func TestIntervalHelpers(t *testing.T) {
	iv := Interval{Start: mustTime(t, "2024-01-15T08:00:00Z"), End: mustTime(t, "2024-01-15T12:00:00Z")}

	assert.Equal(t, 240, iv.Minutes())
	assert.True(t, iv.Contains(mustTime(t, "2024-01-15T08:00:00Z")))
	assert.False(t, iv.Contains(mustTime(t, "2024-01-15T12:00:00Z")))

	assert.True(t, iv.Overlaps(Interval{Start: mustTime(t, "2024-01-15T11:00:00Z"), End: mustTime(t, "2024-01-15T13:00:00Z")}))
	assert.False(t, iv.Overlaps(Interval{Start: mustTime(t, "2024-01-15T12:00:00Z"), End: mustTime(t, "2024-01-15T13:00:00Z")}))

	clipped := iv.Clamp(Interval{Start: mustTime(t, "2024-01-15T10:00:00Z"), End: mustTime(t, "2024-01-15T18:00:00Z")})
	assert.Equal(t, 120, clipped)
	assert.Equal(t, 0, iv.Clamp(Interval{Start: mustTime(t, "2024-01-15T13:00:00Z"), End: mustTime(t, "2024-01-15T14:00:00Z")}))
}
