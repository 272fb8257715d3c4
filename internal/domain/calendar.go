package domain

import "time"

// DefaultHorizonDays bounds how far ahead the placement search looks before
// declaring a work order unschedulable.
const DefaultHorizonDays = 365

// Interval is an absolute [Start, End) time window. All intervals in the
// engine are UTC-normalized.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.End.After(other.Start) && iv.Start.Before(other.End)
}

// Minutes returns the interval length in whole minutes.
func (iv Interval) Minutes() int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// Contains reports whether t falls inside the half-open interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Clamp returns the overlap of the interval with the given bounds, in whole
// minutes, or 0 when they do not intersect.
func (iv Interval) Clamp(bounds Interval) int {
	start := iv.Start
	if bounds.Start.After(start) {
		start = bounds.Start
	}
	end := iv.End
	if bounds.End.Before(end) {
		end = bounds.End
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// DayKey returns the UTC calendar day index (days since the Unix epoch) for
// the instant. Events are bucketed under this key in the schedule index.
func DayKey(t time.Time) int64 {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / (24 * 60 * 60)
}

// dayStart returns UTC midnight of the day containing t.
func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// shiftIntervalOn resolves a shift definition to its absolute interval on a
// concrete day (given as UTC midnight).
func shiftIntervalOn(day time.Time, s Shift) Interval {
	return Interval{
		Start: day.Add(time.Duration(s.StartHour) * time.Hour),
		End:   day.Add(time.Duration(s.EndHour) * time.Hour),
	}
}

// NextShiftInterval scans forward day by day from the UTC calendar day
// containing at, for up to horizonDays days, and returns the first shift
// interval that either contains at or starts at or after it. It fails with
// NO_SHIFT_FOUND when the horizon is exhausted, which is fatal for the work
// order being placed.
func NextShiftInterval(wc *WorkCenter, at time.Time, horizonDays int) (Interval, error) {
	at = at.UTC()
	current := dayStart(at)
	for i := 0; i < horizonDays; i++ {
		if shift, ok := wc.ShiftFor(current.Weekday()); ok {
			iv := shiftIntervalOn(current, shift)
			if iv.Contains(at) || !iv.Start.Before(at) {
				return iv, nil
			}
		}
		current = current.AddDate(0, 0, 1)
	}
	return Interval{}, NewViolation(CodeNoShiftFound, "",
		"no shift found for work center %s within %d days of %s",
		wc.ID, horizonDays, at.Format(time.RFC3339))
}

// IsDuringShift reports whether the instant falls within the work center's
// shift window for that day of week.
func IsDuringShift(wc *WorkCenter, t time.Time) bool {
	u := t.UTC()
	shift, ok := wc.ShiftFor(u.Weekday())
	if !ok {
		return false
	}
	return u.Hour() >= shift.StartHour && u.Hour() < shift.EndHour
}
