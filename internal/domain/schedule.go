package domain

import (
	"fmt"
	"sort"
	"time"
)

// GlobalSchedule owns, per work center, the day-keyed index of committed
// scheduled events for one reflow run. Placement order affects conflict
// detection, so an instance must never be shared across concurrent runs;
// the index is rebuilt from scratch on every run.
type GlobalSchedule struct {
	workCenters map[string]*WorkCenter
	// workCenterID -> UTC day key -> events committed on that day,
	// kept sorted by start time.
	events      map[string]map[int64][]*ScheduledEvent
	horizonDays int
}

// ScheduleOption configures a GlobalSchedule.
type ScheduleOption func(*GlobalSchedule)

// WithHorizonDays overrides the default 365-day placement lookahead.
func WithHorizonDays(days int) ScheduleOption {
	return func(s *GlobalSchedule) {
		if days > 0 {
			s.horizonDays = days
		}
	}
}

// NewGlobalSchedule creates an empty schedule over the given work centers.
func NewGlobalSchedule(workCenters []*WorkCenter, opts ...ScheduleOption) *GlobalSchedule {
	s := &GlobalSchedule{
		workCenters: make(map[string]*WorkCenter, len(workCenters)),
		events:      make(map[string]map[int64][]*ScheduledEvent, len(workCenters)),
		horizonDays: DefaultHorizonDays,
	}
	for _, wc := range workCenters {
		s.workCenters[wc.ID] = wc
		s.events[wc.ID] = make(map[int64][]*ScheduledEvent)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorkCenter looks up a work center by ID.
func (s *GlobalSchedule) WorkCenter(id string) (*WorkCenter, bool) {
	wc, ok := s.workCenters[id]
	return wc, ok
}

// WorkCenters returns the centers in deterministic (ID) order.
func (s *GlobalSchedule) WorkCenters() []*WorkCenter {
	out := make([]*WorkCenter, 0, len(s.workCenters))
	for _, wc := range s.workCenters {
		out = append(out, wc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HorizonDays returns the configured placement lookahead.
func (s *GlobalSchedule) HorizonDays() int {
	return s.horizonDays
}

// EventsOn returns the committed events for a work center on a given day.
func (s *GlobalSchedule) EventsOn(workCenterID string, day int64) []*ScheduledEvent {
	if wcEvents, ok := s.events[workCenterID]; ok {
		return wcEvents[day]
	}
	return nil
}

// Placement is the outcome of packing one work order into capacity.
// RemainingMinutes is non-zero when the lookahead horizon was exhausted
// before all work could be placed; post-validation turns that into an
// INCOMPLETE violation.
type Placement struct {
	Sessions         []Session
	Explanation      []string
	RemainingMinutes int
}

// Start returns the first session's start.
func (p *Placement) Start() time.Time {
	return p.Sessions[0].Start
}

// End returns the last session's end.
func (p *Placement) End() time.Time {
	return p.Sessions[len(p.Sessions)-1].End
}

// Place packs the work order's required duration (plus per-session setup)
// into the earliest available capacity at or after its start, splitting into
// multiple sessions across conflicts and shift boundaries as needed. Each
// committed session is registered in the event index immediately so later
// placements see it as occupied.
func (s *GlobalSchedule) Place(wo *WorkOrder) (*Placement, error) {
	wc, ok := s.workCenters[wo.WorkCenterID]
	if !ok {
		return nil, NewViolation(CodeWorkCenterNotFound, wo.ID,
			"work center %s not found", wo.WorkCenterID)
	}

	var explanation []string
	cursor := wo.Start.UTC()
	remaining := wo.DurationMinutes
	deadline := cursor.AddDate(0, 0, s.horizonDays)

	if _, hasShift := wc.ShiftFor(cursor.Weekday()); !hasShift {
		explanation = append(explanation, "No shift available on initial date")
	}

	var sessions []Session
	for remaining > 0 && cursor.Before(deadline) {
		prev := cursor

		shift, err := NextShiftInterval(wc, cursor, s.horizonDays)
		if err != nil {
			if v, ok := AsViolation(err); ok && v.WorkOrderID == "" {
				v.WorkOrderID = wo.ID
			}
			return nil, err
		}
		if shift.Start.After(cursor) {
			cursor = shift.Start
		}

		conflicts := s.conflictsForShift(wc, shift)

		// Jump out of the conflict the cursor currently sits in.
		for _, c := range conflicts {
			if c.Contains(cursor) {
				explanation = append(explanation, "Maintenance window conflict")
				cursor = c.End
				break
			}
		}

		slots := availableSlots(shift, conflicts, cursor)

		remaining, cursor = s.consumeSlots(slots, wo, &sessions, remaining, cursor)

		if remaining > 0 && shift.End.After(cursor) {
			cursor = shift.End
		}

		// The cursor must advance every iteration. A malformed calendar
		// could otherwise pin it in place and the search would never
		// reach the deadline.
		if remaining > 0 && !cursor.After(prev) {
			cursor = dayStart(prev).AddDate(0, 0, 1)
		}
	}

	return &Placement{
		Sessions:         sessions,
		Explanation:      explanation,
		RemainingMinutes: remaining,
	}, nil
}

// PlaceFixed commits a fixed (maintenance) work order's requested interval
// verbatim into the event index. Fixed timing is authoritative: no packing,
// no session recomputation, and the occupied interval blocks all later
// placements on the work center.
func (s *GlobalSchedule) PlaceFixed(wo *WorkOrder) error {
	wc, ok := s.workCenters[wo.WorkCenterID]
	if !ok {
		return NewViolation(CodeWorkCenterNotFound, wo.ID,
			"work center %s not found", wo.WorkCenterID)
	}

	// The interval is committed verbatim, so it must be well formed: a
	// zero or reversed end would register no blocking events at all.
	if !wo.End.After(wo.Start) {
		return NewViolation(CodeInvalidStart, wo.ID,
			"fixed work order %s has an invalid interval: end %s is not after start %s",
			wo.ID, wo.End.Format(time.RFC3339), wo.Start.Format(time.RFC3339))
	}

	ev := &ScheduledEvent{
		WorkOrderID:          wo.ID,
		WorkCenterID:         wo.WorkCenterID,
		ManufacturingOrderID: wo.ManufacturingOrderID,
		IsMaintenance:        true,
		SetupTimeMinutes:     wo.SetupTimeMinutes,
		DurationTimeMinutes:  wo.DurationMinutes,
		Start:                wo.Start.UTC(),
		End:                  wo.End.UTC(),
	}

	// A fixed interval may span several days; register it under every day
	// key it touches so single-day lookups always see it.
	for day := DayKey(ev.Start); day <= DayKey(ev.End); day++ {
		s.addEvent(wc.ID, day, ev)
	}
	return nil
}

// conflictsForShift collects every blocking interval for a shift: all
// maintenance windows overlapping it plus all committed events on the day(s)
// the shift spans, sorted by start time.
func (s *GlobalSchedule) conflictsForShift(wc *WorkCenter, shift Interval) []Interval {
	var conflicts []Interval
	for _, mw := range wc.MaintenanceWindows {
		iv := Interval{Start: mw.Start.UTC(), End: mw.End.UTC()}
		if iv.Overlaps(shift) {
			conflicts = append(conflicts, iv)
		}
	}

	dayKeys := []int64{DayKey(shift.Start)}
	if endKey := DayKey(shift.End); endKey != dayKeys[0] {
		dayKeys = append(dayKeys, endKey)
	}
	seen := make(map[*ScheduledEvent]bool)
	for _, day := range dayKeys {
		for _, ev := range s.EventsOn(wc.ID, day) {
			if seen[ev] {
				continue
			}
			seen[ev] = true
			conflicts = append(conflicts, Interval{Start: ev.Start, End: ev.End})
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Start.Before(conflicts[j].Start)
	})
	return conflicts
}

// availableSlots computes the free complement of the sorted conflicts within
// [max(shift.Start, cursor), shift.End]: one slot per gap strictly between
// the running occupied end and the next conflict, plus a trailing slot up to
// the shift end if room remains.
func availableSlots(shift Interval, conflicts []Interval, cursor time.Time) []Interval {
	var slots []Interval
	lastEnd := shift.Start

	for _, c := range conflicts {
		if c.Start.After(lastEnd) {
			slotStart := lastEnd
			if cursor.After(slotStart) {
				slotStart = cursor
			}
			if slotStart.Before(c.Start) {
				slots = append(slots, Interval{Start: slotStart, End: c.Start})
			}
		}
		if c.End.After(lastEnd) {
			lastEnd = c.End
		}
	}

	if lastEnd.Before(shift.End) {
		slotStart := lastEnd
		if cursor.After(slotStart) {
			slotStart = cursor
		}
		if slotStart.Before(shift.End) {
			slots = append(slots, Interval{Start: slotStart, End: shift.End})
		}
	}

	return slots
}

// consumeSlots greedily works through the free slots left to right. A slot
// starts a new session (charging setup once, consumed from the head of the
// slot) when there is any gap after the previous session, even a
// zero-duration one across a conflict. Slots that cannot cover their setup
// are skipped whole.
func (s *GlobalSchedule) consumeSlots(slots []Interval, wo *WorkOrder, sessions *[]Session, remaining int, cursor time.Time) (int, time.Time) {
	for _, slot := range slots {
		if remaining <= 0 {
			break
		}

		slotMinutes := slot.Minutes()
		if slotMinutes <= 0 {
			continue
		}

		newSession := len(*sessions) == 0 || (*sessions)[len(*sessions)-1].End.Before(slot.Start)
		setup := 0
		if newSession {
			setup = wo.SetupTimeMinutes
		}
		availableWork := slotMinutes - setup
		if availableWork <= 0 {
			continue
		}

		work := remaining
		if availableWork < work {
			work = availableWork
		}

		session := Session{
			SetupTimeMinutes:    setup,
			DurationTimeMinutes: work,
			Start:               slot.Start,
			End:                 slot.Start.Add(time.Duration(setup+work) * time.Minute),
		}
		*sessions = append(*sessions, session)

		s.addEvent(wo.WorkCenterID, DayKey(session.Start), &ScheduledEvent{
			WorkOrderID:          wo.ID,
			WorkCenterID:         wo.WorkCenterID,
			ManufacturingOrderID: wo.ManufacturingOrderID,
			IsMaintenance:        wo.IsMaintenance,
			SetupTimeMinutes:     setup,
			DurationTimeMinutes:  work,
			Start:                session.Start,
			End:                  session.End,
		})

		remaining -= work
		cursor = session.End
	}

	return remaining, cursor
}

// addEvent inserts an event into a day bucket keeping it sorted by start.
func (s *GlobalSchedule) addEvent(workCenterID string, day int64, ev *ScheduledEvent) {
	bucket := s.events[workCenterID][day]
	i := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].Start.After(ev.Start)
	})
	bucket = append(bucket, nil)
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = ev
	s.events[workCenterID][day] = bucket
}

// ComputeWorkCenterMetrics derives per-work-center utilization over the
// observation window: capacity from the shift calendar day by day, occupied
// from committed events (setup plus work, the total occupied time), idle as
// the difference.
func (s *GlobalSchedule) ComputeWorkCenterMetrics(obsStart, obsEnd time.Time) []WorkCenterMetrics {
	bounds := Interval{Start: obsStart.UTC(), End: obsEnd.UTC()}
	out := make([]WorkCenterMetrics, 0, len(s.workCenters))

	for _, wc := range s.WorkCenters() {
		capacity := 0
		for day := dayStart(bounds.Start); day.Before(bounds.End); day = day.AddDate(0, 0, 1) {
			shift, ok := wc.ShiftFor(day.Weekday())
			if !ok {
				continue
			}
			capacity += shiftIntervalOn(day, shift).Clamp(bounds)
		}

		occupied := 0
		counted := make(map[*ScheduledEvent]bool)
		for day := DayKey(bounds.Start); day <= DayKey(bounds.End); day++ {
			for _, ev := range s.EventsOn(wc.ID, day) {
				if counted[ev] {
					continue
				}
				counted[ev] = true
				occupied += Interval{Start: ev.Start, End: ev.End}.Clamp(bounds)
			}
		}

		m := WorkCenterMetrics{
			WorkCenterID:        wc.ID,
			WorkCenterName:      wc.Name,
			TotalShiftMinutes:   capacity,
			TotalWorkingMinutes: occupied,
			TotalIdleMinutes:    capacity - occupied,
		}
		if capacity > 0 {
			m.Utilization = float64(occupied) / float64(capacity)
		}
		out = append(out, m)
	}

	return out
}

// String renders a compact description, useful in logs and test failures.
func (s *GlobalSchedule) String() string {
	total := 0
	for _, days := range s.events {
		for _, bucket := range days {
			total += len(bucket)
		}
	}
	return fmt.Sprintf("GlobalSchedule(workCenters=%d, events=%d, horizonDays=%d)",
		len(s.workCenters), total, s.horizonDays)
}
