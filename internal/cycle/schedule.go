package cycle

import (
	"time"

	"todoink/internal/timesync"
)

// Schedule decides when the board wakes next.
type Schedule struct {
	Interval   time.Duration
	WakeupHour int
	SleepHour  int
	// Zone, when set, is used to read and build local times. Otherwise the
	// location of the time passed to Next is used.
	Zone *timesync.Rule
}

// active reports whether hour falls inside the waking window. Equal hours
// mean the board never rests; a wakeup hour after the sleep hour spans
// midnight.
func (s Schedule) active(hour int) bool {
	switch {
	case s.WakeupHour == s.SleepHour:
		return true
	case s.WakeupHour < s.SleepHour:
		return hour >= s.WakeupHour && hour < s.SleepHour
	default:
		return hour >= s.WakeupHour || hour < s.SleepHour
	}
}

// Next returns the first wake time after now: the next multiple of Interval
// on the local clock counted from midnight, moved to the next WakeupHour when
// it lands outside the waking window. Local readings are converted back to
// instants with the offset in effect at that reading, so a DST change
// between now and the wake does not shift it.
func (s Schedule) Next(now time.Time) time.Time {
	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if s.Zone != nil {
		now = s.Zone.In(now)
	}

	// Wall-clock readings are carried as UTC times so the arithmetic never
	// crosses a transition.
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	elapsed := time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC).Sub(midnight)
	slot := midnight.Add((elapsed/interval + 1) * interval)

	if s.active(slot.Hour()) {
		return s.at(slot, now.Location())
	}
	sy, sm, sd := slot.Date()
	wake := s.at(time.Date(sy, sm, sd, s.WakeupHour, 0, 0, 0, time.UTC), now.Location())
	if !wake.After(now) {
		wake = s.at(time.Date(sy, sm, sd+1, s.WakeupHour, 0, 0, 0, time.UTC), now.Location())
	}
	return wake
}

// at converts a wall-clock reading to the instant it names.
func (s Schedule) at(wall time.Time, loc *time.Location) time.Time {
	y, m, d := wall.Date()
	if s.Zone != nil {
		return s.Zone.Resolve(y, m, d, wall.Hour(), wall.Minute())
	}
	return time.Date(y, m, d, wall.Hour(), wall.Minute(), 0, 0, loc)
}
