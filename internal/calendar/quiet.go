package calendar

import "time"

// QuietWindow is a daily time-of-day range during which push delivery is deferred.
// Both bounds are inclusive. Start >= End means the window crosses midnight.
type QuietWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w QuietWindow) CrossesMidnight() bool {
	return !w.Start.Before(w.End)
}

// Contains compares only the time-of-day of instant, in instant's location.
func (w QuietWindow) Contains(instant time.Time) bool {
	m := TimeOfDayOf(instant).Minutes()
	start, end := w.Start.Minutes(), w.End.Minutes()

	if start < end {
		return m >= start && m <= end
	}
	return m >= start || m <= end
}

// IsWithinQuietWindow reports false when no window is configured.
func IsWithinQuietWindow(instant time.Time, window *QuietWindow) bool {
	if window == nil {
		return false
	}
	return window.Contains(instant)
}

// ShiftOutOfQuietWindow moves instant to end on the same calendar day. An instant already
// at end is returned unchanged. When end is earlier than instant on that day (the
// pre-midnight half of a crossing window, or a window whose start equals its end), the next
// day's end is used instead. The shift is applied once and never loops.
func ShiftOutOfQuietWindow(instant time.Time, end TimeOfDay) time.Time {
	if TimeOfDayOf(instant) == end {
		return instant
	}
	shifted := end.On(instant, instant.Location())
	if shifted.Before(instant) {
		shifted = end.On(instant.AddDate(0, 0, 1), instant.Location())
	}
	return shifted
}
