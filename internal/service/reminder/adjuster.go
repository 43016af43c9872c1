package reminder

import (
	"time"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

// ComputeNotificationInstant subtracts the lead time from doseAt and defers the result to the
// end of window when it falls inside it. It reports false when the lead-adjusted instant is
// at or before now. The window is evaluated in doseAt's location.
func ComputeNotificationInstant(doseAt time.Time, leadMinutes int, window *calendar.QuietWindow, now time.Time) (time.Time, bool) {
	sendAt := doseAt
	if leadMinutes > 0 {
		sendAt = doseAt.Add(-time.Duration(leadMinutes) * time.Minute)
	}

	if !sendAt.After(now) {
		return time.Time{}, false
	}

	if calendar.IsWithinQuietWindow(sendAt, window) {
		sendAt = calendar.ShiftOutOfQuietWindow(sendAt, window.End)
	}

	return sendAt, true
}

// ForSettings applies a user's lead time, and their quiet hours only while push is enabled.
func ForSettings(doseAt time.Time, settings *domain.ReminderSettings, now time.Time) (time.Time, bool) {
	var window *calendar.QuietWindow
	if settings.PushEnabled {
		window = settings.QuietHours
	}
	return ComputeNotificationInstant(doseAt, settings.LeadMinutes, window, now)
}
