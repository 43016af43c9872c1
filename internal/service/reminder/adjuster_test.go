package reminder

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

func TestComputeNotificationInstant(t *testing.T) {
	overnight := &calendar.QuietWindow{
		Start: calendar.MustParseTimeOfDay("22:00"),
		End:   calendar.MustParseTimeOfDay("07:00"),
	}

	tests := []struct {
		name     string
		doseAt   time.Time
		lead     int
		window   *calendar.QuietWindow
		now      time.Time
		want     time.Time
		wantSend bool
	}{
		{
			name:     "lead time without quiet hours",
			doseAt:   time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
			lead:     15,
			now:      time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 15, 7, 45, 0, 0, time.UTC),
			wantSend: true,
		},
		{
			name:     "zero lead keeps dose instant",
			doseAt:   time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
			lead:     0,
			now:      time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
			wantSend: true,
		},
		{
			name:     "lead window already passed",
			doseAt:   time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
			lead:     15,
			now:      time.Date(2025, 1, 15, 7, 50, 0, 0, time.UTC),
			wantSend: false,
		},
		{
			name:     "exactly now is not scheduled",
			doseAt:   time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
			lead:     15,
			now:      time.Date(2025, 1, 15, 7, 45, 0, 0, time.UTC),
			wantSend: false,
		},
		{
			name:     "early morning inside quiet hours defers to window end",
			doseAt:   time.Date(2025, 1, 15, 6, 30, 0, 0, time.UTC),
			lead:     15,
			window:   overnight,
			now:      time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC),
			wantSend: true,
		},
		{
			name:     "late evening inside quiet hours defers to next morning",
			doseAt:   time.Date(2025, 1, 14, 23, 0, 0, 0, time.UTC),
			lead:     30,
			window:   overnight,
			now:      time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC),
			wantSend: true,
		},
		{
			name:     "outside quiet hours unchanged",
			doseAt:   time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
			lead:     15,
			window:   overnight,
			now:      time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 15, 11, 45, 0, 0, time.UTC),
			wantSend: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeNotificationInstant(tt.doseAt, tt.lead, tt.window, tt.now)
			if ok != tt.wantSend {
				t.Fatalf("ok = %v, want %v", ok, tt.wantSend)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ComputeNotificationInstant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForSettings_QuietHoursIgnoredWhenPushDisabled(t *testing.T) {
	settings := domain.DefaultReminderSettings(uuid.New(), "UTC")
	settings.QuietHours = &calendar.QuietWindow{
		Start: calendar.MustParseTimeOfDay("22:00"),
		End:   calendar.MustParseTimeOfDay("07:00"),
	}
	doseAt := time.Date(2025, 1, 15, 6, 30, 0, 0, time.UTC)
	now := time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC)

	got, ok := ForSettings(doseAt, settings, now)
	if !ok || !got.Equal(time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("push enabled: got (%v, %v), want 07:00", got, ok)
	}

	settings.PushEnabled = false
	got, ok = ForSettings(doseAt, settings, now)
	if !ok || !got.Equal(time.Date(2025, 1, 15, 6, 15, 0, 0, time.UTC)) {
		t.Errorf("push disabled: got (%v, %v), want 06:15", got, ok)
	}
}
