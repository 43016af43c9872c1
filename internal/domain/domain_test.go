package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
)

func newTestNotification() *ScheduledNotification {
	med := &Medication{ID: uuid.New(), UserID: uuid.New(), Name: "Ibuprofen", Frequency: FrequencyDaily}
	slot := &RecurringSlot{ID: uuid.New(), MedicationID: med.ID, Time: calendar.MustParseTimeOfDay("08:00")}
	doseAt := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	return NewScheduledNotification(med, slot, doseAt, doseAt.Add(-15*time.Minute), doseAt.Add(-24*time.Hour))
}

func TestNewScheduledNotification(t *testing.T) {
	n := newTestNotification()

	if n.Status != NotificationStatusScheduled {
		t.Errorf("Status = %s, want scheduled", n.Status)
	}
	if n.DoseDay != "2025-01-15" {
		t.Errorf("DoseDay = %s, want 2025-01-15", n.DoseDay)
	}
	if n.Title != "Time for Ibuprofen" {
		t.Errorf("Title = %q", n.Title)
	}
	if n.Body != "Ibuprofen is due at 08:00" {
		t.Errorf("Body = %q", n.Body)
	}
}

func TestScheduledNotification_Transitions(t *testing.T) {
	at := time.Date(2025, 1, 15, 7, 45, 0, 0, time.UTC)

	tests := []struct {
		name       string
		transition func(n *ScheduledNotification) (StatusTransition, error)
		want       NotificationStatus
	}{
		{
			name: "sent",
			transition: func(n *ScheduledNotification) (StatusTransition, error) {
				return n.MarkSent("ticket-1", at)
			},
			want: NotificationStatusSent,
		},
		{
			name: "failed",
			transition: func(n *ScheduledNotification) (StatusTransition, error) {
				return n.MarkFailed(ReasonNoDestination, at)
			},
			want: NotificationStatusFailed,
		},
		{
			name: "cancelled",
			transition: func(n *ScheduledNotification) (StatusTransition, error) {
				return n.Cancel(ReasonCancelledByUser, at)
			},
			want: NotificationStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNotification()

			tr, err := tt.transition(n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Status != tt.want || tr.To != tt.want {
				t.Errorf("status = %s (transition %s), want %s", n.Status, tr.To, tt.want)
			}
			if n.ResolvedAt == nil || !n.ResolvedAt.Equal(at) {
				t.Errorf("ResolvedAt = %v, want %v", n.ResolvedAt, at)
			}

			// terminal states do not move again
			if _, err := n.Cancel(ReasonCancelledByUser, at); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("second transition error = %v, want ErrInvalidTransition", err)
			}
			if n.Status != tt.want {
				t.Errorf("status changed after rejected transition: %s", n.Status)
			}
		})
	}
}

func TestRecurringSlot_DoseAtAppliesDayOffset(t *testing.T) {
	slot := &RecurringSlot{
		Time:      calendar.MustParseTimeOfDay("00:00"),
		Weekdays:  calendar.NewWeekdaySet(calendar.Monday),
		DayOffset: 1,
	}
	monday := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if !slot.DueOn(monday, time.UTC) {
		t.Error("DueOn(monday) = false, want true")
	}
	if slot.DueOn(monday.AddDate(0, 0, 1), time.UTC) {
		t.Error("DueOn(tuesday) = true, want false")
	}

	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := slot.DoseAt(monday, time.UTC); !got.Equal(want) {
		t.Errorf("DoseAt() = %v, want %v", got, want)
	}
}

func TestRecurringSlot_Validate(t *testing.T) {
	slot := &RecurringSlot{MedicationID: uuid.New(), Weekdays: calendar.WeekdaySet{}}

	err := slot.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0] != "weekdays" {
		t.Errorf("Fields = %v, want [weekdays]", ve.Fields)
	}
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("twice_a_day")
	if err != nil || f != FrequencyTwiceADay {
		t.Errorf("ParseFrequency() = (%s, %v), want TWICE_A_DAY", f, err)
	}
	if _, err := ParseFrequency("HOURLY"); !IsValidationError(err) {
		t.Errorf("ParseFrequency(HOURLY) error = %v, want ValidationError", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestSettingsPatch_Apply(t *testing.T) {
	base := DefaultReminderSettings(uuid.New(), "UTC")

	tests := []struct {
		name       string
		patch      SettingsPatch
		wantErr    bool
		wantFields []string
		check      func(t *testing.T, s *ReminderSettings)
	}{
		{
			name:  "empty patch keeps defaults",
			patch: SettingsPatch{},
			check: func(t *testing.T, s *ReminderSettings) {
				if !s.PushEnabled || s.EmailEnabled || s.LeadMinutes != 15 || s.QuietHours != nil {
					t.Errorf("unexpected settings: %+v", s)
				}
			},
		},
		{
			name:  "sets quiet hours",
			patch: SettingsPatch{QuietStart: ptr("22:00"), QuietEnd: ptr("07:00")},
			check: func(t *testing.T, s *ReminderSettings) {
				if s.QuietHours == nil || s.QuietHours.Start.String() != "22:00" || s.QuietHours.End.String() != "07:00" {
					t.Errorf("QuietHours = %+v", s.QuietHours)
				}
			},
		},
		{
			name:       "start without end",
			patch:      SettingsPatch{QuietStart: ptr("22:00")},
			wantErr:    true,
			wantFields: []string{"quiet_end"},
		},
		{
			name:       "malformed bound",
			patch:      SettingsPatch{QuietStart: ptr("25:00"), QuietEnd: ptr("07:00")},
			wantErr:    true,
			wantFields: []string{"quiet_start"},
		},
		{
			name:       "negative lead",
			patch:      SettingsPatch{LeadMinutes: ptr(-5)},
			wantErr:    true,
			wantFields: []string{"lead_minutes"},
		},
		{
			name:       "unknown timezone",
			patch:      SettingsPatch{Timezone: ptr("Mars/Olympus")},
			wantErr:    true,
			wantFields: []string{"timezone"},
		},
		{
			name:  "zero lead allowed",
			patch: SettingsPatch{LeadMinutes: ptr(0), PushEnabled: ptr(false)},
			check: func(t *testing.T, s *ReminderSettings) {
				if s.LeadMinutes != 0 || s.PushEnabled {
					t.Errorf("unexpected settings: %+v", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.patch.Apply(base)
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("Apply() error = %v, want ValidationError", err)
				}
				if len(ve.Fields) != len(tt.wantFields) || ve.Fields[0] != tt.wantFields[0] {
					t.Errorf("Fields = %v, want %v", ve.Fields, tt.wantFields)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}

	if base.QuietHours != nil || base.LeadMinutes != 15 {
		t.Errorf("Apply mutated the base settings: %+v", base)
	}
}

func TestReminderSettings_LocationFallback(t *testing.T) {
	fallback := time.FixedZone("fallback", 3600)

	s := &ReminderSettings{Timezone: "Not/AZone"}
	if s.Location(fallback) != fallback {
		t.Error("unknown zone should use fallback")
	}

	var nilSettings *ReminderSettings
	if nilSettings.Location(fallback) != fallback {
		t.Error("nil settings should use fallback")
	}
}
