package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
)

const (
	DefaultLeadMinutes = 15
	MaxLeadMinutes     = 24 * 60
)

type ReminderSettings struct {
	UserID       uuid.UUID
	PushEnabled  bool
	EmailEnabled bool
	LeadMinutes  int
	QuietHours   *calendar.QuietWindow
	Timezone     string
	UpdatedAt    time.Time
}

func DefaultReminderSettings(userID uuid.UUID, timezone string) *ReminderSettings {
	return &ReminderSettings{
		UserID:       userID,
		PushEnabled:  true,
		EmailEnabled: false,
		LeadMinutes:  DefaultLeadMinutes,
		Timezone:     timezone,
	}
}

// Location resolves Timezone, falling back to fallback for an empty or unknown zone.
func (s *ReminderSettings) Location(fallback *time.Location) *time.Location {
	if s == nil || s.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// SettingsPatch carries a partial update. QuietStart and QuietEnd must be set together;
// ClearQuietHours removes the window.
type SettingsPatch struct {
	PushEnabled     *bool
	EmailEnabled    *bool
	LeadMinutes     *int
	QuietStart      *string
	QuietEnd        *string
	ClearQuietHours bool
	Timezone        *string
}

// Apply validates the patch and returns the merged settings without touching s.
func (p SettingsPatch) Apply(s *ReminderSettings) (*ReminderSettings, error) {
	merged := *s
	var fields []string

	if p.PushEnabled != nil {
		merged.PushEnabled = *p.PushEnabled
	}
	if p.EmailEnabled != nil {
		merged.EmailEnabled = *p.EmailEnabled
	}
	if p.LeadMinutes != nil {
		if *p.LeadMinutes < 0 || *p.LeadMinutes > MaxLeadMinutes {
			fields = append(fields, "lead_minutes")
		}
		merged.LeadMinutes = *p.LeadMinutes
	}

	switch {
	case p.ClearQuietHours:
		if p.QuietStart != nil || p.QuietEnd != nil {
			fields = append(fields, "quiet_start", "quiet_end")
		}
		merged.QuietHours = nil
	case p.QuietStart != nil && p.QuietEnd != nil:
		start, errStart := calendar.ParseTimeOfDay(*p.QuietStart)
		if errStart != nil {
			fields = append(fields, "quiet_start")
		}
		end, errEnd := calendar.ParseTimeOfDay(*p.QuietEnd)
		if errEnd != nil {
			fields = append(fields, "quiet_end")
		}
		if errStart == nil && errEnd == nil {
			merged.QuietHours = &calendar.QuietWindow{Start: start, End: end}
		}
	case p.QuietStart != nil:
		fields = append(fields, "quiet_end")
	case p.QuietEnd != nil:
		fields = append(fields, "quiet_start")
	}

	if p.Timezone != nil {
		if _, err := time.LoadLocation(*p.Timezone); err != nil || *p.Timezone == "" {
			fields = append(fields, "timezone")
		}
		merged.Timezone = *p.Timezone
	}

	if len(fields) > 0 {
		return nil, NewValidationError("invalid reminder settings", fields...)
	}
	return &merged, nil
}
