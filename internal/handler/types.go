package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/lifecycle"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/materialize"
)

type CreateMedicationRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Frequency     string `json:"frequency" binding:"required"`
	StartTime     string `json:"start_time"`
	IntervalHours int    `json:"interval_hours"`
}

type UpdateMedicationRequest struct {
	Name          *string `json:"name"`
	Frequency     *string `json:"frequency"`
	StartTime     *string `json:"start_time"`
	IntervalHours *int    `json:"interval_hours"`
}

type CreateSlotRequest struct {
	Time     string   `json:"time" binding:"required"`
	Weekdays []string `json:"weekdays"`
}

type UpdateSlotRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type RecordHistoryRequest struct {
	Action string `json:"action" binding:"required"`
	Day    string `json:"day"`
}

type UpdateSettingsRequest struct {
	PushEnabled     *bool   `json:"push_enabled"`
	EmailEnabled    *bool   `json:"email_enabled"`
	LeadMinutes     *int    `json:"lead_minutes"`
	QuietStart      *string `json:"quiet_start"`
	QuietEnd        *string `json:"quiet_end"`
	ClearQuietHours bool    `json:"clear_quiet_hours"`
	Timezone        *string `json:"timezone"`
}

type RegisterDeviceRequest struct {
	PushToken string `json:"push_token" binding:"required"`
	Platform  string `json:"platform"`
}

type MedicationResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Frequency     string    `json:"frequency"`
	StartTime     string    `json:"start_time,omitempty"`
	IntervalHours int       `json:"interval_hours,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SlotResponse struct {
	ID           uuid.UUID `json:"id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Time         string    `json:"time"`
	Weekdays     []string  `json:"weekdays"`
	DayOffset    int       `json:"day_offset,omitempty"`
	Active       bool      `json:"active"`
	Source       string    `json:"source"`
}

type NotificationResponse struct {
	ID           uuid.UUID  `json:"id"`
	MedicationID uuid.UUID  `json:"medication_id"`
	SlotID       uuid.UUID  `json:"slot_id"`
	DoseAt       time.Time  `json:"dose_at"`
	SendAt       time.Time  `json:"send_at"`
	Status       string     `json:"status"`
	Reason       string     `json:"reason,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

type SettingsResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	PushEnabled  bool      `json:"push_enabled"`
	EmailEnabled bool      `json:"email_enabled"`
	LeadMinutes  int       `json:"lead_minutes"`
	QuietStart   string    `json:"quiet_start,omitempty"`
	QuietEnd     string    `json:"quiet_end,omitempty"`
	Timezone     string    `json:"timezone"`
}

type HistoryResponse struct {
	ID           uuid.UUID `json:"id"`
	SlotID       uuid.UUID `json:"slot_id"`
	Action       string    `json:"action"`
	ScheduledFor time.Time `json:"scheduled_for"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type CreateMedicationResponse struct {
	Medication  MedicationResponse  `json:"medication"`
	Slots       []SlotResponse      `json:"slots"`
	Materialize *materialize.Result `json:"materialize"`
}

type DeleteMedicationResponse struct {
	MedicationID           uuid.UUID `json:"medication_id"`
	NotificationsCancelled int       `json:"notifications_cancelled"`
	SlotsDeleted           int       `json:"slots_deleted"`
	HistoryDeleted         int       `json:"history_deleted"`
}

type SlotChangeResponse struct {
	Slot        SlotResponse            `json:"slot"`
	Cancel      *lifecycle.CancelResult `json:"cancel,omitempty"`
	Materialize *materialize.Result     `json:"materialize,omitempty"`
}

func toMedicationResponse(m *domain.Medication) MedicationResponse {
	return MedicationResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Frequency:     string(m.Frequency),
		StartTime:     m.StartTime,
		IntervalHours: m.IntervalHours,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toSlotResponse(s *domain.RecurringSlot) SlotResponse {
	return SlotResponse{
		ID:           s.ID,
		MedicationID: s.MedicationID,
		Time:         s.Time.String(),
		Weekdays:     s.Weekdays.Strings(),
		DayOffset:    s.DayOffset,
		Active:       s.Active,
		Source:       string(s.Source),
	}
}

func toSlotResponses(slots []*domain.RecurringSlot) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = toSlotResponse(s)
	}
	return out
}

func toNotificationResponse(n *domain.ScheduledNotification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		MedicationID: n.MedicationID,
		SlotID:       n.SlotID,
		DoseAt:       n.DoseAt,
		SendAt:       n.SendAt,
		Status:       n.Status.String(),
		Reason:       n.Reason,
		ResolvedAt:   n.ResolvedAt,
	}
}

func toSettingsResponse(s *domain.ReminderSettings) SettingsResponse {
	resp := SettingsResponse{
		UserID:       s.UserID,
		PushEnabled:  s.PushEnabled,
		EmailEnabled: s.EmailEnabled,
		LeadMinutes:  s.LeadMinutes,
		Timezone:     s.Timezone,
	}
	if s.QuietHours != nil {
		resp.QuietStart = s.QuietHours.Start.String()
		resp.QuietEnd = s.QuietHours.End.String()
	}
	return resp
}

func (r UpdateSettingsRequest) patch() domain.SettingsPatch {
	return domain.SettingsPatch{
		PushEnabled:     r.PushEnabled,
		EmailEnabled:    r.EmailEnabled,
		LeadMinutes:     r.LeadMinutes,
		QuietStart:      r.QuietStart,
		QuietEnd:        r.QuietEnd,
		ClearQuietHours: r.ClearQuietHours,
		Timezone:        r.Timezone,
	}
}
