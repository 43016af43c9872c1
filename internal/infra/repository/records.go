package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

type medicationRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"not null"`
	Frequency     string    `gorm:"size:32;not null"`
	StartTime     string    `gorm:"size:5"`
	IntervalHours int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (medicationRecord) TableName() string { return "medications" }

type slotRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index"`
	TimeOfDay    string    `gorm:"size:5;not null"`
	Weekdays     string    `gorm:"not null"` // comma separated tags
	DayOffset    int       `gorm:"not null;default:0"`
	Active       bool      `gorm:"not null"`
	Source       string    `gorm:"size:16;not null"`
	CreatedAt    time.Time
}

func (slotRecord) TableName() string { return "recurring_slots" }

type notificationRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SlotID       uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	DoseAt       time.Time `gorm:"not null"`
	SendAt       time.Time `gorm:"not null"`
	DoseDay      string    `gorm:"size:10;not null"`
	Title        string    `gorm:"not null"`
	Body         string    `gorm:"not null"`
	Status       string    `gorm:"size:16;not null"`
	TicketID     string
	Reason       string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

func (notificationRecord) TableName() string { return "scheduled_notifications" }

type settingsRecord struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PushEnabled  bool      `gorm:"not null"`
	EmailEnabled bool      `gorm:"not null"`
	LeadMinutes  int       `gorm:"not null"`
	QuietStart   *string   `gorm:"size:5"`
	QuietEnd     *string   `gorm:"size:5"`
	Timezone     string    `gorm:"size:64"`
	UpdatedAt    time.Time
}

func (settingsRecord) TableName() string { return "reminder_settings" }

type historyRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SlotID       uuid.UUID `gorm:"type:uuid;not null;index:idx_history_slot_scheduled,priority:1"`
	UserID       uuid.UUID `gorm:"type:uuid"`
	Action       string    `gorm:"size:16;not null"`
	ScheduledFor time.Time `gorm:"not null;index:idx_history_slot_scheduled,priority:2"`
	RecordedAt   time.Time `gorm:"not null"`
	Auto         bool      `gorm:"not null;default:false"`
}

func (historyRecord) TableName() string { return "history_entries" }

type deviceRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PushToken string    `gorm:"not null;uniqueIndex"`
	Platform  string    `gorm:"size:16"`
	CreatedAt time.Time
}

func (deviceRecord) TableName() string { return "devices" }

func toMedicationRecord(m *domain.Medication) *medicationRecord {
	return &medicationRecord{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Frequency:     m.Frequency.String(),
		StartTime:     m.StartTime,
		IntervalHours: m.IntervalHours,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *medicationRecord) toDomain() *domain.Medication {
	return &domain.Medication{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Frequency:     domain.Frequency(r.Frequency),
		StartTime:     r.StartTime,
		IntervalHours: r.IntervalHours,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toSlotRecord(s *domain.RecurringSlot) *slotRecord {
	return &slotRecord{
		ID:           s.ID,
		MedicationID: s.MedicationID,
		TimeOfDay:    s.Time.String(),
		Weekdays:     strings.Join(s.Weekdays.Strings(), ","),
		DayOffset:    s.DayOffset,
		Active:       s.Active,
		Source:       string(s.Source),
		CreatedAt:    s.CreatedAt,
	}
}

func (r *slotRecord) toDomain() (*domain.RecurringSlot, error) {
	t, err := calendar.ParseTimeOfDay(r.TimeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: slot %s: %v", ErrInvalidSlotRecord, r.ID, err)
	}
	weekdays, err := calendar.ParseWeekdaySet(strings.Split(r.Weekdays, ","))
	if err != nil {
		return nil, fmt.Errorf("%w: slot %s: %v", ErrInvalidSlotRecord, r.ID, err)
	}
	return &domain.RecurringSlot{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		Time:         t,
		Weekdays:     weekdays,
		DayOffset:    r.DayOffset,
		Active:       r.Active,
		Source:       domain.SlotSource(r.Source),
		CreatedAt:    r.CreatedAt,
	}, nil
}

func toNotificationRecord(n *domain.ScheduledNotification) *notificationRecord {
	return &notificationRecord{
		ID:           n.ID,
		MedicationID: n.MedicationID,
		SlotID:       n.SlotID,
		UserID:       n.UserID,
		DoseAt:       n.DoseAt,
		SendAt:       n.SendAt,
		DoseDay:      n.DoseDay,
		Title:        n.Title,
		Body:         n.Body,
		Status:       n.Status.String(),
		TicketID:     n.TicketID,
		Reason:       n.Reason,
		CreatedAt:    n.CreatedAt,
		ResolvedAt:   n.ResolvedAt,
	}
}

func (r *notificationRecord) toDomain() *domain.ScheduledNotification {
	return &domain.ScheduledNotification{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		SlotID:       r.SlotID,
		UserID:       r.UserID,
		DoseAt:       r.DoseAt,
		SendAt:       r.SendAt,
		DoseDay:      r.DoseDay,
		Title:        r.Title,
		Body:         r.Body,
		Status:       domain.NotificationStatus(r.Status),
		TicketID:     r.TicketID,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
		ResolvedAt:   r.ResolvedAt,
	}
}

func notificationsToDomain(records []notificationRecord) []*domain.ScheduledNotification {
	out := make([]*domain.ScheduledNotification, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out
}

func toSettingsRecord(s *domain.ReminderSettings) *settingsRecord {
	r := &settingsRecord{
		UserID:       s.UserID,
		PushEnabled:  s.PushEnabled,
		EmailEnabled: s.EmailEnabled,
		LeadMinutes:  s.LeadMinutes,
		Timezone:     s.Timezone,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.QuietHours != nil {
		start, end := s.QuietHours.Start.String(), s.QuietHours.End.String()
		r.QuietStart, r.QuietEnd = &start, &end
	}
	return r
}

func (r *settingsRecord) toDomain() (*domain.ReminderSettings, error) {
	s := &domain.ReminderSettings{
		UserID:       r.UserID,
		PushEnabled:  r.PushEnabled,
		EmailEnabled: r.EmailEnabled,
		LeadMinutes:  r.LeadMinutes,
		Timezone:     r.Timezone,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.QuietStart != nil && r.QuietEnd != nil {
		start, err := calendar.ParseTimeOfDay(*r.QuietStart)
		if err != nil {
			return nil, fmt.Errorf("settings %s: %w", r.UserID, err)
		}
		end, err := calendar.ParseTimeOfDay(*r.QuietEnd)
		if err != nil {
			return nil, fmt.Errorf("settings %s: %w", r.UserID, err)
		}
		s.QuietHours = &calendar.QuietWindow{Start: start, End: end}
	}
	return s, nil
}

func toHistoryRecord(h *domain.HistoryEntry) *historyRecord {
	return &historyRecord{
		ID:           h.ID,
		MedicationID: h.MedicationID,
		SlotID:       h.SlotID,
		UserID:       h.UserID,
		Action:       string(h.Action),
		ScheduledFor: h.ScheduledFor,
		RecordedAt:   h.RecordedAt,
		Auto:         h.Auto,
	}
}

func (r *historyRecord) toDomain() *domain.HistoryEntry {
	return &domain.HistoryEntry{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		SlotID:       r.SlotID,
		UserID:       r.UserID,
		Action:       domain.HistoryAction(r.Action),
		ScheduledFor: r.ScheduledFor,
		RecordedAt:   r.RecordedAt,
		Auto:         r.Auto,
	}
}
