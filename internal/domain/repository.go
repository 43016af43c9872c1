package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MedicationRepository interface {
	CreateMedication(ctx context.Context, med *Medication) error
	// UpdateMedication stores name, frequency, start time and interval; it returns
	// ErrMedicationNotFound for unknown ids.
	UpdateMedication(ctx context.Context, med *Medication) error
	GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error)
	// DeleteMedicationCascade cancels scheduled notifications, then deletes slots, history and
	// the medication itself, atomically.
	DeleteMedicationCascade(ctx context.Context, id uuid.UUID, at time.Time) (*CascadeResult, error)
}

type SlotRepository interface {
	CreateSlot(ctx context.Context, slot *RecurringSlot) error
	GetSlot(ctx context.Context, id uuid.UUID) (*RecurringSlot, error)
	ListSlots(ctx context.Context, medicationID uuid.UUID) ([]*RecurringSlot, error)
	ListActiveSlots(ctx context.Context, medicationID uuid.UUID) ([]*RecurringSlot, error)
	// DeleteAutoSlots removes the medication's auto-generated slots except those in keep.
	DeleteAutoSlots(ctx context.Context, medicationID uuid.UUID, keep ...uuid.UUID) (int, error)
	SetSlotActive(ctx context.Context, id uuid.UUID, active bool) error
}

type NotificationRepository interface {
	// CreateNotification returns ErrDuplicateNotification when a non-cancelled row already
	// exists for the same slot and dose day.
	CreateNotification(ctx context.Context, n *ScheduledNotification) error
	HasActiveNotification(ctx context.Context, slotID uuid.UUID, doseDay string) (bool, error)
	GetNotification(ctx context.Context, id uuid.UUID) (*ScheduledNotification, error)
	// ListDueNotifications returns scheduled rows with SendAt <= now, oldest first.
	ListDueNotifications(ctx context.Context, now time.Time, limit int) ([]*ScheduledNotification, error)
	ListScheduledForMedication(ctx context.Context, medicationID uuid.UUID) ([]*ScheduledNotification, error)
	ListScheduledForSlot(ctx context.Context, slotID uuid.UUID) ([]*ScheduledNotification, error)
	// TransitionNotification applies t only while the row is still scheduled and reports
	// whether it did.
	TransitionNotification(ctx context.Context, t StatusTransition) (bool, error)
}

type SettingsRepository interface {
	// GetSettings returns ErrSettingsNotFound for users that never saved settings.
	GetSettings(ctx context.Context, userID uuid.UUID) (*ReminderSettings, error)
	SaveSettings(ctx context.Context, settings *ReminderSettings) error
}

type HistoryRepository interface {
	RecordHistory(ctx context.Context, entry *HistoryEntry) error
	// LatestHistoryForSlot returns the most recently recorded entry scheduled within
	// [from, to), or nil.
	LatestHistoryForSlot(ctx context.Context, slotID uuid.UUID, from, to time.Time) (*HistoryEntry, error)
	// RecordMissedIfAbsent stores entry only when the slot has no entry in [from, to).
	RecordMissedIfAbsent(ctx context.Context, entry *HistoryEntry, from, to time.Time) (bool, error)
}

type DeviceRepository interface {
	SaveDevice(ctx context.Context, device *Device) error
	ListPushTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Store is the relational persistence the scheduling engine runs on.
type Store interface {
	MedicationRepository
	SlotRepository
	NotificationRepository
	SettingsRepository
	HistoryRepository
	DeviceRepository
}
