package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

// Store implements domain.Store on Postgres through gorm.
type Store struct {
	db *gorm.DB
}

var _ domain.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateMedication(ctx context.Context, med *domain.Medication) error {
	return s.db.WithContext(ctx).Create(toMedicationRecord(med)).Error
}

func (s *Store) UpdateMedication(ctx context.Context, med *domain.Medication) error {
	result := s.db.WithContext(ctx).
		Model(&medicationRecord{}).
		Where("id = ?", med.ID).
		Updates(map[string]any{
			"name":           med.Name,
			"frequency":      med.Frequency.String(),
			"start_time":     med.StartTime,
			"interval_hours": med.IntervalHours,
			"updated_at":     med.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrMedicationNotFound
	}
	return nil
}

func (s *Store) GetMedication(ctx context.Context, id uuid.UUID) (*domain.Medication, error) {
	var record medicationRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMedicationNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// DeleteMedicationCascade runs in one transaction: notifications are cancelled, then slots,
// history and the medication are deleted.
func (s *Store) DeleteMedicationCascade(ctx context.Context, id uuid.UUID, at time.Time) (*domain.CascadeResult, error) {
	result := &domain.CascadeResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var med medicationRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&med, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMedicationNotFound
			}
			return err
		}

		cancelled := tx.Model(&notificationRecord{}).
			Where("medication_id = ? AND status = ?", id, domain.NotificationStatusScheduled.String()).
			Updates(map[string]any{
				"status":      domain.NotificationStatusCancelled.String(),
				"reason":      domain.ReasonMedicationDeleted,
				"resolved_at": at,
			})
		if cancelled.Error != nil {
			return fmt.Errorf("cancel notifications: %w", cancelled.Error)
		}
		result.NotificationsCancelled = int(cancelled.RowsAffected)

		slots := tx.Where("medication_id = ?", id).Delete(&slotRecord{})
		if slots.Error != nil {
			return fmt.Errorf("delete slots: %w", slots.Error)
		}
		result.SlotsDeleted = int(slots.RowsAffected)

		history := tx.Where("medication_id = ?", id).Delete(&historyRecord{})
		if history.Error != nil {
			return fmt.Errorf("delete history: %w", history.Error)
		}
		result.HistoryDeleted = int(history.RowsAffected)

		if err := tx.Delete(&medicationRecord{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete medication: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateSlot(ctx context.Context, slot *domain.RecurringSlot) error {
	return s.db.WithContext(ctx).Create(toSlotRecord(slot)).Error
}

func (s *Store) GetSlot(ctx context.Context, id uuid.UUID) (*domain.RecurringSlot, error) {
	var record slotRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}
	return record.toDomain()
}

func (s *Store) listSlots(ctx context.Context, query *gorm.DB) ([]*domain.RecurringSlot, error) {
	var records []slotRecord
	if err := query.WithContext(ctx).Order("day_offset, time_of_day, id").Find(&records).Error; err != nil {
		return nil, err
	}
	slots := make([]*domain.RecurringSlot, 0, len(records))
	for i := range records {
		slot, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (s *Store) ListSlots(ctx context.Context, medicationID uuid.UUID) ([]*domain.RecurringSlot, error) {
	return s.listSlots(ctx, s.db.Where("medication_id = ?", medicationID))
}

func (s *Store) ListActiveSlots(ctx context.Context, medicationID uuid.UUID) ([]*domain.RecurringSlot, error) {
	return s.listSlots(ctx, s.db.Where("medication_id = ? AND active", medicationID))
}

func (s *Store) DeleteAutoSlots(ctx context.Context, medicationID uuid.UUID, keep ...uuid.UUID) (int, error) {
	query := s.db.WithContext(ctx).
		Where("medication_id = ? AND source = ?", medicationID, string(domain.SlotSourceAuto))
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	result := query.Delete(&slotRecord{})
	return int(result.RowsAffected), result.Error
}

func (s *Store) SetSlotActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := s.db.WithContext(ctx).Model(&slotRecord{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func (s *Store) CreateNotification(ctx context.Context, n *domain.ScheduledNotification) error {
	err := s.db.WithContext(ctx).Create(toNotificationRecord(n)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateNotification
	}
	return err
}

func (s *Store) HasActiveNotification(ctx context.Context, slotID uuid.UUID, doseDay string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&notificationRecord{}).
		Where("slot_id = ? AND dose_day = ? AND status <> ?", slotID, doseDay, domain.NotificationStatusCancelled.String()).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) GetNotification(ctx context.Context, id uuid.UUID) (*domain.ScheduledNotification, error) {
	var record notificationRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *Store) ListDueNotifications(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledNotification, error) {
	var records []notificationRecord
	query := s.db.WithContext(ctx).
		Where("status = ? AND send_at <= ?", domain.NotificationStatusScheduled.String(), now).
		Order("send_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return notificationsToDomain(records), nil
}

func (s *Store) listScheduled(ctx context.Context, column string, id uuid.UUID) ([]*domain.ScheduledNotification, error) {
	var records []notificationRecord
	err := s.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", id, domain.NotificationStatusScheduled.String()).
		Order("send_at, id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return notificationsToDomain(records), nil
}

func (s *Store) ListScheduledForMedication(ctx context.Context, medicationID uuid.UUID) ([]*domain.ScheduledNotification, error) {
	return s.listScheduled(ctx, "medication_id", medicationID)
}

func (s *Store) ListScheduledForSlot(ctx context.Context, slotID uuid.UUID) ([]*domain.ScheduledNotification, error) {
	return s.listScheduled(ctx, "slot_id", slotID)
}

func (s *Store) TransitionNotification(ctx context.Context, t domain.StatusTransition) (bool, error) {
	result := s.db.WithContext(ctx).Model(&notificationRecord{}).
		Where("id = ? AND status = ?", t.NotificationID, domain.NotificationStatusScheduled.String()).
		Updates(map[string]any{
			"status":      t.To.String(),
			"ticket_id":   t.TicketID,
			"reason":      t.Reason,
			"resolved_at": t.At,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*domain.ReminderSettings, error) {
	var record settingsRecord
	if err := s.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return record.toDomain()
}

func (s *Store) SaveSettings(ctx context.Context, settings *domain.ReminderSettings) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(toSettingsRecord(settings)).Error
}

func (s *Store) RecordHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	return s.db.WithContext(ctx).Create(toHistoryRecord(entry)).Error
}

func (s *Store) LatestHistoryForSlot(ctx context.Context, slotID uuid.UUID, from, to time.Time) (*domain.HistoryEntry, error) {
	var record historyRecord
	err := s.db.WithContext(ctx).
		Where("slot_id = ? AND scheduled_for >= ? AND scheduled_for < ?", slotID, from, to).
		Order("recorded_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// RecordMissedIfAbsent inserts entry in a single statement guarded by NOT EXISTS; the partial
// unique index on auto entries settles concurrent writers.
func (s *Store) RecordMissedIfAbsent(ctx context.Context, entry *domain.HistoryEntry, from, to time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Exec(`
INSERT INTO history_entries (id, medication_id, slot_id, user_id, action, scheduled_for, recorded_at, auto)
SELECT ?, ?, ?, ?, ?, ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM history_entries WHERE slot_id = ? AND scheduled_for >= ? AND scheduled_for < ?
)
ON CONFLICT DO NOTHING`,
		entry.ID, entry.MedicationID, entry.SlotID, entry.UserID, string(entry.Action),
		entry.ScheduledFor, entry.RecordedAt, entry.Auto,
		entry.SlotID, from, to,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SaveDevice registers a push token, moving it to the new owner when it is already known.
func (s *Store) SaveDevice(ctx context.Context, device *domain.Device) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "push_token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform"}),
		}).
		Create(&deviceRecord{
			ID:        device.ID,
			UserID:    device.UserID,
			PushToken: device.PushToken,
			Platform:  device.Platform,
			CreatedAt: device.CreatedAt,
		}).Error
}

func (s *Store) ListPushTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	tokens := []string{}
	err := s.db.WithContext(ctx).Model(&deviceRecord{}).
		Where("user_id = ? AND push_token <> ''", userID).
		Order("created_at, id").
		Pluck("push_token", &tokens).Error
	return tokens, err
}
