package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/tracing"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/materialize"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/recurrence"
)

type Store interface {
	domain.MedicationRepository
	domain.SlotRepository
	domain.NotificationRepository
}

// Service owns every transition of a scheduled notification other than delivery, and the
// schedule edits that cascade into them.
type Service struct {
	store        Store
	materializer *materialize.Service
	clock        domain.Clock
	metrics      *metrics.ScheduleMetrics
}

func NewService(
	store Store,
	materializer *materialize.Service,
	clock domain.Clock,
	scheduleMetrics *metrics.ScheduleMetrics,
) *Service {
	return &Service{
		store:        store,
		materializer: materializer,
		clock:        clock,
		metrics:      scheduleMetrics,
	}
}

func (s *Service) cancelAll(ctx context.Context, notifications []*domain.ScheduledNotification, reason string) CancelResult {
	result := CancelResult{Attempted: len(notifications)}
	now := s.clock.Now()

	for _, n := range notifications {
		transition, err := n.Cancel(reason, now)
		if err != nil {
			result.Failed++
			continue
		}
		applied, err := s.store.TransitionNotification(ctx, transition)
		if err != nil {
			slog.WarnContext(ctx, "failed to cancel notification",
				slog.String("notification_id", n.ID.String()),
				slog.String("reason", reason),
				slog.String("error", err.Error()),
			)
			result.Failed++
			continue
		}
		if !applied {
			// resolved concurrently by a sweep
			continue
		}
		result.Cancelled++
	}

	if s.metrics != nil {
		s.metrics.RecordCancelled(ctx, reason, result.Cancelled)
	}
	if result.Failed > 0 {
		slog.WarnContext(ctx, "bulk cancellation incomplete",
			slog.String("reason", reason),
			slog.Int("attempted_count", result.Attempted),
			slog.Int("cancelled_count", result.Cancelled),
			slog.Int("failed_count", result.Failed),
		)
	}
	return result
}

// CreateMedication validates and stores a medication, derives its slots from the frequency and
// schedules them. Nothing is stored when the input is invalid or the owner's settings cannot
// be loaded.
func (s *Service) CreateMedication(ctx context.Context, input MedicationInput) (*CreateResult, error) {
	ctx, span := tracing.StartLifecycleSpan(ctx, "create_medication", input.UserID.String())
	defer span.End()

	freq, err := domain.ParseFrequency(input.Frequency)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	now := s.clock.Now()
	med := &domain.Medication{
		ID:            uuid.New(),
		UserID:        input.UserID,
		Name:          input.Name,
		Frequency:     freq,
		StartTime:     input.StartTime,
		IntervalHours: input.IntervalHours,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := med.Validate(); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	slots, err := recurrence.ForMedication(med, now)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	userSettings, err := s.materializer.OwnerSettings(ctx, med.UserID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if err := s.store.CreateMedication(ctx, med); err != nil {
		err = fmt.Errorf("create medication: %w", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	created := make([]*domain.RecurringSlot, 0, len(slots))
	for _, slot := range slots {
		if err := s.store.CreateSlot(ctx, slot); err != nil {
			slog.WarnContext(ctx, "failed to create derived slot",
				slog.String("medication_id", med.ID.String()),
				slog.String("time", slot.Time.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		created = append(created, slot)
	}

	matResult := s.materializer.MaterializeSlotsWith(ctx, med, created, userSettings)
	tracing.RecordError(span, nil)

	slog.InfoContext(ctx, "medication created",
		slog.String("medication_id", med.ID.String()),
		slog.String("frequency", freq.String()),
		slog.Int("slot_count", len(created)),
		slog.Int("created_count", matResult.Created),
	)

	return &CreateResult{
		Medication:  med,
		Slots:       created,
		Materialize: matResult,
	}, nil
}

// CancelAllForMedication cancels every still-scheduled notification of a medication.
func (s *Service) CancelAllForMedication(ctx context.Context, medicationID uuid.UUID) (*CancelResult, error) {
	return s.cancelForMedication(ctx, medicationID, domain.ReasonCancelledByUser)
}

func (s *Service) cancelForMedication(ctx context.Context, medicationID uuid.UUID, reason string) (*CancelResult, error) {
	if _, err := s.store.GetMedication(ctx, medicationID); err != nil {
		return nil, err
	}

	scheduled, err := s.store.ListScheduledForMedication(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("list scheduled notifications: %w", err)
	}

	result := s.cancelAll(ctx, scheduled, reason)
	return &result, nil
}

// CancelForSlot cancels every still-scheduled notification of a slot.
func (s *Service) CancelForSlot(ctx context.Context, slotID uuid.UUID, reason string) (*CancelResult, error) {
	scheduled, err := s.store.ListScheduledForSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("list scheduled notifications: %w", err)
	}

	result := s.cancelAll(ctx, scheduled, reason)
	return &result, nil
}

// CancelNotification cancels one notification. Terminal notifications are rejected with
// ErrInvalidTransition.
func (s *Service) CancelNotification(ctx context.Context, id uuid.UUID) (*domain.ScheduledNotification, error) {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}

	transition, err := n.Cancel(domain.ReasonCancelledByUser, s.clock.Now())
	if err != nil {
		return nil, err
	}

	applied, err := s.store.TransitionNotification(ctx, transition)
	if err != nil {
		return nil, fmt.Errorf("cancel notification: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: notification resolved concurrently", domain.ErrInvalidTransition)
	}

	if s.metrics != nil {
		s.metrics.RecordCancelled(ctx, domain.ReasonCancelledByUser, 1)
	}
	return n, nil
}

// RescheduleForMedication cancels the medication's scheduled notifications, replaces its
// auto-generated slots with freshly derived ones, and materializes every active slot.
// Custom slots are kept, and so are auto slots whose time, weekdays and day offset are
// derived again unchanged, along with their history.
func (s *Service) RescheduleForMedication(ctx context.Context, medicationID uuid.UUID) (*RescheduleResult, error) {
	ctx, span := tracing.StartLifecycleSpan(ctx, "reschedule", medicationID.String())
	defer span.End()

	med, err := s.store.GetMedication(ctx, medicationID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// Input validation and settings loading happen before anything is cancelled.
	derived, err := recurrence.ForMedication(med, s.clock.Now())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	userSettings, err := s.materializer.OwnerSettings(ctx, med.UserID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	existing, err := s.store.ListSlots(ctx, medicationID)
	if err != nil {
		err = fmt.Errorf("list slots: %w", err)
		tracing.RecordError(span, err)
		return nil, err
	}
	keep, fresh := matchAutoSlots(existing, derived)

	cancelResult, err := s.cancelForMedication(ctx, medicationID, domain.ReasonRescheduled)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	removed, err := s.store.DeleteAutoSlots(ctx, medicationID, keep...)
	if err != nil {
		err = fmt.Errorf("delete auto slots: %w", err)
		tracing.RecordError(span, err)
		return nil, err
	}

	created := 0
	for _, slot := range fresh {
		if err := s.store.CreateSlot(ctx, slot); err != nil {
			slog.WarnContext(ctx, "failed to create derived slot",
				slog.String("medication_id", medicationID.String()),
				slog.String("time", slot.Time.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		created++
	}

	active, err := s.store.ListActiveSlots(ctx, medicationID)
	if err != nil {
		err = fmt.Errorf("list active slots: %w", err)
		tracing.RecordError(span, err)
		return nil, err
	}
	matResult := s.materializer.MaterializeSlotsWith(ctx, med, active, userSettings)

	tracing.RecordError(span, nil)
	slog.InfoContext(ctx, "medication rescheduled",
		slog.String("medication_id", medicationID.String()),
		slog.Int("cancelled_count", cancelResult.Cancelled),
		slog.Int("auto_slots_kept", len(keep)),
		slog.Int("auto_slots_removed", removed),
		slog.Int("auto_slots_created", created),
		slog.Int("created_count", matResult.Created),
	)

	return &RescheduleResult{
		MedicationID:     medicationID,
		Cancel:           *cancelResult,
		AutoSlotsKept:    len(keep),
		AutoSlotsRemoved: removed,
		AutoSlotsCreated: created,
		Materialize:      matResult,
	}, nil
}

// matchAutoSlots pairs each derived slot with a stored auto slot of the same recurrence. It
// returns the ids of the stored slots to keep and the derived slots that have no match.
func matchAutoSlots(existing, derived []*domain.RecurringSlot) ([]uuid.UUID, []*domain.RecurringSlot) {
	var keep []uuid.UUID
	var fresh []*domain.RecurringSlot
	used := make(map[uuid.UUID]bool)

	for _, d := range derived {
		matched := false
		for _, e := range existing {
			if e.Source != domain.SlotSourceAuto || used[e.ID] {
				continue
			}
			if e.Time == d.Time && e.DayOffset == d.DayOffset && e.Weekdays.Equal(d.Weekdays) {
				used[e.ID] = true
				keep = append(keep, e.ID)
				matched = true
				break
			}
		}
		if !matched {
			fresh = append(fresh, d)
		}
	}
	return keep, fresh
}

// UpdateMedication applies patch and reschedules the medication. An invalid patch is rejected
// before anything is stored or cancelled.
func (s *Service) UpdateMedication(ctx context.Context, medicationID uuid.UUID, patch MedicationPatch) (*RescheduleResult, error) {
	med, err := s.store.GetMedication(ctx, medicationID)
	if err != nil {
		return nil, err
	}

	updated := *med
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Frequency != nil {
		freq, err := domain.ParseFrequency(*patch.Frequency)
		if err != nil {
			return nil, err
		}
		updated.Frequency = freq
	}
	if patch.StartTime != nil {
		updated.StartTime = *patch.StartTime
	}
	if patch.IntervalHours != nil {
		updated.IntervalHours = *patch.IntervalHours
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if _, err := recurrence.Derive(updated.Frequency, updated.StartTime, updated.IntervalHours); err != nil {
		return nil, err
	}

	updated.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateMedication(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}

	return s.RescheduleForMedication(ctx, medicationID)
}

// DeleteMedication removes a medication with its notifications, slots and history in one
// transaction.
func (s *Service) DeleteMedication(ctx context.Context, medicationID uuid.UUID) (*domain.CascadeResult, error) {
	ctx, span := tracing.StartLifecycleSpan(ctx, "delete_medication", medicationID.String())
	defer span.End()

	result, err := s.store.DeleteMedicationCascade(ctx, medicationID, s.clock.Now())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	tracing.RecordError(span, nil)

	if s.metrics != nil {
		s.metrics.RecordCancelled(ctx, domain.ReasonMedicationDeleted, result.NotificationsCancelled)
	}
	slog.InfoContext(ctx, "medication deleted",
		slog.String("medication_id", medicationID.String()),
		slog.Int("notifications_cancelled", result.NotificationsCancelled),
		slog.Int("slots_deleted", result.SlotsDeleted),
		slog.Int("history_deleted", result.HistoryDeleted),
	)
	return result, nil
}

// CreateCustomSlot stores a user-defined slot and schedules it right away.
func (s *Service) CreateCustomSlot(ctx context.Context, medicationID uuid.UUID, timeOfDay string, weekdays []string) (*SlotResult, error) {
	var fields []string
	t, err := calendar.ParseTimeOfDay(timeOfDay)
	if err != nil {
		fields = append(fields, "time")
	}
	days, err := calendar.ParseWeekdaySet(weekdays)
	if err != nil {
		fields = append(fields, "weekdays")
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("invalid custom slot", fields...)
	}

	med, err := s.store.GetMedication(ctx, medicationID)
	if err != nil {
		return nil, err
	}

	slot := &domain.RecurringSlot{
		ID:           uuid.New(),
		MedicationID: medicationID,
		Time:         t,
		Weekdays:     days,
		Active:       true,
		Source:       domain.SlotSourceCustom,
		CreatedAt:    s.clock.Now(),
	}
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	userSettings, err := s.materializer.OwnerSettings(ctx, med.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	matResult := s.materializer.MaterializeSlotsWith(ctx, med, []*domain.RecurringSlot{slot}, userSettings)
	return &SlotResult{Slot: slot, Materialize: matResult}, nil
}

// SetSlotActive toggles a slot. Deactivation cancels its scheduled notifications;
// reactivation schedules it again.
func (s *Service) SetSlotActive(ctx context.Context, slotID uuid.UUID, active bool) (*SlotResult, error) {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetSlotActive(ctx, slotID, active); err != nil {
		return nil, fmt.Errorf("set slot active: %w", err)
	}
	slot.Active = active

	if !active {
		cancelResult, err := s.CancelForSlot(ctx, slotID, domain.ReasonSlotDeactivated)
		if err != nil {
			return nil, err
		}
		return &SlotResult{Slot: slot, Cancel: cancelResult}, nil
	}

	med, err := s.store.GetMedication(ctx, slot.MedicationID)
	if err != nil {
		return nil, err
	}
	matResult, err := s.materializer.MaterializeSlots(ctx, med, []*domain.RecurringSlot{slot})
	if err != nil {
		return nil, err
	}
	return &SlotResult{Slot: slot, Materialize: matResult}, nil
}
