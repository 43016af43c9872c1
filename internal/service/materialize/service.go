package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/tracing"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/reminder"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
)

const (
	DefaultHorizonDays = 7
	DefaultPerSlotCap  = 10
)

type Config struct {
	HorizonDays int
	PerSlotCap  int
}

type Store interface {
	domain.MedicationRepository
	domain.SlotRepository
	domain.NotificationRepository
}

type Service struct {
	store    Store
	settings *settings.Service
	clock    domain.Clock
	cfg      Config
	metrics  *metrics.ScheduleMetrics
}

func NewService(
	store Store,
	settingsService *settings.Service,
	clock domain.Clock,
	cfg Config,
	scheduleMetrics *metrics.ScheduleMetrics,
) *Service {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	if cfg.PerSlotCap <= 0 {
		cfg.PerSlotCap = DefaultPerSlotCap
	}
	return &Service{
		store:    store,
		settings: settingsService,
		clock:    clock,
		cfg:      cfg,
		metrics:  scheduleMetrics,
	}
}

// MaterializeMedication schedules the upcoming doses of every active slot of a medication.
// Re-running it never duplicates a (slot, dose day) pair.
func (s *Service) MaterializeMedication(ctx context.Context, medicationID uuid.UUID) (*Result, error) {
	med, err := s.store.GetMedication(ctx, medicationID)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.ListActiveSlots(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("list active slots: %w", err)
	}

	return s.MaterializeSlots(ctx, med, slots)
}

// MaterializeSlots schedules the upcoming doses of the given slots of med. Per-instant store
// failures are logged and counted; only loading the owner's settings fails the call.
func (s *Service) MaterializeSlots(ctx context.Context, med *domain.Medication, slots []*domain.RecurringSlot) (*Result, error) {
	userSettings, err := s.OwnerSettings(ctx, med.UserID)
	if err != nil {
		return nil, err
	}
	return s.MaterializeSlotsWith(ctx, med, slots, userSettings), nil
}

// OwnerSettings loads the reminder settings materialization runs against. Callers that must
// not write anything when the settings are unavailable load them first and pass them to
// MaterializeSlotsWith.
func (s *Service) OwnerSettings(ctx context.Context, userID uuid.UUID) (*domain.ReminderSettings, error) {
	return s.settings.Get(ctx, userID)
}

// MaterializeSlotsWith is MaterializeSlots with the owner's settings already loaded.
func (s *Service) MaterializeSlotsWith(
	ctx context.Context,
	med *domain.Medication,
	slots []*domain.RecurringSlot,
	userSettings *domain.ReminderSettings,
) *Result {
	ctx, span := tracing.StartMaterializeSpan(ctx, med.ID.String(), len(slots))
	defer span.End()

	start := time.Now()
	now := s.clock.Now()
	loc := s.settings.Location(userSettings)

	occurrences := Instants(slots, s.cfg.HorizonDays, s.cfg.PerSlotCap, now, loc)
	result := &Result{MedicationID: med.ID, Candidates: len(occurrences)}

	for _, occ := range occurrences {
		exists, err := s.store.HasActiveNotification(ctx, occ.Slot.ID, occ.DoseDay)
		if err != nil {
			slog.WarnContext(ctx, "failed to check existing notification",
				slog.String("slot_id", occ.Slot.ID.String()),
				slog.String("dose_day", occ.DoseDay),
				slog.String("error", err.Error()),
			)
			result.Failed++
			continue
		}
		if exists {
			result.Duplicates++
			continue
		}

		sendAt, ok := reminder.ForSettings(occ.DoseAt, userSettings, now)
		if !ok {
			slog.DebugContext(ctx, "reminder window already passed",
				slog.String("slot_id", occ.Slot.ID.String()),
				slog.Time("dose_at", occ.DoseAt),
			)
			result.Suppressed++
			continue
		}

		n := domain.NewScheduledNotification(med, occ.Slot, occ.DoseAt, sendAt, now)
		if err := s.store.CreateNotification(ctx, n); err != nil {
			if errors.Is(err, domain.ErrDuplicateNotification) {
				result.Duplicates++
				continue
			}
			slog.WarnContext(ctx, "failed to create notification",
				slog.String("slot_id", occ.Slot.ID.String()),
				slog.String("dose_day", occ.DoseDay),
				slog.String("error", err.Error()),
			)
			result.Failed++
			continue
		}
		result.Created++
		result.Notifications = append(result.Notifications, n)
	}

	if s.metrics != nil {
		s.metrics.RecordInstants(ctx, "created", result.Created)
		s.metrics.RecordInstants(ctx, "duplicate", result.Duplicates)
		s.metrics.RecordInstants(ctx, "suppressed", result.Suppressed)
		s.metrics.RecordInstants(ctx, "failed", result.Failed)
		s.metrics.RecordMaterializeDuration(ctx, time.Since(start))
	}
	tracing.RecordMaterializeResult(span, result.Created, result.Duplicates, result.Suppressed, result.Failed, nil)

	slog.InfoContext(ctx, "medication materialized",
		slog.String("medication_id", med.ID.String()),
		slog.Int("slot_count", len(slots)),
		slog.Int("created_count", result.Created),
		slog.Int("duplicate_count", result.Duplicates),
		slog.Int("suppressed_count", result.Suppressed),
		slog.Int("failed_count", result.Failed),
	)

	return result
}
