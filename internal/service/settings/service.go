package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

type Service struct {
	repo            domain.SettingsRepository
	clock           domain.Clock
	defaultTimezone string
	defaultLocation *time.Location
}

// NewService falls back to UTC when defaultTimezone cannot be loaded.
func NewService(repo domain.SettingsRepository, clock domain.Clock, defaultTimezone string) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil || defaultTimezone == "" {
		if defaultTimezone != "" {
			slog.Warn("unknown default timezone, using UTC",
				slog.String("timezone", defaultTimezone),
			)
		}
		loc = time.UTC
		defaultTimezone = "UTC"
	}

	return &Service{
		repo:            repo,
		clock:           clock,
		defaultTimezone: defaultTimezone,
		defaultLocation: loc,
	}
}

// Get returns the stored settings, or the defaults when the user never saved any.
// Defaults are not persisted.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.ReminderSettings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return domain.DefaultReminderSettings(userID, s.defaultTimezone), nil
		}
		return nil, fmt.Errorf("get reminder settings: %w", err)
	}
	return settings, nil
}

// Update merges patch into the current settings and saves the result, creating the row on
// first write.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, patch domain.SettingsPatch) (*domain.ReminderSettings, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user id is required", "user_id")
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged, err := patch.Apply(current)
	if err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.clock.Now()

	if err := s.repo.SaveSettings(ctx, merged); err != nil {
		return nil, fmt.Errorf("save reminder settings: %w", err)
	}

	slog.InfoContext(ctx, "reminder settings updated",
		slog.String("user_id", userID.String()),
		slog.Bool("push_enabled", merged.PushEnabled),
		slog.Int("lead_minutes", merged.LeadMinutes),
		slog.Bool("quiet_hours", merged.QuietHours != nil),
	)

	return merged, nil
}

// Location resolves the zone schedules of the settings' owner are evaluated in.
func (s *Service) Location(settings *domain.ReminderSettings) *time.Location {
	return settings.Location(s.defaultLocation)
}
