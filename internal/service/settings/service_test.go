package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestService_GetFallsBackToDefaultsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := NewService(store, testutil.NewFixedClock(time.Now()), "Asia/Tokyo")
	userID := uuid.New()

	got, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.PushEnabled || got.EmailEnabled || got.LeadMinutes != 15 || got.QuietHours != nil {
		t.Errorf("unexpected defaults: %+v", got)
	}
	if got.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q, want Asia/Tokyo", got.Timezone)
	}

	if _, err := store.GetSettings(ctx, userID); !errors.Is(err, domain.ErrSettingsNotFound) {
		t.Errorf("defaults were persisted: err = %v", err)
	}
}

func TestService_UpdateCreatesThenMerges(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(store, testutil.NewFixedClock(now), "")
	userID := uuid.New()

	if _, err := svc.Update(ctx, userID, domain.SettingsPatch{
		QuietStart: ptr("22:00"),
		QuietEnd:   ptr("07:00"),
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	got, err := svc.Update(ctx, userID, domain.SettingsPatch{LeadMinutes: ptr(30)})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if got.LeadMinutes != 30 || got.QuietHours == nil || got.Timezone != "UTC" {
		t.Errorf("unexpected merged settings: %+v", got)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}

	stored, err := store.GetSettings(ctx, userID)
	if err != nil {
		t.Fatalf("settings not persisted: %v", err)
	}
	if stored.LeadMinutes != 30 {
		t.Errorf("stored LeadMinutes = %d, want 30", stored.LeadMinutes)
	}
}

func TestService_UpdateRejectsHalfQuietWindow(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := NewService(store, testutil.NewFixedClock(time.Now()), "UTC")
	userID := uuid.New()

	_, err := svc.Update(ctx, userID, domain.SettingsPatch{QuietEnd: ptr("07:00")})
	if !domain.IsValidationError(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if _, err := store.GetSettings(ctx, userID); !errors.Is(err, domain.ErrSettingsNotFound) {
		t.Error("rejected update must not persist anything")
	}
}

func TestService_Location(t *testing.T) {
	svc := NewService(testutil.NewMemStore(), testutil.NewFixedClock(time.Now()), "Not/AZone")

	if got := svc.Location(&domain.ReminderSettings{}); got != time.UTC {
		t.Errorf("Location() = %v, want UTC fallback", got)
	}
	if got := svc.Location(&domain.ReminderSettings{Timezone: "Europe/Berlin"}); got.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, want Europe/Berlin", got)
	}
}
