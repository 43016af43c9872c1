package materialize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/recurrence"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
	"github.com/KasumiMercury/primind-dose-reminder/internal/testutil"
)

// 2025-01-06 is a Monday.
var monday0700 = time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC)

func seedMedication(t *testing.T, store *testutil.MemStore, freq domain.Frequency, start string, interval int, now time.Time) (*domain.Medication, []*domain.RecurringSlot) {
	t.Helper()
	ctx := context.Background()

	med := &domain.Medication{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Amoxicillin",
		Frequency:     freq,
		StartTime:     start,
		IntervalHours: interval,
	}
	if err := store.CreateMedication(ctx, med); err != nil {
		t.Fatalf("failed to seed medication: %v", err)
	}

	slots, err := recurrence.ForMedication(med, now)
	if err != nil {
		t.Fatalf("failed to derive slots: %v", err)
	}
	for _, s := range slots {
		if err := store.CreateSlot(ctx, s); err != nil {
			t.Fatalf("failed to seed slot: %v", err)
		}
	}
	return med, slots
}

func newTestService(store *testutil.MemStore, clock domain.Clock) *Service {
	return NewService(store, settings.NewService(store, clock, "UTC"), clock, Config{}, nil)
}

func TestInstants_ThreeTimesADayOverSevenDays(t *testing.T) {
	slots, err := recurrence.ForMedication(&domain.Medication{
		ID:            uuid.New(),
		Frequency:     domain.FrequencyThreeTimesADay,
		StartTime:     "08:00",
		IntervalHours: 8,
	}, monday0700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := Instants(slots, 7, 10, monday0700, time.UTC)

	if len(got) != 21 {
		t.Fatalf("got %d instants, want 21", len(got))
	}
	seen := make(map[string]bool)
	for _, occ := range got {
		if !occ.DoseAt.After(monday0700) {
			t.Errorf("instant %v is not after now", occ.DoseAt)
		}
		key := occ.Slot.ID.String() + occ.DoseDay
		if seen[key] {
			t.Errorf("duplicate slot/day %s", key)
		}
		seen[key] = true
	}
}

func TestInstants(t *testing.T) {
	everyDay := &domain.RecurringSlot{
		ID:       uuid.New(),
		Time:     calendar.MustParseTimeOfDay("08:00"),
		Weekdays: calendar.AllWeekdays(),
		Active:   true,
	}
	mondayOnly := &domain.RecurringSlot{
		ID:       uuid.New(),
		Time:     calendar.MustParseTimeOfDay("09:00"),
		Weekdays: calendar.NewWeekdaySet(calendar.Monday),
		Active:   true,
	}
	inactive := &domain.RecurringSlot{
		ID:       uuid.New(),
		Time:     calendar.MustParseTimeOfDay("10:00"),
		Weekdays: calendar.AllWeekdays(),
		Active:   false,
	}

	tests := []struct {
		name    string
		slots   []*domain.RecurringSlot
		horizon int
		cap     int
		now     time.Time
		want    int
	}{
		{name: "every day", slots: []*domain.RecurringSlot{everyDay}, horizon: 7, cap: 10, now: monday0700, want: 7},
		{name: "past instant today skipped", slots: []*domain.RecurringSlot{everyDay}, horizon: 7, cap: 10, now: monday0700.Add(2 * time.Hour), want: 6},
		{name: "instant equal to now skipped", slots: []*domain.RecurringSlot{everyDay}, horizon: 7, cap: 10, now: monday0700.Add(time.Hour), want: 6},
		{name: "weekday filter", slots: []*domain.RecurringSlot{mondayOnly}, horizon: 14, cap: 10, now: monday0700, want: 2},
		{name: "inactive ignored", slots: []*domain.RecurringSlot{inactive}, horizon: 7, cap: 10, now: monday0700, want: 0},
		{name: "per slot cap", slots: []*domain.RecurringSlot{everyDay}, horizon: 30, cap: 10, now: monday0700, want: 10},
		{name: "zero horizon", slots: []*domain.RecurringSlot{everyDay}, horizon: 0, cap: 10, now: monday0700, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Instants(tt.slots, tt.horizon, tt.cap, tt.now, time.UTC)
			if len(got) != tt.want {
				t.Errorf("got %d instants, want %d", len(got), tt.want)
			}
		})
	}
}

func TestInstants_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	slot := &domain.RecurringSlot{
		ID:       uuid.New(),
		Time:     calendar.MustParseTimeOfDay("08:00"),
		Weekdays: calendar.NewWeekdaySet(calendar.Tuesday),
		Active:   true,
	}
	// Monday 23:30 UTC is already Tuesday 08:30 in Tokyo, so the first dose is next week.
	now := time.Date(2025, 1, 6, 23, 30, 0, 0, time.UTC)

	got := Instants([]*domain.RecurringSlot{slot}, 8, 10, now, tokyo)
	if len(got) != 1 {
		t.Fatalf("got %d instants, want 1", len(got))
	}
	if got[0].DoseDay != "2025-01-14" {
		t.Errorf("DoseDay = %s, want 2025-01-14", got[0].DoseDay)
	}
}

func TestService_MaterializeEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(monday0700)
	med, _ := seedMedication(t, store, domain.FrequencyThreeTimesADay, "08:00", 8, monday0700)

	result, err := newTestService(store, clock).MaterializeMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Created != 21 {
		t.Errorf("Created = %d, want 21", result.Created)
	}
	if got := store.CountByStatus(domain.NotificationStatusScheduled); got != 21 {
		t.Errorf("scheduled rows = %d, want 21", got)
	}
	for _, n := range store.Notifications() {
		if !n.DoseAt.After(monday0700) {
			t.Errorf("dose %v not in the future", n.DoseAt)
		}
		if !n.SendAt.Equal(n.DoseAt.Add(-15 * time.Minute)) {
			t.Errorf("SendAt = %v, want dose minus default lead", n.SendAt)
		}
		if n.UserID != med.UserID || n.MedicationID != med.ID {
			t.Errorf("notification not bound to medication owner: %+v", n)
		}
	}
}

func TestService_MaterializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(monday0700)
	med, _ := seedMedication(t, store, domain.FrequencyTwiceADay, "08:00", 12, monday0700)
	svc := newTestService(store, clock)

	first, err := svc.MaterializeMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.MaterializeMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Created != 14 {
		t.Errorf("first.Created = %d, want 14", first.Created)
	}
	if second.Created != 0 || second.Duplicates != first.Created {
		t.Errorf("second run = %+v, want 0 created and %d duplicates", second, first.Created)
	}
	if got := len(store.Notifications()); got != 14 {
		t.Errorf("stored rows = %d, want 14", got)
	}
}

func TestService_MaterializeAfterCancelRecreates(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(monday0700)
	med, _ := seedMedication(t, store, domain.FrequencyDaily, "08:00", 0, monday0700)
	svc := newTestService(store, clock)

	if _, err := svc.MaterializeMedication(ctx, med.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, n := range store.Notifications() {
		if _, err := store.TransitionNotification(ctx, domain.StatusTransition{
			NotificationID: n.ID,
			To:             domain.NotificationStatusCancelled,
			At:             monday0700,
		}); err != nil {
			t.Fatalf("cancel: %v", err)
		}
	}

	result, err := svc.MaterializeMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 7 {
		t.Errorf("Created = %d, want 7 (cancelled rows do not block)", result.Created)
	}
}

func TestService_MaterializeSuppressesPassedLeadWindow(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	now := monday0700.Add(50 * time.Minute) // 07:50, dose 08:00, lead 15
	clock := testutil.NewFixedClock(now)
	med, _ := seedMedication(t, store, domain.FrequencyDaily, "08:00", 0, now)

	result, err := newTestService(store, clock).MaterializeMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Suppressed != 1 || result.Created != 6 {
		t.Errorf("result = %+v, want 1 suppressed and 6 created", result)
	}
}

func TestService_MaterializeAppliesQuietHours(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(monday0700)
	med, _ := seedMedication(t, store, domain.FrequencyDaily, "23:00", 0, monday0700)

	if err := store.SaveSettings(ctx, &domain.ReminderSettings{
		UserID:      med.UserID,
		PushEnabled: true,
		LeadMinutes: 0,
		QuietHours: &calendar.QuietWindow{
			Start: calendar.MustParseTimeOfDay("22:00"),
			End:   calendar.MustParseTimeOfDay("07:00"),
		},
		Timezone: "UTC",
	}); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	if _, err := newTestService(store, clock).MaterializeMedication(ctx, med.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, n := range store.Notifications() {
		if n.DoseAt.Hour() != 23 {
			t.Errorf("DoseAt = %v, dose instant must stay unshifted", n.DoseAt)
		}
		wantSend := n.DoseAt.Add(8 * time.Hour)
		if !n.SendAt.Equal(wantSend) {
			t.Errorf("SendAt = %v, want %v", n.SendAt, wantSend)
		}
	}
}

func TestService_MaterializeCountsStoreFailures(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(monday0700)
	med, slots := seedMedication(t, store, domain.FrequencyTwiceADay, "08:00", 12, monday0700)
	store.ErrCreateForSlot[slots[1].ID] = errors.New("write failed")

	result, err := newTestService(store, clock).MaterializeMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("per-row failures must not fail the call: %v", err)
	}
	if result.Created != 7 || result.Failed != 7 {
		t.Errorf("result = %+v, want 7 created and 7 failed", result)
	}
}

func TestService_MaterializeUnknownMedication(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store, testutil.NewFixedClock(monday0700))

	if _, err := svc.MaterializeMedication(context.Background(), uuid.New()); !errors.Is(err, domain.ErrMedicationNotFound) {
		t.Errorf("error = %v, want ErrMedicationNotFound", err)
	}
}
