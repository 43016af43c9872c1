package dosestatus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
	"github.com/KasumiMercury/primind-dose-reminder/internal/testutil"
)

// 2025-01-15 is a Wednesday.
var today = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *testutil.MemStore
	clock    *testutil.FixedClock
	resolver *Resolver
	med      *domain.Medication
	slot     *domain.RecurringSlot
}

func newFixture(t *testing.T, weekdays calendar.WeekdaySet) *fixture {
	t.Helper()
	ctx := context.Background()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(today)

	med := &domain.Medication{ID: uuid.New(), UserID: uuid.New(), Name: "Levothyroxine", Frequency: domain.FrequencyDaily}
	slot := &domain.RecurringSlot{
		ID:           uuid.New(),
		MedicationID: med.ID,
		Time:         calendar.MustParseTimeOfDay("08:00"),
		Weekdays:     weekdays,
		Active:       true,
		Source:       domain.SlotSourceAuto,
	}
	if err := store.CreateMedication(ctx, med); err != nil {
		t.Fatalf("seed medication: %v", err)
	}
	if err := store.CreateSlot(ctx, slot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	return &fixture{
		store:    store,
		clock:    clock,
		resolver: NewResolver(store, settings.NewService(store, clock, "UTC"), clock),
		med:      med,
		slot:     slot,
	}
}

func TestResolver_MissedDoseIsRecordedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, calendar.AllWeekdays())

	first, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != StatusMissed || !first.AutoRecorded {
		t.Errorf("first = %+v, want missed and auto recorded", first)
	}

	second, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Status != StatusMissed || second.AutoRecorded {
		t.Errorf("second = %+v, want missed without a new record", second)
	}

	history := f.store.History(f.slot.ID)
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history))
	}
	entry := history[0]
	if entry.Action != domain.HistoryActionMissed || !entry.Auto {
		t.Errorf("entry = %+v, want auto missed", entry)
	}
	want := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	if !entry.ScheduledFor.Equal(want) {
		t.Errorf("ScheduledFor = %v, want %v", entry.ScheduledFor, want)
	}
}

func TestResolver_Classification(t *testing.T) {
	doseAt := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		history     []domain.HistoryAction
		want        Status
		wantEntries int
	}{
		{name: "taken", now: today, history: []domain.HistoryAction{domain.HistoryActionTaken}, want: StatusConfirmed, wantEntries: 1},
		{name: "skipped", now: today, history: []domain.HistoryAction{domain.HistoryActionSkipped}, want: StatusMissed, wantEntries: 1},
		{name: "recorded missed", now: today, history: []domain.HistoryAction{domain.HistoryActionMissed}, want: StatusMissed, wantEntries: 1},
		{name: "latest entry wins", now: today, history: []domain.HistoryAction{domain.HistoryActionSkipped, domain.HistoryActionTaken}, want: StatusConfirmed, wantEntries: 2},
		{name: "before dose without entry", now: doseAt.Add(-time.Hour), want: StatusPending},
		{name: "exactly at dose", now: doseAt, want: StatusPending},
		{name: "postponed before dose", now: doseAt.Add(-time.Minute), history: []domain.HistoryAction{domain.HistoryActionPostponed}, want: StatusPending, wantEntries: 1},
		{name: "postponed after dose", now: today, history: []domain.HistoryAction{domain.HistoryActionPostponed}, want: StatusMissed, wantEntries: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, calendar.AllWeekdays())
			f.clock.Set(tt.now)

			for i, action := range tt.history {
				if err := f.store.RecordHistory(ctx, &domain.HistoryEntry{
					ID:           uuid.New(),
					MedicationID: f.med.ID,
					SlotID:       f.slot.ID,
					Action:       action,
					ScheduledFor: doseAt,
					RecordedAt:   doseAt.Add(time.Duration(i) * time.Minute),
				}); err != nil {
					t.Fatalf("seed history: %v", err)
				}
			}

			got, err := f.resolver.Resolve(ctx, f.slot.ID, "2025-01-15")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("Status = %s, want %s", got.Status, tt.want)
			}
			if n := len(f.store.History(f.slot.ID)); n != tt.wantEntries {
				t.Errorf("history entries = %d, want %d", n, tt.wantEntries)
			}
		})
	}
}

func TestResolver_IgnoresHistoryOfOtherDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, calendar.AllWeekdays())

	yesterday := time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC)
	if err := f.store.RecordHistory(ctx, &domain.HistoryEntry{
		ID:           uuid.New(),
		MedicationID: f.med.ID,
		SlotID:       f.slot.ID,
		Action:       domain.HistoryActionTaken,
		ScheduledFor: yesterday,
		RecordedAt:   yesterday,
	}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	got, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusMissed {
		t.Errorf("Status = %s, want missed", got.Status)
	}
}

func TestResolver_NotDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, calendar.NewWeekdaySet(calendar.Monday))

	got, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusNotDue || got.DoseAt != nil {
		t.Errorf("got %+v, want not_due without dose", got)
	}
	if n := len(f.store.History(f.slot.ID)); n != 0 {
		t.Errorf("history entries = %d, want 0", n)
	}

	monday, err := f.resolver.Resolve(ctx, f.slot.ID, "2025-01-13")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if monday.Status != StatusMissed {
		t.Errorf("Monday status = %s, want missed", monday.Status)
	}
}

func TestResolver_UsesOwnerTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	ctx := context.Background()
	f := newFixture(t, calendar.AllWeekdays())
	if _, err := settings.NewService(f.store, f.clock, "UTC").Update(ctx, f.med.UserID, domain.SettingsPatch{
		Timezone: ptr("Asia/Tokyo"),
	}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	// 2025-01-14 22:30 UTC is 07:30 on the 15th in Tokyo, before the 08:00 dose
	f.clock.Set(time.Date(2025, 1, 14, 22, 30, 0, 0, time.UTC))

	got, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day != "2025-01-15" || got.Status != StatusPending {
		t.Errorf("got day %s status %s, want 2025-01-15 pending", got.Day, got.Status)
	}
	want := time.Date(2025, 1, 15, 8, 0, 0, 0, tokyo)
	if got.DoseAt == nil || !got.DoseAt.Equal(want) {
		t.Errorf("DoseAt = %v, want %v", got.DoseAt, want)
	}
}

func TestResolver_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, calendar.AllWeekdays())

	if _, err := f.resolver.Resolve(ctx, uuid.New(), ""); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Errorf("unknown slot error = %v, want ErrSlotNotFound", err)
	}
	if _, err := f.resolver.Resolve(ctx, f.slot.ID, "15/01/2025"); !domain.IsValidationError(err) {
		t.Errorf("bad day error = %v, want ValidationError", err)
	}
}

func TestResolver_RecordAction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, calendar.AllWeekdays())

	if _, err := f.resolver.RecordAction(ctx, f.slot.ID, "", domain.HistoryActionTaken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusConfirmed || got.AutoRecorded {
		t.Errorf("got %+v, want confirmed", got)
	}

	if _, err := f.resolver.RecordAction(ctx, f.slot.ID, "", "forgotten"); !domain.IsValidationError(err) {
		t.Errorf("unknown action error = %v, want ValidationError", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestResolver_SlotRolledPastMidnight(t *testing.T) {
	ctx := context.Background()
	// Tuesday dosing day, landing at 00:00 on Wednesday
	f := newFixture(t, calendar.NewWeekdaySet(calendar.Tuesday))
	f.slot.Time = calendar.MustParseTimeOfDay("00:00")
	f.slot.DayOffset = 1
	if err := f.store.CreateSlot(ctx, f.slot); err != nil {
		t.Fatalf("update slot: %v", err)
	}

	wantDoseAt := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	res, err := f.resolver.Resolve(ctx, f.slot.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Day != "2025-01-15" || res.DoseAt == nil || !res.DoseAt.Equal(wantDoseAt) {
		t.Fatalf("resolution = %+v, want today's 00:00 dose", res)
	}
	if res.Status != StatusMissed || !res.AutoRecorded {
		t.Errorf("status = %s (auto %v), want missed and auto recorded", res.Status, res.AutoRecorded)
	}

	if _, err := f.resolver.Resolve(ctx, f.slot.ID, "2025-01-15"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	history := f.store.History(f.slot.ID)
	if len(history) != 1 || !history[0].ScheduledFor.Equal(wantDoseAt) {
		t.Errorf("history = %+v, want one entry for %v", history, wantDoseAt)
	}

	tuesday, err := f.resolver.Resolve(ctx, f.slot.ID, "2025-01-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tuesday.Status != StatusNotDue {
		t.Errorf("tuesday status = %s, want not_due", tuesday.Status)
	}

	entry, err := f.resolver.RecordAction(ctx, f.slot.ID, "2025-01-22", domain.HistoryActionTaken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC); !entry.ScheduledFor.Equal(want) {
		t.Errorf("ScheduledFor = %v, want %v", entry.ScheduledFor, want)
	}
}
