package dosestatus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusMissed    Status = "missed"
	// StatusNotDue is returned for days outside the slot's weekday set and for inactive slots.
	StatusNotDue Status = "not_due"
)

type Store interface {
	domain.MedicationRepository
	domain.SlotRepository
	domain.HistoryRepository
}

// Resolver reconciles a slot's dose instant against recorded dose actions.
type Resolver struct {
	store    Store
	settings *settings.Service
	clock    domain.Clock
}

func NewResolver(store Store, settingsService *settings.Service, clock domain.Clock) *Resolver {
	return &Resolver{
		store:    store,
		settings: settingsService,
		clock:    clock,
	}
}

type Resolution struct {
	SlotID       uuid.UUID            `json:"slot_id"`
	Day          string               `json:"day"`
	DoseAt       *time.Time           `json:"dose_at,omitempty"`
	Status       Status               `json:"status"`
	Action       domain.HistoryAction `json:"action,omitempty"`
	AutoRecorded bool                 `json:"auto_recorded"`
}

// Resolve classifies the slot's dose on day ("YYYY-MM-DD" in the owner's timezone, empty
// for today). day is the day the dose lands on, so a slot that rolled past midnight is
// matched against the previous dosing day. A dose that has passed with no recorded action is
// recorded as missed once.
func (r *Resolver) Resolve(ctx context.Context, slotID uuid.UUID, day string) (*Resolution, error) {
	slot, med, loc, err := r.load(ctx, slotID)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	calendarDay, err := parseDay(day, now, loc)
	if err != nil {
		return nil, err
	}
	dosingDay := dosingDayFor(slot, calendarDay)

	res := &Resolution{SlotID: slotID, Day: calendarDay.Format(domain.DoseDayLayout)}
	if !slot.Active || !slot.DueOn(dosingDay, loc) {
		res.Status = StatusNotDue
		return res, nil
	}

	doseAt := slot.DoseAt(dosingDay, loc)
	res.DoseAt = &doseAt
	from, to := dayBounds(doseAt)

	latest, err := r.store.LatestHistoryForSlot(ctx, slotID, from, to)
	if err != nil {
		return nil, fmt.Errorf("latest history: %w", err)
	}

	if latest != nil {
		res.Action = latest.Action
		switch latest.Action {
		case domain.HistoryActionTaken:
			res.Status = StatusConfirmed
			return res, nil
		case domain.HistoryActionMissed, domain.HistoryActionSkipped:
			res.Status = StatusMissed
			return res, nil
		}
		// other actions (postponed) do not settle the dose
		res.Status = byTime(doseAt, now)
		return res, nil
	}

	if !now.After(doseAt) {
		res.Status = StatusPending
		return res, nil
	}

	res.Status = StatusMissed
	recorded, err := r.store.RecordMissedIfAbsent(ctx, &domain.HistoryEntry{
		ID:           uuid.New(),
		MedicationID: med.ID,
		SlotID:       slotID,
		UserID:       med.UserID,
		Action:       domain.HistoryActionMissed,
		ScheduledFor: doseAt,
		RecordedAt:   now,
		Auto:         true,
	}, from, to)
	if err != nil {
		// the classification stands, the next read retries the write
		slog.WarnContext(ctx, "failed to record missed dose",
			slog.String("slot_id", slotID.String()),
			slog.Time("dose_at", doseAt),
			slog.String("error", err.Error()),
		)
		return res, nil
	}
	if recorded {
		res.Action = domain.HistoryActionMissed
		res.AutoRecorded = true
		slog.InfoContext(ctx, "missed dose recorded",
			slog.String("slot_id", slotID.String()),
			slog.String("medication_id", med.ID.String()),
			slog.Time("dose_at", doseAt),
		)
	}
	return res, nil
}

// RecordAction stores a user-reported dose action for the slot's dose on day.
func (r *Resolver) RecordAction(ctx context.Context, slotID uuid.UUID, day string, action domain.HistoryAction) (*domain.HistoryEntry, error) {
	if !action.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown action %q", action), "action")
	}

	slot, med, loc, err := r.load(ctx, slotID)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	calendarDay, err := parseDay(day, now, loc)
	if err != nil {
		return nil, err
	}
	dosingDay := dosingDayFor(slot, calendarDay)

	entry := &domain.HistoryEntry{
		ID:           uuid.New(),
		MedicationID: med.ID,
		SlotID:       slotID,
		UserID:       med.UserID,
		Action:       action,
		ScheduledFor: slot.DoseAt(dosingDay, loc),
		RecordedAt:   now,
	}
	if err := r.store.RecordHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("record history: %w", err)
	}
	return entry, nil
}

func (r *Resolver) load(ctx context.Context, slotID uuid.UUID) (*domain.RecurringSlot, *domain.Medication, *time.Location, error) {
	slot, err := r.store.GetSlot(ctx, slotID)
	if err != nil {
		return nil, nil, nil, err
	}
	med, err := r.store.GetMedication(ctx, slot.MedicationID)
	if err != nil {
		return nil, nil, nil, err
	}
	userSettings, err := r.settings.Get(ctx, med.UserID)
	if err != nil {
		return nil, nil, nil, err
	}
	return slot, med, r.settings.Location(userSettings), nil
}

func parseDay(day string, now time.Time, loc *time.Location) (time.Time, error) {
	if day == "" {
		return now.In(loc), nil
	}
	t, err := time.ParseInLocation(domain.DoseDayLayout, day, loc)
	if err != nil {
		return time.Time{}, domain.NewValidationError("day must be YYYY-MM-DD", "day")
	}
	return t, nil
}

// dosingDayFor maps the calendar day a dose lands on back to the dosing day whose weekday set
// applies. Slots that rolled past midnight land DayOffset days after their dosing day.
func dosingDayFor(slot *domain.RecurringSlot, calendarDay time.Time) time.Time {
	return calendarDay.AddDate(0, 0, -slot.DayOffset)
}

// dayBounds returns [00:00, next 00:00) of the calendar day containing t, in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}

func byTime(doseAt, now time.Time) Status {
	if now.After(doseAt) {
		return StatusMissed
	}
	return StatusPending
}
