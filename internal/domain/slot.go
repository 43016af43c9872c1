package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
)

type SlotSource string

const (
	SlotSourceAuto   SlotSource = "auto"
	SlotSourceCustom SlotSource = "custom"
)

// RecurringSlot is a time of day bound to a set of dosing weekdays. DayOffset is the number
// of calendar days the time rolled past midnight when it was derived: the weekday set refers
// to the dosing day, and the dose itself lands DayOffset days later.
type RecurringSlot struct {
	ID           uuid.UUID
	MedicationID uuid.UUID
	Time         calendar.TimeOfDay
	Weekdays     calendar.WeekdaySet
	DayOffset    int
	Active       bool
	Source       SlotSource
	CreatedAt    time.Time
}

func (s *RecurringSlot) Validate() error {
	var fields []string
	if s.MedicationID == uuid.Nil {
		fields = append(fields, "medication_id")
	}
	if s.Weekdays.Len() == 0 {
		fields = append(fields, "weekdays")
	}
	for w := range s.Weekdays {
		if !w.Valid() {
			fields = append(fields, "weekdays")
			break
		}
	}
	if s.DayOffset < 0 {
		fields = append(fields, "day_offset")
	}
	if len(fields) > 0 {
		return NewValidationError("invalid slot", fields...)
	}
	return nil
}

// DoseAt returns the dose instant for the given dosing day in loc.
func (s *RecurringSlot) DoseAt(dosingDay time.Time, loc *time.Location) time.Time {
	return s.Time.On(dosingDay.In(loc).AddDate(0, 0, s.DayOffset), loc)
}

// DueOn reports whether the slot fires on dosingDay.
func (s *RecurringSlot) DueOn(dosingDay time.Time, loc *time.Location) bool {
	return s.Weekdays.Contains(calendar.WeekdayTag(dosingDay.In(loc)))
}
