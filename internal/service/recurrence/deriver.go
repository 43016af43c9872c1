package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/calendar"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

const (
	defaultTwiceInterval      = 12
	defaultThreeTimesInterval = 8
	defaultFourTimesInterval  = 6
)

// Slot is a derived recurrence before it is bound to a medication.
type Slot struct {
	Time      calendar.TimeOfDay
	Weekdays  calendar.WeekdaySet
	DayOffset int
}

func everyOtherDay() calendar.WeekdaySet {
	return calendar.NewWeekdaySet(calendar.Monday, calendar.Wednesday, calendar.Friday, calendar.Sunday)
}

// Derive expands a frequency into its recurring daily slots. An empty startTime means 08:00
// and a zero intervalHours means the frequency's default spacing. AS_NEEDED and CUSTOM yield
// no slots.
//
// WEEKLY and MONTHLY are approximated by a single Monday slot; there is no day-of-week or
// day-of-month input.
func Derive(freq domain.Frequency, startTime string, intervalHours int) ([]Slot, error) {
	if startTime == "" {
		startTime = domain.DefaultStartTime
	}
	start, err := calendar.ParseTimeOfDay(startTime)
	if err != nil {
		return nil, domain.NewValidationError(err.Error(), "start_time")
	}
	if intervalHours < 0 {
		return nil, domain.NewValidationError("interval must not be negative", "interval_hours")
	}

	switch freq {
	case domain.FrequencyOneTime, domain.FrequencyDaily:
		return []Slot{{Time: start, Weekdays: calendar.AllWeekdays()}}, nil
	case domain.FrequencyTwiceADay:
		return spaced(start, 2, intervalOrDefault(intervalHours, defaultTwiceInterval)), nil
	case domain.FrequencyThreeTimesADay:
		return spaced(start, 3, intervalOrDefault(intervalHours, defaultThreeTimesInterval)), nil
	case domain.FrequencyFourTimesADay:
		return spaced(start, 4, intervalOrDefault(intervalHours, defaultFourTimesInterval)), nil
	case domain.FrequencyEveryOtherDay:
		return []Slot{{Time: start, Weekdays: everyOtherDay()}}, nil
	case domain.FrequencyWeekly, domain.FrequencyMonthly:
		return []Slot{{Time: start, Weekdays: calendar.NewWeekdaySet(calendar.Monday)}}, nil
	case domain.FrequencyAsNeeded, domain.FrequencyCustom:
		return nil, nil
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown frequency %q", freq), "frequency")
	}
}

func intervalOrDefault(hours, def int) int {
	if hours == 0 {
		return def
	}
	return hours
}

func spaced(start calendar.TimeOfDay, count, interval int) []Slot {
	slots := make([]Slot, 0, count)
	for i := 0; i < count; i++ {
		t, days := start.AddHours(i * interval)
		slots = append(slots, Slot{Time: t, Weekdays: calendar.AllWeekdays(), DayOffset: days})
	}
	return slots
}

// ForMedication derives the auto-generated slots of med, ready to be stored.
func ForMedication(med *domain.Medication, now time.Time) ([]*domain.RecurringSlot, error) {
	derived, err := Derive(med.Frequency, med.StartTime, med.IntervalHours)
	if err != nil {
		return nil, err
	}

	slots := make([]*domain.RecurringSlot, 0, len(derived))
	for _, d := range derived {
		slots = append(slots, &domain.RecurringSlot{
			ID:           uuid.New(),
			MedicationID: med.ID,
			Time:         d.Time,
			Weekdays:     d.Weekdays,
			DayOffset:    d.DayOffset,
			Active:       true,
			Source:       domain.SlotSourceAuto,
			CreatedAt:    now,
		})
	}
	return slots, nil
}
