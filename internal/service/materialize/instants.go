package materialize

import (
	"time"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

// Occurrence is one concrete dose of a slot.
type Occurrence struct {
	Slot    *domain.RecurringSlot
	DoseAt  time.Time
	DoseDay string
}

// Instants enumerates the dose instants of the active slots over horizonDays dosing days
// starting with today in loc. Only instants strictly after now are returned, and at most
// perSlotCap per slot (zero means no cap).
func Instants(slots []*domain.RecurringSlot, horizonDays, perSlotCap int, now time.Time, loc *time.Location) []Occurrence {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var out []Occurrence
	for _, slot := range slots {
		if !slot.Active {
			continue
		}

		produced := 0
		for offset := 0; offset < horizonDays; offset++ {
			if perSlotCap > 0 && produced >= perSlotCap {
				break
			}

			day := today.AddDate(0, 0, offset)
			if !slot.DueOn(day, loc) {
				continue
			}

			doseAt := slot.DoseAt(day, loc)
			if !doseAt.After(now) {
				continue
			}

			out = append(out, Occurrence{
				Slot:    slot,
				DoseAt:  doseAt,
				DoseDay: doseAt.Format(domain.DoseDayLayout),
			})
			produced++
		}
	}
	return out
}
