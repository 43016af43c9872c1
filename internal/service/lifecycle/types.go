package lifecycle

import (
	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/materialize"
)

// CancelResult aggregates a best-effort bulk cancellation.
type CancelResult struct {
	Attempted int `json:"attempted_count"`
	Cancelled int `json:"cancelled_count"`
	Failed    int `json:"failed_count"`
}

type RescheduleResult struct {
	MedicationID     uuid.UUID           `json:"medication_id"`
	Cancel           CancelResult        `json:"cancel"`
	AutoSlotsKept    int                 `json:"auto_slots_kept"`
	AutoSlotsRemoved int                 `json:"auto_slots_removed"`
	AutoSlotsCreated int                 `json:"auto_slots_created"`
	Materialize      *materialize.Result `json:"materialize"`
}

type SlotResult struct {
	Slot        *domain.RecurringSlot `json:"-"`
	Cancel      *CancelResult         `json:"cancel,omitempty"`
	Materialize *materialize.Result   `json:"materialize,omitempty"`
}

type MedicationInput struct {
	UserID        uuid.UUID
	Name          string
	Frequency     string
	StartTime     string
	IntervalHours int
}

type CreateResult struct {
	Medication  *domain.Medication      `json:"-"`
	Slots       []*domain.RecurringSlot `json:"-"`
	Materialize *materialize.Result     `json:"materialize"`
}

// MedicationPatch holds the fields to change; nil fields are kept.
type MedicationPatch struct {
	Name          *string
	Frequency     *string
	StartTime     *string
	IntervalHours *int
}
