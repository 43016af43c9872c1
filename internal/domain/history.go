package domain

import (
	"time"

	"github.com/google/uuid"
)

type HistoryAction string

const (
	HistoryActionTaken     HistoryAction = "taken"
	HistoryActionSkipped   HistoryAction = "skipped"
	HistoryActionMissed    HistoryAction = "missed"
	HistoryActionPostponed HistoryAction = "postponed"
)

func (a HistoryAction) Valid() bool {
	switch a {
	case HistoryActionTaken, HistoryActionSkipped, HistoryActionMissed, HistoryActionPostponed:
		return true
	}
	return false
}

// HistoryEntry is a recorded dose action. ScheduledFor is the dose instant it refers to; Auto
// marks entries written by the system rather than the user.
type HistoryEntry struct {
	ID           uuid.UUID
	MedicationID uuid.UUID
	SlotID       uuid.UUID
	UserID       uuid.UUID
	Action       HistoryAction
	ScheduledFor time.Time
	RecordedAt   time.Time
	Auto         bool
}
