package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultStartTime = "08:00"

type Medication struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Frequency     Frequency
	StartTime     string // optional HH:MM, empty means DefaultStartTime
	IntervalHours int    // optional, zero means the frequency default
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (m *Medication) Validate() error {
	var fields []string
	if m.ID == uuid.Nil {
		fields = append(fields, "id")
	}
	if m.UserID == uuid.Nil {
		fields = append(fields, "user_id")
	}
	if !m.Frequency.Valid() {
		fields = append(fields, "frequency")
	}
	if m.IntervalHours < 0 {
		fields = append(fields, "interval_hours")
	}
	if len(fields) > 0 {
		return NewValidationError("invalid medication", fields...)
	}
	return nil
}

// CascadeResult reports what DeleteMedication removed.
type CascadeResult struct {
	NotificationsCancelled int
	SlotsDeleted           int
	HistoryDeleted         int
}
