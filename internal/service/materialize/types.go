package materialize

import (
	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

type Result struct {
	MedicationID  uuid.UUID                       `json:"medication_id"`
	Candidates    int                             `json:"candidate_count"`
	Created       int                             `json:"created_count"`
	Duplicates    int                             `json:"duplicate_count"`
	Suppressed    int                             `json:"suppressed_count"`
	Failed        int                             `json:"failed_count"`
	Notifications []*domain.ScheduledNotification `json:"-"`
}
