package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusScheduled NotificationStatus = "scheduled"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusFailed    NotificationStatus = "failed"
	NotificationStatusCancelled NotificationStatus = "cancelled"
)

func (s NotificationStatus) String() string {
	return string(s)
}

func (s NotificationStatus) IsTerminal() bool {
	return s == NotificationStatusSent || s == NotificationStatusFailed || s == NotificationStatusCancelled
}

const DoseDayLayout = "2006-01-02"

const (
	ReasonNoDestination     = "no destination"
	ReasonPushDisabled      = "push disabled"
	ReasonDispatchAttempted = "dispatch already attempted"
	ReasonCancelledByUser   = "cancelled"
	ReasonMedicationDeleted = "medication deleted"
	ReasonRescheduled       = "rescheduled"
	ReasonSlotDeactivated   = "slot deactivated"
)

// ScheduledNotification is one materialized reminder. DoseAt is the unshifted due time;
// SendAt carries lead time and quiet-hours adjustment. (SlotID, DoseDay) identifies it among
// non-cancelled rows.
type ScheduledNotification struct {
	ID           uuid.UUID
	MedicationID uuid.UUID
	SlotID       uuid.UUID
	UserID       uuid.UUID
	DoseAt       time.Time
	SendAt       time.Time
	DoseDay      string
	Title        string
	Body         string
	Status       NotificationStatus
	TicketID     string
	Reason       string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

func NewScheduledNotification(
	med *Medication,
	slot *RecurringSlot,
	doseAt, sendAt time.Time,
	now time.Time,
) *ScheduledNotification {
	return &ScheduledNotification{
		ID:           uuid.New(),
		MedicationID: med.ID,
		SlotID:       slot.ID,
		UserID:       med.UserID,
		DoseAt:       doseAt,
		SendAt:       sendAt,
		DoseDay:      doseAt.Format(DoseDayLayout),
		Title:        "Time for " + med.Name,
		Body:         fmt.Sprintf("%s is due at %s", med.Name, doseAt.Format("15:04")),
		Status:       NotificationStatusScheduled,
		CreatedAt:    now,
	}
}

// StatusTransition is a single move out of scheduled, applied conditionally by the store.
type StatusTransition struct {
	NotificationID uuid.UUID
	To             NotificationStatus
	TicketID       string
	Reason         string
	At             time.Time
}

func (n *ScheduledNotification) apply(t StatusTransition) error {
	if n.Status != NotificationStatusScheduled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Status, t.To)
	}
	at := t.At
	n.Status = t.To
	n.TicketID = t.TicketID
	n.Reason = t.Reason
	n.ResolvedAt = &at
	return nil
}

func (n *ScheduledNotification) MarkSent(ticketID string, at time.Time) (StatusTransition, error) {
	t := StatusTransition{NotificationID: n.ID, To: NotificationStatusSent, TicketID: ticketID, At: at}
	return t, n.apply(t)
}

func (n *ScheduledNotification) MarkFailed(reason string, at time.Time) (StatusTransition, error) {
	t := StatusTransition{NotificationID: n.ID, To: NotificationStatusFailed, Reason: reason, At: at}
	return t, n.apply(t)
}

func (n *ScheduledNotification) Cancel(reason string, at time.Time) (StatusTransition, error) {
	t := StatusTransition{NotificationID: n.ID, To: NotificationStatusCancelled, Reason: reason, At: at}
	return t, n.apply(t)
}
