package domain

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=dispatch_ledger.go -destination=dispatch_ledger_mock.go -package=domain

// DispatchLedger remembers which notifications were already handed to the push transport.
type DispatchLedger interface {
	// MarkDispatched records the notification and reports whether this call was the first.
	MarkDispatched(ctx context.Context, notificationID uuid.UUID) (bool, error)
}
