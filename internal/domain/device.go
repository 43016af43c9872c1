package domain

import (
	"time"

	"github.com/google/uuid"
)

type Device struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PushToken string
	Platform  string
	CreatedAt time.Time
}
