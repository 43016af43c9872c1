package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

const (
	dispatchKeyPrefix = "dosereminder:dispatched:"

	// DefaultDispatchTTL outlives any retry of a row that is still scheduled.
	DefaultDispatchTTL = 48 * time.Hour
)

type dispatchLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDispatchLedger(client *redis.Client, ttl time.Duration) domain.DispatchLedger {
	if ttl <= 0 {
		ttl = DefaultDispatchTTL
	}
	return &dispatchLedger{
		client: client,
		ttl:    ttl,
	}
}

// MarkDispatched sets the marker for id and reports whether this call created it.
func (r *dispatchLedger) MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error) {
	key := dispatchKeyPrefix + id.String()

	created, err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisConnection, err)
	}

	return created, nil
}
