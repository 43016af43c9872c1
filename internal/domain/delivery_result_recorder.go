package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=delivery_result_recorder.go -destination=delivery_result_recorder_mock.go -package=domain

type DeliverySweepRecord struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Due        int
	Sent       int
	Failed     int
	Cancelled  int
	Deferred   int
	Recipients int
}

type DeliveryResultRecorder interface {
	RecordSweep(ctx context.Context, record DeliverySweepRecord) error
	Flush(ctx context.Context) error
	Close() error
}
