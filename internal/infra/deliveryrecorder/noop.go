package deliveryrecorder

import (
	"context"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.DeliveryResultRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordSweep(_ context.Context, _ domain.DeliverySweepRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
