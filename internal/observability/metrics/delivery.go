package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	deliveryMeterName = "dosereminder.delivery"
)

type DeliveryMetrics struct {
	notificationsResolved metric.Int64Counter
	sweepsSkipped         metric.Int64Counter
	recipientBatches      metric.Int64Counter
	sweepDuration         metric.Float64Histogram
}

func NewDeliveryMetrics() (*DeliveryMetrics, error) {
	meter := otel.Meter(deliveryMeterName)

	notificationsResolved, err := meter.Int64Counter(
		"delivery_notifications_total",
		metric.WithDescription("Due notifications resolved by the sweep, by status"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	sweepsSkipped, err := meter.Int64Counter(
		"delivery_sweeps_skipped_total",
		metric.WithDescription("Sweep ticks skipped because a sweep was still running"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, err
	}

	recipientBatches, err := meter.Int64Counter(
		"delivery_recipient_batches_total",
		metric.WithDescription("Per-recipient delivery batches, by outcome"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return nil, err
	}

	sweepDuration, err := meter.Float64Histogram(
		"delivery_sweep_duration_seconds",
		metric.WithDescription("Duration of one delivery sweep"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	return &DeliveryMetrics{
		notificationsResolved: notificationsResolved,
		sweepsSkipped:         sweepsSkipped,
		recipientBatches:      recipientBatches,
		sweepDuration:         sweepDuration,
	}, nil
}

func (m *DeliveryMetrics) RecordResolved(ctx context.Context, status string, count int) {
	if count == 0 {
		return
	}
	m.notificationsResolved.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *DeliveryMetrics) RecordSweepSkipped(ctx context.Context) {
	m.sweepsSkipped.Add(ctx, 1)
}

func (m *DeliveryMetrics) RecordRecipientBatch(ctx context.Context, outcome string) {
	m.recipientBatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *DeliveryMetrics) RecordSweepDuration(ctx context.Context, duration time.Duration) {
	m.sweepDuration.Record(ctx, duration.Seconds())
}
