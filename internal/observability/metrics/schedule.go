package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	scheduleMeterName = "dosereminder.schedule"
)

type ScheduleMetrics struct {
	instantsMaterialized   metric.Int64Counter
	notificationsCancelled metric.Int64Counter
	materializeDuration    metric.Float64Histogram
}

func NewScheduleMetrics() (*ScheduleMetrics, error) {
	meter := otel.Meter(scheduleMeterName)

	instantsMaterialized, err := meter.Int64Counter(
		"schedule_instants_total",
		metric.WithDescription("Dose instants considered by materialization, by outcome"),
		metric.WithUnit("{instant}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsCancelled, err := meter.Int64Counter(
		"schedule_notifications_cancelled_total",
		metric.WithDescription("Scheduled notifications cancelled, by reason"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	materializeDuration, err := meter.Float64Histogram(
		"schedule_materialize_duration_seconds",
		metric.WithDescription("Time spent materializing one medication"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
		),
	)
	if err != nil {
		return nil, err
	}

	return &ScheduleMetrics{
		instantsMaterialized:   instantsMaterialized,
		notificationsCancelled: notificationsCancelled,
		materializeDuration:    materializeDuration,
	}, nil
}

func (m *ScheduleMetrics) RecordInstants(ctx context.Context, outcome string, count int) {
	if count == 0 {
		return
	}
	m.instantsMaterialized.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *ScheduleMetrics) RecordCancelled(ctx context.Context, reason string, count int) {
	if count == 0 {
		return
	}
	m.notificationsCancelled.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *ScheduleMetrics) RecordMaterializeDuration(ctx context.Context, duration time.Duration) {
	m.materializeDuration.Record(ctx, duration.Seconds())
}
