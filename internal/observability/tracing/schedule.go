package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const scheduleTracerName = "github.com/KasumiMercury/primind-dose-reminder/internal/service"

func ScheduleTracer() trace.Tracer {
	return otel.Tracer(scheduleTracerName)
}

func StartMaterializeSpan(ctx context.Context, medicationID string, slotCount int) (context.Context, trace.Span) {
	return ScheduleTracer().Start(ctx, "schedule.materialize",
		trace.WithAttributes(
			attribute.String("medication_id", medicationID),
			attribute.Int("slot_count", slotCount),
		),
	)
}

func StartLifecycleSpan(ctx context.Context, operation, targetID string) (context.Context, trace.Span) {
	return ScheduleTracer().Start(ctx, "schedule."+operation,
		trace.WithAttributes(
			attribute.String("target_id", targetID),
		),
	)
}

func StartSweepSpan(ctx context.Context, runID string, limit int) (context.Context, trace.Span) {
	return ScheduleTracer().Start(ctx, "delivery.sweep",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("sweep.limit", limit),
		),
	)
}

func StartRecipientSpan(ctx context.Context, userID string, notificationCount int) (context.Context, trace.Span) {
	return ScheduleTracer().Start(ctx, "delivery.recipient",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.Int("notification_count", notificationCount),
		),
	)
}

func StartPushSpan(ctx context.Context, url string, messageCount int) (context.Context, trace.Span) {
	return ScheduleTracer().Start(ctx, "delivery.push",
		trace.WithAttributes(
			attribute.String("url", url),
			attribute.Int("message_count", messageCount),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordMaterializeResult(span trace.Span, created, duplicates, suppressed, failed int, err error) {
	span.SetAttributes(
		attribute.Int("materialize.created_count", created),
		attribute.Int("materialize.duplicate_count", duplicates),
		attribute.Int("materialize.suppressed_count", suppressed),
		attribute.Int("materialize.failed_count", failed),
	)
	RecordError(span, err)
}

func RecordSweepResult(span trace.Span, due, sent, failed, cancelled, deferred int, err error) {
	span.SetAttributes(
		attribute.Int("sweep.due_count", due),
		attribute.Int("sweep.sent_count", sent),
		attribute.Int("sweep.failed_count", failed),
		attribute.Int("sweep.cancelled_count", cancelled),
		attribute.Int("sweep.deferred_count", deferred),
	)
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
