package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestNewHandlerProdWritesJSONWithTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, HandlerConfig{
		Service:       ServiceInfo{Name: "dose-reminder", Version: "1.2.3"},
		Environment:   EnvProd,
		Level:         slog.LevelInfo,
		DefaultModule: Module("scheduler"),
	}))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "sweep completed", slog.Int("sent_count", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	want := map[string]any{
		"msg":      "sweep completed",
		"service":  "dose-reminder",
		"version":  "1.2.3",
		"module":   "scheduler",
		"trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
		"span_id":  "00f067aa0ba902b7",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("%s = %v, want %v", key, entry[key], value)
		}
	}
}

func TestNewHandlerDevWritesTextAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, HandlerConfig{
		Service:     ServiceInfo{Name: "dose-reminder"},
		Environment: EnvDev,
		Level:       slog.LevelWarn,
	}))

	logger.Info("hidden")
	logger.With(slog.String("user_id", "u1")).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "user_id=u1") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "trace_id") {
		t.Errorf("trace id written without a span: %s", out)
	}
}
