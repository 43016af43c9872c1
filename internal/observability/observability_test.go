package observability

import (
	"context"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/logging"
)

func TestInitWithoutEndpoint(t *testing.T) {
	ctx := context.Background()

	obs, err := Init(ctx, Config{
		ServiceInfo:  logging.ServiceInfo{Name: "dose-reminder", Version: "test"},
		Environment:  logging.EnvDev,
		LogLevel:     slog.LevelError,
		SamplingRate: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Logger() == nil {
		t.Fatal("Logger() = nil")
	}
	if obs.meterProvider != nil {
		t.Error("meter provider created without an endpoint")
	}

	_, span := otel.Tracer("test").Start(ctx, "probe")
	if !span.SpanContext().IsValid() {
		t.Error("spans are not recorded in-process")
	}
	span.End()

	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSamplingRate(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 0, want: 1},
		{in: -1, want: 1},
		{in: 2, want: 1},
		{in: 0.25, want: 0.25},
	}
	for _, tt := range tests {
		if got := samplingRate(tt.in); got != tt.want {
			t.Errorf("samplingRate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
