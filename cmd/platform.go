package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-dose-reminder/internal/config"
	"github.com/KasumiMercury/primind-dose-reminder/internal/infra/push"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/logging"
)

const moduleName = logging.Module("dose-reminder")

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     cfg.ServiceName,
			Version:  Version,
			Revision: Revision,
		},
		Environment:   logging.Environment(cfg.Environment),
		LogLevel:      cfg.LogLevel,
		DefaultModule: moduleName,
		OTLPEndpoint:  cfg.OTLPEndpoint,
		SamplingRate:  cfg.SamplingRate,
	})
}

// initPushTransport falls back to logging messages when no gateway is configured.
func initPushTransport(cfg *config.PushConfig) (push.Transport, int) {
	if cfg.URL == "" {
		slog.Warn("PUSH_URL not set, push messages will only be logged")
		return push.NewLogTransport(), cfg.MaxBatch
	}

	client := push.NewClient(push.ClientConfig{
		URL:           cfg.URL,
		AccessToken:   cfg.AccessToken,
		MaxBatch:      cfg.MaxBatch,
		MaxRetries:    cfg.MaxRetries,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Timeout:       cfg.Timeout,
	})

	slog.Info("push transport initialized",
		slog.String("url", cfg.URL),
		slog.Int("max_batch", client.MaxBatch()),
		slog.Float64("rate_per_second", cfg.RatePerSecond),
	)

	return client, client.MaxBatch()
}
