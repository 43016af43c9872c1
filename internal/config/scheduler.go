package config

import "time"

const (
	defaultSweepInterval        = 60 * time.Second
	defaultSweepTimeout         = 2 * time.Minute
	defaultSweepBatchLimit      = 100
	defaultRecipientConcurrency = 4
	defaultHorizonDays          = 7
	defaultPerSlotCap           = 10
)

type SchedulerConfig struct {
	SweepInterval        time.Duration
	SweepTimeout         time.Duration
	SweepBatchLimit      int
	RecipientConcurrency int
	HorizonDays          int
	PerSlotCap           int
	// Disabled stops the background sweeper; on-demand sweeps over HTTP still run.
	Disabled bool
}

func LoadSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		SweepInterval:        durationEnv("SWEEP_INTERVAL", defaultSweepInterval),
		SweepTimeout:         durationEnv("SWEEP_TIMEOUT", defaultSweepTimeout),
		SweepBatchLimit:      positiveIntEnv("SWEEP_BATCH_LIMIT", defaultSweepBatchLimit),
		RecipientConcurrency: positiveIntEnv("SWEEP_RECIPIENT_CONCURRENCY", defaultRecipientConcurrency),
		HorizonDays:          positiveIntEnv("MATERIALIZE_HORIZON_DAYS", defaultHorizonDays),
		PerSlotCap:           positiveIntEnv("MATERIALIZE_PER_SLOT_CAP", defaultPerSlotCap),
		Disabled:             boolEnv("SWEEPER_DISABLED"),
	}
}
