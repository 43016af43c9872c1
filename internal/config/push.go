package config

import (
	"os"
	"time"
)

const (
	defaultPushMaxBatch   = 100
	defaultPushMaxRetries = 3
	defaultPushBurst      = 1
	defaultPushTimeout    = 30 * time.Second
)

type PushConfig struct {
	// URL is the push gateway endpoint. Empty selects the logging transport.
	URL           string
	AccessToken   string
	MaxBatch      int
	MaxRetries    int
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

func LoadPushConfig() *PushConfig {
	return &PushConfig{
		URL:           os.Getenv("PUSH_URL"),
		AccessToken:   os.Getenv("PUSH_ACCESS_TOKEN"),
		MaxBatch:      positiveIntEnv("PUSH_MAX_BATCH", defaultPushMaxBatch),
		MaxRetries:    positiveIntEnv("PUSH_MAX_RETRIES", defaultPushMaxRetries),
		RatePerSecond: floatEnv("PUSH_RATE_PER_SECOND", 0),
		Burst:         positiveIntEnv("PUSH_BURST", defaultPushBurst),
		Timeout:       durationEnv("PUSH_TIMEOUT", defaultPushTimeout),
	}
}

func boolEnv(key string) bool {
	return os.Getenv(key) == "true"
}
