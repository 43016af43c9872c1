package config

import (
	"errors"
	"time"
)

func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		errs = append(errs, ErrInvalidTimezone)
	}
	if cfg.Scheduler == nil || cfg.Scheduler.SweepInterval <= 0 {
		errs = append(errs, ErrInvalidSweepInterval)
	}

	return errors.Join(errs...)
}
