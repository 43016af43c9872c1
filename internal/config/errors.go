package config

import "errors"

var (
	ErrRedisAddrMissing     = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB       = errors.New("REDIS_DB must be a valid integer")
	ErrDatabaseMissing      = errors.New("DATABASE_URL or DB_HOST is required")
	ErrInvalidDatabasePort  = errors.New("DB_PORT must be a valid integer")
	ErrInvalidTimezone      = errors.New("DEFAULT_TIMEZONE must be an IANA zone name")
	ErrInvalidSweepInterval = errors.New("SWEEP_INTERVAL must be positive")
)
