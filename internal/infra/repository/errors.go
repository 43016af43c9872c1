package repository

import "errors"

var (
	ErrRedisConnection    = errors.New("redis connection error")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrInvalidSlotRecord  = errors.New("invalid slot record")
)
