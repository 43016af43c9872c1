package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KasumiMercury/primind-dose-reminder/internal/config"
)

// Connect opens a pooled Postgres connection and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.LogQueries {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	return db, nil
}

// Migrate creates the tables and the partial indexes gorm tags cannot express.
func Migrate(ctx context.Context, db *gorm.DB) error {
	slog.InfoContext(ctx, "running database migrations")
	start := time.Now()

	models := []any{
		&medicationRecord{},
		&slotRecord{},
		&notificationRecord{},
		&settingsRecord{},
		&historyRecord{},
		&deviceRecord{},
	}
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	indexes := []struct {
		name  string
		query string
	}{
		{
			// one live notification per slot and dose day
			name:  "idx_notifications_slot_day_active",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_slot_day_active ON scheduled_notifications (slot_id, dose_day) WHERE status <> 'cancelled'`,
		},
		{
			name:  "idx_notifications_due",
			query: `CREATE INDEX IF NOT EXISTS idx_notifications_due ON scheduled_notifications (send_at, id) WHERE status = 'scheduled'`,
		},
		{
			name:  "idx_history_auto_once",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS idx_history_auto_once ON history_entries (slot_id, scheduled_for) WHERE auto`,
		},
	}
	for _, idx := range indexes {
		if err := db.WithContext(ctx).Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	slog.InfoContext(ctx, "migrations completed", slog.Duration("duration", time.Since(start)))
	return nil
}
