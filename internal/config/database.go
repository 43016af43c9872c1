package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	databaseURLEnv      = "DATABASE_URL"
	databaseHostEnv     = "DB_HOST"
	databasePortEnv     = "DB_PORT"
	databaseUserEnv     = "DB_USER"
	databasePasswordEnv = "DB_PASSWORD"
	databaseNameEnv     = "DB_NAME"
	databaseSSLModeEnv  = "DB_SSLMODE"
	databaseLogEnv      = "DB_LOG_QUERIES"

	defaultDatabasePort    = 5432
	defaultDatabaseName    = "dosereminder"
	defaultDatabaseSSLMode = "disable"
	defaultMaxOpenConns    = 20
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

type DatabaseConfig struct {
	// URL, when set, is used as-is and the discrete fields are ignored.
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogQueries      bool
}

func LoadDatabaseConfig() (*DatabaseConfig, error) {
	port := defaultDatabasePort
	if raw := os.Getenv(databasePortEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidDatabasePort
		}
		port = parsed
	}

	name := os.Getenv(databaseNameEnv)
	if name == "" {
		name = defaultDatabaseName
	}

	sslMode := os.Getenv(databaseSSLModeEnv)
	if sslMode == "" {
		sslMode = defaultDatabaseSSLMode
	}

	return &DatabaseConfig{
		URL:             os.Getenv(databaseURLEnv),
		Host:            os.Getenv(databaseHostEnv),
		Port:            port,
		User:            os.Getenv(databaseUserEnv),
		Password:        os.Getenv(databasePasswordEnv),
		Name:            name,
		SSLMode:         sslMode,
		MaxOpenConns:    positiveIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpenConns),
		MaxIdleConns:    positiveIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdleConns),
		ConnMaxLifetime: durationEnv("DB_CONN_MAX_LIFETIME", defaultConnMaxLifetime),
		ConnMaxIdleTime: durationEnv("DB_CONN_MAX_IDLE_TIME", defaultConnMaxIdleTime),
		LogQueries:      os.Getenv(databaseLogEnv) == "true",
	}, nil
}

// DSN returns a postgres:// connection URL.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c *DatabaseConfig) Validate() error {
	if c == nil || (c.URL == "" && c.Host == "") {
		return ErrDatabaseMissing
	}
	return nil
}
