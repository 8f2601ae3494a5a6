// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is read from the environment (and a .env file loaded by the binaries).
type Config struct {
	Port     string
	LogLevel string

	RedisAddr string
	RedisDB   int

	HistorianQueue     string
	HistorianBatchSize int
	HistorianFlush     time.Duration
	GameInactivity     time.Duration

	// FinishedRetention keeps finished games readable over HTTP before they are dropped.
	FinishedRetention time.Duration

	DatabaseURL string

	NATSURL           string
	NATSSubjectPrefix string
}

// Load reads configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HISTORIAN_QUEUE_NAME", "cardhall_replays")
	v.SetDefault("HISTORIAN_BATCH_SIZE", 20)
	v.SetDefault("HISTORIAN_FLUSH_MS", 500)
	v.SetDefault("GAME_INACTIVITY_TIMEOUT_SEC", 600)
	v.SetDefault("FINISHED_GAME_RETENTION_SEC", 60)
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", "5432")
	v.SetDefault("NATS_SUBJECT_PREFIX", "cardhall.games")

	cfg := &Config{
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisDB:            v.GetInt("REDIS_DB"),
		HistorianQueue:     v.GetString("HISTORIAN_QUEUE_NAME"),
		HistorianBatchSize: v.GetInt("HISTORIAN_BATCH_SIZE"),
		HistorianFlush:     time.Duration(v.GetInt("HISTORIAN_FLUSH_MS")) * time.Millisecond,
		GameInactivity:     time.Duration(v.GetInt("GAME_INACTIVITY_TIMEOUT_SEC")) * time.Second,
		FinishedRetention:  time.Duration(v.GetInt("FINISHED_GAME_RETENTION_SEC")) * time.Second,
		DatabaseURL:        v.GetString("DATABASE_URL"),
		NATSURL:            v.GetString("NATS_URL"),
		NATSSubjectPrefix:  strings.TrimSuffix(v.GetString("NATS_SUBJECT_PREFIX"), "."),
	}

	if cfg.DatabaseURL == "" && v.GetString("PG_DATABASE") != "" {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(v.GetString("POSTGRES_USER"), v.GetString("POSTGRES_PASSWORD")),
			Host:   v.GetString("PG_HOST") + ":" + v.GetString("PG_PORT"),
			Path:   "/" + v.GetString("PG_DATABASE"),
		}
		cfg.DatabaseURL = u.String()
	}

	if cfg.HistorianBatchSize <= 0 {
		return nil, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", cfg.HistorianBatchSize)
	}
	if cfg.HistorianFlush <= 0 {
		return nil, fmt.Errorf("HISTORIAN_FLUSH_MS must be positive")
	}
	return cfg, nil
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using debug", c.LogLevel)
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}
