package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "DATABASE_URL", "PG_DATABASE", "HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS", "NATS_URL", "NATS_SUBJECT_PREFIX", "FINISHED_GAME_RETENTION_SEC"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlush)
	assert.Equal(t, "cardhall.games", cfg.NATSSubjectPrefix)
	assert.Equal(t, time.Minute, cfg.FinishedRetention)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_USER", "card")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_DATABASE", "hall")
	t.Setenv("HISTORIAN_BATCH_SIZE", "5")
	t.Setenv("HISTORIAN_FLUSH_MS", "")
	t.Setenv("NATS_SUBJECT_PREFIX", "games.")
	t.Setenv("FINISHED_GAME_RETENTION_SEC", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://card:s3cret@db:6543/hall", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.HistorianBatchSize)
	assert.Equal(t, "games", cfg.NATSSubjectPrefix)
	assert.Equal(t, 5*time.Second, cfg.FinishedRetention)
	assert.Equal(t, logrus.WarnLevel, cfg.NewLogger().GetLevel())
}

func TestLoadRejectsBadBatchSize(t *testing.T) {
	t.Setenv("HISTORIAN_BATCH_SIZE", "0")
	_, err := Load()
	assert.Error(t, err)
}
