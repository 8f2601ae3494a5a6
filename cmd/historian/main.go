// cmd/historian drains the replay queue into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/cache"
	"github.com/jason-s-yu/cardhall/internal/config"
	"github.com/jason-s-yu/cardhall/internal/database"
	"github.com/jason-s-yu/cardhall/internal/historian"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()
	if cfg.DatabaseURL == "" {
		logger.Fatal("historian needs DATABASE_URL or PG_DATABASE")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	svc := historian.New(rdb, pool, historian.Options{
		Queue:      cfg.HistorianQueue,
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
		Inactivity: cfg.GameInactivity,
	}, logger)

	if err := svc.Run(ctx); err != nil {
		logger.Fatalf("historian exited: %v", err)
	}
	logger.Info("Historian shutdown complete.")
}
