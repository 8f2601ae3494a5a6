// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/cardhall/internal/cache"
	"github.com/jason-s-yu/cardhall/internal/config"
	"github.com/jason-s-yu/cardhall/internal/database"
	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/handlers"
	"github.com/jason-s-yu/cardhall/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []game.Sink

	// the replay log is optional: without Redis games still run, they just are not recorded
	if rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Warnf("replay log disabled: %v", err)
	} else {
		defer rdb.Close()
		sinks = append(sinks, cache.NewReplayLog(rdb, cfg.HistorianQueue, logger))
	}

	if cfg.NATSURL != "" {
		nc, err := notify.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatalf("nats: %v", err)
		}
		defer nc.Close()
		sinks = append(sinks, notify.NewPublisher(nc, cfg.NATSSubjectPrefix, logger))
	}

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
	}

	gs := handlers.NewGameServer(logger, pool, sinks...)
	gs.Store.Retention = cfg.FinishedRetention
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           gs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		gs.Store.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
