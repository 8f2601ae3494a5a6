// Package historian drains the replay queue written by cache.ReplayLog and persists replays
// and user stats to Postgres in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/cardhall/internal/cache"
	"github.com/jason-s-yu/cardhall/internal/database"
)

const popTimeout = 3 * time.Second

type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	// Inactivity is how long a replay may go without records before it is marked abandoned.
	Inactivity time.Duration
	// SweepEvery is the inactivity check period.
	SweepEvery time.Duration
}

func DefaultOptions() Options {
	return Options{
		Queue:      cache.DefaultQueueName,
		BatchSize:  20,
		FlushDelay: 500 * time.Millisecond,
		Inactivity: 10 * time.Minute,
		SweepEvery: time.Minute,
	}
}

// Service batches queue records into Postgres transactions.
type Service struct {
	rdb    *redis.Client
	pool   *pgxpool.Pool
	opts   Options
	logger *logrus.Logger

	lastActivity sync.Map // uuid.UUID -> time.Time

	batchMu sync.Mutex
	batch   []cache.SnapshotRecord

	// flushMu orders commits the same way records were popped.
	flushMu sync.Mutex
}

func New(rdb *redis.Client, pool *pgxpool.Pool, opts Options, logger *logrus.Logger) *Service {
	def := DefaultOptions()
	if opts.Queue == "" {
		opts.Queue = def.Queue
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = def.FlushDelay
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = def.Inactivity
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = def.SweepEvery
	}
	return &Service{
		rdb:    rdb,
		pool:   pool,
		opts:   opts,
		logger: logger,
		batch:  make([]cache.SnapshotRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is cancelled or the queue reader fails. Whatever is still batched is
// flushed before it returns.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Infof("historian started on queue %s", s.opts.Queue)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { s.flushLoop(gctx); return nil })
	g.Go(func() error { s.inactivityLoop(gctx); return nil })
	err := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if ferr := s.Flush(flushCtx); ferr != nil {
		s.logger.Errorf("final flush: %v", ferr)
	}
	s.logger.Info("historian shutting down")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) readLoop(ctx context.Context) error {
	for {
		res, err := s.rdb.BLPop(ctx, popTimeout, s.opts.Queue).Result()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			s.logger.Errorf("BLPop: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var rec cache.SnapshotRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			s.logger.Warnf("invalid replay record: %v", err)
			continue
		}
		s.Add(ctx, rec)
	}
}

// Add batches one record and flushes when the batch is full.
func (s *Service) Add(ctx context.Context, rec cache.SnapshotRecord) {
	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.opts.BatchSize
	s.batchMu.Unlock()

	if full {
		if err := s.Flush(ctx); err != nil {
			s.logger.Errorf("flush: %v", err)
		}
	}
}

func (s *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.logger.Errorf("flush: %v", err)
			}
		}
	}
}

func (s *Service) takeBatch() []cache.SnapshotRecord {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	if len(s.batch) == 0 {
		return nil
	}
	out := s.batch
	s.batch = make([]cache.SnapshotRecord, 0, s.opts.BatchSize)
	return out
}

// Flush writes the pending batch in one transaction. A failed batch is dropped and logged.
func (s *Service) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	batch := s.takeBatch()
	if len(batch) == 0 {
		return nil
	}

	var finished []uuid.UUID
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		finished = finished[:0]
		for _, rec := range batch {
			done, err := s.persistTx(ctx, tx, rec)
			if err != nil {
				return err
			}
			if done {
				id, _ := uuid.Parse(rec.GameID)
				finished = append(finished, id)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to flush %d records: %w", len(batch), err)
	}

	now := time.Now()
	for _, rec := range batch {
		if id, err := uuid.Parse(rec.GameID); err == nil && rec.Kind == cache.KindSnapshot {
			s.lastActivity.Store(id, now)
		}
	}
	for _, id := range finished {
		s.lastActivity.Delete(id)
	}
	s.logger.Debugf("flushed %d replay records", len(batch))
	return nil
}

// persistTx reports whether rec closed its replay.
func (s *Service) persistTx(ctx context.Context, tx pgx.Tx, rec cache.SnapshotRecord) (bool, error) {
	id, err := uuid.Parse(rec.GameID)
	if err != nil {
		s.logger.Warnf("skipping record with bad game id %q", rec.GameID)
		return false, nil
	}

	switch rec.Kind {
	case cache.KindSnapshot:
		if err := database.UpsertReplayTx(ctx, tx, id, string(rec.Variant), rec.Players, rec.CreatedAt); err != nil {
			return false, err
		}
		return false, database.InsertSnapshotTx(ctx, tx, id, rec.Seq, rec.State)

	case cache.KindFinished:
		closed, err := database.FinishReplayTx(ctx, tx, id, time.UnixMilli(rec.Timestamp))
		if err != nil {
			return false, err
		}
		if !closed {
			s.logger.Warnf("Game %s: finished record for a closed or unknown replay", id)
			return true, nil
		}
		if err := database.ApplyResultsTx(ctx, tx, string(rec.Variant), rec.Results); err != nil {
			return false, err
		}
		s.logger.Infof("Game %s: replay completed", id)
		return true, nil
	}

	s.logger.Warnf("skipping record of unknown kind %q", rec.Kind)
	return false, nil
}

func (s *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(ctx, now)
		}
	}
}

// Sweep marks every replay idle for longer than the inactivity window as abandoned.
func (s *Service) Sweep(ctx context.Context, now time.Time) {
	s.lastActivity.Range(func(key, val interface{}) bool {
		id, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.opts.Inactivity {
			return true
		}
		if err := database.MarkReplayAbandoned(ctx, s.pool, id); err != nil {
			s.logger.Errorf("failed to mark game %v abandoned: %v", id, err)
			return true
		}
		s.lastActivity.Delete(id)
		s.logger.Infof("Game %s: marked abandoned after %s idle", id, s.opts.Inactivity)
		return true
	})
}
