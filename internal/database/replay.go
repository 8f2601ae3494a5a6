// internal/database/replay.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ReplayInProgress = "in_progress"
	ReplayCompleted  = "completed"
	ReplayAbandoned  = "abandoned"
)

var ErrReplayNotFound = errors.New("replay not found")

// Replay is a persisted game log: its header plus every snapshot in order.
type Replay struct {
	ID         uuid.UUID         `json:"id"`
	Variant    string            `json:"variant"`
	Players    []string          `json:"players"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Status     string            `json:"status"`
	Snapshots  []json.RawMessage `json:"snapshots"`
}

// UpsertReplayTx creates the replay header the first time a game is seen.
func UpsertReplayTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, variant string, players []string, createdAt time.Time) error {
	q := `
		INSERT INTO replays (id, variant, players, created_at, status)
		VALUES ($1, $2, $3, $4, 'in_progress')
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, q, id, variant, players, createdAt); err != nil {
		return fmt.Errorf("upsert replay %s: %w", id, err)
	}
	return nil
}

// InsertSnapshotTx stores one snapshot. Replayed queue entries are ignored.
func InsertSnapshotTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, seq int, state json.RawMessage) error {
	q := `
		INSERT INTO replay_snapshots (replay_id, seq, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (replay_id, seq) DO NOTHING
	`
	if _, err := tx.Exec(ctx, q, id, seq, []byte(state)); err != nil {
		return fmt.Errorf("insert snapshot %s/%d: %w", id, seq, err)
	}
	return nil
}

// FinishReplayTx marks a replay completed. It reports false if the replay was already
// closed, so callers can avoid counting a game twice.
func FinishReplayTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, finishedAt time.Time) (bool, error) {
	q := `
		UPDATE replays
		SET status = 'completed', finished_at = $2
		WHERE id = $1 AND status = 'in_progress'
	`
	tag, err := tx.Exec(ctx, q, id, finishedAt)
	if err != nil {
		return false, fmt.Errorf("finish replay %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkReplayAbandoned closes a replay that stopped receiving snapshots.
func MarkReplayAbandoned(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE replays
			SET status = 'abandoned', finished_at = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, err := tx.Exec(ctx, q, id)
		return err
	})
}

// GetReplay loads a replay with its snapshots ordered by sequence.
func GetReplay(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Replay, error) {
	r := &Replay{ID: id}
	q := `SELECT variant, players, created_at, finished_at, status FROM replays WHERE id = $1`
	err := pool.QueryRow(ctx, q, id).Scan(&r.Variant, &r.Players, &r.CreatedAt, &r.FinishedAt, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReplayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load replay %s: %w", id, err)
	}

	rows, err := pool.Query(ctx, `SELECT state FROM replay_snapshots WHERE replay_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshots %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		r.Snapshots = append(r.Snapshots, json.RawMessage(raw))
	}
	return r, rows.Err()
}
