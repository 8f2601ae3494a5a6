package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS replays (
	id          UUID PRIMARY KEY,
	variant     TEXT NOT NULL,
	players     TEXT[] NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	status      TEXT NOT NULL DEFAULT 'in_progress'
);

CREATE TABLE IF NOT EXISTS replay_snapshots (
	replay_id UUID NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
	seq       INT NOT NULL,
	state     JSONB NOT NULL,
	PRIMARY KEY (replay_id, seq)
);

CREATE TABLE IF NOT EXISTS user_stats (
	user_id           TEXT NOT NULL,
	variant           TEXT NOT NULL,
	games_played      INT NOT NULL DEFAULT 0,
	wins              INT NOT NULL DEFAULT 0,
	place_1           INT NOT NULL DEFAULT 0,
	place_2           INT NOT NULL DEFAULT 0,
	place_3           INT NOT NULL DEFAULT 0,
	place_4           INT NOT NULL DEFAULT 0,
	claims            INT NOT NULL DEFAULT 0,
	successful_claims INT NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, variant)
);
`

// Connect opens a pool and pings it.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// Migrate creates the replay and stats tables if they are missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
