// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// DefaultQueueName is the Redis list the historian drains.
const DefaultQueueName = "cardhall_replays"

const (
	KindSnapshot = "snapshot"
	KindFinished = "finished"
)

// SnapshotRecord is one entry of the replay queue. Snapshot records carry the replay header
// (variant, players, created_at) so the consumer can create the replay on first sight.
type SnapshotRecord struct {
	Kind      string                      `json:"kind"`
	GameID    string                      `json:"game_id"`
	Seq       int                         `json:"seq"`
	Variant   engine.Variant              `json:"variant"`
	Players   []string                    `json:"players,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	State     json.RawMessage             `json:"state,omitempty"`
	Results   models.Results              `json:"results,omitempty"`
	Stats     map[string]models.UserStats `json:"stats,omitempty"`
	Timestamp int64                       `json:"timestamp"`
}

// Connect creates a client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ReplayLog is a table sink that appends every snapshot and the final results to a Redis
// list.
type ReplayLog struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger
}

func NewReplayLog(rdb *redis.Client, queue string, logger *logrus.Logger) *ReplayLog {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ReplayLog{rdb: rdb, queue: queue, logger: logger}
}

func (l *ReplayLog) StateChanged(ctx context.Context, st engine.State) error {
	state, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return l.push(ctx, SnapshotRecord{
		Kind:      KindSnapshot,
		GameID:    st.GameID,
		Seq:       st.Seq,
		Variant:   st.Variant,
		Players:   st.Players,
		CreatedAt: st.CreatedAt,
		State:     state,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (l *ReplayLog) GameFinished(ctx context.Context, gameID string, variant engine.Variant, results models.Results) error {
	stats := make(map[string]models.UserStats, len(results))
	for id, r := range results {
		s := models.UserStats{UserID: id, Variant: string(variant)}
		s.Apply(r)
		stats[id] = s
	}
	return l.push(ctx, SnapshotRecord{
		Kind:      KindFinished,
		GameID:    gameID,
		Variant:   variant,
		Results:   results,
		Stats:     stats,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (l *ReplayLog) push(ctx context.Context, rec SnapshotRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal SnapshotRecord: %w", err)
	}
	if err := l.rdb.RPush(ctx, l.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.queue, err)
	}
	l.logger.WithFields(logrus.Fields{"game": rec.GameID, "kind": rec.Kind, "seq": rec.Seq}).Debug("queued replay record")
	return nil
}
