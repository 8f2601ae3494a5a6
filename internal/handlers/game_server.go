// internal/handlers/game_server.go
package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/notify"
)

// GameServer holds what the HTTP and websocket handlers share: the live tables, the
// websocket hub registered as one of their sinks, and optionally the replay database.
type GameServer struct {
	Store  *game.TableStore
	Hub    *notify.Hub
	DB     *pgxpool.Pool
	Logger *logrus.Logger
}

// NewGameServer builds a store whose tables report to the hub and to every extra sink.
// db may be nil, in which case replay and stats routes answer 503.
func NewGameServer(logger *logrus.Logger, db *pgxpool.Pool, sinks ...game.Sink) *GameServer {
	hub := notify.NewHub(logger)
	all := append([]game.Sink{hub}, sinks...)
	return &GameServer{
		Store:  game.NewTableStore(logger, all...),
		Hub:    hub,
		DB:     db,
		Logger: logger,
	}
}
