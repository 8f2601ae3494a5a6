// internal/notify/hub.go
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/models"
)

const writeTimeout = 5 * time.Second

// Conn is the write half of a websocket connection.
type Conn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
}

type subscriber struct {
	viewer string
	conn   Conn
}

// Hub fans table events out to the websocket clients watching each game. Every subscriber
// gets its own view of a snapshot: only its own hand is revealed.
type Hub struct {
	mu     sync.RWMutex
	games  map[string]map[*subscriber]struct{}
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		games:  make(map[string]map[*subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers conn for gameID as viewer. An empty viewer watches as an observer.
// The returned func removes the subscription and is safe to call more than once.
func (h *Hub) Subscribe(gameID, viewer string, conn Conn) (unsubscribe func()) {
	s := &subscriber{viewer: viewer, conn: conn}

	h.mu.Lock()
	subs, ok := h.games[gameID]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.games[gameID] = subs
	}
	subs[s] = struct{}{}
	h.mu.Unlock()

	return func() { h.remove(gameID, s) }
}

func (h *Hub) remove(gameID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[gameID]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.games, gameID)
	}
}

// Subscribers returns how many connections watch gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

func (h *Hub) snapshot(gameID string) []*subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*subscriber, 0, len(h.games[gameID]))
	for s := range h.games[gameID] {
		out = append(out, s)
	}
	return out
}

func (h *Hub) StateChanged(ctx context.Context, st engine.State) error {
	for _, s := range h.snapshot(st.GameID) {
		h.write(ctx, st.GameID, s, game.EncodeEvent(game.StateEvent(st, s.viewer)))
	}
	return nil
}

func (h *Hub) GameFinished(ctx context.Context, gameID string, variant engine.Variant, results models.Results) error {
	msg := game.EncodeEvent(game.EndEvent(gameID, variant, results))
	for _, s := range h.snapshot(gameID) {
		h.write(ctx, gameID, s, msg)
	}
	return nil
}

// write drops a subscriber whose connection fails. The reader side notices the closed
// socket on its own.
func (h *Hub) write(ctx context.Context, gameID string, s *subscriber, msg []byte) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.conn.Write(wctx, websocket.MessageText, msg); err != nil {
		h.logger.WithFields(logrus.Fields{"game": gameID, "viewer": s.viewer}).Warnf("dropping subscriber: %v", err)
		h.remove(gameID, s)
	}
}
