// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/middleware"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// GameMessage is what clients send on the game socket.
type GameMessage struct {
	Type string       `json:"type"` // "turn" or "ping"
	Turn *models.Turn `json:"turn,omitempty"`
}

// GameWSHandler upgrades /games/{id}/ws?player=... . The player (or an observer when
// player is empty) is subscribed to the hub, receives a private sync, and may then submit
// turns. Turns always act for the connected player.
func (s *GameServer) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	player := r.URL.Query().Get("player")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"game"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler exit")

	if c.Subprotocol() != "game" {
		c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
		return
	}
	// browsers cannot read the status of a failed upgrade, so unknown games are refused
	// with a close code instead
	t, ok := s.Store.Get(gameID)
	if !ok {
		c.Close(InvalidGameIDError, game.ErrGameNotFound.Error())
		return
	}
	if player != "" && !seated(t.Players(), player) {
		c.Close(InvalidPlayerError, "not a player in this game")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)
	log := s.Logger.WithFields(logrus.Fields{"game": gameID, "player": player})

	unsubscribe := s.Hub.Subscribe(gameID, player, c)
	defer unsubscribe()

	ctx := r.Context()
	sendEvent(ctx, c, log, t.SyncState(player))

	err = s.readGameMessages(ctx, c, t, player, log)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
	c.Close(websocket.StatusNormalClosure, "")
}

func seated(players []string, id string) bool {
	for _, p := range players {
		if p == id {
			return true
		}
	}
	return false
}

// readGameMessages returns nil on a normal close.
func (s *GameServer) readGameMessages(ctx context.Context, c *websocket.Conn, t *game.Table, player string, log *logrus.Entry) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendEvent(ctx, c, log, errorEvent("invalid message"))
			continue
		}

		switch msg.Type {
		case "ping":
			sendJSON(ctx, c, log, map[string]string{"type": "pong"})

		case "turn":
			if player == "" {
				sendEvent(ctx, c, log, errorEvent("observers cannot submit turns"))
				continue
			}
			if msg.Turn == nil {
				sendEvent(ctx, c, log, errorEvent("missing turn"))
				continue
			}
			turn := msg.Turn.Clone()
			turn.PlayerID = player
			if err := t.Play(turn); err != nil {
				log.Debugf("turn rejected: %v", err)
				sendEvent(ctx, c, log, game.RejectedEvent(err))
			}
			// accepted turns come back through the hub like everyone else's

		default:
			log.Warnf("unknown message type %q", msg.Type)
			sendEvent(ctx, c, log, errorEvent("unknown message type: "+msg.Type))
		}
	}
}

func errorEvent(msg string) game.GameEvent {
	return game.GameEvent{Type: game.EventError, Payload: map[string]interface{}{"message": msg}}
}

func sendEvent(ctx context.Context, c *websocket.Conn, log *logrus.Entry, ev game.GameEvent) {
	write(ctx, c, log, game.EncodeEvent(ev))
}

func sendJSON(ctx context.Context, c *websocket.Conn, log *logrus.Entry, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warnf("failed to marshal message: %v", err)
		return
	}
	write(ctx, c, log, data)
}

func write(ctx context.Context, c *websocket.Conn, log *logrus.Entry, data []byte) {
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Write(wctx, websocket.MessageText, data); err != nil {
		log.Debugf("write failed: %v", err)
	}
}
