// internal/game/event.go
package game

import (
	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// GameEventType tags messages pushed to connected clients.
type GameEventType string

const (
	EventGameState        GameEventType = "game_state"         // per-viewer snapshot after an accepted turn
	EventPrivateSyncState GameEventType = "private_sync_state" // per-viewer snapshot on connect
	EventTurnRejected     GameEventType = "turn_rejected"      // private; carries the reason
	EventGameEnd          GameEventType = "game_end"           // public results
	EventError            GameEventType = "error"
)

// GameEvent is the envelope for everything sent to clients.
type GameEvent struct {
	Type    GameEventType  `json:"type"`
	State   *engine.State  `json:"state,omitempty"`
	Results models.Results `json:"results,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

// StateEvent wraps a snapshot as seen by viewer.
func StateEvent(st engine.State, viewer string) GameEvent {
	view := st.ViewFor(viewer)
	return GameEvent{Type: EventGameState, State: &view}
}

// EndEvent carries the final results.
func EndEvent(gameID string, variant engine.Variant, results models.Results) GameEvent {
	return GameEvent{
		Type:    EventGameEnd,
		Results: results,
		Payload: map[string]interface{}{"gameId": gameID, "variant": variant},
	}
}

// RejectedEvent tells a submitter why their turn was refused.
func RejectedEvent(reason error) GameEvent {
	return GameEvent{Type: EventTurnRejected, Payload: map[string]interface{}{"message": reason.Error()}}
}
