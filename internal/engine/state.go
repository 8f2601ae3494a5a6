// internal/engine/state.go
package engine

import (
	"time"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// OwnerState is the exported view of one owner.
type OwnerState struct {
	Cards    []models.Card `json:"cards,omitempty"`
	Count    int           `json:"count"`
	IsPlayer bool          `json:"isPlayer"`
}

// State is a transport-agnostic snapshot, safe to hand to sinks: it shares no memory with
// the live game.
type State struct {
	GameID        string                `json:"gameId"`
	Variant       Variant               `json:"variant"`
	Seq           int                   `json:"seq"`
	Status        Status                `json:"status"`
	Players       []string              `json:"players"`
	CurrentPlayer string                `json:"currentPlayer"`
	Owners        map[string]OwnerState `json:"owners"`
	PlayerStatus  map[string]int        `json:"playerStatus"`
	LastTurn      *models.Turn          `json:"lastTurn,omitempty"`
	TurnCount     int                   `json:"turnCount"`
	Extras        interface{}           `json:"extras,omitempty"`

	// CreatedAt is stamped by the owning table, not by Export.
	CreatedAt time.Time `json:"createdAt"`
}

// Export projects the rules' current state. It has no side effects.
func Export(gameID string, seq int, r Rules) State {
	m := r.Machine()
	st := State{
		GameID:        gameID,
		Variant:       r.Variant(),
		Seq:           seq,
		Status:        m.Status,
		Players:       append([]string(nil), m.Players...),
		CurrentPlayer: m.CurrentPlayer(),
		Owners:        make(map[string]OwnerState),
		PlayerStatus:  make(map[string]int, len(m.PlayerStatus)),
		TurnCount:     m.TurnCount,
		Extras:        r.Extras(),
	}
	if m.Finished() {
		st.CurrentPlayer = ""
	}
	for _, id := range m.Registry.OwnerIDs() {
		o := m.Registry.owners[id]
		st.Owners[id] = OwnerState{
			Cards:    m.Registry.Cards(id),
			Count:    len(o.Cards),
			IsPlayer: o.IsPlayer,
		}
	}
	for k, v := range m.PlayerStatus {
		st.PlayerStatus[k] = v
	}
	if m.LastTurn != nil {
		lt := m.LastTurn.Clone()
		st.LastTurn = &lt
	}
	return st
}

// ViewFor returns a copy of the state as seen by viewer: other players' hands are reduced to
// counts and redactable extras are redacted. Non-player owners stay visible.
func (s State) ViewFor(viewer string) State {
	out := s
	out.Owners = make(map[string]OwnerState, len(s.Owners))
	for id, o := range s.Owners {
		if o.IsPlayer && id != viewer {
			o.Cards = nil
		}
		out.Owners[id] = o
	}
	if red, ok := s.Extras.(Redactor); ok {
		out.Extras = red.Redact(viewer)
	}
	return out
}
