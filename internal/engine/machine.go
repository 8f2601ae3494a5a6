// internal/engine/machine.go
package engine

import (
	"fmt"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// Status is the overall lifecycle of a game.
type Status string

const (
	StatusActive   Status = "active"
	StatusClaiming Status = "claiming" // Fish only: frozen until the pending claim resolves
	StatusFinished Status = "finished"
)

// Machine is the state shared by every variant: seats, the current-player pointer,
// per-player status, overall status and the ownership registry. Variants embed the
// legality rules; the machine only applies turns that were already validated.
type Machine struct {
	Registry *Registry

	Players      []string
	Current      int
	PlayerStatus map[string]int
	Status       Status

	LastTurn  *models.Turn
	TurnCount int
}

// NewMachine seats players in order and registers a hand owner for each of them.
func NewMachine(players []string) (*Machine, error) {
	m := &Machine{
		Registry:     NewRegistry(),
		Players:      append([]string(nil), players...),
		PlayerStatus: make(map[string]int, len(players)),
		Status:       StatusActive,
	}
	for _, p := range players {
		if err := m.Registry.AddOwner(p, true); err != nil {
			return nil, fmt.Errorf("seating player: %w", err)
		}
		m.PlayerStatus[p] = 0
	}
	return m, nil
}

// CurrentPlayer returns the id of the player whose turn it is.
func (m *Machine) CurrentPlayer() string {
	if m.Current < 0 || m.Current >= len(m.Players) {
		return ""
	}
	return m.Players[m.Current]
}

// SeatOf returns a player's seat index or -1.
func (m *Machine) SeatOf(id string) int {
	for i, p := range m.Players {
		if p == id {
			return i
		}
	}
	return -1
}

func (m *Machine) IsPlayer(id string) bool {
	return m.SeatOf(id) >= 0
}

// SetCurrent moves the turn pointer to the given player.
func (m *Machine) SetCurrent(id string) {
	if seat := m.SeatOf(id); seat >= 0 {
		m.Current = seat
	}
}

// Hand returns a copy of a player's cards.
func (m *Machine) Hand(id string) []models.Card {
	return m.Registry.Cards(id)
}

// NextSeat scans seats after from, wrapping around and ending on from itself, and returns
// the first seat whose player satisfies eligible.
func (m *Machine) NextSeat(from int, eligible func(id string) bool) (int, bool) {
	n := len(m.Players)
	for step := 1; step <= n; step++ {
		seat := (from + step) % n
		if eligible(m.Players[seat]) {
			return seat, true
		}
	}
	return -1, false
}

// ApplyTurn verifies every success-flagged transaction against the registry, then applies
// them in order and records the turn. Transactions with Success=false are recorded but not
// moved. Nothing changes if verification fails.
func (m *Machine) ApplyTurn(t models.Turn) error {
	if err := m.Registry.Verify(t.Transactions, false); err != nil {
		return err
	}
	for _, tx := range t.Transactions {
		if !tx.Success {
			continue
		}
		if err := m.Registry.Transact(tx.Card, tx.From, tx.To); err != nil {
			return fmt.Errorf("%w: applying verified turn: %v", ErrRegistryDesync, err)
		}
	}
	m.record(t)
	return nil
}

// Reroute applies every transaction regardless of its flag. Engines use it when they have
// rewritten destinations themselves, e.g. a failed claim sent to the opposing bucket.
func (m *Machine) Reroute(t models.Turn) error {
	if err := m.Registry.Verify(t.Transactions, true); err != nil {
		return err
	}
	for _, tx := range t.Transactions {
		if err := m.Registry.Transact(tx.Card, tx.From, tx.To); err != nil {
			return fmt.Errorf("%w: rerouting verified turn: %v", ErrRegistryDesync, err)
		}
	}
	m.record(t)
	return nil
}

func (m *Machine) record(t models.Turn) {
	rec := t.Clone()
	m.LastTurn = &rec
	m.TurnCount++
}

// Finish marks the game finished. Later turns are rejected with ErrGameFinished.
func (m *Machine) Finish() {
	m.Status = StatusFinished
}

func (m *Machine) Finished() bool {
	return m.Status == StatusFinished
}

// CheckTurnOwner rejects turns from non-players, after the game is over, or out of turn.
func (m *Machine) CheckTurnOwner(t models.Turn) error {
	if m.Finished() {
		return ErrGameFinished
	}
	if !m.IsPlayer(t.PlayerID) {
		return Protocolf("%q is not seated in this game", t.PlayerID)
	}
	if t.PlayerID != m.CurrentPlayer() {
		return Protocolf("not %s's turn", t.PlayerID)
	}
	return nil
}
