package models

import "fmt"

// TurnKind tags what a turn is trying to do. Variants accept only the kinds they define.
type TurnKind string

const (
	TurnPlay         TurnKind = "play"
	TurnPass         TurnKind = "pass"
	TurnClaimInit    TurnKind = "claim_init"
	TurnClaimResolve TurnKind = "claim_resolve"
	TurnQuestion     TurnKind = "question"
	TurnDelegate     TurnKind = "delegate"
)

// Transaction moves a single card between two owners. Success=false marks a move that was
// rerouted or refused rather than granted (a missed question, a failed claim).
type Transaction struct {
	Card    Card   `json:"card"`
	From    string `json:"from"`
	To      string `json:"to"`
	Success bool   `json:"success"`
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s->%s ok=%v", t.Card, t.From, t.To, t.Success)
}

// Turn is a player's submission: an ordered list of transactions plus a kind tag.
type Turn struct {
	PlayerID     string        `json:"player"`
	Kind         TurnKind      `json:"kind"`
	Transactions []Transaction `json:"transactions,omitempty"`

	// HalfSuit names the half-suit being claimed on a Fish claim_init.
	HalfSuit *int `json:"halfSuit,omitempty"`
	// Target is the teammate receiving control on a Fish delegate.
	Target string `json:"target,omitempty"`
}

// Clone returns a deep copy so callers can keep submitting the same value.
func (t Turn) Clone() Turn {
	out := t
	if t.Transactions != nil {
		out.Transactions = make([]Transaction, len(t.Transactions))
		copy(out.Transactions, t.Transactions)
	}
	if t.HalfSuit != nil {
		hs := *t.HalfSuit
		out.HalfSuit = &hs
	}
	return out
}

// Cards returns the cards referenced by the turn's transactions in order.
func (t Turn) Cards() []Card {
	out := make([]Card, 0, len(t.Transactions))
	for _, tx := range t.Transactions {
		out = append(out, tx.Card)
	}
	return out
}
