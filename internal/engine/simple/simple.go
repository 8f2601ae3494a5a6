// Package simple is the two-player baseline used to exercise the shared machinery: each
// player gives away cards until one of them runs out.
package simple

import (
	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

const cardsPerPlayer = 10

var dealSuits = []models.Suit{models.SuitClub, models.SuitDiamond}

// Game is the Simple rule engine.
type Game struct {
	m      *engine.Machine
	winner string
}

// Extras is the Simple part of an exported state.
type Extras struct {
	Winner string `json:"winner,omitempty"`
}

// New deals clubs A..10 to seat 0 and diamonds A..10 to seat 1.
func New(players []string) (*Game, error) {
	if err := engine.CheckPlayers(engine.VariantSimple, players); err != nil {
		return nil, err
	}
	m, err := engine.NewMachine(players)
	if err != nil {
		return nil, err
	}
	for i, p := range players {
		for r := models.RankAce; r <= cardsPerPlayer; r++ {
			if err := m.Registry.Deal(p, models.Card{Rank: r, Suit: dealSuits[i]}); err != nil {
				return nil, err
			}
		}
	}
	return &Game{m: m}, nil
}

func (g *Game) Variant() engine.Variant { return engine.VariantSimple }
func (g *Game) Machine() *engine.Machine { return g.m }
func (g *Game) Finished() bool { return g.m.Finished() }

func (g *Game) opponent(id string) string {
	return g.m.Players[1-g.m.SeatOf(id)]
}

func (g *Game) Validate(t models.Turn) (models.Turn, error) {
	if err := g.m.CheckTurnOwner(t); err != nil {
		return t, err
	}
	out := t.Clone()
	switch t.Kind {
	case models.TurnPass:
		if len(t.Transactions) > 0 {
			return t, engine.Protocolf("pass carries no transactions")
		}
		return out, nil
	case models.TurnPlay:
		if len(t.Transactions) == 0 {
			return t, engine.Illegalf("empty play")
		}
		to := g.opponent(t.PlayerID)
		for i, tx := range out.Transactions {
			if tx.From != t.PlayerID || tx.To != to {
				return t, engine.Protocolf("play must move cards from %s to %s", t.PlayerID, to)
			}
			out.Transactions[i].Success = true
		}
		if err := g.m.Registry.Verify(out.Transactions, false); err != nil {
			return t, err
		}
		return out, nil
	}
	return t, engine.Protocolf("simple does not accept %q turns", t.Kind)
}

func (g *Game) Apply(t models.Turn) error {
	if err := g.m.ApplyTurn(t); err != nil {
		return err
	}
	if g.m.Registry.Count(t.PlayerID) == 0 {
		g.winner = t.PlayerID
		g.m.PlayerStatus[t.PlayerID] = 1
		g.m.PlayerStatus[g.opponent(t.PlayerID)] = 2
		g.m.Finish()
		return nil
	}
	g.m.Current = 1 - g.m.Current
	return nil
}

func (g *Game) Results() models.Results {
	out := make(models.Results, 2)
	for _, p := range g.m.Players {
		place := g.m.PlayerStatus[p]
		out[p] = models.Result{Placement: place, Won: place == 1}
	}
	return out
}

func (g *Game) Extras() interface{} {
	return Extras{Winner: g.winner}
}
