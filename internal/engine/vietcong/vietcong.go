// internal/engine/vietcong/vietcong.go
package vietcong

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// PileOwner receives every played card and any undealt remainder.
const PileOwner = "pile"

const (
	StatusActive = 0
	StatusPassed = -1
)

const handSize = 13

// Options are the Viet Cong house rules.
type Options struct {
	// DeckSize is 52 or 56; 56 adds the four rank-0 low specials.
	DeckSize    int
	OpeningCard models.Card
	// SuitOrder lists suits lowest first.
	SuitOrder []models.Suit
	Rand      *rand.Rand
}

// DefaultOptions returns a 52-card game opened by the 3 of spades.
func DefaultOptions() Options {
	return Options{
		DeckSize:    52,
		OpeningCard: models.Card{Rank: 3, Suit: models.SuitSpade},
		SuitOrder:   DefaultSuitOrder,
	}
}

// Deck returns the ordered deck for a size of 52 or 56.
func Deck(size int) ([]models.Card, error) {
	deck := models.StandardDeck()
	switch size {
	case 52:
	case 56:
		for _, s := range models.Suits {
			deck = append(deck, models.Card{Rank: models.RankSpecial, Suit: s})
		}
	default:
		return nil, fmt.Errorf("unsupported deck size %d", size)
	}
	return deck, nil
}

// Game is the Viet Cong rule engine.
type Game struct {
	m     *engine.Machine
	order Ordering

	combo         Combo
	lastPlayer    string
	finishOrder   []string
	opening       models.Card
	openingPlayed bool
}

// Extras is the Viet Cong part of an exported state.
type Extras struct {
	Combo         Combo       `json:"combo"`
	LastPlayer    string      `json:"lastPlayer,omitempty"`
	FinishOrder   []string    `json:"finishOrder"`
	OpeningCard   models.Card `json:"openingCard"`
	OpeningPlayed bool        `json:"openingPlayed"`
}

// New shuffles a deck and deals 13 cards to each of the four players; the rest go to the pile.
func New(players []string, opts Options) (*Game, error) {
	if err := engine.CheckPlayers(engine.VariantVietCong, players); err != nil {
		return nil, err
	}
	deck, err := Deck(opts.DeckSize)
	if err != nil {
		return nil, err
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	deck = models.Shuffle(r, deck)

	hands := make(map[string][]models.Card, len(players))
	for i, p := range players {
		hands[p] = deck[i*handSize : (i+1)*handSize]
	}
	return NewFromHands(players, hands, deck[len(players)*handSize:], opts)
}

// NewFromHands builds a game from fixed hands, mostly for tests and replays.
func NewFromHands(players []string, hands map[string][]models.Card, pile []models.Card, opts Options) (*Game, error) {
	if err := engine.CheckPlayers(engine.VariantVietCong, players); err != nil {
		return nil, err
	}
	m, err := engine.NewMachine(players)
	if err != nil {
		return nil, err
	}
	if err := m.Registry.AddOwner(PileOwner, false); err != nil {
		return nil, err
	}
	suitOrder := opts.SuitOrder
	if len(suitOrder) == 0 {
		suitOrder = DefaultSuitOrder
	}
	g := &Game{m: m, order: NewOrdering(suitOrder)}

	var dealt []models.Card
	for _, p := range players {
		if err := m.Registry.Deal(p, hands[p]...); err != nil {
			return nil, fmt.Errorf("dealing to %s: %w", p, err)
		}
		dealt = append(dealt, hands[p]...)
	}
	if err := m.Registry.Deal(PileOwner, pile...); err != nil {
		return nil, fmt.Errorf("dealing pile: %w", err)
	}
	if len(dealt) == 0 {
		return nil, fmt.Errorf("%w: no cards dealt", engine.ErrInvalidPlayerCount)
	}

	g.opening = opts.OpeningCard
	owner, ok := m.Registry.OwnerOf(g.opening)
	if !ok || !m.IsPlayer(owner) {
		g.opening = g.order.Lowest(dealt)
		owner, _ = m.Registry.OwnerOf(g.opening)
	}
	m.SetCurrent(owner)
	return g, nil
}

func (g *Game) Variant() engine.Variant { return engine.VariantVietCong }
func (g *Game) Machine() *engine.Machine { return g.m }
func (g *Game) Finished() bool { return g.m.Finished() }
func (g *Game) Ordering() Ordering { return g.order }
func (g *Game) OpeningCard() models.Card { return g.opening }
func (g *Game) CurrentCombo() Combo { return g.combo.clone() }

// Validate checks a PLAY or PASS without mutating anything and returns the turn with
// success flags set.
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
		if g.combo.Empty() {
			return t, engine.Illegalf("cannot pass with nothing on the table")
		}
		return out, nil

	case models.TurnPlay:
		if len(t.Transactions) == 0 {
			return t, engine.Illegalf("empty play")
		}
		for i, tx := range out.Transactions {
			if tx.From != t.PlayerID || tx.To != PileOwner {
				return t, engine.Protocolf("play must move cards from %s to %s", t.PlayerID, PileOwner)
			}
			if !g.m.Registry.Holds(t.PlayerID, tx.Card) {
				return t, fmt.Errorf("%w: %s does not hold %s", engine.ErrOwnershipViolation, t.PlayerID, tx.Card)
			}
			out.Transactions[i].Success = true
		}

		combo := g.order.Classify(out.Cards())
		if combo.Empty() {
			return t, engine.Illegalf("%v is not a valid combination", out.Cards())
		}
		if !g.openingPlayed && !containsCard(combo.Cards, g.opening) {
			return t, engine.Illegalf("first play must include %s", g.opening)
		}
		if !g.order.Beats(combo, g.combo) {
			return t, engine.Illegalf("%s %v does not beat %s %v", combo.Kind, combo.Cards, g.combo.Kind, g.combo.Cards)
		}
		return out, nil
	}
	return t, engine.Protocolf("viet cong does not accept %q turns", t.Kind)
}

// Apply commits a validated turn and advances the rotation.
func (g *Game) Apply(t models.Turn) error {
	if err := g.m.ApplyTurn(t); err != nil {
		return err
	}
	actor := t.PlayerID

	switch t.Kind {
	case models.TurnPass:
		g.m.PlayerStatus[actor] = StatusPassed
	case models.TurnPlay:
		g.combo = g.order.Classify(t.Cards())
		g.lastPlayer = actor
		g.openingPlayed = true
		if g.m.Registry.Count(actor) == 0 {
			g.place(actor)
		}
		if len(g.finishOrder) == len(g.m.Players)-1 {
			for _, p := range g.m.Players {
				if g.m.PlayerStatus[p] <= 0 {
					g.place(p)
				}
			}
			g.m.Finish()
			return nil
		}
	}
	g.advance()
	return nil
}

func (g *Game) place(id string) {
	g.finishOrder = append(g.finishOrder, id)
	g.m.PlayerStatus[id] = len(g.finishOrder)
}

func (g *Game) waiting(id string) bool {
	return g.m.PlayerStatus[id] == StatusActive
}

func (g *Game) unfinished(id string) bool {
	return g.m.PlayerStatus[id] <= 0
}

// advance hands the turn to the next seat still in the round. Coming back around to the
// last player, or finding nobody, starts a new round.
func (g *Game) advance() {
	last := g.m.SeatOf(g.lastPlayer)
	next, ok := g.m.NextSeat(g.m.Current, g.waiting)
	if ok && next != last {
		g.m.Current = next
		return
	}

	g.combo = Combo{}
	for id, st := range g.m.PlayerStatus {
		if st == StatusPassed {
			g.m.PlayerStatus[id] = StatusActive
		}
	}
	if last >= 0 && g.unfinished(g.lastPlayer) {
		g.m.Current = last
		return
	}
	if last < 0 {
		last = g.m.Current
	}
	if seat, ok := g.m.NextSeat(last, g.unfinished); ok {
		g.m.Current = seat
	}
}

// Results are placements 1..4; first place wins.
func (g *Game) Results() models.Results {
	out := make(models.Results, len(g.m.Players))
	for _, p := range g.m.Players {
		place := g.m.PlayerStatus[p]
		if place < 0 {
			place = 0
		}
		out[p] = models.Result{Placement: place, Won: place == 1}
	}
	return out
}

func (g *Game) Extras() interface{} {
	return Extras{
		Combo:         g.combo.clone(),
		LastPlayer:    g.lastPlayer,
		FinishOrder:   append([]string{}, g.finishOrder...),
		OpeningCard:   g.opening,
		OpeningPlayed: g.openingPlayed,
	}
}

func containsCard(cards []models.Card, c models.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
