// internal/engine/fish/fish.go
package fish

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

const (
	Bucket1 = "suits_1"
	Bucket2 = "suits_2"

	// Winner is or'ed into the team number in playerStatus for every winning player.
	Winner = 4

	// WinningClaims is the number of half-suits a bucket needs to end the game.
	WinningClaims = 5

	handSize = 9
	teamSize = 3
)

// BucketOf returns the claim bucket owned by a team.
func BucketOf(team int) string {
	if team == 1 {
		return Bucket1
	}
	return Bucket2
}

func otherTeam(team int) int {
	return 3 - team
}

// Options are the Fish house rules.
type Options struct {
	Rand *rand.Rand
}

// Claim is a half-suit declaration waiting for its assignments.
type Claim struct {
	Claimer  string `json:"claimer"`
	HalfSuit int    `json:"halfSuit"`
}

// Game is the Fish rule engine.
type Game struct {
	m *engine.Machine

	teams     map[string]int
	claimedBy map[int]int
	pending   *Claim
	options   []models.Card

	attempts  map[string]int
	successes map[string]int
	winner    int
}

// Extras is the Fish part of an exported state.
type Extras struct {
	Teams         map[string]int   `json:"teams"`
	Claimed       map[string][]int `json:"claimed"`
	HalfSuitNames []string         `json:"halfSuitNames"`
	Pending       *Claim           `json:"pendingClaim,omitempty"`

	// QuestionOptions are the cards OptionsFor may ask about.
	OptionsFor      string        `json:"optionsFor,omitempty"`
	QuestionOptions []models.Card `json:"questionOptions,omitempty"`

	ClaimAttempts  map[string]int `json:"claimAttempts"`
	ClaimSuccesses map[string]int `json:"claimSuccesses"`
	Winner         int            `json:"winner,omitempty"`
}

// Redact hides the question options from everyone but the player they belong to, since
// they reveal which half-suits that player holds.
func (e Extras) Redact(viewer string) interface{} {
	if viewer != e.OptionsFor {
		e.QuestionOptions = nil
	}
	return e
}

// New splits the six players into two random teams of three and deals nine cards each.
func New(players []string, opts Options) (*Game, error) {
	if err := engine.CheckPlayers(engine.VariantFish, players); err != nil {
		return nil, err
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	teams := make(map[string]int, len(players))
	for i, idx := range r.Perm(len(players)) {
		teams[players[idx]] = 1 + i/teamSize
	}

	deck := models.Shuffle(r, Deck())
	hands := make(map[string][]models.Card, len(players))
	for i, p := range players {
		hands[p] = deck[i*handSize : (i+1)*handSize]
	}
	return NewFromHands(players, teams, hands)
}

// NewFromHands builds a game from fixed teams and hands. Seat 0 starts.
func NewFromHands(players []string, teams map[string]int, hands map[string][]models.Card) (*Game, error) {
	if err := engine.CheckPlayers(engine.VariantFish, players); err != nil {
		return nil, err
	}
	sizes := map[int]int{}
	for _, p := range players {
		sizes[teams[p]]++
	}
	if sizes[1] != teamSize || sizes[2] != teamSize {
		return nil, fmt.Errorf("%w: fish needs two teams of %d", engine.ErrInvalidPlayerCount, teamSize)
	}

	m, err := engine.NewMachine(players)
	if err != nil {
		return nil, err
	}
	for _, b := range []string{Bucket1, Bucket2} {
		if err := m.Registry.AddOwner(b, false); err != nil {
			return nil, err
		}
	}
	g := &Game{
		m:         m,
		teams:     make(map[string]int, len(players)),
		claimedBy: make(map[int]int),
		attempts:  make(map[string]int),
		successes: make(map[string]int),
	}
	for _, p := range players {
		if err := m.Registry.Deal(p, hands[p]...); err != nil {
			return nil, fmt.Errorf("dealing to %s: %w", p, err)
		}
		g.teams[p] = teams[p]
		m.PlayerStatus[p] = teams[p]
	}
	g.refreshOptions()
	return g, nil
}

func (g *Game) Variant() engine.Variant { return engine.VariantFish }
func (g *Game) Machine() *engine.Machine { return g.m }
func (g *Game) Finished() bool { return g.m.Finished() }

// Team returns a player's team number, 0 if unseated.
func (g *Game) Team(id string) int {
	return g.teams[id]
}

// ClaimedBy returns the team that holds a half-suit, 0 if it is still open.
func (g *Game) ClaimedBy(h int) int {
	return g.claimedBy[h]
}

// Validate checks a question, claim or delegate without mutating anything and returns the
// turn with success flags and claim destinations filled in.
func (g *Game) Validate(t models.Turn) (models.Turn, error) {
	if g.m.Finished() {
		return t, engine.ErrGameFinished
	}
	if !g.m.IsPlayer(t.PlayerID) {
		return t, engine.Protocolf("%q is not seated in this game", t.PlayerID)
	}

	switch t.Kind {
	case models.TurnClaimInit:
		return g.validateClaimInit(t)
	case models.TurnClaimResolve:
		return g.validateClaimResolve(t)
	case models.TurnQuestion:
		return g.validateQuestion(t)
	case models.TurnDelegate:
		return g.validateDelegate(t)
	}
	return t, engine.Protocolf("fish does not accept %q turns", t.Kind)
}

func (g *Game) validateClaimInit(t models.Turn) (models.Turn, error) {
	if g.m.Status == engine.StatusClaiming {
		return t, engine.Protocolf("a claim by %s is already pending", g.pending.Claimer)
	}
	if len(t.Transactions) > 0 {
		return t, engine.Protocolf("claim_init carries no transactions")
	}
	if t.HalfSuit == nil || *t.HalfSuit < 0 || *t.HalfSuit >= HalfSuitCount {
		return t, engine.Illegalf("claim must name a half-suit 0..%d", HalfSuitCount-1)
	}
	if team := g.claimedBy[*t.HalfSuit]; team != 0 {
		return t, engine.Illegalf("%s already claimed by team %d", HalfSuitNames[*t.HalfSuit], team)
	}
	return t.Clone(), nil
}

func (g *Game) validateClaimResolve(t models.Turn) (models.Turn, error) {
	if g.m.Status != engine.StatusClaiming || g.pending.Claimer != t.PlayerID {
		return t, engine.Protocolf("%s has no pending claim", t.PlayerID)
	}
	want := HalfSuitCards(g.pending.HalfSuit)
	if len(t.Transactions) != len(want) {
		return t, engine.Illegalf("claim must assign all %d cards of %s", len(want), HalfSuitNames[g.pending.HalfSuit])
	}

	team := g.teams[t.PlayerID]
	seen := make(map[models.Card]bool, len(want))
	correct := true
	for _, tx := range t.Transactions {
		if HalfSuitOf(tx.Card) != g.pending.HalfSuit || seen[tx.Card] {
			return t, engine.Illegalf("%s does not complete %s", tx.Card, HalfSuitNames[g.pending.HalfSuit])
		}
		seen[tx.Card] = true
		if g.teams[tx.From] != team {
			return t, engine.Illegalf("%s can only assign cards to teammates, not %q", t.PlayerID, tx.From)
		}
		if !g.m.Registry.Holds(tx.From, tx.Card) {
			correct = false
		}
	}

	out := t.Clone()
	for i, tx := range out.Transactions {
		if correct {
			out.Transactions[i].To = BucketOf(team)
			out.Transactions[i].Success = true
			continue
		}
		owner, _ := g.m.Registry.OwnerOf(tx.Card)
		out.Transactions[i] = models.Transaction{Card: tx.Card, From: owner, To: BucketOf(otherTeam(team)), Success: false}
	}
	return out, nil
}

func (g *Game) validateQuestion(t models.Turn) (models.Turn, error) {
	if g.m.Status == engine.StatusClaiming {
		return t, engine.Protocolf("game is frozen while a claim is pending")
	}
	if err := g.m.CheckTurnOwner(t); err != nil {
		return t, err
	}
	if len(t.Transactions) != 1 {
		return t, engine.Protocolf("a question asks for exactly one card")
	}
	tx := t.Transactions[0]
	if tx.To != t.PlayerID {
		return t, engine.Protocolf("the asked card must go to the asker")
	}
	if !g.m.IsPlayer(tx.From) || g.teams[tx.From] == g.teams[t.PlayerID] {
		return t, engine.Illegalf("%s can only ask an opponent, not %q", t.PlayerID, tx.From)
	}
	if g.m.Registry.Count(tx.From) == 0 {
		return t, engine.Illegalf("%s has no cards", tx.From)
	}
	if !g.canAsk(t.PlayerID, tx.Card) {
		return t, engine.Illegalf("%s cannot ask for %s", t.PlayerID, tx.Card)
	}

	out := t.Clone()
	out.Transactions[0].Success = g.m.Registry.Holds(tx.From, tx.Card)
	return out, nil
}

// canAsk reports whether asker holds part of card's half-suit but not the card itself.
func (g *Game) canAsk(asker string, card models.Card) bool {
	h := HalfSuitOf(card)
	if h < 0 || g.claimedBy[h] != 0 || g.m.Registry.Holds(asker, card) {
		return false
	}
	for _, c := range HalfSuitCards(h) {
		if g.m.Registry.Holds(asker, c) {
			return true
		}
	}
	return false
}

func (g *Game) validateDelegate(t models.Turn) (models.Turn, error) {
	if g.m.Status == engine.StatusClaiming {
		return t, engine.Protocolf("game is frozen while a claim is pending")
	}
	if err := g.m.CheckTurnOwner(t); err != nil {
		return t, err
	}
	if len(t.Transactions) > 0 {
		return t, engine.Protocolf("delegate carries no transactions")
	}
	if g.m.Registry.Count(t.PlayerID) > 0 {
		return t, engine.Illegalf("%s still holds cards", t.PlayerID)
	}
	if t.Target == t.PlayerID || g.teams[t.Target] != g.teams[t.PlayerID] || g.m.Registry.Count(t.Target) == 0 {
		return t, engine.Illegalf("%s can only delegate to a teammate holding cards", t.PlayerID)
	}
	return t.Clone(), nil
}

// Apply commits a validated turn.
func (g *Game) Apply(t models.Turn) error {
	switch t.Kind {
	case models.TurnClaimInit:
		if err := g.m.ApplyTurn(t); err != nil {
			return err
		}
		g.pending = &Claim{Claimer: t.PlayerID, HalfSuit: *t.HalfSuit}
		g.m.Status = engine.StatusClaiming

	case models.TurnClaimResolve:
		if err := g.resolveClaim(t); err != nil {
			return err
		}

	case models.TurnQuestion:
		if err := g.m.ApplyTurn(t); err != nil {
			return err
		}
		if tx := t.Transactions[0]; !tx.Success {
			g.m.SetCurrent(tx.From)
		}

	case models.TurnDelegate:
		if err := g.m.ApplyTurn(t); err != nil {
			return err
		}
		g.m.SetCurrent(t.Target)

	default:
		return engine.Protocolf("fish does not accept %q turns", t.Kind)
	}
	g.refreshOptions()
	return nil
}

func (g *Game) resolveClaim(t models.Turn) error {
	succeeded := len(t.Transactions) > 0 && t.Transactions[0].Success
	apply := g.m.Reroute
	if succeeded {
		apply = g.m.ApplyTurn
	}
	if err := apply(t); err != nil {
		return err
	}

	claimer := t.PlayerID
	team := g.teams[claimer]
	g.attempts[claimer]++
	if succeeded {
		g.successes[claimer]++
	} else {
		team = otherTeam(team)
	}
	g.claimedBy[g.pending.HalfSuit] = team
	g.pending = nil
	g.m.Status = engine.StatusActive

	if g.claimCount(team) >= WinningClaims {
		g.finish(team)
		return nil
	}
	g.passAfterClaim()
	return nil
}

func (g *Game) claimCount(team int) int {
	n := 0
	for _, t := range g.claimedBy {
		if t == team {
			n++
		}
	}
	return n
}

// passAfterClaim keeps the turn with the current player while their team still holds
// cards, otherwise moves it to the next seat holding any.
func (g *Game) passAfterClaim() {
	cur := g.m.CurrentPlayer()
	for _, p := range g.m.Players {
		if g.teams[p] == g.teams[cur] && g.m.Registry.Count(p) > 0 {
			return
		}
	}
	if seat, ok := g.m.NextSeat(g.m.Current, g.holdsCards); ok {
		g.m.Current = seat
	}
}

func (g *Game) holdsCards(id string) bool {
	return g.m.Registry.Count(id) > 0
}

func (g *Game) finish(team int) {
	g.winner = team
	for _, p := range g.m.Players {
		if g.teams[p] == team {
			g.m.PlayerStatus[p] = team | Winner
		}
	}
	g.m.Finish()
}

// refreshOptions recomputes the cards the current player may ask about.
func (g *Game) refreshOptions() {
	g.options = nil
	if g.m.Finished() {
		return
	}
	cur := g.m.CurrentPlayer()
	for h := 0; h < HalfSuitCount; h++ {
		for _, c := range HalfSuitCards(h) {
			if g.canAsk(cur, c) {
				g.options = append(g.options, c)
			}
		}
	}
}

// QuestionOptions returns a copy of the current player's question options.
func (g *Game) QuestionOptions() []models.Card {
	return append([]models.Card(nil), g.options...)
}

// Results marks the winning team; claim counters are reported per player.
func (g *Game) Results() models.Results {
	out := make(models.Results, len(g.m.Players))
	for _, p := range g.m.Players {
		out[p] = models.Result{
			Won:            g.winner != 0 && g.teams[p] == g.winner,
			Team:           g.teams[p],
			ClaimAttempts:  g.attempts[p],
			ClaimSuccesses: g.successes[p],
		}
	}
	return out
}

func (g *Game) Extras() interface{} {
	ex := Extras{
		Teams:           make(map[string]int, len(g.teams)),
		Claimed:         map[string][]int{Bucket1: {}, Bucket2: {}},
		HalfSuitNames:   append([]string(nil), HalfSuitNames...),
		QuestionOptions: g.QuestionOptions(),
		ClaimAttempts:   make(map[string]int, len(g.attempts)),
		ClaimSuccesses:  make(map[string]int, len(g.successes)),
		Winner:          g.winner,
	}
	if len(ex.QuestionOptions) > 0 {
		ex.OptionsFor = g.m.CurrentPlayer()
	}
	for p, team := range g.teams {
		ex.Teams[p] = team
	}
	for h := 0; h < HalfSuitCount; h++ {
		if team := g.claimedBy[h]; team != 0 {
			ex.Claimed[BucketOf(team)] = append(ex.Claimed[BucketOf(team)], h)
		}
	}
	if g.pending != nil {
		pc := *g.pending
		ex.Pending = &pc
	}
	for p, n := range g.attempts {
		ex.ClaimAttempts[p] = n
	}
	for p, n := range g.successes {
		ex.ClaimSuccesses[p] = n
	}
	return ex
}
