package models

// Result is one player's outcome in a finished game. Placement is 1-based for placement
// games (Viet Cong, Simple); Won is set for every winner, including a whole Fish team.
type Result struct {
	Placement int  `json:"placement,omitempty"`
	Won       bool `json:"won"`
	Team      int  `json:"team,omitempty"`

	ClaimAttempts  int `json:"claimAttempts,omitempty"`
	ClaimSuccesses int `json:"claimSuccesses,omitempty"`
}

// Results maps player id to outcome.
type Results map[string]Result

// UserStats accumulates per-variant counters for a single player.
type UserStats struct {
	UserID      string `json:"user_id"`
	Variant     string `json:"variant"`
	GamesPlayed int    `json:"games"`
	Wins        int    `json:"wins"`

	// PlaceFinishes[i] counts finishes in place i (index 0 unused).
	PlaceFinishes [5]int `json:"place_finishes"`

	Claims           int `json:"claims"`
	SuccessfulClaims int `json:"successful_claims"`
}

// Apply folds one game result into the counters.
func (s *UserStats) Apply(r Result) {
	s.GamesPlayed++
	if r.Won {
		s.Wins++
	}
	if r.Placement >= 1 && r.Placement < len(s.PlaceFinishes) {
		s.PlaceFinishes[r.Placement]++
	}
	s.Claims += r.ClaimAttempts
	s.SuccessfulClaims += r.ClaimSuccesses
}
