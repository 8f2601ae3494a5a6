package models

import "math/rand"

// StandardDeck returns the 52 cards of ranks 1..13 in every real suit, suit-major.
func StandardDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of deck using r.
func Shuffle(r *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
