package fish

import "github.com/jason-s-yu/cardhall/internal/models"

// HalfSuitCount is the number of six-card groups the 54-card deck splits into.
const HalfSuitCount = 9

// MiddleHalfSuit holds the four 8s and both jokers.
const MiddleHalfSuit = 4

// HalfSuitNames are display names indexed by half-suit.
var HalfSuitNames = []string{"S 2-7", "H 2-7", "D 2-7", "C 2-7", "8 & Joker", "S 9-A", "H 9-A", "D 9-A", "C 9-A"}

var halfSuitSuits = []models.Suit{models.SuitSpade, models.SuitHeart, models.SuitDiamond, models.SuitClub}

var (
	lowRanks  = []int{2, 3, 4, 5, 6, 7}
	highRanks = []int{9, 10, models.RankJack, models.RankQueen, models.RankKing, models.RankAce}
)

func suitIndex(s models.Suit) int {
	for i, x := range halfSuitSuits {
		if x == s {
			return i
		}
	}
	return -1
}

// HalfSuitOf maps a card to its half-suit, or -1 for cards outside the Fish deck.
func HalfSuitOf(c models.Card) int {
	if c == models.RedJoker || c == models.BlackJoker || (c.Rank == models.RankEight && suitIndex(c.Suit) >= 0) {
		return MiddleHalfSuit
	}
	idx := suitIndex(c.Suit)
	switch {
	case idx < 0:
		return -1
	case c.Rank >= 2 && c.Rank <= 7:
		return idx
	case c.Rank == models.RankAce || (c.Rank >= 9 && c.Rank <= models.RankKing):
		return MiddleHalfSuit + 1 + idx
	}
	return -1
}

// HalfSuitCards lists the six cards of a half-suit in a fixed order.
func HalfSuitCards(h int) []models.Card {
	switch {
	case h < 0 || h >= HalfSuitCount:
		return nil
	case h == MiddleHalfSuit:
		out := make([]models.Card, 0, 6)
		for _, s := range halfSuitSuits {
			out = append(out, models.Card{Rank: models.RankEight, Suit: s})
		}
		return append(out, models.RedJoker, models.BlackJoker)
	}
	if h < MiddleHalfSuit {
		return run(halfSuitSuits[h], lowRanks)
	}
	return run(halfSuitSuits[h-MiddleHalfSuit-1], highRanks)
}

func run(suit models.Suit, ranks []int) []models.Card {
	out := make([]models.Card, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, models.Card{Rank: r, Suit: suit})
	}
	return out
}

// Deck returns the 54 Fish cards grouped by half-suit.
func Deck() []models.Card {
	deck := make([]models.Card, 0, HalfSuitCount*6)
	for h := 0; h < HalfSuitCount; h++ {
		deck = append(deck, HalfSuitCards(h)...)
	}
	return deck
}
