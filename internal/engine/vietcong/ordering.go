package vietcong

import (
	"sort"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// DefaultSuitOrder ranks suits lowest first: Spade < Club < Diamond < Heart.
var DefaultSuitOrder = []models.Suit{models.SuitSpade, models.SuitClub, models.SuitDiamond, models.SuitHeart}

// Ordering is the card strength order used by every combo comparison.
type Ordering struct {
	suitRank [models.SuitSpade + 1]int
}

// NewOrdering builds an ordering from a lowest-first list of the four suits.
func NewOrdering(suitOrder []models.Suit) Ordering {
	var o Ordering
	for i, s := range suitOrder {
		if s >= models.SuitNone && s <= models.SuitSpade && i < 4 {
			o.suitRank[s] = i
		}
	}
	return o
}

// RankKey shifts ranks so that 3 is lowest and 2 highest: (rank-3) mod 13.
// The rank-0 specials sit below 3.
func RankKey(rank int) int {
	if rank == models.RankSpecial {
		return -1
	}
	return (rank + 10) % 13
}

// twoKey is the rank key of a 2, the highest rank.
var twoKey = RankKey(models.RankTwo)

// Key orders individual cards: rank first, suit as the tie-break.
func (o Ordering) Key(c models.Card) int {
	return RankKey(c.Rank)*4 + o.suitRank[c.Suit]
}

// Sort orders cards ascending in place.
func (o Ordering) Sort(cards []models.Card) {
	sort.Slice(cards, func(i, j int) bool {
		return o.Key(cards[i]) < o.Key(cards[j])
	})
}

// Lowest returns the weakest card of a non-empty slice.
func (o Ordering) Lowest(cards []models.Card) models.Card {
	low := cards[0]
	for _, c := range cards[1:] {
		if o.Key(c) < o.Key(low) {
			low = c
		}
	}
	return low
}
