// internal/engine/vietcong/combo.go
package vietcong

import (
	"fmt"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// Kind classifies a set of cards played together.
type Kind int

const (
	KindNone Kind = iota
	KindSingle
	KindDouble
	KindTriple
	KindQuad
	KindSequence
	KindDoubleSequence
)

var kindNames = map[Kind]string{
	KindNone:           "none",
	KindSingle:         "single",
	KindDouble:         "double",
	KindTriple:         "triple",
	KindQuad:           "quad",
	KindSequence:       "sequence",
	KindDoubleSequence: "double_sequence",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown combo kind %q", string(b))
}

// Combo is a classified play. Length is the card count for multiples and sequences and the
// pair count for double sequences. Cards are sorted ascending by the ordering key.
type Combo struct {
	Kind   Kind          `json:"kind"`
	Length int           `json:"length"`
	Cards  []models.Card `json:"cards,omitempty"`
}

// Empty reports whether no combo is on the table.
func (c Combo) Empty() bool {
	return c.Kind == KindNone
}

// Top is the strongest card of the combo.
func (c Combo) Top() models.Card {
	return c.Cards[len(c.Cards)-1]
}

func (c Combo) isMultiple() bool {
	return c.Kind >= KindSingle && c.Kind <= KindQuad
}

func (c Combo) clone() Combo {
	out := c
	out.Cards = append([]models.Card(nil), c.Cards...)
	return out
}

var multipleKinds = [...]Kind{KindNone, KindSingle, KindDouble, KindTriple, KindQuad}

// Classify sorts a copy of cards and returns its combo, KindNone if the set is illegal.
func (o Ordering) Classify(cards []models.Card) Combo {
	if len(cards) == 0 {
		return Combo{}
	}
	sorted := append([]models.Card(nil), cards...)
	o.Sort(sorted)

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return Combo{}
		}
	}

	if len(sorted) <= 4 && sameRank(sorted) {
		return Combo{Kind: multipleKinds[len(sorted)], Length: len(sorted), Cards: sorted}
	}
	if isSequence(sorted, 1) {
		return Combo{Kind: KindSequence, Length: len(sorted), Cards: sorted}
	}
	if isSequence(sorted, 2) {
		return Combo{Kind: KindDoubleSequence, Length: len(sorted) / 2, Cards: sorted}
	}
	return Combo{}
}

func sameRank(cards []models.Card) bool {
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank {
			return false
		}
	}
	return true
}

// isSequence checks for at least three consecutive rank steps with exactly width cards per
// step. Neither 2s nor the rank-0 specials may take part.
func isSequence(sorted []models.Card, width int) bool {
	if len(sorted)%width != 0 || len(sorted)/width < 3 {
		return false
	}
	prev := -2
	for i := 0; i < len(sorted); i += width {
		key := RankKey(sorted[i].Rank)
		if key == twoKey || key < 0 {
			return false
		}
		for j := i + 1; j < i+width; j++ {
			if sorted[j].Rank != sorted[i].Rank {
				return false
			}
		}
		if prev != -2 && key != prev+1 {
			return false
		}
		prev = key
	}
	return true
}

// Beats reports whether challenger may be played on top of top.
//
// Bomb hierarchy: a quad beats a single or a pair of 2s and any lower quad. A double
// sequence of k pairs beats a multiple of 2s holding fewer than k cards, and a quad when
// k >= 4. Otherwise kinds must match (same length for sequences) with a higher top card.
func (o Ordering) Beats(challenger, top Combo) bool {
	if challenger.Empty() {
		return false
	}
	if top.Empty() {
		return challenger.Kind != KindQuad && challenger.Kind != KindDoubleSequence
	}

	higher := o.Key(challenger.Top()) > o.Key(top.Top())

	switch top.Kind {
	case KindSingle, KindDouble, KindTriple:
		if challenger.Kind == top.Kind {
			return higher
		}
		if RankKey(top.Top().Rank) != twoKey {
			return false
		}
		switch challenger.Kind {
		case KindQuad:
			return top.Length <= 2
		case KindDoubleSequence:
			return challenger.Length > top.Length
		}
		return false
	case KindQuad:
		if challenger.Kind == KindQuad {
			return higher
		}
		return challenger.Kind == KindDoubleSequence && challenger.Length >= 4
	case KindSequence, KindDoubleSequence:
		return challenger.Kind == top.Kind && challenger.Length == top.Length && higher
	}
	return false
}
