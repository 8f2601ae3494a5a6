// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit identifies the suit of a card. The numeric values are part of the wire format.
type Suit int

const (
	SuitNone Suit = iota
	SuitClub
	SuitDiamond
	SuitHeart
	SuitSpade
)

// Suits lists the four real suits in declaration order.
var Suits = []Suit{SuitClub, SuitDiamond, SuitHeart, SuitSpade}

const (
	RankSpecial = 0 // joker (Fish) or low special (56-card Viet Cong deck)
	RankAce     = 1
	RankTwo     = 2
	RankEight   = 8
	RankJack    = 11
	RankQueen   = 12
	RankKing    = 13
)

// Card is an immutable rank/suit value. Two cards are equal iff rank and suit match,
// so Card is usable directly as a map key.
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

var (
	RedJoker   = Card{Rank: RankSpecial, Suit: SuitHeart}
	BlackJoker = Card{Rank: RankSpecial, Suit: SuitSpade}
)

// Valid reports whether the card has an in-range rank and suit.
func (c Card) Valid() bool {
	return c.Rank >= 0 && c.Rank <= RankKing && c.Suit >= SuitNone && c.Suit <= SuitSpade
}

var rankLetters = []string{"0", "A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}

func (s Suit) Letter() string {
	switch s {
	case SuitClub:
		return "C"
	case SuitDiamond:
		return "D"
	case SuitHeart:
		return "H"
	case SuitSpade:
		return "S"
	}
	return "N"
}

func (s Suit) String() string {
	switch s {
	case SuitClub:
		return "club"
	case SuitDiamond:
		return "diamond"
	case SuitHeart:
		return "heart"
	case SuitSpade:
		return "spade"
	}
	return "none"
}

// String renders the short form used in logs and test fixtures, e.g. "3S", "TH", "0H".
func (c Card) String() string {
	if c.Rank < 0 || c.Rank >= len(rankLetters) {
		return fmt.Sprintf("?%d%s", c.Rank, c.Suit.Letter())
	}
	return rankLetters[c.Rank] + c.Suit.Letter()
}

// ParseCard parses the short form produced by Card.String. "10" is accepted for ten.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]
	if rankPart == "10" {
		rankPart = "T"
	}

	rank := -1
	for i, l := range rankLetters {
		if l == rankPart {
			rank = i
			break
		}
	}
	if rank < 0 {
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	var suit Suit
	switch suitPart {
	case "C":
		suit = SuitClub
	case "D":
		suit = SuitDiamond
	case "H":
		suit = SuitHeart
	case "S":
		suit = SuitSpade
	case "N":
		suit = SuitNone
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCards parses a space separated list of short-form cards and panics on error.
// Intended for fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// UnmarshalJSON accepts either the object form {"rank":3,"suit":4} or the short string "3S".
func (c *Card) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseCard(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	type plain Card
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Card(p)
	if !c.Valid() {
		return fmt.Errorf("card out of range: rank %d suit %d", c.Rank, c.Suit)
	}
	return nil
}
