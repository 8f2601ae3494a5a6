package vietcong

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jason-s-yu/cardhall/internal/models"
)

var std = NewOrdering(DefaultSuitOrder)

func combo(s string) Combo {
	return std.Classify(models.MustParseCards(s))
}

func TestOrderingKey(t *testing.T) {
	c := models.MustParseCards
	assert.Less(t, std.Key(c("3S")[0]), std.Key(c("3C")[0]))
	assert.Less(t, std.Key(c("3C")[0]), std.Key(c("3D")[0]))
	assert.Less(t, std.Key(c("3D")[0]), std.Key(c("3H")[0]))
	assert.Less(t, std.Key(c("3H")[0]), std.Key(c("4S")[0]))
	assert.Less(t, std.Key(c("AH")[0]), std.Key(c("2S")[0]))
	assert.Less(t, std.Key(c("0H")[0]), std.Key(c("3S")[0]), "low specials sit below 3")

	reversed := NewOrdering([]models.Suit{models.SuitHeart, models.SuitDiamond, models.SuitClub, models.SuitSpade})
	assert.Greater(t, reversed.Key(c("3S")[0]), reversed.Key(c("3H")[0]))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		cards  string
		kind   Kind
		length int
	}{
		{"3S", KindSingle, 1},
		{"3S 3H", KindDouble, 2},
		{"3S 3C 3D", KindTriple, 3},
		{"9S 9C 9D 9H", KindQuad, 4},
		{"5D 3S 4C", KindSequence, 3},
		{"QS KS AS", KindSequence, 3},
		{"3S 4S 5S 6S 7S 8S 9S TS JS QS KS AS", KindSequence, 12},
		{"3S 3C 4D 4H 5S 5C", KindDoubleSequence, 3},
		{"KS AS 2S", KindNone, 0},
		{"AS 2S 3S", KindNone, 0},
		{"0S 3S 4S", KindNone, 0},
		{"0S 0H", KindDouble, 2},
		{"3S 3S", KindNone, 0},
		{"3S 5S 6S", KindNone, 0},
		{"3S 4S", KindNone, 0},
		{"3S 3C 4D 4H", KindNone, 0},
		{"3S 3C 3D 4H 4S 5C", KindNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			got := combo(tt.cards)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.length, got.Length)
		})
	}
}

func TestClassifySortsCards(t *testing.T) {
	got := combo("5D 3S 4C")
	assert.Equal(t, models.MustParseCards("3S 4C 5D"), got.Cards)
}

func TestBeats(t *testing.T) {
	tests := []struct {
		name       string
		challenger string
		top        string
		want       bool
	}{
		{"single higher rank", "4S", "3H", true},
		{"single higher suit", "3H", "3S", true},
		{"single lower suit", "3S", "3H", false},
		{"double vs single", "4S 4C", "3H", false},
		{"double higher", "4S 4C", "3H 3D", true},
		{"triple higher", "5S 5C 5D", "4S 4C 4D", true},
		{"sequence same length higher", "4S 5S 6C", "3H 4H 5H", true},
		{"sequence top card suit decides", "3S 4S 5H", "3H 4H 5D", true},
		{"sequence different length", "4S 5S 6S 7S", "3H 4H 5H", false},
		{"sequence lower", "3S 4S 5S", "4H 5H 6H", false},
		{"double sequence higher", "4S 4C 5S 5C 6S 6C", "3S 3C 4D 4H 5D 5H", true},
		{"quad beats single two", "5S 5C 5D 5H", "2S", true},
		{"quad beats pair of twos", "5S 5C 5D 5H", "2S 2H", true},
		{"quad vs triple twos", "5S 5C 5D 5H", "2S 2C 2H", false},
		{"quad vs single non-two", "5S 5C 5D 5H", "AH", false},
		{"higher quad", "6S 6C 6D 6H", "5S 5C 5D 5H", true},
		{"lower quad", "4S 4C 4D 4H", "5S 5C 5D 5H", false},
		{"three pairs beat single two", "3S 3C 4S 4C 5S 5C", "2H", true},
		{"three pairs beat pair of twos", "3S 3C 4S 4C 5S 5C", "2H 2D", true},
		{"three pairs vs triple twos", "3S 3C 4S 4C 5S 5C", "2H 2D 2C", false},
		{"four pairs beat triple twos", "3S 3C 4S 4C 5S 5C 6S 6C", "2H 2D 2C", true},
		{"four pairs beat quad", "3S 3C 4S 4C 5S 5C 6S 6C", "AS AC AD AH", true},
		{"three pairs vs quad", "3S 3C 4S 4C 5S 5C", "AS AC AD AH", false},
		{"three pairs vs non-two single", "3S 3C 4S 4C 5S 5C", "AH", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, std.Beats(combo(tt.challenger), combo(tt.top)))
		})
	}
}

func TestBeatsEmptyTop(t *testing.T) {
	assert.True(t, std.Beats(combo("3S"), Combo{}))
	assert.True(t, std.Beats(combo("3S 4S 5S"), Combo{}))
	assert.False(t, std.Beats(combo("5S 5C 5D 5H"), Combo{}))
	assert.False(t, std.Beats(combo("3S 3C 4S 4C 5S 5C"), Combo{}))
	assert.False(t, std.Beats(Combo{}, Combo{}))
}
