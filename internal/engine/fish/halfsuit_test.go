package fish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/cardhall/internal/models"
)

func TestHalfSuitPartition(t *testing.T) {
	deck := Deck()
	require.Len(t, deck, 54)

	seen := make(map[models.Card]bool)
	for h := 0; h < HalfSuitCount; h++ {
		cards := HalfSuitCards(h)
		require.Len(t, cards, 6, HalfSuitNames[h])
		for _, c := range cards {
			assert.False(t, seen[c], "%s appears twice", c)
			seen[c] = true
			assert.Equal(t, h, HalfSuitOf(c), "%s", c)
		}
	}
}

func TestHalfSuitOf(t *testing.T) {
	tests := []struct {
		card string
		want int
	}{
		{"2S", 0},
		{"7H", 1},
		{"4D", 2},
		{"3C", 3},
		{"8D", MiddleHalfSuit},
		{"0H", MiddleHalfSuit},
		{"0S", MiddleHalfSuit},
		{"9S", 5},
		{"AH", 6},
		{"KD", 7},
		{"TC", 8},
		{"0C", -1},
		{"3N", -1},
	}
	for _, tt := range tests {
		t.Run(tt.card, func(t *testing.T) {
			assert.Equal(t, tt.want, HalfSuitOf(models.MustParseCards(tt.card)[0]))
		})
	}
	assert.Nil(t, HalfSuitCards(9))
	assert.Equal(t, "8 & Joker", HalfSuitNames[MiddleHalfSuit])
}
