package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"vietcong":  VariantVietCong,
		"Viet Cong": VariantVietCong,
		"viet_cong": VariantVietCong,
		"FISH":      VariantFish,
		"simple":    VariantSimple,
	}
	for in, want := range tests {
		got, err := ParseVariant(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseVariant("poker")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestCheckPlayers(t *testing.T) {
	assert.NoError(t, CheckPlayers(VariantSimple, []string{"a", "b"}))
	assert.ErrorIs(t, CheckPlayers(VariantSimple, []string{"a"}), ErrInvalidPlayerCount)
	assert.ErrorIs(t, CheckPlayers(VariantSimple, []string{"a", "a"}), ErrInvalidPlayerCount)
	assert.ErrorIs(t, CheckPlayers(VariantSimple, []string{"a", ""}), ErrInvalidPlayerCount)
	assert.ErrorIs(t, CheckPlayers("bridge", []string{"a", "b"}), ErrUnknownVariant)
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(Illegalf("bad combo")))
	assert.True(t, IsRejection(Protocolf("wrong phase")))
	assert.True(t, IsRejection(ErrGameFinished))
	assert.False(t, IsRejection(ErrRegistryDesync))
}
