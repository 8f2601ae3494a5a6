package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/cardhall/internal/models"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.AddOwner("alice", true))
	require.NoError(t, r.AddOwner("bob", true))
	require.NoError(t, r.AddOwner("pile", false))
	require.NoError(t, r.Deal("alice", models.MustParseCards("3S 4S 5S")...))
	require.NoError(t, r.Deal("bob", models.MustParseCards("3H 4H")...))
	return r
}

func TestAddOwnerRejectsDuplicates(t *testing.T) {
	r := newRegistry(t)
	assert.Error(t, r.AddOwner("alice", true))
	assert.Error(t, r.AddOwner("", false))
	assert.Equal(t, []string{"alice", "bob", "pile"}, r.OwnerIDs())
}

func TestDealRejectsDoubleDeal(t *testing.T) {
	r := newRegistry(t)
	assert.Error(t, r.Deal("bob", models.MustParseCards("3S")...))
	assert.Error(t, r.Deal("nobody", models.MustParseCards("9C")...))
	assert.Equal(t, 5, r.Total())
	require.NoError(t, r.Check())
}

func TestTransact(t *testing.T) {
	r := newRegistry(t)
	c := models.MustParseCards("4S")[0]

	require.NoError(t, r.Transact(c, "alice", "pile"))
	assert.True(t, r.Holds("pile", c))
	assert.Equal(t, models.MustParseCards("3S 5S"), r.Cards("alice"), "order of the rest is kept")
	assert.Equal(t, []models.Card{c}, r.Cards("pile"))
	require.NoError(t, r.Check())
}

func TestTransactFailureHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		card     string
		from, to string
	}{
		{"wrong holder", "3H", "alice", "pile"},
		{"undealt card", "9C", "alice", "pile"},
		{"unknown destination", "3S", "alice", "nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t)
			err := r.Transact(models.MustParseCards(tt.card)[0], tt.from, tt.to)
			assert.ErrorIs(t, err, ErrOwnershipViolation)
			assert.Equal(t, 3, r.Count("alice"))
			assert.Equal(t, 2, r.Count("bob"))
			assert.Equal(t, 0, r.Count("pile"))
			require.NoError(t, r.Check())
		})
	}
}

func TestVerifyAllowsChainedMoves(t *testing.T) {
	r := newRegistry(t)
	c := models.MustParseCards("3S")[0]
	chain := []models.Transaction{
		{Card: c, From: "alice", To: "bob", Success: true},
		{Card: c, From: "bob", To: "pile", Success: true},
	}
	require.NoError(t, r.Verify(chain, false))
	assert.True(t, r.Holds("alice", c), "verify never mutates")

	broken := []models.Transaction{
		{Card: c, From: "alice", To: "bob", Success: true},
		{Card: c, From: "alice", To: "pile", Success: true},
	}
	assert.ErrorIs(t, r.Verify(broken, false), ErrOwnershipViolation)
}

func TestVerifySkipsUnflaggedUnlessAll(t *testing.T) {
	r := newRegistry(t)
	txs := []models.Transaction{{Card: models.MustParseCards("3H")[0], From: "alice", To: "pile"}}
	assert.NoError(t, r.Verify(txs, false))
	assert.ErrorIs(t, r.Verify(txs, true), ErrOwnershipViolation)
}

func TestCheckDetectsDesync(t *testing.T) {
	r := newRegistry(t)
	r.owners["bob"].Cards = append(r.owners["bob"].Cards, models.MustParseCards("3S")[0])
	assert.ErrorIs(t, r.Check(), ErrRegistryDesync)

	r = newRegistry(t)
	r.owners["alice"].Cards = r.owners["alice"].Cards[:2]
	assert.ErrorIs(t, r.Check(), ErrRegistryDesync)
	assert.ErrorIs(t, r.Transact(models.MustParseCards("5S")[0], "alice", "pile"), ErrRegistryDesync)
}
