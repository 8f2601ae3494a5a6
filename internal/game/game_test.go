// internal/game/game_test.go
package game

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// recordingSink collects sink calls instead of sending them anywhere.
type recordingSink struct {
	mu       sync.Mutex
	states   []engine.State
	finished []models.Results
	order    []string

	// gate, when set, blocks every delivery until it is closed.
	gate chan struct{}
	fail bool
}

func (r *recordingSink) StateChanged(ctx context.Context, st engine.State) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
	r.order = append(r.order, "state")
	if r.fail {
		return errors.New("sink down")
	}
	return nil
}

func (r *recordingSink) GameFinished(ctx context.Context, gameID string, variant engine.Variant, results models.Results) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, results)
	r.order = append(r.order, "finished")
	return nil
}

func (r *recordingSink) seqs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.states))
	for i, st := range r.states {
		out[i] = st.Seq
	}
	return out
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func give(from, to, cards string) models.Turn {
	t := models.Turn{PlayerID: from, Kind: models.TurnPlay}
	for _, c := range models.MustParseCards(cards) {
		t.Transactions = append(t.Transactions, models.Transaction{Card: c, From: from, To: to})
	}
	return t
}

func TestTableEmitsInitialAndAcceptedStates(t *testing.T) {
	sink := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), sink)
	require.NoError(t, err)

	assert.True(t, tbl.Submit(give("p", "q", "AC")))
	assert.False(t, tbl.Submit(give("p", "q", "2C")), "out of turn")
	assert.False(t, tbl.Submit(give("q", "p", "3C")), "not q's card")
	assert.True(t, tbl.Submit(models.Turn{PlayerID: "q", Kind: models.TurnPass}))
	tbl.Close()

	assert.Equal(t, []int{0, 1, 2}, sink.seqs(), "rejected turns emit nothing")
	assert.Empty(t, sink.finished)
	assert.Equal(t, tbl.ID, sink.states[0].GameID)
	assert.Equal(t, tbl.CreatedAt, sink.states[0].CreatedAt)
}

func TestRejectedTurnLeavesStateUntouched(t *testing.T) {
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger())
	require.NoError(t, err)
	defer tbl.Close()

	before := tbl.Export()
	err = tbl.Play(give("p", "q", "AD"))
	assert.ErrorIs(t, err, engine.ErrOwnershipViolation)
	assert.Equal(t, before, tbl.Export())
}

func TestResubmittedRejectionIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), sink)
	require.NoError(t, err)
	require.True(t, tbl.Submit(give("p", "q", "AC")))

	bad := give("q", "p", "2C")
	before := tbl.Export()
	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, tbl.Play(bad), engine.ErrOwnershipViolation)
		assert.Equal(t, before, tbl.Export())
	}
	tbl.Close()
	assert.Equal(t, []int{0, 1}, sink.seqs())
	assert.Equal(t, []string{"state", "state"}, sink.order)
}

func TestGameFinishedFiresOnce(t *testing.T) {
	sink := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), sink)
	require.NoError(t, err)

	require.True(t, tbl.Submit(give("p", "q", "AC 2C 3C 4C 5C 6C 7C 8C 9C TC")))
	assert.False(t, tbl.Submit(models.Turn{PlayerID: "q", Kind: models.TurnPass}))
	assert.True(t, tbl.Finished())
	tbl.Close()

	assert.Equal(t, []string{"state", "state", "finished"}, sink.order)
	require.Len(t, sink.finished, 1)
	assert.True(t, sink.finished[0]["p"].Won)
	assert.Equal(t, 2, sink.finished[0]["q"].Placement)
	assert.Equal(t, engine.StatusFinished, sink.states[1].Status)
}

func TestSlowSinkDoesNotBlockTurns(t *testing.T) {
	slow := &recordingSink{gate: make(chan struct{})}
	fast := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), slow, fast)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			assert.True(t, tbl.Submit(models.Turn{PlayerID: tbl.Export().CurrentPlayer, Kind: models.TurnPass}))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("turns blocked behind a slow sink")
	}

	require.Eventually(t, func() bool { return len(fast.seqs()) == 6 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, slow.seqs())

	close(slow.gate)
	tbl.Close()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, slow.seqs(), "delivery keeps production order")
}

func TestFailingSinkIsIsolated(t *testing.T) {
	broken := &recordingSink{fail: true}
	ok := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), broken, ok)
	require.NoError(t, err)

	assert.True(t, tbl.Submit(models.Turn{PlayerID: "p", Kind: models.TurnPass}))
	tbl.Close()
	assert.Equal(t, []int{0, 1}, broken.seqs())
	assert.Equal(t, []int{0, 1}, ok.seqs())
}

func TestCloseIsIdempotentAndDropsLateEvents(t *testing.T) {
	sink := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), sink)
	require.NoError(t, err)
	tbl.Close()
	tbl.Close()

	assert.True(t, tbl.Submit(models.Turn{PlayerID: "p", Kind: models.TurnPass}))
	assert.Equal(t, []int{0}, sink.seqs())
}

// brokenRules accepts every turn and then fails to apply it.
type brokenRules struct {
	engine.Rules
}

func (brokenRules) Validate(t models.Turn) (models.Turn, error) { return t, nil }
func (brokenRules) Apply(models.Turn) error {
	return engine.ErrRegistryDesync
}

func TestDesyncAbortsTable(t *testing.T) {
	sink := &recordingSink{}
	tbl, err := NewTable(engine.VariantSimple, []string{"p", "q"}, Options{}, testLogger(), sink)
	require.NoError(t, err)
	tbl.rules = brokenRules{tbl.rules}

	err = tbl.Play(models.Turn{PlayerID: "p", Kind: models.TurnPass})
	assert.ErrorIs(t, err, ErrTableAborted)
	assert.True(t, tbl.Aborted())
	assert.ErrorIs(t, tbl.Play(models.Turn{PlayerID: "p", Kind: models.TurnPass}), ErrTableAborted)

	tbl.Close()
	assert.Equal(t, []int{0}, sink.seqs())
}

func TestViewForAndSyncState(t *testing.T) {
	tbl, err := NewTable(engine.VariantVietCong, []string{"a", "b", "c", "d"}, Options{Seed: 11}, testLogger())
	require.NoError(t, err)
	defer tbl.Close()

	view := tbl.ViewFor("a")
	assert.Len(t, view.Owners["a"].Cards, 13)
	assert.Nil(t, view.Owners["b"].Cards)
	assert.Equal(t, 13, view.Owners["b"].Count)

	ev := tbl.SyncState("b")
	assert.Equal(t, EventPrivateSyncState, ev.Type)
	require.NotNil(t, ev.State)
	assert.Len(t, ev.State.Owners["b"].Cards, 13)
	assert.Nil(t, ev.State.Owners["a"].Cards)

	assert.Contains(t, string(EncodeEvent(ev)), `"type":"private_sync_state"`)
}

func TestSeededTablesDealIdentically(t *testing.T) {
	players := []string{"a", "b", "c", "d", "e", "f"}
	t1, err := NewTable(engine.VariantFish, players, Options{Seed: 42}, testLogger())
	require.NoError(t, err)
	t2, err := NewTable(engine.VariantFish, players, Options{Seed: 42}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, t1.Export().Owners, t2.Export().Owners)
	assert.NotEqual(t, t1.ID, t2.ID)
}
