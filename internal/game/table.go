// internal/game/table.go
package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	// ErrTableAborted is returned for every turn after a registry desync.
	ErrTableAborted = errors.New("table aborted")
)

// Table holds one live game. mu is the game's exclusive slot: validation, mutation, export
// and the enqueueing of sink events all happen while it is held.
type Table struct {
	ID        string
	Variant   engine.Variant
	CreatedAt time.Time

	mu       sync.Mutex
	rules    engine.Rules
	seq      int
	aborted  bool
	finished bool

	outboxes  []*outbox
	closeOnce sync.Once
	logger    *logrus.Entry

	// onFinish runs once, under mu, right after the results are enqueued.
	onFinish func(*Table)
}

// NewTable deals a new game and emits its initial snapshot to every sink.
func NewTable(v engine.Variant, players []string, opts Options, logger *logrus.Logger, sinks ...Sink) (*Table, error) {
	return newTable(v, players, opts, logger, nil, sinks...)
}

func newTable(v engine.Variant, players []string, opts Options, logger *logrus.Logger, onFinish func(*Table), sinks ...Sink) (*Table, error) {
	if err := engine.CheckPlayers(v, players); err != nil {
		return nil, err
	}
	rules, err := newRules(v, players, opts)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	t := &Table{
		ID:        id,
		Variant:   v,
		CreatedAt: time.Now().UTC(),
		rules:     rules,
		onFinish:  onFinish,
		logger:    logger.WithFields(logrus.Fields{"game": id, "variant": v}),
	}
	for _, s := range sinks {
		t.outboxes = append(t.outboxes, newOutbox(s, t.logger))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.publish()
	t.logger.Infof("Game %s: created for %v", id, players)
	return t, nil
}

// Submit reports whether the turn was accepted.
func (t *Table) Submit(turn models.Turn) bool {
	return t.Play(turn) == nil
}

// Play is Submit with the rejection reason. A rejected turn changes nothing and emits
// nothing.
func (t *Table) Play(turn models.Turn) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.aborted {
		return ErrTableAborted
	}

	norm, err := t.rules.Validate(turn)
	if err != nil {
		t.logger.Debugf("Game %s: rejected %s from %s: %v", t.ID, turn.Kind, turn.PlayerID, err)
		return err
	}
	if err := t.rules.Apply(norm); err != nil {
		t.aborted = true
		t.logger.Errorf("Game %s: aborting after failed apply of a validated %s: %v", t.ID, turn.Kind, err)
		return fmt.Errorf("%w: %v", ErrTableAborted, err)
	}

	t.seq++
	t.logger.Debugf("Game %s: accepted %s from %s (seq %d)", t.ID, norm.Kind, norm.PlayerID, t.seq)
	t.publish()
	return nil
}

// publish enqueues the current snapshot, and the results once the game is over.
// Caller holds mu.
func (t *Table) publish() {
	st := t.export()
	for _, o := range t.outboxes {
		o.push(event{state: &st})
	}
	if t.finished || !t.rules.Finished() {
		return
	}
	t.finished = true
	results := t.rules.Results()
	t.logger.Infof("Game %s: finished with results %v", t.ID, results)
	for _, o := range t.outboxes {
		o.push(event{finished: &finishedEvent{gameID: t.ID, variant: t.Variant, results: copyResults(results)}})
	}
	if t.onFinish != nil {
		t.onFinish(t)
	}
}

func copyResults(r models.Results) models.Results {
	out := make(models.Results, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (t *Table) export() engine.State {
	st := engine.Export(t.ID, t.seq, t.rules)
	st.CreatedAt = t.CreatedAt
	return st
}

// Export returns the full snapshot. It has no side effects.
func (t *Table) Export() engine.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.export()
}

// ViewFor returns the snapshot with other players' hands hidden.
func (t *Table) ViewFor(player string) engine.State {
	return t.Export().ViewFor(player)
}

// Players returns the seat order.
func (t *Table) Players() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.rules.Machine().Players...)
}

// Finished reports whether the game has ended.
func (t *Table) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rules.Finished()
}

// Aborted reports whether the table stopped after a registry desync.
func (t *Table) Aborted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aborted
}

// Close waits for every queued sink event to be delivered. Later events are dropped.
func (t *Table) Close() {
	t.closeOnce.Do(func() {
		for _, o := range t.outboxes {
			o.close()
		}
	})
}
