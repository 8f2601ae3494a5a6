package game

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// TableStore tracks live tables. The lock only guards the map; turns run under each
// table's own lock so different games never wait on each other.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string]*Table

	sinks  []Sink
	logger *logrus.Logger

	// Retention keeps a finished table readable for a while before it is dropped. Its
	// sinks are released as soon as it finishes either way.
	Retention time.Duration
}

// NewTableStore attaches sinks to every table it creates.
func NewTableStore(logger *logrus.Logger, sinks ...Sink) *TableStore {
	return &TableStore{
		tables: make(map[string]*Table),
		sinks:  sinks,
		logger: logger,
	}
}

// Create deals a new table and registers it.
func (s *TableStore) Create(v engine.Variant, players []string, opts Options) (*Table, error) {
	t, err := newTable(v, players, opts, s.logger, s.release, s.sinks...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tables[t.ID] = t
	s.mu.Unlock()
	return t, nil
}

func (s *TableStore) Get(id string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}

// SubmitTurn routes a turn to its table. The error is only set for an unknown game id.
func (s *TableStore) SubmitTurn(id string, turn models.Turn) (bool, error) {
	t, ok := s.Get(id)
	if !ok {
		return false, ErrGameNotFound
	}
	return t.Submit(turn), nil
}

// release is the finish hook of every table the store creates. It runs under the table's
// lock, so the drain happens on its own goroutine.
func (s *TableStore) release(t *Table) {
	go t.Close()
	if s.Retention <= 0 {
		s.forget(t)
		return
	}
	time.AfterFunc(s.Retention, func() { s.forget(t) })
}

// forget drops t unless the id was already deleted.
func (s *TableStore) forget(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tables[t.ID]; ok && cur == t {
		delete(s.tables, t.ID)
	}
}

// Delete unregisters a table and drains its sinks.
func (s *TableStore) Delete(id string) {
	s.mu.Lock()
	t, ok := s.tables[id]
	delete(s.tables, id)
	s.mu.Unlock()
	if ok {
		t.Close()
	}
}

// IDs lists the live table ids.
func (s *TableStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tables))
	for id := range s.tables {
		out = append(out, id)
	}
	return out
}

// Close drains every table. Used on shutdown.
func (s *TableStore) Close() {
	s.mu.Lock()
	tables := s.tables
	s.tables = make(map[string]*Table)
	s.mu.Unlock()
	for _, t := range tables {
		t.Close()
	}
}
