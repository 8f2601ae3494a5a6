package game

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// deliverTimeout bounds a single sink call.
const deliverTimeout = 5 * time.Second

type event struct {
	state    *engine.State
	finished *finishedEvent
}

type finishedEvent struct {
	gameID  string
	variant engine.Variant
	results models.Results
}

// outbox feeds one sink for one table. push never blocks: events queue in an unbounded
// slice and a single goroutine delivers them in push order.
type outbox struct {
	sink   Sink
	logger *logrus.Entry

	mu     sync.Mutex
	queue  []event
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newOutbox(sink Sink, logger *logrus.Entry) *outbox {
	o := &outbox{
		sink:   sink,
		logger: logger,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *outbox) push(ev event) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.queue = append(o.queue, ev)
	o.mu.Unlock()
	o.wake()
}

func (o *outbox) wake() {
	select {
	case o.signal <- struct{}{}:
	default:
	}
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		batch := o.queue
		o.queue = nil
		closed := o.closed
		o.mu.Unlock()

		if len(batch) == 0 {
			if closed {
				return
			}
			<-o.signal
			continue
		}
		for _, ev := range batch {
			o.deliver(ev)
		}
	}
}

func (o *outbox) deliver(ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	var err error
	switch {
	case ev.state != nil:
		err = o.sink.StateChanged(ctx, *ev.state)
	case ev.finished != nil:
		err = o.sink.GameFinished(ctx, ev.finished.gameID, ev.finished.variant, ev.finished.results)
	}
	if err != nil {
		o.logger.Warnf("sink %T delivery failed: %v", o.sink, err)
	}
}

// close stops accepting events and waits until everything queued has been delivered.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.wake()
	<-o.done
}
