package rx

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// registry is the shared broadcast machinery behind Subject and
// ReplaySubject: a token-keyed, registration-ordered callback table with an
// active gate that the first terminal event closes.
type registry[V, E any] struct {
	mu        sync.Mutex
	closed    bool
	lastToken atomic.Uint64
	table     *orderedmap.OrderedMap[uint64, func(Event[V, E])]
}

// init sets up the table; registries are always embedded and initialized in
// place, never copied.
func (r *registry[V, E]) init() {
	r.table = orderedmap.New[uint64, func(Event[V, E])]()
}

// add registers callback under a fresh token. Tokens come from a
// monotonically increasing counter that wraps around naturally.
func (r *registry[V, E]) add(callback func(Event[V, E])) uint64 {
	token := r.lastToken.Inc()
	r.mu.Lock()
	r.table.Set(token, callback)
	r.mu.Unlock()
	return token
}

func (r *registry[V, E]) remove(token uint64) {
	r.mu.Lock()
	r.table.Delete(token)
	r.mu.Unlock()
}

// gate checks the active flag, closing it for a terminal event, and returns
// a registration-ordered snapshot to broadcast to. The snapshot is taken
// under the lock and invoked outside it, so a callback may dispose its own
// registration, or add a new one, during dispatch without deadlocking or
// invalidating iteration. A nil snapshot with ok=false means the event must
// be discarded.
func (r *registry[V, E]) gate(ev Event[V, E]) (targets []func(Event[V, E]), ok bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, false
	}
	if ev.IsFinal() {
		r.closed = true
	}
	targets = make([]func(Event[V, E]), 0, r.table.Len())
	for pair := r.table.Oldest(); pair != nil; pair = pair.Next() {
		targets = append(targets, pair.Value)
	}
	r.mu.Unlock()
	return targets, true
}

func (r *registry[V, E]) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Subject is a hot multicast broadcaster: every registered subscriber
// receives the same event sequence, in registration order. Once a terminal
// event has been sent the subject goes inactive and further sends are
// silently discarded.
type Subject[V, E any] struct {
	reg registry[V, E]
}

func NewSubject[V, E any]() *Subject[V, E] {
	s := &Subject[V, E]{}
	s.reg.init()
	return s
}

// Subscribe registers callback for future events and returns a disposable
// that removes exactly this registration. The disposable captures only the
// subject and the token, never the callback.
func (s *Subject[V, E]) Subscribe(callback func(Event[V, E])) *Disposable {
	token := s.reg.add(callback)
	return NewDisposable(func() { s.reg.remove(token) })
}

// Send broadcasts ev to every registered callback. Sends after a terminal
// event are no-ops.
func (s *Subject[V, E]) Send(ev Event[V, E]) {
	targets, ok := s.reg.gate(ev)
	if !ok {
		logger.Load().Debug("subject discarded event after terminal",
			zap.Stringer("kind", ev.Kind))
		return
	}
	for _, callback := range targets {
		callback(ev)
	}
}

// Next broadcasts a data item.
func (s *Subject[V, E]) Next(value V) {
	s.Send(Event[V, E]{Kind: EventNext, Value: value})
}

// Fail broadcasts a terminal error.
func (s *Subject[V, E]) Fail(err E) {
	s.Send(Event[V, E]{Kind: EventError, Err: err})
}

// Finish broadcasts completion.
func (s *Subject[V, E]) Finish() {
	s.Send(Event[V, E]{Kind: EventFinished})
}

// IsActive reports whether the subject still accepts sends.
func (s *Subject[V, E]) IsActive() bool {
	return s.reg.active()
}

// AsChannel adapts the subject into a Channel handle so the combinator layer
// applies to it. The channel stays hot: subscribing registers with the
// subject rather than producing anything.
func (s *Subject[V, E]) AsChannel() Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		return s.Subscribe(sink.Send)
	})
}
