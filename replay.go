package rx

import (
	"go.uber.org/zap"
)

// ReplaySubject is a Subject that buffers recent events so late subscribers
// catch up: a new subscriber first receives the buffered events, in original
// order, before any subsequent broadcast. The buffer keeps the last size
// data events plus, once the stream terminates, the terminal event, so it
// never exceeds size+1 entries.
type ReplaySubject[V, E any] struct {
	reg  registry[V, E]
	size int
	// buffered is guarded by reg.mu.
	buffered []Event[V, E]
}

func NewReplaySubject[V, E any](size int) *ReplaySubject[V, E] {
	if size < 0 {
		size = 0
	}
	s := &ReplaySubject[V, E]{size: size}
	s.reg.init()
	return s
}

// Subscribe replays the buffered events to callback, then keeps it
// registered for everything sent afterwards. A subscriber joining after the
// terminal event therefore still observes it. Registration and the buffer
// snapshot happen atomically, so no event is lost or duplicated, but the
// replay itself runs outside the subject's lock: an event sent concurrently
// with Subscribe may reach the callback interleaved ahead of the replay
// tail.
func (s *ReplaySubject[V, E]) Subscribe(callback func(Event[V, E])) *Disposable {
	token := s.reg.lastToken.Inc()
	s.reg.mu.Lock()
	replay := make([]Event[V, E], len(s.buffered))
	copy(replay, s.buffered)
	s.reg.table.Set(token, callback)
	s.reg.mu.Unlock()
	for _, ev := range replay {
		callback(ev)
	}
	return NewDisposable(func() { s.reg.remove(token) })
}

// Send appends ev to the bounded buffer, trims the oldest entries, then
// broadcasts. Sends after a terminal event are no-ops.
func (s *ReplaySubject[V, E]) Send(ev Event[V, E]) {
	s.reg.mu.Lock()
	if s.reg.closed {
		s.reg.mu.Unlock()
		logger.Load().Debug("replay subject discarded event after terminal",
			zap.Stringer("kind", ev.Kind))
		return
	}
	if ev.IsFinal() {
		s.reg.closed = true
	}
	s.buffered = append(s.buffered, ev)
	limit := s.size
	if ev.IsFinal() {
		// The terminal event gets the reserved extra slot.
		limit = s.size + 1
	}
	for len(s.buffered) > limit {
		s.buffered = s.buffered[1:]
	}
	targets := make([]func(Event[V, E]), 0, s.reg.table.Len())
	for pair := s.reg.table.Oldest(); pair != nil; pair = pair.Next() {
		targets = append(targets, pair.Value)
	}
	s.reg.mu.Unlock()
	for _, callback := range targets {
		callback(ev)
	}
}

// Next broadcasts a data item.
func (s *ReplaySubject[V, E]) Next(value V) {
	s.Send(Event[V, E]{Kind: EventNext, Value: value})
}

// Fail broadcasts a terminal error.
func (s *ReplaySubject[V, E]) Fail(err E) {
	s.Send(Event[V, E]{Kind: EventError, Err: err})
}

// Finish broadcasts completion.
func (s *ReplaySubject[V, E]) Finish() {
	s.Send(Event[V, E]{Kind: EventFinished})
}

// IsActive reports whether the subject still accepts sends.
func (s *ReplaySubject[V, E]) IsActive() bool {
	return s.reg.active()
}

// AsChannel adapts the subject into a Channel handle; each subscription
// replays the buffer and then follows the live sequence.
func (s *ReplaySubject[V, E]) AsChannel() Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		return s.Subscribe(sink.Send)
	})
}
