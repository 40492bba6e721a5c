package rx

import (
	"sync"

	"go.uber.org/atomic"
)

// Subscriber is the safe sink handed to producers. It serializes delivery to
// the wrapped callback under a mutex, so a producer may emit from any number
// of goroutines and the callback still observes events one at a time, in
// order. The first terminal event disposes the subscriber, which drops the
// callback and cascades to whatever disposable the producer returned.
type Subscriber[V, E any] struct {
	mu       sync.Mutex
	disposed atomic.Bool
	callback func(Event[V, E])
	disp     *Disposable
}

func newSubscriber[V, E any](callback func(Event[V, E])) *Subscriber[V, E] {
	s := &Subscriber[V, E]{callback: callback}
	s.disp = NewDisposable(s.release)
	return s
}

// release runs when the subscriber's disposable fires. It only flips the
// atomic gate; the callback slot is cleared wherever the delivery lock is
// actually free, so a callback disposing its own subscription mid-dispatch
// cannot deadlock against Send.
func (s *Subscriber[V, E]) release() {
	s.disposed.Store(true)
	if s.mu.TryLock() {
		s.callback = nil
		s.mu.Unlock()
	}
}

// IsDisposed reports whether the subscriber will deliver further events.
func (s *Subscriber[V, E]) IsDisposed() bool {
	return s.disposed.Load()
}

// Send delivers ev to the callback. Sending to a disposed subscriber is a
// no-op. A terminal event disposes the subscriber after delivery.
func (s *Subscriber[V, E]) Send(ev Event[V, E]) {
	s.mu.Lock()
	if s.disposed.Load() || s.callback == nil {
		s.mu.Unlock()
		return
	}
	s.callback(ev)
	final := ev.IsFinal()
	if final || s.disposed.Load() {
		s.callback = nil
	}
	s.mu.Unlock()
	if final {
		s.disp.Dispose()
	}
}

// Next sends a data item.
func (s *Subscriber[V, E]) Next(value V) {
	s.Send(Event[V, E]{Kind: EventNext, Value: value})
}

// Fail sends a terminal error.
func (s *Subscriber[V, E]) Fail(err E) {
	s.Send(Event[V, E]{Kind: EventError, Err: err})
}

// Finish sends completion.
func (s *Subscriber[V, E]) Finish() {
	s.Send(Event[V, E]{Kind: EventFinished})
}
