package rx

import (
	"sync"
	"time"
)

// Channel is a cold stream: a recipe for producing events. Subscribing runs
// the producer from scratch, so every Subscribe call yields an independent
// event sequence and independent per-subscription state.
//
// The producer receives the subscriber as its sink and returns a disposable
// covering whatever resources it acquired (goroutines, timers, upstream
// subscriptions); that disposable is torn down together with the
// subscription.
type Channel[V, E any] struct {
	producer func(*Subscriber[V, E]) *Disposable
}

// Create builds a channel from a producer function. This is the primitive
// every factory and combinator bottoms out in.
func Create[V, E any](producer func(sink *Subscriber[V, E]) *Disposable) Channel[V, E] {
	return Channel[V, E]{producer: producer}
}

// Subscribe runs the producer against a fresh safe subscriber wrapping
// callback and returns the subscription's disposable. The producer's own
// disposable is linked underneath it, so disposing the returned handle (or
// receiving a terminal event) releases the producer's resources too.
func (c Channel[V, E]) Subscribe(callback func(Event[V, E])) *Disposable {
	sink := newSubscriber(callback)
	if c.producer != nil {
		// If the producer already delivered a terminal event, the sink's
		// disposable is disposed and Link fires immediately.
		sink.disp.Link(c.producer(sink))
	}
	return sink.disp
}

// Just emits the given values in order, then completes.
func Just[V, E any](values ...V) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		for _, v := range values {
			sink.Next(v)
		}
		sink.Finish()
		return nil
	})
}

// Empty completes immediately without emitting.
func Empty[V, E any]() Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		sink.Finish()
		return nil
	})
}

// Failed errors immediately.
func Failed[V, E any](err E) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		sink.Fail(err)
		return nil
	})
}

// Never emits nothing and never terminates.
func Never[V, E any]() Channel[V, E] {
	return Create(func(*Subscriber[V, E]) *Disposable {
		return nil
	})
}

// Interval emits 0, 1, 2, ... every interval until disposed.
func Interval(interval time.Duration) Channel[int, NoError] {
	return Create(func(sink *Subscriber[int, NoError]) *Disposable {
		var mu sync.Mutex
		n := 0
		timer := Every(interval, func() {
			mu.Lock()
			v := n
			n++
			mu.Unlock()
			sink.Next(v)
		})
		timer.Start()
		return NewDisposable(timer.Pause)
	})
}
