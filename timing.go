package rx

import (
	"sync"
	"time"
)

// Debounce reschedules emission of the latest item interval after each
// arrival; only an item that stays the newest for a full interval gets out.
// Completion flushes a still-pending value before completing; an error
// cancels the pending timer and forwards immediately.
func (c Channel[V, E]) Debounce(interval time.Duration) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		var mu sync.Mutex
		var pending V
		var hasPending bool
		var timer *clockTimer
		cancel := func() { // callers hold mu
			if timer != nil {
				timer.Stop()
				timer = nil
			}
		}
		d := c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				mu.Lock()
				cancel()
				pending, hasPending = ev.Value, true
				timer = timeSource.AfterFunc(interval, func() {
					mu.Lock()
					if !hasPending {
						mu.Unlock()
						return
					}
					v := pending
					hasPending = false
					timer = nil
					mu.Unlock()
					sink.Next(v)
				})
				mu.Unlock()
			case EventError:
				mu.Lock()
				cancel()
				hasPending = false
				mu.Unlock()
				sink.Fail(ev.Err)
			default:
				mu.Lock()
				cancel()
				v, flush := pending, hasPending
				hasPending = false
				mu.Unlock()
				if flush {
					sink.Next(v)
				}
				sink.Finish()
			}
		})
		stop := NewDisposable(func() {
			mu.Lock()
			cancel()
			hasPending = false
			mu.Unlock()
		})
		stop.Link(d)
		return stop
	})
}

// Throttle emits an item only if interval has elapsed since the last
// emission, dropping it otherwise. The first item always passes.
func (c Channel[V, E]) Throttle(interval time.Duration) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		var last time.Time
		return c.Subscribe(func(ev Event[V, E]) {
			if ev.Kind == EventNext {
				now := timeSource.Now()
				if !last.IsZero() && now.Sub(last) < interval {
					return
				}
				last = now
			}
			sink.Send(ev)
		})
	})
}

// Delay forwards every event, terminal ones included, a fixed interval after
// it arrived, preserving relative order. Delivery runs on a drain goroutine
// started lazily per subscription.
func (c Channel[V, E]) Delay(interval time.Duration) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		type timed struct {
			at time.Time
			ev Event[V, E]
		}
		var mu sync.Mutex
		var queue []timed
		var draining bool
		stop := make(chan struct{})

		drain := func() {
			for {
				mu.Lock()
				if len(queue) == 0 {
					draining = false
					mu.Unlock()
					return
				}
				head := queue[0]
				queue = queue[1:]
				mu.Unlock()
				if wait := head.at.Sub(timeSource.Now()); wait > 0 {
					select {
					case <-timeSource.After(wait):
					case <-stop:
						return
					}
				}
				select {
				case <-stop:
					return
				default:
				}
				sink.Send(head.ev)
			}
		}

		d := c.Subscribe(func(ev Event[V, E]) {
			mu.Lock()
			queue = append(queue, timed{at: timeSource.Now().Add(interval), ev: ev})
			if !draining {
				draining = true
				go drain()
			}
			mu.Unlock()
		})
		out := NewDisposable(func() { close(stop) })
		out.Link(d)
		return out
	})
}
