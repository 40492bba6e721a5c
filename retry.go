package rx

import (
	"sync"

	"go.uber.org/zap"
)

// Retry re-subscribes to the source on error, up to attempts additional
// times, before letting the error through. attempts <= 0 returns the source
// unchanged.
func (c Channel[V, E]) Retry(attempts int) Channel[V, E] {
	return c.retry(attempts, nil)
}

// RetryReplacing is Retry, but the error finally forwarded after the
// attempts are exhausted is replaced with the given one.
func (c Channel[V, E]) RetryReplacing(attempts int, replacement E) Channel[V, E] {
	return c.retry(attempts, &replacement)
}

func (c Channel[V, E]) retry(attempts int, replacement *E) Channel[V, E] {
	if attempts <= 0 {
		return c
	}
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		var mu sync.Mutex
		remaining := attempts
		cancelled := false
		var current *Disposable

		var attempt func()
		handle := func(ev Event[V, E]) {
			if ev.Kind == EventError {
				mu.Lock()
				if cancelled {
					mu.Unlock()
					return
				}
				if remaining > 0 {
					remaining--
					left := remaining
					prev := current
					current = nil
					mu.Unlock()
					// The failed attempt tears itself down right after this
					// callback returns; disposing prev here only matters for
					// attempts that errored asynchronously.
					if prev != nil {
						prev.Dispose()
					}
					logger.Load().Debug("retrying source after stream error",
						zap.Int("attempts_left", left))
					attempt()
					return
				}
				mu.Unlock()
				if replacement != nil {
					ev = Event[V, E]{Kind: EventError, Err: *replacement}
				}
			}
			sink.Send(ev)
		}
		attempt = func() {
			d := c.Subscribe(handle)
			mu.Lock()
			if cancelled {
				mu.Unlock()
				d.Dispose()
				return
			}
			if !d.IsDisposed() {
				current = d
			}
			mu.Unlock()
		}
		attempt()

		return NewDisposable(func() {
			mu.Lock()
			cancelled = true
			d := current
			current = nil
			mu.Unlock()
			if d != nil {
				d.Dispose()
			}
		})
	})
}
