package rx

// FromChan adapts a receive-only Go channel into a cold stream. Each
// subscription starts its own pump goroutine, forwards every received value
// and completes when source is closed. Disposing the subscription stops the
// pump; the source channel itself is left alone, since the subscriber does
// not own it.
//
// Note that several concurrent subscriptions to the same source compete for
// its values rather than each seeing all of them; multicast a shared channel
// through a Subject instead.
func FromChan[V any](source <-chan V) Channel[V, NoError] {
	return Create(func(sink *Subscriber[V, NoError]) *Disposable {
		done := make(chan struct{})
		go func() {
			for {
				select {
				case v, ok := <-source:
					if !ok {
						sink.Finish()
						return
					}
					sink.Next(v)
				case <-done:
					return
				}
			}
		}()
		return NewDisposable(func() { close(done) })
	})
}
