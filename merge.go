package rx

import "sync"

// Merge fans the given sources into one channel. Data items and errors are
// forwarded as they arrive; the merged channel completes once every source
// has completed. The first error is terminal and tears down the remaining
// source subscriptions. Merging nothing completes immediately.
func Merge[V, E any](sources ...Channel[V, E]) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		if len(sources) == 0 {
			sink.Finish()
			return nil
		}
		bag := NewDisposableBag()
		var mu sync.Mutex
		remaining := len(sources)
		for _, source := range sources {
			bag.Insert(source.Subscribe(func(ev Event[V, E]) {
				if ev.Kind == EventFinished {
					mu.Lock()
					remaining--
					done := remaining == 0
					mu.Unlock()
					if done {
						sink.Finish()
					}
					return
				}
				sink.Send(ev)
			}))
		}
		return NewDisposable(bag.Dispose)
	})
}
