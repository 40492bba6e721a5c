package rx

// Filter drops items failing the predicate; terminal events pass through
// unchanged.
func (c Channel[V, E]) Filter(keep func(V) bool) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		return c.Subscribe(func(ev Event[V, E]) {
			if ev.Kind == EventNext && !keep(ev.Value) {
				return
			}
			sink.Send(ev)
		})
	})
}

// Distinct emits an item only if it differs from the immediately preceding
// item under equal. The first item is always emitted.
func (c Channel[V, E]) Distinct(equal func(a, b V) bool) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		var seen bool
		var last V
		return c.Subscribe(func(ev Event[V, E]) {
			if ev.Kind == EventNext {
				if seen && equal(last, ev.Value) {
					return
				}
				seen, last = true, ev.Value
			}
			sink.Send(ev)
		})
	})
}

// First emits up to count items, then completes and tears down the upstream
// subscription. count <= 0 completes immediately without subscribing.
func (c Channel[V, E]) First(count int) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		if count <= 0 {
			sink.Finish()
			return nil
		}
		taken := 0
		return c.Subscribe(func(ev Event[V, E]) {
			if ev.Kind == EventNext {
				taken++
				sink.Next(ev.Value)
				if taken == count {
					// The sink's terminal disposal cascades to the upstream
					// subscription linked under it.
					sink.Finish()
				}
				return
			}
			sink.Send(ev)
		})
	})
}

// Last buffers a sliding window of the final count items and emits them, in
// order, at completion. count <= 0 completes immediately without
// subscribing.
func (c Channel[V, E]) Last(count int) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		if count <= 0 {
			sink.Finish()
			return nil
		}
		var window []V
		return c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				window = append(window, ev.Value)
				if len(window) > count {
					window = window[1:]
				}
			case EventError:
				sink.Fail(ev.Err)
			default:
				for _, v := range window {
					sink.Next(v)
				}
				sink.Finish()
			}
		})
	})
}
