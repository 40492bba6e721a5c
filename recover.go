package rx

// Recover converts an error into a final data item followed by completion.
func (c Channel[V, E]) Recover(value V) Channel[V, E] {
	return c.RecoverWith(func(E) V { return value })
}

// RecoverWith converts an error into a final data item computed from it,
// followed by completion.
func (c Channel[V, E]) RecoverWith(replace func(E) V) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		return c.Subscribe(func(ev Event[V, E]) {
			if ev.Kind == EventError {
				sink.Next(replace(ev.Err))
				sink.Finish()
				return
			}
			sink.Send(ev)
		})
	})
}

// SuppressError converts an error into completion, invoking onError first if
// given.
func (c Channel[V, E]) SuppressError(onError func(E)) Channel[V, E] {
	return Create(func(sink *Subscriber[V, E]) *Disposable {
		return c.Subscribe(func(ev Event[V, E]) {
			if ev.Kind == EventError {
				if onError != nil {
					onError(ev.Err)
				}
				sink.Finish()
				return
			}
			sink.Send(ev)
		})
	})
}
