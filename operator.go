package rx

// Type-changing combinators live here as free functions: a Go method cannot
// introduce new type parameters. Every one of them follows the same shape as
// the rest of the combinator layer: create a new channel whose producer
// subscribes to the source, transforms or gates events, and forwards into the
// downstream sink. State declared inside the producer is per-subscription.

// Map transforms each data item; errors and completion pass through
// unchanged.
func Map[V, U, E any](c Channel[V, E], transform func(V) U) Channel[U, E] {
	return Create(func(sink *Subscriber[U, E]) *Disposable {
		return c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				sink.Next(transform(ev.Value))
			case EventError:
				sink.Fail(ev.Err)
			default:
				sink.Finish()
			}
		})
	})
}

// MapError transforms the error value; data and completion pass through
// unchanged.
func MapError[V, E, F any](c Channel[V, E], transform func(E) F) Channel[V, F] {
	return Create(func(sink *Subscriber[V, F]) *Disposable {
		return c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				sink.Next(ev.Value)
			case EventError:
				sink.Fail(transform(ev.Err))
			default:
				sink.Finish()
			}
		})
	})
}

// Reduce folds every data item into an accumulator and emits the single
// accumulated value right before completion. An error short-circuits without
// emitting the accumulator.
func Reduce[V, A, E any](c Channel[V, E], initial A, accumulate func(A, V) A) Channel[A, E] {
	return Create(func(sink *Subscriber[A, E]) *Disposable {
		acc := initial
		return c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				acc = accumulate(acc, ev.Value)
			case EventError:
				sink.Fail(ev.Err)
			default:
				sink.Next(acc)
				sink.Finish()
			}
		})
	})
}

// Combine is Reduce that also emits every intermediate accumulated value.
func Combine[V, A, E any](c Channel[V, E], initial A, accumulate func(A, V) A) Channel[A, E] {
	return Create(func(sink *Subscriber[A, E]) *Disposable {
		acc := initial
		return c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				acc = accumulate(acc, ev.Value)
				sink.Next(acc)
			case EventError:
				sink.Fail(ev.Err)
			default:
				sink.Finish()
			}
		})
	})
}

// Buffer batches size items into a slice, emitted once full. A partial
// trailing batch is dropped on completion. size <= 0 forwards terminal
// events only.
func Buffer[V, E any](c Channel[V, E], size int) Channel[[]V, E] {
	return Create(func(sink *Subscriber[[]V, E]) *Disposable {
		var batch []V
		return c.Subscribe(func(ev Event[V, E]) {
			switch ev.Kind {
			case EventNext:
				if size <= 0 {
					return
				}
				batch = append(batch, ev.Value)
				if len(batch) == size {
					full := batch
					batch = make([]V, 0, size)
					sink.Next(full)
				}
			case EventError:
				sink.Fail(ev.Err)
			default:
				sink.Finish()
			}
		})
	})
}
