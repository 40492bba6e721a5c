package rx

// EventKind discriminates the three message variants a stream can carry.
type EventKind uint8

const (
	// EventNext carries a data item.
	EventNext EventKind = iota
	// EventError carries a terminal error value.
	EventError
	// EventFinished marks normal completion.
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventNext:
		return "next"
	case EventError:
		return "error"
	case EventFinished:
		return "finished"
	}
	return "unknown"
}

// Event is one message on a stream: a data item, a terminal error, or
// completion. V is the data type, E the error type.
type Event[V, E any] struct {
	Kind  EventKind
	Value V
	Err   E
}

// IsFinal reports whether the event terminates its stream.
func (e Event[V, E]) IsFinal() bool {
	return e.Kind != EventNext
}

func NextEvent[V, E any](value V) Event[V, E] {
	return Event[V, E]{Kind: EventNext, Value: value}
}

func ErrorEvent[V, E any](err E) Event[V, E] {
	return Event[V, E]{Kind: EventError, Err: err}
}

func FinishedEvent[V, E any]() Event[V, E] {
	return Event[V, E]{Kind: EventFinished}
}

// NoError is the error type of channels that are statically guaranteed never
// to emit an Error event.
type NoError struct{}

func (NoError) Error() string { return "no error" }
