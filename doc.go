// Package rx is an in-process asynchronous composition library built around
// two primitives: a cold, single-subscriber event stream (Channel, with hot
// multicast variants Subject and ReplaySubject) and a one-shot future value
// (Promise).
//
// A Channel is a recipe: subscribing runs its producer from scratch, so every
// subscriber gets an independent event sequence. Combinators (Map, Filter,
// Debounce, Retry, ...) wrap a Channel in a new Channel that subscribes to its
// source per downstream subscription. Subjects broadcast one shared sequence
// to many subscribers; a ReplaySubject additionally buffers recent events for
// late joiners.
//
// Everything tears down through Disposables: subscribing returns one, and
// disposing it stops delivery and cascades release to upstream resources.
// Disposal is idempotent everywhere, as are sends after a terminal event and
// promise state transitions after resolution.
package rx
