package rx

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// PromiseState is a promise's position in its one-way state machine.
type PromiseState uint8

const (
	StatePending PromiseState = iota
	StateFulfilled
	StateRejected
	StateCancelled
)

func (s PromiseState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateRejected:
		return "rejected"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ErrCancelled is what Await returns for a cancelled promise. Cancellation
// is a distinct terminal state, not a rejection: rejection continuations do
// not see it.
var ErrCancelled = errors.New("promise cancelled")

// PanicError is the rejection produced when a promise body or a chained
// transform panics.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("promise callback panicked: %v", e.Value)
}

// promiseObserver is one registered continuation set. Delivery is scheduled
// on the context recorded here, never on the context the resolution happened
// in.
type promiseObserver[V any] struct {
	ctx         Context
	onFulfilled func(V)
	onRejected  func(error)
	onCancelled func()
}

// Promise is a one-shot asynchronous value. The body starts executing on the
// supplied context immediately at construction; the state moves from pending
// to exactly one of fulfilled, rejected or cancelled, and every registered
// observer is notified exactly once, regardless of whether it registered
// before or after resolution.
type Promise[V any] struct {
	mu        sync.Mutex
	state     PromiseState
	value     V
	err       error
	observers []promiseObserver[V]
}

// NewPromise schedules body on ctx and returns the promise it resolves. The
// body receives resolve and reject callbacks; calling either after the first
// is a no-op. A panic escaping the body rejects the promise with a
// PanicError.
func NewPromise[V any](ctx Context, body func(resolve func(V), reject func(error))) *Promise[V] {
	p := &Promise[V]{}
	if ctx == nil {
		ctx = Background()
	}
	ctx.Execute(func() {
		defer func() {
			if r := recover(); r != nil {
				p.reject(PanicError{Value: r})
			}
		}()
		body(p.resolve, p.reject)
	})
	return p
}

// Resolved returns an already-fulfilled promise.
func Resolved[V any](value V) *Promise[V] {
	return &Promise[V]{state: StateFulfilled, value: value}
}

// Rejected returns an already-rejected promise.
func Rejected[V any](err error) *Promise[V] {
	return &Promise[V]{state: StateRejected, err: err}
}

// State returns the current state.
func (p *Promise[V]) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel moves a pending promise to the cancelled state and notifies
// cancellation observers. Cancelling a settled promise is a no-op.
func (p *Promise[V]) Cancel() {
	var zero V
	p.settle(StateCancelled, zero, nil)
}

func (p *Promise[V]) resolve(value V) {
	p.settle(StateFulfilled, value, nil)
}

func (p *Promise[V]) reject(err error) {
	var zero V
	p.settle(StateRejected, zero, err)
}

// settle performs the single pending->terminal transition. The observer list
// is snapshotted and cleared under the lock, so each observer is handed to
// dispatch exactly once: by settle if it registered while pending, by watch
// otherwise.
func (p *Promise[V]) settle(state PromiseState, value V, err error) {
	p.mu.Lock()
	if p.state != StatePending {
		prev := p.state
		p.mu.Unlock()
		logger.Load().Debug("promise transition discarded",
			zap.Stringer("state", prev),
			zap.Stringer("attempted", state))
		return
	}
	p.state = state
	p.value = value
	p.err = err
	observers := p.observers
	p.observers = nil
	p.mu.Unlock()
	for _, obs := range observers {
		p.dispatch(obs)
	}
}

// watch is the single registration path. Under the lock the observer either
// joins the pending list or finds a terminal state; it can never do both, so
// a concurrent settle cannot double-deliver.
func (p *Promise[V]) watch(obs promiseObserver[V]) {
	if obs.ctx == nil {
		obs.ctx = Inline()
	}
	p.mu.Lock()
	if p.state == StatePending {
		p.observers = append(p.observers, obs)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.dispatch(obs)
}

// dispatch schedules obs on its recorded context. Only called once the state
// is terminal, which never changes again.
func (p *Promise[V]) dispatch(obs promiseObserver[V]) {
	p.mu.Lock()
	state, value, err := p.state, p.value, p.err
	p.mu.Unlock()
	obs.ctx.Execute(func() {
		switch state {
		case StateFulfilled:
			if obs.onFulfilled != nil {
				obs.onFulfilled(value)
			}
		case StateRejected:
			if obs.onRejected != nil {
				obs.onRejected(err)
			}
		case StateCancelled:
			if obs.onCancelled != nil {
				obs.onCancelled()
			}
		}
	})
}

// Then registers a fulfillment callback, delivered on ctx, and returns the
// promise for chaining further registrations.
func (p *Promise[V]) Then(ctx Context, callback func(V)) *Promise[V] {
	p.watch(promiseObserver[V]{ctx: ctx, onFulfilled: callback})
	return p
}

// Catch registers a rejection callback, delivered on ctx.
func (p *Promise[V]) Catch(ctx Context, callback func(error)) *Promise[V] {
	p.watch(promiseObserver[V]{ctx: ctx, onRejected: callback})
	return p
}

// OnCancel registers a cancellation callback, delivered on ctx.
func (p *Promise[V]) OnCancel(ctx Context, callback func()) *Promise[V] {
	p.watch(promiseObserver[V]{ctx: ctx, onCancelled: callback})
	return p
}

// Chain derives a new promise that settles when p does, with the value or
// error passed through the given transforms. A nil transform forwards the
// original. The derived promise mirrors cancellation of its source;
// cancelling the derived promise does not touch the source. A panic in a
// transform rejects the derived promise.
func (p *Promise[V]) Chain(ctx Context, onFulfilled func(V) V, onRejected func(error) error) *Promise[V] {
	derived := &Promise[V]{}
	p.watch(promiseObserver[V]{
		ctx: ctx,
		onFulfilled: func(v V) {
			defer rejectOnPanic(derived)
			if onFulfilled != nil {
				v = onFulfilled(v)
			}
			derived.resolve(v)
		},
		onRejected: func(err error) {
			defer rejectOnPanic(derived)
			if onRejected != nil {
				err = onRejected(err)
			}
			derived.reject(err)
		},
		onCancelled: derived.Cancel,
	})
	return derived
}

// Transform derives a promise of a different type. transform runs on ctx
// when p fulfills; returning an error rejects the derived promise. Rejection
// and cancellation of the source carry over unchanged.
func Transform[V, U any](p *Promise[V], ctx Context, transform func(V) (U, error)) *Promise[U] {
	derived := &Promise[U]{}
	p.watch(promiseObserver[V]{
		ctx: ctx,
		onFulfilled: func(v V) {
			defer rejectOnPanic(derived)
			u, err := transform(v)
			if err != nil {
				derived.reject(err)
				return
			}
			derived.resolve(u)
		},
		onRejected:  derived.reject,
		onCancelled: derived.Cancel,
	})
	return derived
}

func rejectOnPanic[V any](p *Promise[V]) {
	if r := recover(); r != nil {
		p.reject(PanicError{Value: r})
	}
}

// Await blocks until the promise settles. It returns the fulfilled value,
// the rejection error, or ErrCancelled.
func (p *Promise[V]) Await() (V, error) {
	done := make(chan struct{})
	var value V
	var err error
	p.watch(promiseObserver[V]{
		ctx:         Inline(),
		onFulfilled: func(v V) { value = v; close(done) },
		onRejected:  func(e error) { err = e; close(done) },
		onCancelled: func() { err = ErrCancelled; close(done) },
	})
	<-done
	return value, err
}
