package rx

import (
	"sync"

	"go.uber.org/atomic"
)

// Disposable is an idempotent handle over a cancelable resource: a
// subscription, a timer, anything with cleanup. Dispose runs the release
// callback at most once and cascades to a linked child. The callback and the
// cascade run outside the disposable's own lock, so release code may take
// other locks freely.
type Disposable struct {
	mu       sync.Mutex
	disposed atomic.Bool
	release  func()
	child    *Disposable
}

// NewDisposable returns a disposable that runs release (which may be nil)
// when disposed.
func NewDisposable(release func()) *Disposable {
	return &Disposable{release: release}
}

// IsDisposed reports whether Dispose has been called.
func (d *Disposable) IsDisposed() bool {
	return d.disposed.Load()
}

// Dispose releases the resource. Repeated calls are no-ops.
func (d *Disposable) Dispose() {
	d.mu.Lock()
	if d.disposed.Load() {
		d.mu.Unlock()
		return
	}
	d.disposed.Store(true)
	release, child := d.release, d.child
	d.release, d.child = nil, nil
	d.mu.Unlock()
	if release != nil {
		release()
	}
	if child != nil {
		child.Dispose()
	}
}

// Link attaches child so it is disposed together with d. Linking onto an
// already-disposed d disposes child immediately. If d already carries a
// child the new one is chained below it.
func (d *Disposable) Link(child *Disposable) {
	if child == nil || child == d {
		return
	}
	d.mu.Lock()
	if d.disposed.Load() {
		d.mu.Unlock()
		child.Dispose()
		return
	}
	if d.child != nil {
		existing := d.child
		d.mu.Unlock()
		existing.Link(child)
		return
	}
	d.child = child
	d.mu.Unlock()
}

// DisposableBag owns an ordered collection of disposables and disposes them
// all together. Inserting into an already-disposed bag disposes the new
// member immediately instead of storing it.
type DisposableBag struct {
	mu       sync.Mutex
	disposed bool
	members  []*Disposable
}

func NewDisposableBag() *DisposableBag {
	return &DisposableBag{}
}

func (b *DisposableBag) Insert(d *Disposable) {
	if d == nil {
		return
	}
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		d.Dispose()
		return
	}
	b.members = append(b.members, d)
	b.mu.Unlock()
}

func (b *DisposableBag) IsDisposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// Dispose disposes and clears every member, in insertion order, outside the
// bag lock.
func (b *DisposableBag) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	members := b.members
	b.members = nil
	b.mu.Unlock()
	for _, d := range members {
		d.Dispose()
	}
}
