package rx

import "sync"

// Context selects which worker a block of work executes on. Promise bodies
// and continuations, and anything else needing explicit placement, run
// through one.
type Context interface {
	Execute(block func())
}

type inlineContext struct{}

func (inlineContext) Execute(block func()) { block() }

// Inline returns a context that runs blocks synchronously on the caller.
func Inline() Context { return inlineContext{} }

type backgroundContext struct{}

func (backgroundContext) Execute(block func()) { go block() }

// Background returns a context that runs every block on a fresh goroutine.
func Background() Context { return backgroundContext{} }

// Priority tiers for BackgroundPriority.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityMax
)

var (
	tierOnce [PriorityMax + 1]sync.Once
	tiers    [PriorityMax + 1]*SerialQueue
)

// BackgroundPriority returns the shared serial worker for the given tier,
// started lazily. Blocks within one tier run in submission order; tiers are
// independent of each other.
func BackgroundPriority(p Priority) Context {
	if p > PriorityMax {
		p = PriorityMax
	}
	tierOnce[p].Do(func() { tiers[p] = NewSerialQueue() })
	return tiers[p]
}

// SerialQueue runs submitted blocks one at a time, in FIFO order, on a
// single worker goroutine started on first use. It is the main-thread
// analogue for code that needs all its callbacks on one goroutine.
type SerialQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	started bool
}

func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *SerialQueue) Execute(block func()) {
	q.mu.Lock()
	q.pending = append(q.pending, block)
	if !q.started {
		q.started = true
		go q.run()
	}
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *SerialQueue) run() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 {
			q.cond.Wait()
		}
		block := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		block()
	}
}
