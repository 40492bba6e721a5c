package rx

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// timeSource is the clock behind Timer and the time-based combinators.
// Tests may substitute a mock.
var timeSource clock.Clock = clock.New()

type clockTimer = clock.Timer

// Timer invokes a callback after a fixed interval, once or repeatedly. It is
// created paused; Start schedules the next fire and Pause cancels it. Start
// on a running timer and Pause on a paused one are no-ops.
type Timer struct {
	mu       sync.Mutex
	interval time.Duration
	repeats  bool
	fire     func()
	pending  *clockTimer
	// gen invalidates in-flight ticks across a Pause/Start cycle.
	gen uint64
}

// Once returns a timer that fires once, after the given interval.
func Once(after time.Duration, fire func()) *Timer {
	return &Timer{interval: after, fire: fire}
}

// Every returns a timer that fires repeatedly, every interval.
func Every(interval time.Duration, fire func()) *Timer {
	return &Timer{interval: interval, repeats: true, fire: fire}
}

func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		return
	}
	t.gen++
	t.schedule(t.gen)
}

// schedule requires t.mu.
func (t *Timer) schedule(gen uint64) {
	t.pending = timeSource.AfterFunc(t.interval, func() { t.tick(gen) })
}

// tick runs one fire. A repeating timer schedules its next fire only after
// the callback returns, so fires never overlap; the generation check drops
// ticks whose schedule was paused (and possibly restarted) in the meantime.
func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if t.pending == nil || gen != t.gen {
		t.mu.Unlock()
		return
	}
	if !t.repeats {
		t.pending = nil
	}
	t.mu.Unlock()

	t.fire()

	if !t.repeats {
		return
	}
	t.mu.Lock()
	if t.pending != nil && gen == t.gen {
		t.schedule(gen)
	}
	t.mu.Unlock()
}

func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return
	}
	t.pending.Stop()
	t.pending = nil
}

// IsRunning reports whether a fire is scheduled.
func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
