package rx

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

var (
	errBoom     = errors.New("boom")
	errReplaced = errors.New("replaced")
)

// Margins for timing-sensitive assertions.
const (
	waitLong = 2 * time.Second
	waitTick = 5 * time.Millisecond
)

// recorder collects everything a subscription delivers. Its observe method
// is the subscriber callback.
type recorder[V, E any] struct {
	mu     sync.Mutex
	events []Event[V, E]
}

func (r *recorder[V, E]) observe(ev Event[V, E]) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder[V, E]) values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []V
	for _, ev := range r.events {
		if ev.Kind == EventNext {
			out = append(out, ev.Value)
		}
	}
	return out
}

func (r *recorder[V, E]) terminal() (EventKind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.IsFinal() {
			return ev.Kind, true
		}
	}
	return 0, false
}

func (r *recorder[V, E]) finished() bool {
	kind, ok := r.terminal()
	return ok && kind == EventFinished
}

func (r *recorder[V, E]) failure() (E, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Kind == EventError {
			return ev.Err, true
		}
	}
	var zero E
	return zero, false
}

func (r *recorder[V, E]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestJust(t *testing.T) {
	rec := &recorder[int, error]{}
	Just[int, error](1, 2, 3).Subscribe(rec.observe)
	require.Equal(t, []int{1, 2, 3}, rec.values())
	require.True(t, rec.finished())
}

func TestSubscribeIsCold(t *testing.T) {
	runs := atomic.NewInt32(0)
	ch := Create(func(sink *Subscriber[int, error]) *Disposable {
		runs.Inc()
		sink.Next(int(runs.Load()))
		sink.Finish()
		return nil
	})

	first := &recorder[int, error]{}
	second := &recorder[int, error]{}
	ch.Subscribe(first.observe)
	ch.Subscribe(second.observe)

	require.Equal(t, int32(2), runs.Load())
	require.Equal(t, []int{1}, first.values())
	require.Equal(t, []int{2}, second.values())
}

func TestTerminalDisposesSubscription(t *testing.T) {
	released := atomic.NewBool(false)
	ch := Create(func(sink *Subscriber[int, error]) *Disposable {
		sink.Next(1)
		sink.Finish()
		return NewDisposable(func() { released.Store(true) })
	})

	rec := &recorder[int, error]{}
	d := ch.Subscribe(rec.observe)

	require.True(t, d.IsDisposed())
	require.True(t, released.Load(), "producer disposable must be released when the producer completed synchronously")
}

func TestNoDeliveryAfterDispose(t *testing.T) {
	var sinkRef *Subscriber[int, error]
	ch := Create(func(sink *Subscriber[int, error]) *Disposable {
		sinkRef = sink
		return nil
	})

	rec := &recorder[int, error]{}
	d := ch.Subscribe(rec.observe)

	sinkRef.Next(1)
	d.Dispose()
	sinkRef.Next(2)
	sinkRef.Finish()

	require.Equal(t, []int{1}, rec.values())
	_, terminated := rec.terminal()
	require.False(t, terminated)
}

func TestDisposeFromWithinCallback(t *testing.T) {
	var sinkRef *Subscriber[int, error]
	ch := Create(func(sink *Subscriber[int, error]) *Disposable {
		sinkRef = sink
		return nil
	})

	rec := &recorder[int, error]{}
	var d *Disposable
	d = ch.Subscribe(func(ev Event[int, error]) {
		rec.observe(ev)
		d.Dispose()
	})

	sinkRef.Next(1)
	sinkRef.Next(2)

	require.Equal(t, []int{1}, rec.values())
	require.True(t, d.IsDisposed())
}

func TestFailedAndEmpty(t *testing.T) {
	failed := &recorder[int, error]{}
	Failed[int](errBoom).Subscribe(failed.observe)
	err, ok := failed.failure()
	require.True(t, ok)
	require.Equal(t, errBoom, err)

	empty := &recorder[int, error]{}
	Empty[int, error]().Subscribe(empty.observe)
	require.Empty(t, empty.values())
	require.True(t, empty.finished())
}

func TestFromChan(t *testing.T) {
	source := make(chan int)
	rec := &recorder[int, NoError]{}
	FromChan(source).Subscribe(rec.observe)

	for i := 1; i <= 3; i++ {
		source <- i
	}
	close(source)

	require.Eventually(t, rec.finished, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{1, 2, 3}, rec.values())
}

func TestFromChanDisposeStopsPump(t *testing.T) {
	source := make(chan int, 8)
	rec := &recorder[int, NoError]{}
	d := FromChan(source).Subscribe(rec.observe)

	source <- 1
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, time.Millisecond)

	d.Dispose()
	source <- 2
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, []int{1}, rec.values())
}

func TestInterval(t *testing.T) {
	rec := &recorder[int, NoError]{}
	d := Interval(20 * time.Millisecond).Subscribe(rec.observe)

	require.Eventually(t, func() bool { return rec.count() >= 3 }, time.Second, 5*time.Millisecond)
	d.Dispose()

	seen := rec.count()
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, seen, rec.count(), "ticks must stop after dispose")
	require.Equal(t, 0, rec.values()[0])
	require.Equal(t, 1, rec.values()[1])
}

func TestIntervalSequenceWithSlowSubscriber(t *testing.T) {
	var mu sync.Mutex
	var got []int
	d := Interval(time.Millisecond).Subscribe(func(ev Event[int, NoError]) {
		if ev.Kind != EventNext {
			return
		}
		// Slower than the interval: ticks must queue up behind the
		// callback, never run concurrently with it.
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		got = append(got, ev.Value)
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 5
	}, waitLong, waitTick)
	d.Dispose()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got[:5] {
		require.Equal(t, i, v, "ticks must count up without gaps or duplicates")
	}
}
