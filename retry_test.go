package rx

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// flakySource errors on the first failures subscriptions, then emits value
// and completes.
func flakySource(failures int, value int, runs *atomic.Int32) Channel[int, error] {
	return Create(func(sink *Subscriber[int, error]) *Disposable {
		attempt := runs.Inc()
		if int(attempt) <= failures {
			sink.Fail(errBoom)
			return nil
		}
		sink.Next(value)
		sink.Finish()
		return nil
	})
}

func TestRetryRecovers(t *testing.T) {
	runs := atomic.NewInt32(0)
	rec := &recorder[int, error]{}
	flakySource(2, 42, runs).Retry(2).Subscribe(rec.observe)

	require.Equal(t, int32(3), runs.Load())
	require.Equal(t, []int{42}, rec.values())
	require.True(t, rec.finished())
	_, failed := rec.failure()
	require.False(t, failed, "a recovered stream must not emit any error")
}

func TestRetryExhaustsAttempts(t *testing.T) {
	runs := atomic.NewInt32(0)
	rec := &recorder[int, error]{}
	flakySource(5, 42, runs).Retry(2).Subscribe(rec.observe)

	require.Equal(t, int32(3), runs.Load())
	err, failed := rec.failure()
	require.True(t, failed)
	require.Equal(t, errBoom, err)
}

func TestRetryReplacing(t *testing.T) {
	runs := atomic.NewInt32(0)
	rec := &recorder[int, error]{}
	flakySource(5, 42, runs).RetryReplacing(1, errReplaced).Subscribe(rec.observe)

	err, failed := rec.failure()
	require.True(t, failed)
	require.Equal(t, errReplaced, err)
}

func TestRetryZeroIsPassThrough(t *testing.T) {
	runs := atomic.NewInt32(0)
	rec := &recorder[int, error]{}
	flakySource(1, 42, runs).Retry(0).Subscribe(rec.observe)

	require.Equal(t, int32(1), runs.Load())
	_, failed := rec.failure()
	require.True(t, failed)
}

func TestRetryDisposeStopsAttempts(t *testing.T) {
	runs := atomic.NewInt32(0)
	released := atomic.NewBool(false)
	src := Create(func(sink *Subscriber[int, error]) *Disposable {
		runs.Inc()
		return NewDisposable(func() { released.Store(true) })
	})

	rec := &recorder[int, error]{}
	d := src.Retry(3).Subscribe(rec.observe)
	d.Dispose()

	require.Equal(t, int32(1), runs.Load())
	require.True(t, released.Load())
	require.Zero(t, rec.count())
}
