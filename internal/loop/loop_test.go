package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualAfterFiresInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.After(300*time.Millisecond, func() { got = append(got, "c") })
	m.After(100*time.Millisecond, func() { got = append(got, "a") })
	m.After(100*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(99 * time.Millisecond)
	assert.Empty(t, got)

	m.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, m.Timers())
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false
	h := m.After(time.Second, func() { fired = true })
	h.Cancel()
	h.Cancel()
	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualEvery(t *testing.T) {
	m := NewManual()
	n := 0
	h := m.Every(200*time.Millisecond, func() { n++ })

	m.Advance(time.Second)
	assert.Equal(t, 5, n)

	h.Cancel()
	m.Advance(time.Second)
	assert.Equal(t, 5, n)
}

func TestManualTimerScheduledFromCallback(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.After(100*time.Millisecond, func() {
		at = append(at, m.Now())
		m.After(50*time.Millisecond, func() { at = append(at, m.Now()) })
	})
	m.Advance(time.Second)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond}, at)
}

func TestManualAsync(t *testing.T) {
	m := NewManual()
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		m.Go(func() func() {
			return func() { got = append(got, i) }
		})
	}
	require.Equal(t, 3, m.PendingAsync())

	m.RunAsync(2)
	assert.Equal(t, []int{3}, got)

	m.Settle()
	assert.Equal(t, []int{3, 1, 2}, got)
	assert.Equal(t, 0, m.PendingAsync())
}

func TestDebouncerLastTriggerWins(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m)
	var got []string

	d.Trigger(300*time.Millisecond, func() { got = append(got, "first") })
	m.Advance(200 * time.Millisecond)
	d.Trigger(300*time.Millisecond, func() { got = append(got, "second") })
	assert.True(t, d.Pending())

	m.Advance(200 * time.Millisecond)
	assert.Empty(t, got, "first trigger was replaced")

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"second"}, got)
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m)
	fired := false
	d.Trigger(time.Second, func() { fired = true })

	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())
	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestLoopRunsPostedAndTimers(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	done := make(chan struct{})
	var order []string
	l.Post(func() { order = append(order, "post") })
	l.After(10*time.Millisecond, func() {
		order = append(order, "after")
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	l.Post(cancel)
	require.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, []string{"post", "after"}, order)
}

func TestLoopCancelledTimerDoesNotRun(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var fired atomic.Bool
	h := l.After(20*time.Millisecond, func() { fired.Store(true) })
	h.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestLoopGoPostsResult(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	got := make(chan string, 1)
	l.Go(func() func() {
		v := "computed"
		return func() { got <- v }
	})

	select {
	case v := <-got:
		assert.Equal(t, "computed", v)
	case <-time.After(2 * time.Second):
		t.Fatal("result never applied")
	}
}
