// Package loop runs timers, document notifications and network completions
// on one logical thread.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Handle cancels a scheduled action. Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Scheduler is what the annotation components schedule work through. Every
// callback runs on the scheduler's thread, never concurrently with another.
type Scheduler interface {
	// Post queues fn to run on the loop.
	Post(fn func())
	// After runs fn once, d from now.
	After(d time.Duration, fn func()) Handle
	// Every runs fn every d until cancelled.
	Every(d time.Duration, fn func()) Handle
	// Go runs work off the loop. The func it returns, if any, is posted
	// back to the loop.
	Go(work func() func())
}

// Loop is a Scheduler backed by a single goroutine. It must be driven by Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn. Safe to call from any goroutine; dropped once the loop
// has stopped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes queued callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			fn()

			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// timer is the Handle for After and Every.
type timer struct {
	cancelled atomic.Bool
	stop      func()
}

func (t *timer) Cancel() {
	if t.cancelled.CompareAndSwap(false, true) && t.stop != nil {
		t.stop()
	}
}

// After implements Scheduler. A timer cancelled after it fired but before
// its callback ran on the loop is still suppressed.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	t := &timer{}
	tm := time.AfterFunc(d, func() {
		l.Post(func() {
			if !t.cancelled.Load() {
				t.cancelled.Store(true)
				fn()
			}
		})
	})
	t.stop = func() { tm.Stop() }
	return t
}

// Every implements Scheduler.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	t := &timer{}
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	var once sync.Once
	t.stop = func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
		})
	}

	go func() {
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if !t.cancelled.Load() {
						fn()
					}
				})
			case <-stop:
				return
			case <-l.done:
				ticker.Stop()
				return
			}
		}
	}()
	return t
}

// Go implements Scheduler.
func (l *Loop) Go(work func() func()) {
	go func() {
		if apply := work(); apply != nil {
			l.Post(apply)
		}
	}()
}
