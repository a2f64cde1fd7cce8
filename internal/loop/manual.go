package loop

import (
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Work handed to Go is
// queued instead of started so tests choose when, and in which order,
// network completions land. Manual is not safe for concurrent use.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
	posted []func()
	async  []func() func()
}

type manualTimer struct {
	at        time.Duration
	seq       int
	every     time.Duration
	fn        func()
	cancelled bool
}

func (t *manualTimer) Cancel() {
	t.cancelled = true
}

// NewManual creates a scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Post implements Scheduler.
func (m *Manual) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) Handle {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) *manualTimer {
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, every: every, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Go implements Scheduler by queuing work until RunAsync or Settle.
func (m *Manual) Go(work func() func()) {
	m.async = append(m.async, work)
}

// PendingAsync returns how many Go calls have not run yet.
func (m *Manual) PendingAsync() int {
	return len(m.async)
}

// RunAsync runs the i-th pending Go call (0 is the oldest), applies its
// result and flushes posted callbacks.
func (m *Manual) RunAsync(i int) {
	work := m.async[i]
	m.async = append(m.async[:i], m.async[i+1:]...)
	if apply := work(); apply != nil {
		apply()
	}
	m.Flush()
}

// Settle runs every pending Go call in issue order, including ones queued
// while settling.
func (m *Manual) Settle() {
	for len(m.async) > 0 {
		m.RunAsync(0)
	}
}

// Flush runs posted callbacks until none are left.
func (m *Manual) Flush() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

// Advance moves the clock forward by d, firing due timers in deadline
// order (ties in scheduling order) and flushing posts after each.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	m.Flush()
	for {
		t := m.next(target)
		if t == nil {
			break
		}
		m.now = t.at
		if t.every > 0 {
			t.at += t.every
			m.seq++
			t.seq = m.seq
		} else {
			t.cancelled = true
		}
		t.fn()
		m.Flush()
	}
	m.now = target
}

// next returns the earliest live timer due at or before target and prunes
// cancelled ones.
func (m *Manual) next(target time.Duration) *manualTimer {
	live := m.timers[:0]
	var best *manualTimer
	for _, t := range m.timers {
		if t.cancelled {
			continue
		}
		live = append(live, t)
		if t.at > target {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	for i := len(live); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = live
	return best
}

// Timers returns the number of live timers.
func (m *Manual) Timers() int {
	m.next(-1)
	return len(m.timers)
}
