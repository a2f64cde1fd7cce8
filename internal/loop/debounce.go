package loop

import "time"

// Debouncer holds at most one pending action. Triggering again cancels the
// pending one first, so the last trigger wins. Use it from the loop only.
type Debouncer struct {
	sched   Scheduler
	pending Handle
}

// NewDebouncer creates a debouncer scheduling on s.
func NewDebouncer(s Scheduler) *Debouncer {
	return &Debouncer{sched: s}
}

// Trigger schedules fn after d, replacing any pending action.
func (d *Debouncer) Trigger(after time.Duration, fn func()) {
	d.Cancel()
	d.pending = d.sched.After(after, func() {
		d.pending = nil
		fn()
	})
}

// Cancel drops the pending action. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	if d.pending == nil {
		return false
	}
	d.pending.Cancel()
	d.pending = nil
	return true
}

// Pending reports whether an action is waiting to fire.
func (d *Debouncer) Pending() bool {
	return d.pending != nil
}
