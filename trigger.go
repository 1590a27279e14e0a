package mqbroker

import "sync/atomic"

// Trigger is a one-shot, observable flag that transitions from false to true
// exactly once. Copies of a Trigger share the same underlying flag, so a
// Trigger can be cloned and handed to every long-lived task that needs to
// observe shutdown without needing a broadcast mechanism: tasks simply poll
// Fired() on their own schedule.
type Trigger struct {
	fired *atomic.Bool
}

// NewTrigger returns a Trigger in the unfired state.
func NewTrigger() Trigger {
	return Trigger{fired: &atomic.Bool{}}
}

// Fire sets the trigger. Idempotent: firing an already-fired Trigger is a
// no-op.
func (t Trigger) Fire() {
	t.fired.Store(true)
}

// Fired reports whether Fire has been called on this Trigger or any of its
// clones.
func (t Trigger) Fired() bool {
	return t.fired.Load()
}
