package gesture

// Tracker remembers the previous mode and reports transitions.
// Not safe for concurrent use; it belongs to the frame loop.
type Tracker struct {
	prev Mode
}

// NewTracker starts at IDLE.
func NewTracker() *Tracker {
	return &Tracker{prev: Idle}
}

// Observe records mode and reports whether a cue should fire: only on a
// change, and only for modes that have a sound.
func (t *Tracker) Observe(mode Mode) (cue bool) {
	if mode == t.prev {
		return false
	}
	t.prev = mode
	return mode.HasCue()
}

// Current returns the last observed mode.
func (t *Tracker) Current() Mode {
	return t.prev
}
