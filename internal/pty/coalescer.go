package pty

import "time"

// coalescer implements the render-coalescing protocol from spec.md §4.4:
// under light load every chunk gets an immediate Render; under flooding
// it adapts to emit at most one Render per flushDeadline. The 10x/5x
// thresholds and 30ms deadline are spec-level constants; the adaptive
// shape (track a minimum, flip a backed-up bit on a 10x regression, flip
// it back on a 5x recovery) is what must be preserved, not the exact
// numbers.
type coalescer struct {
	flushDeadline time.Duration

	minSendTime time.Duration
	backedUp    bool

	lastSendStart time.Time
}

func newCoalescer() *coalescer {
	return &coalescer{flushDeadline: 30 * time.Millisecond}
}

// beforeSend is called immediately before a Render is about to be sent
// (or suppressed). now is the current time; it returns whether a Render
// should be emitted now, and — when it returns false — the goroutine
// should instead arm a flushDeadline timer that, if no further bytes
// arrive first, sends exactly one Render.
func (c *coalescer) beforeSend(now time.Time) (sendNow bool) {
	if !c.backedUp {
		c.lastSendStart = now
		return true
	}
	return false
}

// observeSendDuration records how long the last Render send/handling
// took (as observed by the reader — in practice, the time between
// deciding to send and the next chunk being ready) and updates the
// backed-up state per the 10x/5x hysteresis band.
func (c *coalescer) observeSendDuration(d time.Duration) {
	if c.minSendTime == 0 || d < c.minSendTime {
		c.minSendTime = d
	}
	if c.minSendTime == 0 {
		return
	}
	switch {
	case !c.backedUp && d >= 10*c.minSendTime:
		c.backedUp = true
	case c.backedUp && d < 5*c.minSendTime:
		c.backedUp = false
	}
}
