package domain

import "time"

// ClockDisabled is the value RemainingTime reads once the countdown has
// been switched off for sudden death.
const ClockDisabled = time.Duration(-1)

// Clock is the regulation countdown. It only moves when the orchestrator
// ticks it; pausing stops the countdown without hiding the value, while
// disabling freezes it permanently and makes reads return ClockDisabled.
type Clock struct {
	remaining time.Duration
	enabled   bool
	paused    bool
}

// NewClock creates an enabled, paused clock holding the full regulation time.
func NewClock(regulation time.Duration) Clock {
	return Clock{remaining: regulation, enabled: true, paused: true}
}

// Tick subtracts delta from the remaining time, clamped at zero.
// No-op while paused or disabled.
func (c *Clock) Tick(delta time.Duration) {
	if !c.enabled || c.paused {
		return
	}
	c.remaining -= delta
	if c.remaining < 0 {
		c.remaining = 0
	}
}

// Pause stops the countdown until Resume is called.
func (c *Clock) Pause() { c.paused = true }

// Resume lets Tick take effect again. No-op once disabled.
func (c *Clock) Resume() {
	if !c.enabled {
		return
	}
	c.paused = false
}

// Disable freezes the clock for the rest of the match. Used when sudden
// death starts; there is no way to re-enable.
func (c *Clock) Disable() {
	c.enabled = false
	c.paused = true
}

// Running reports whether Tick currently has effect.
func (c *Clock) Running() bool { return c.enabled && !c.paused }

// Expired reports whether regulation time has fully elapsed.
func (c *Clock) Expired() bool { return c.enabled && c.remaining == 0 }

// Remaining returns the time left, or ClockDisabled once disabled.
func (c *Clock) Remaining() time.Duration {
	if !c.enabled {
		return ClockDisabled
	}
	return c.remaining
}
