// Package timer is the issue downtime stopwatch an operator runs while a
// production problem is being resolved.
package timer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("timer already running")
	ErrNotRunning     = errors.New("timer not running")
)

// Timer accumulates elapsed time across start/stop cycles. The zero value is
// an idle timer with nothing accumulated. Timer is a value type: callers keep
// it in their session and pass it along.
type Timer struct {
	running     bool
	startedAt   time.Time
	accumulated time.Duration
}

// Stopped returns an idle timer already holding d, for downtime measured
// elsewhere. Negative d is treated as zero.
func Stopped(d time.Duration) Timer {
	if d < 0 {
		d = 0
	}
	return Timer{accumulated: d}
}

// Running reports whether a segment is open.
func (t Timer) Running() bool { return t.running }

// StartedAt is when the open segment began; zero when idle.
func (t Timer) StartedAt() time.Time { return t.startedAt }

// Accumulated is the total of closed segments only.
func (t Timer) Accumulated() time.Duration { return t.accumulated }

// Start opens a segment at now.
func (t *Timer) Start(now time.Time) error {
	if t.running {
		return ErrAlreadyRunning
	}
	t.running = true
	t.startedAt = now
	return nil
}

// Stop closes the open segment at now and folds it into the total. A clock
// that went backwards contributes nothing.
func (t *Timer) Stop(now time.Time) error {
	if !t.running {
		return ErrNotRunning
	}
	t.accumulated += elapsed(t.startedAt, now)
	t.running = false
	t.startedAt = time.Time{}
	return nil
}

// Toggle starts an idle timer or stops a running one.
func (t *Timer) Toggle(now time.Time) {
	if t.running {
		_ = t.Stop(now)
		return
	}
	_ = t.Start(now)
}

// Reset zeroes the timer and leaves it idle.
func (t *Timer) Reset() {
	*t = Timer{}
}

// Total is the accumulated time plus the open segment, if any, up to now.
func (t Timer) Total(now time.Time) time.Duration {
	if !t.running {
		return t.accumulated
	}
	return t.accumulated + elapsed(t.startedAt, now)
}

// Display is Total formatted for the ledger.
func (t Timer) Display(now time.Time) string {
	return Format(t.Total(now))
}

func elapsed(from, to time.Time) time.Duration {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d as H:MM:SS, dropping sub-second precision. Hours are not
// padded and keep counting past a day.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
