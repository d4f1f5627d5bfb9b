package scheduler

import (
	"sync"
	"time"
)

// Clock supplies the engine's notion of time.
type Clock interface {
	Now() time.Time
	// TimerAt returns a timer that fires once the clock reaches deadline.
	TimerAt(deadline time.Time) Timer
}

type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) TimerAt(deadline time.Time) Timer {
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	return realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) C() <-chan time.Time { return r.t.C }

func (r realTimer) Stop() bool {
	if !r.t.Stop() {
		select {
		case <-r.t.C:
		default:
		}
		return false
	}
	return true
}

// ManualClock only moves when Advance or Set is called. Timers whose deadline
// has been reached fire during the call.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers map[*manualTimer]struct{}
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, timers: make(map[*manualTimer]struct{})}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) TimerAt(deadline time.Time) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: deadline, ch: make(chan time.Time, 1)}
	if !deadline.After(c.now) {
		t.ch <- c.now
		return t
	}
	c.timers[t] = struct{}{}
	return t
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.setLocked(c.now.Add(d))
	c.mu.Unlock()
}

func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	c.setLocked(now)
	c.mu.Unlock()
}

func (c *ManualClock) setLocked(now time.Time) {
	c.now = now
	for t := range c.timers {
		if !t.at.After(now) {
			delete(c.timers, t)
			select {
			case t.ch <- now:
			default:
			}
		}
	}
}

// Waiters reports how many timers are still armed.
func (c *ManualClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

type manualTimer struct {
	clock *ManualClock
	at    time.Time
	ch    chan time.Time
}

func (t *manualTimer) C() <-chan time.Time { return t.ch }

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	_, armed := t.clock.timers[t]
	delete(t.clock.timers, t)
	return armed
}
