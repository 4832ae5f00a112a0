// Package schedule abstracts deferred work so nothing outside the process
// wiring depends on wall-clock timers directly.
package schedule

import "time"

// Handle cancels a pending task.
type Handle interface {
	Cancel() bool
}

// Scheduler runs a function once after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
}

// New returns a Scheduler backed by runtime timers.
func New() Scheduler {
	return timerScheduler{}
}

type timerScheduler struct{}

func (timerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(delay, fn)}
}

type timerHandle struct {
	t *time.Timer
}

// Cancel stops the task; reports false when it already ran.
func (h timerHandle) Cancel() bool {
	return h.t.Stop()
}
