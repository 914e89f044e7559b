package renumber

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports false if the
	// callback already ran or was stopped.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// ClockScheduler schedules on the wall clock with time.AfterFunc.
type ClockScheduler struct{}

// AfterFunc implements Scheduler.
func (ClockScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
