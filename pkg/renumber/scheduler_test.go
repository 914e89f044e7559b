package renumber_test

import (
	"sync"
	"time"

	"github.com/yaklabco/markrecall/pkg/renumber"
)

// manualScheduler records timers and fires them only when told to.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) renumber.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTimer{s: s, delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire runs every live timer and returns how many ran.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Live returns how many timers are armed.
func (s *manualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (s *manualScheduler) all() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*manualTimer(nil), s.timers...)
}
