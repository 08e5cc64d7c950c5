package room

import (
	"time"
)

// scheduler runs at most one pending round transition
// Scheduling a new transition replaces the pending one.
type scheduler struct {
	dispatch   func(func())
	generation int
	timer      *time.Timer
}

// after runs fn on the run loop once delay has elapsed
// NOTE: must only be called from the run loop
func (s *scheduler) after(delay time.Duration, fn func()) {
	s.cancel()

	gen := s.generation
	s.timer = time.AfterFunc(delay, func() {
		s.dispatch(func() {
			if gen != s.generation {
				return
			}

			s.timer = nil
			fn()
		})
	})
}

// cancel drops the pending transition
// NOTE: must only be called from the run loop
func (s *scheduler) cancel() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// pending returns true if a transition is waiting to run
func (s *scheduler) pending() bool {
	return s.timer != nil
}
