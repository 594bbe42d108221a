package engine

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Clock gives components access to simulated time
type Clock interface {
	// Now returns the current simulated time since the start of the run
	Now() time.Duration
	// After schedules fn to run once delay has elapsed in simulated time
	After(delay time.Duration, fn func())
}

// Simulator is a single-threaded discrete event loop. It implements Clock.
//
// Thread-safety: NOT thread-safe. Callbacks run on the goroutine calling Run
// and may schedule further events.
type Simulator struct {
	now      time.Duration
	nextID   uint64
	queue    *eventHeap
	executed int
	stopped  bool
}

// NewSimulator returns a simulator at t = 0 with an empty queue
func NewSimulator() *Simulator {
	return &Simulator{queue: newEventHeap()}
}

// Now returns the current simulated time
func (s *Simulator) Now() time.Duration {
	return s.now
}

// After schedules fn at Now()+delay. Negative delays are treated as zero.
func (s *Simulator) After(delay time.Duration, fn func()) {
	if delay < 0 {
		log.Warnf("Negative delay %v scheduled at %v, running immediately", delay, s.now)
		delay = 0
	}
	s.queue.schedule(&event{at: s.now + delay, id: s.nextID, fn: fn})
	s.nextID++
}

// At schedules fn at an absolute simulated time
func (s *Simulator) At(at time.Duration, fn func()) {
	s.After(at-s.now, fn)
}

// Run executes events in order until the queue drains, Stop is called, or
// the next event lies after until. A non-positive until runs to completion.
func (s *Simulator) Run(until time.Duration) {
	s.stopped = false
	for !s.stopped {
		next := s.queue.peek()
		if next == nil {
			break
		}
		if until > 0 && next.at > until {
			s.now = until
			break
		}
		s.queue.popNext()
		s.now = next.at
		next.fn()
		s.executed++
	}
	log.Debugf("Simulator stopped at %v after %d events, %d pending", s.now, s.executed, s.queue.Len())
}

// Stop makes Run return after the current event
func (s *Simulator) Stop() {
	s.stopped = true
}

// Executed returns the number of events run so far
func (s *Simulator) Executed() int {
	return s.executed
}

// Pending returns the number of queued events
func (s *Simulator) Pending() int {
	return s.queue.Len()
}
