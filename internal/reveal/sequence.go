// Package reveal drives staged, timer-based UI transitions: typewriter
// text, delayed banners and other reveal effects. Every sequence owns exactly
// one timer, and stopping the sequence guarantees no further step runs.
package reveal

import (
	"sync"
	"time"
)

// Step is a single timed state transition. After is measured from the
// previous step (or from Start for the first one).
type Step struct {
	After time.Duration
	Apply func()
}

// Sequence runs its steps in order on a single owning timer.
//
// Apply is called with the sequence lock held so that Stop can promise no
// step runs after it returns. An Apply func must therefore not call Stop on
// its own sequence.
type Sequence struct {
	mu      sync.Mutex
	steps   []Step
	next    int
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// Start arms the first step and returns the running sequence. An empty
// step list completes immediately.
func Start(steps []Step) *Sequence {
	s := &Sequence{
		steps: steps,
		done:  make(chan struct{}),
	}
	s.mu.Lock()
	s.schedule()
	s.mu.Unlock()
	return s
}

// schedule arms the timer for the next pending step. Caller holds s.mu.
func (s *Sequence) schedule() {
	if s.next >= len(s.steps) {
		s.finish()
		return
	}
	d := s.steps[s.next].After
	if d < 0 {
		d = 0
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(d, s.fire)
		return
	}
	s.timer.Reset(d)
}

func (s *Sequence) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	step := s.steps[s.next]
	s.next++
	if step.Apply != nil {
		step.Apply()
	}
	s.schedule()
}

// finish marks the sequence as over. Caller holds s.mu.
func (s *Sequence) finish() {
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
}

// Stop cancels the remaining steps. It reports whether anything was still
// pending; stopping a finished sequence is a no-op.
func (s *Sequence) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.finish()
	return true
}

// Done is closed once every step ran or the sequence was stopped.
func (s *Sequence) Done() <-chan struct{} {
	return s.done
}

// Applied returns how many steps have run so far.
func (s *Sequence) Applied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
