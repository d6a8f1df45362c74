package workflow

import (
	"fmt"
	"sync"
)

// State of a work-item slot.
type State int

const (
	Idle State = iota
	Fetching
	Ready
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// slot serializes transitions for one work item. Only one fetch or submit
// may be in flight per slot; others are rejected with ErrBusy.
type slot struct {
	mu    sync.Mutex
	state State
	text  string
}

func (s *slot) snapshot() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.text
}

// enter moves the slot into an in-flight state and returns the item it held.
func (s *slot) enter(to State) (State, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Fetching || s.state == Submitting {
		return s.state, s.text, ErrBusy
	}

	from := s.state
	s.state = to
	return from, s.text, nil
}

func (s *slot) settle(state State, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.text = text
}
