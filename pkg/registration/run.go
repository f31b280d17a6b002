package registration

import (
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle state of a run
type State int

const (
	StateCollecting State = iota
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Run is the state of one compilation run: its identity, lifecycle state and
// accumulated declarations. A Run is never reused once done.
type Run struct {
	ID string

	mu          sync.Mutex
	state       State
	accumulator *Accumulator
}

// NewRun creates a run with a fresh ID
func NewRun() *Run {
	return NewRunWithID(uuid.New().String())
}

// NewRunWithID creates a run with a caller-provided ID
func NewRunWithID(id string) *Run {
	return &Run{
		ID:          id,
		state:       StateCollecting,
		accumulator: NewAccumulator(),
	}
}

// State returns the current lifecycle state
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Accumulator returns the run's accumulator
func (r *Run) Accumulator() *Accumulator {
	return r.accumulator
}

// transition moves the run from one state to the next. It returns false when
// the run is not in the expected state.
func (r *Run) transition(from, to State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != from {
		return false
	}
	r.state = to
	return true
}
