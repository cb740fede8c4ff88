package job

import (
	"errors"
	"fmt"
	"sync"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// ErrBusy is returned when a job is submitted while another one is in flight.
var ErrBusy = errors.New("a video job is already in progress")

var allowedTransitions = map[State][]State{
	StateIdle:       {StateSubmitting},
	StateSubmitting: {StatePolling, StateFailed},
	StatePolling:    {StateDone, StateFailed},
	StateDone:       {StateSubmitting},
	StateFailed:     {StateSubmitting},
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to State) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Lifecycle tracks the state of the single in-flight video job.
type Lifecycle struct {
	mu    sync.RWMutex
	state State
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateIdle}
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Lifecycle) Busy() bool {
	return l.State().Busy()
}

// Begin moves into Submitting, rejecting the call with ErrBusy when a job is
// already submitting or polling.
func (l *Lifecycle) Begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Busy() {
		return ErrBusy
	}
	return l.transitionLocked(StateSubmitting)
}

func (l *Lifecycle) Transition(to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transitionLocked(to)
}

func (l *Lifecycle) transitionLocked(to State) error {
	if !CanTransition(l.state, to) {
		return fmt.Errorf("invalid job transition from %s to %s", l.state, to)
	}
	l.state = to
	return nil
}

func (s State) Busy() bool {
	return s == StateSubmitting || s == StatePolling
}
