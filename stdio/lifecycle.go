package stdio

import "sync/atomic"

// State is the lifecycle position of a served connection.
type State int32

const (
	// StateUninitialized is the state before initialize has been served.
	StateUninitialized State = iota
	// StateReady follows a served initialize. It is advisory: requests are
	// served in every state.
	StateReady
	// StateTerminated follows a served shutdown or the end of the input.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Lifecycle tracks the State of one connection. The zero value is
// StateUninitialized.
type Lifecycle struct {
	state atomic.Int32
}

// State returns the current state.
func (l *Lifecycle) State() State { return State(l.state.Load()) }

// MarkReady moves Uninitialized to Ready. It reports whether the transition
// happened; a repeated initialize or one after shutdown leaves the state
// unchanged.
func (l *Lifecycle) MarkReady() bool {
	return l.state.CompareAndSwap(int32(StateUninitialized), int32(StateReady))
}

// Terminate moves to Terminated from any state and returns the previous one.
func (l *Lifecycle) Terminate() State {
	return State(l.state.Swap(int32(StateTerminated)))
}
