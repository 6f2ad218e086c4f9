// Package execution provides the benchmark session state machine.
package execution

// State represents the state of a benchmark session.
type State string

const (
	StatePending   State = "pending"   // Created, waiting to execute
	StatePreparing State = "preparing" // Generating the dataset and connecting
	StateRunning   State = "running"   // Executing the catalogue
	StateCompleted State = "completed" // Every run finished and the result file was written
	StateFailed    State = "failed"    // An operation or the backend failed
	StateCancelled State = "cancelled" // Cancelled by user
	StateTimeout   State = "timeout"   // The session timeout elapsed
)

// IsValid checks if the state is valid.
func (s State) IsValid() bool {
	switch s {
	case StatePending, StatePreparing, StateRunning,
		StateCompleted, StateFailed, StateCancelled, StateTimeout:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the state is a terminal state (no further transitions possible).
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed ||
		s == StateCancelled || s == StateTimeout
}

var transitions = map[State][]State{
	StatePending:   {StatePreparing, StateCancelled},
	StatePreparing: {StateRunning, StateFailed, StateCancelled, StateTimeout},
	// Each run of a session prepares its backend again.
	StateRunning: {StatePreparing, StateCompleted, StateFailed, StateCancelled, StateTimeout},
}

// CanTransitionTo checks if a transition from current state to target state is valid.
func (s State) CanTransitionTo(target State) bool {
	for _, state := range transitions[s] {
		if state == target {
			return true
		}
	}
	return false
}

// String implements Stringer interface.
func (s State) String() string {
	return string(s)
}
