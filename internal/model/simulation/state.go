package simulation

// State is the lifecycle phase of a simulation session.
type State string

const (
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StatePaused       State = "paused"
	StateCompleted    State = "completed"
	StateError        State = "error"
)

// transitions is the closed set of legal state changes. Completed and Error
// are terminal. Paused->Error covers a provider failure surfacing while a
// concurrent pause already flipped the state.
var transitions = map[State][]State{
	StateInitializing: {StateRunning, StateError},
	StateRunning:      {StatePaused, StateCompleted, StateError},
	StatePaused:       {StateRunning, StateCompleted, StateError},
}

// CanTransition reports whether moving to the target state is legal.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
