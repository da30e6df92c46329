package simulation

import (
	"errors"
	"fmt"

	simModel "github.com/panelwise/backend/internal/model/simulation"
)

// ErrSessionNotFound is returned for operations against an unknown session
// id. It is rejected before any state mutation.
var ErrSessionNotFound = errors.New("simulation session not found")

// ValidationError rejects malformed input before a session is created or a
// question is accepted. No state is mutated.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StateError rejects an operation not permitted in the session's current
// state. No side effects.
type StateError struct {
	SessionID string
	State     simModel.State
	Op        string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state: cannot %s session %s while %s", e.Op, e.SessionID, e.State)
}
