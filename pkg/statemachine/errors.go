package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition    = errors.New("invalid transition: from and to must be set")
	ErrInitialStateRequired = errors.New("initial state is required")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
)

// TransitionError reports a Fire call that the definition does not allow.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition from '%s' to '%s' not allowed", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrTransitionNotAllowed
}
