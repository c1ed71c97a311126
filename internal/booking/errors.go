package booking

import (
	"errors"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPaymentRequired   = errors.New("payment required")
	ErrInvalidCost       = errors.New("invalid cost")
	ErrUnknownSubTask    = errors.New("unknown sub-task")
)

// ValidationError carries every problem found in a draft or event. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationError(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// TransitionError reports the attempted transition. It matches ErrInvalidTransition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return "cannot move request from " + string(e.From) + " to " + string(e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
