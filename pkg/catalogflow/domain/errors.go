package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrNoTrajectory          = errors.New("process has no trajectory")
	ErrInvalidTemplate       = errors.New("invalid process template")
	ErrNoInitialState        = fmt.Errorf("%w: no initial state", ErrInvalidTemplate)
	ErrAmbiguousInitialState = fmt.Errorf("%w: more than one initial state", ErrInvalidTemplate)
	ErrReferentialIntegrity  = errors.New("still referenced")
	ErrAccessDenied          = errors.New("actor has no access to the current state")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// PolicyRejection is returned when a transition is undefined or its guard
// formula does not hold. It is user actionable, never a fault.
type PolicyRejection struct {
	Reason string
}

func (e *PolicyRejection) Error() string {
	return "transition rejected: " + e.Reason
}

// ConflictError is returned when a trajectory append lost the race against a
// concurrent append on the same process.
type ConflictError struct {
	ProcessID        int64
	ExpectedPosition int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("process %d: trajectory moved past position %d", e.ProcessID, e.ExpectedPosition)
}

// NotFoundf wraps ErrNotFound with the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func IsPolicyRejection(err error) bool {
	var pr *PolicyRejection
	return errors.As(err, &pr)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
