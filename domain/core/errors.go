package core

import (
	"errors"
	"fmt"
)

// Domain error categories - every typed error in the system unwraps to one
// of these, so callers can classify failures with errors.Is without knowing
// the concrete type.
var (
	// ErrData marks data-layer failures (dataset missing, schema unreadable).
	// Fatal to the dataset session.
	ErrData = errors.New("data error")

	// ErrPlanRejected marks plan-layer validation failures. Recoverable: the
	// caller may re-prompt the plan generator with the rejection detail.
	ErrPlanRejected = errors.New("plan rejected")

	// ErrExecution marks statistical-execution failures. Recoverable at the
	// plan level; the engine never returns partial or NaN-filled results.
	ErrExecution = errors.New("execution error")
)

// IsDataError reports whether err is a data-layer failure
func IsDataError(err error) bool {
	return errors.Is(err, ErrData)
}

// IsPlanRejected reports whether err is a plan validation rejection
func IsPlanRejected(err error) bool {
	return errors.Is(err, ErrPlanRejected)
}

// IsExecutionError reports whether err is a statistical execution failure
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrExecution)
}

// NewDataError wraps a cause as a data-layer error
func NewDataError(msg string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %v", ErrData, msg, cause)
	}
	return fmt.Errorf("%w: %s", ErrData, msg)
}
