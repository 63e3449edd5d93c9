package suspense

import (
	"errors"
	"fmt"

	verrors "github.com/vango-dev/suspense/internal/errors"
)

// ErrMissingBoundary is reported when a component suspends with no
// enclosing Suspense boundary.
var ErrMissingBoundary = errors.New("component suspended while rendering, but no fallback UI was specified")

// RenderError is a synchronous failure raised by a component.
type RenderError struct {
	Err error

	// Panic holds the recovered value when the component panicked.
	Panic any
}

func (e *RenderError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("component panicked: %v", e.Panic)
	}
	return "component render failed: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }

// RejectionError is reported when an awaited deferred value fails. Err is
// the rejection cause and may be nil.
type RejectionError struct {
	Err error
}

func (e *RejectionError) Error() string {
	if e.Err == nil {
		return "deferred value rejected"
	}
	return "deferred value rejected: " + e.Err.Error()
}

func (e *RejectionError) Unwrap() error { return e.Err }

// UnknownSuspendError is reported when a component suspends on a value that
// is not an Awaitable.
type UnknownSuspendError struct {
	Value any
}

func (e *UnknownSuspendError) Error() string {
	return fmt.Sprintf("component suspended on %T, which is not a deferred value", e.Value)
}

// fatal wraps err in the coded error for code.
func fatal(code string, err error) *verrors.VangoError {
	return verrors.New(code).Wrap(err)
}

// failureCode picks the code for an error returned by a render cycle.
func failureCode(err error) string {
	var rej *RejectionError
	var unk *UnknownSuspendError
	switch {
	case errors.Is(err, ErrMissingBoundary):
		return "E200"
	case errors.As(err, &rej):
		return "E202"
	case errors.As(err, &unk):
		return "E203"
	default:
		return "E201"
	}
}
