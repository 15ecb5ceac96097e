package measure

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidMetricValue = errors.New("invalid metric value")
	ErrInvalidThreshold   = errors.New("invalid threshold")
)

// Error carries a stable, human-readable message alongside its kind.
// Callers may match on the message text, so wording must not change.
type Error struct {
	Kind    error
	Message string
}

// Error returns the message verbatim.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind for errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) *Error {
	return newError(ErrInvalidArgument, format, args...)
}

func invalidMetric(format string, args ...any) *Error {
	return newError(ErrInvalidMetricValue, format, args...)
}

func invalidThreshold(format string, args ...any) *Error {
	return newError(ErrInvalidThreshold, format, args...)
}
