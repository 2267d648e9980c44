package analytics

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for unknown periods, intervals, activity types or ids
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAccessDenied is returned when the caller may not read the requested subject
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when the subject does not exist in the record store
	ErrNotFound = errors.New("not found")

	// ErrTimeout is returned when the record store exceeds the request deadline
	ErrTimeout = errors.New("timeout")

	// ErrInternal is returned for unexpected record store failures
	ErrInternal = errors.New("internal error")
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindAccessDenied
	KindNotFound
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindAccessDenied:
		return "access_denied"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAccessDenied):
		return KindAccessDenied
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindInternal
	}
}

// IsInvalidArgumentError checks if the error is or wraps ErrInvalidArgument
func IsInvalidArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsAccessDeniedError checks if the error is or wraps ErrAccessDenied
func IsAccessDeniedError(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsNotFoundError checks if the error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeoutError checks if the error is or wraps ErrTimeout
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// NewInvalidArgumentError creates a new invalid argument error with context
func NewInvalidArgumentError(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, message)
}

// NewAccessDeniedError creates a new access denied error with context
func NewAccessDeniedError(message string) error {
	return fmt.Errorf("%w: %s", ErrAccessDenied, message)
}

// NewNotFoundError creates a new not found error for a subject
func NewNotFoundError(kind SubjectKind, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

// NewTimeoutError creates a new timeout error with the cause
func NewTimeoutError(operation string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrTimeout, operation, cause)
}

// NewInternalError creates a new internal error wrapping the cause
func NewInternalError(operation string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, operation, cause)
}

// classifyStoreError maps a record store failure onto the error taxonomy.
// Any failure once ctx's deadline has passed is a timeout: lib/pq returns the
// server's cancellation error rather than the context error.
func classifyStoreError(ctx context.Context, operation string, err error) error {
	switch {
	case errors.Is(err, ErrTimeout):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(operation, err)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInternal):
		return err
	default:
		return NewInternalError(operation, err)
	}
}
