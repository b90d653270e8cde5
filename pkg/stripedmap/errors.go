package stripedmap

import (
	"errors"
	"fmt"
)

// Error is a coded error returned by map operations.
// Codes follow the SM-<AREA>-<NNNN> format used across the tool.
type Error struct {
	Code    string // Error code (e.g., "SM-ALLOC-5000")
	Message string // Human-readable message
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// Predefined errors.
var (
	// ErrAllocation is returned when the allocator refuses a request.
	ErrAllocation = &Error{Code: "SM-ALLOC-5000", Message: "allocation failed"}

	// ErrRehashFailed is returned by a mutator whose triggered rehash could
	// not complete. The mutation itself has been applied and the bucket
	// array is unchanged.
	ErrRehashFailed = &Error{Code: "SM-REHASH-5001", Message: "rehash failed"}

	// ErrInvalidLoadFactor is returned for a non-positive max load factor.
	ErrInvalidLoadFactor = &Error{Code: "SM-CONF-4000", Message: "max load factor must be positive"}
)

// IsAllocation reports whether err is, or wraps, an allocation failure.
func IsAllocation(err error) bool {
	return errors.Is(err, ErrAllocation)
}
