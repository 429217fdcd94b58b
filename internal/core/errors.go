package core

import (
	"errors"
	"fmt"
)

// ErrMissingInput marks a required argument that is absent or blank after
// trimming. Matched with errors.Is.
var ErrMissingInput = errors.New("missing required input")

// TypeMismatchError reports an argument whose primitive type does not match
// the declared expectation.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %q as %s, but got %s", e.Field, e.Expected, e.Actual)
}

// StoreUnavailableError reports that the backing store could not be opened:
// the embedded file is missing, or the networked store refused the
// connection.
type StoreUnavailableError struct {
	Kind string // "sqlite" or "mysql"
	Err  error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable (%s): %v", e.Kind, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// QueryFailureError reports a malformed statement or a backend error during
// execution. Distinct from an empty result, which is not an error.
type QueryFailureError struct {
	Err error
}

func (e *QueryFailureError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryFailureError) Unwrap() error { return e.Err }
