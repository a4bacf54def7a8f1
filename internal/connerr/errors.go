// Package connerr defines the connector's uniform error kinds.
package connerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTranslation marks a filter node with no native form.
	// It is never fatal: the filter is applied at the framework level instead.
	ErrUnsupportedTranslation = errors.New("filter cannot be translated to a native predicate")

	// ErrInvalidState is returned when a builder or driver is used out of order.
	ErrInvalidState = errors.New("invalid state")

	// ErrDataAccess wraps every driver or query failure surfaced to callers.
	ErrDataAccess = errors.New("data access failure")

	// ErrSchemaMismatch marks a requested attribute without a schema entry.
	// It is never fatal: the name passes through unchanged.
	ErrSchemaMismatch = errors.New("attribute has no schema mapping")

	// ErrUnsupportedKind is returned when an object kind has no backing view
	// in the configured schema version.
	ErrUnsupportedKind = errors.New("object kind not supported")
)

// DataAccessError reports a failed database operation.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

func (e *DataAccessError) Is(target error) bool {
	return target == ErrDataAccess
}

// InvalidStateError describes why an operation was rejected.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// WrapDataAccess wraps err as a data-access failure. Errors that already are
// data-access failures are returned unchanged.
func WrapDataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataAccess) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// NewInvalidState creates an InvalidStateError.
func NewInvalidState(reason string) error {
	return &InvalidStateError{Reason: reason}
}

// IsDataAccess checks if an error is a data-access failure.
func IsDataAccess(err error) bool {
	return errors.Is(err, ErrDataAccess)
}

// IsInvalidState checks if an error is an invalid-state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
