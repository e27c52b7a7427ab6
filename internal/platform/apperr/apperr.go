// Package apperr defines the error kinds shared by the store, the billing
// core and the invoice renderer. Callers classify failures with errors.Is
// against the sentinels and recover details with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrStorage               = errors.New("storage error")
)

// ValidationError reports a rejected input. Index is the position of the
// offending element in a list input, or -1 when the error is not positional.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a non-positional ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Index: -1, Reason: reason}
}

// InvalidItem returns a ValidationError for element i of a list input.
func InvalidItem(i int, field, reason string) error {
	return &ValidationError{Field: field, Index: i, Reason: reason}
}

// NotFound wraps ErrNotFound with the kind and identifier that failed to
// resolve, e.g. NotFound("patient", 42) -> "patient 42: not found".
func NotFound(kind string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
}

// CapabilityUnavailable reports an optional component missing from this build.
func CapabilityUnavailable(name string) error {
	return fmt.Errorf("%s: %w", name, ErrCapabilityUnavailable)
}

// StorageError wraps a driver failure with the store operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err as a StorageError. Nil stays nil, and errors that are
// already classified are returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// HTTPStatus maps an error kind to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCapabilityUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
