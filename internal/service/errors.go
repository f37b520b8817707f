package service

import (
	"errors"
	"fmt"
)

// ErrEmptyTitle is returned when a task title is empty after trimming.
var ErrEmptyTitle = &ValidationError{Field: "title", Reason: "must not be empty"}

// ErrTaskNotFound indicates no task matched a reference.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError is a rejected user input. Callers treat it as a silent no-op.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FetchError describes a failed request against the remote collection.
// StatusCode is set for non-2xx responses; Err is set for transport or
// decoding failures.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch posts: %v", e.Err)
	}
	return "failed to fetch posts"
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
