package models

import (
	"errors"
	"fmt"
)

// ErrPostNotFound is returned when a referenced post id does not exist.
var ErrPostNotFound = errors.New("post not found")

// ValidationError marks malformed or missing caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PublishError is a per-channel external publish failure. It never aborts
// sibling-channel attempts.
type PublishError struct {
	Channel Channel
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed: %v", e.Channel, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// StorageError wraps a queue backing read/write failure. It is fatal for the
// current invocation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("queue storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
