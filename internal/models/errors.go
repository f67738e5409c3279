package models

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound           = errors.New("complaint not found")
	ErrNotPending         = errors.New("complaint is not pending")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrPersistence        = errors.New("persistence failure")
	ErrEmptyReply         = errors.New("reply has neither text nor attachment")
)

// BackendError wraps a failed call to the language model or the messaging backend.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() []error { return []error{ErrBackendUnavailable, e.Err} }

// PersistenceError wraps a failed storage operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
