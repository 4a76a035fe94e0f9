package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrAuthRequired means no authenticated identity was available.
	ErrAuthRequired = errors.New("authentication required")
	// ErrBackendUnavailable means a required remote collaborator was not configured.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrEmptyName means an ingredient name was blank after trimming.
	ErrEmptyName = errors.New("ingredient name is empty")

	ErrRemoteRead  = errors.New("remote read failed")
	ErrRemoteWrite = errors.New("remote write failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// RemoteError is a failure of the remote data store. It matches both its
// kind (ErrRemoteRead or ErrRemoteWrite) and its cause under errors.Is.
type RemoteError struct {
	Op    string
	Write bool
	Err   error
}

func (e *RemoteError) Error() string {
	kind := "read"
	if e.Write {
		kind = "write"
	}
	return fmt.Sprintf("remote %s %s: %v", kind, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	if e.Write {
		return []error{ErrRemoteWrite, e.Err}
	}
	return []error{ErrRemoteRead, e.Err}
}

// NewRemoteReadError wraps a failed remote read. A nil err yields nil.
func NewRemoteReadError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// NewRemoteWriteError wraps a failed remote write. A nil err yields nil.
func NewRemoteWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Write: true, Err: err}
}

// LineError reports the input line (zero-based) that aborted an ingestion.
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index+1, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
