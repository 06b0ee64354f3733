package errors

import (
	"fmt"
)

// ParseError represents a configuration parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SnapshotError indicates that loading a full snapshot from a remote
// service failed. No meaningful plan can be computed from a partial
// snapshot, so this error is fatal for the run.
type SnapshotError struct {
	Service string
	Err     error
}

// NewSnapshotError constructs a SnapshotError for the named service.
func NewSnapshotError(service string, err error) error {
	return &SnapshotError{Service: service, Err: err}
}

func (e *SnapshotError) Error() string {
	if e == nil {
		return ""
	}
	if e.Service != "" {
		return fmt.Sprintf("snapshot load failed for %s: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("snapshot load failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *SnapshotError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ClassificationError records a member record that could not be
// classified during plan computation. One bad record never blocks
// reconciliation of the rest, so this error is collected, not returned.
type ClassificationError struct {
	Key     string
	Message string
}

// NewClassificationError constructs a ClassificationError.
func NewClassificationError(key, message string) error {
	return &ClassificationError{Key: key, Message: message}
}

func (e *ClassificationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		return fmt.Sprintf("cannot classify %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("cannot classify record: %s", e.Message)
}

// OperationError represents a failure while applying a single plan
// operation. It is recorded in the run result and never aborts the run.
type OperationError struct {
	Key  string
	Kind string
	Err  error
}

// NewOperationError constructs an OperationError.
func NewOperationError(key, kind string, err error) error {
	return &OperationError{Key: key, Kind: kind, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		return fmt.Sprintf("operation %s failed for %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("operation %s failed: %v", e.Kind, e.Err)
}

// Unwrap exposes the root error.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AbortError signals that the confirmation prompt was declined. No
// mutations have been performed when it is returned.
type AbortError struct {
	Reason string
}

// NewAbortError constructs an AbortError.
func NewAbortError(reason string) error {
	return &AbortError{Reason: reason}
}

func (e *AbortError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" {
		return fmt.Sprintf("run aborted: %s", e.Reason)
	}
	return "run aborted"
}

// APIError captures an unexpected HTTP status from a remote service.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}
