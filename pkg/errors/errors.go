// Package errors provides custom error types for the expofuse system.
// These errors enable programmatic error checking across the fusion
// pipeline and the remote sheet synchronizer.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the expofuse system
var (
	// ErrSourceMissing indicates that a mandatory input file is absent
	ErrSourceMissing = errors.New("source file missing")

	// ErrSourceEmpty indicates that an input file yielded no usable records
	ErrSourceEmpty = errors.New("source dataset empty")

	// ErrNoUsableSource indicates that no input source produced any records
	ErrNoUsableSource = errors.New("no usable source")

	// ErrQuotaExceeded indicates that the remote store rejected a call for quota reasons
	ErrQuotaExceeded = errors.New("remote quota exceeded")

	// ErrPermissionDenied indicates that the remote store rejected the credentials
	ErrPermissionDenied = errors.New("remote permission denied")

	// ErrCapacityExceeded indicates that the remote sheet hit its cell limit
	ErrCapacityExceeded = errors.New("remote capacity exceeded")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// MissingSourceError reports an absent mandatory input file.
type MissingSourceError struct {
	Source string // "ocr_qr", "excel", "scrape"
	Path   string
}

// Error implements the error interface
func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("%s source not found at %s", e.Source, e.Path)
}

// Is implements errors.Is support
func (e *MissingSourceError) Is(target error) bool {
	return target == ErrSourceMissing
}

// NewMissingSourceError creates a new MissingSourceError
func NewMissingSourceError(source, path string) *MissingSourceError {
	return &MissingSourceError{Source: source, Path: path}
}

// EmptyDatasetError reports an input file that was present but yielded
// zero usable records. Distinguished from MissingSourceError for diagnostics.
type EmptyDatasetError struct {
	Source string
	Path   string
}

// Error implements the error interface
func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s source at %s contains no usable records", e.Source, e.Path)
}

// Is implements errors.Is support
func (e *EmptyDatasetError) Is(target error) bool {
	return target == ErrSourceEmpty
}

// NewEmptyDatasetError creates a new EmptyDatasetError
func NewEmptyDatasetError(source, path string) *EmptyDatasetError {
	return &EmptyDatasetError{Source: source, Path: path}
}

// RemoteKind classifies a failure reported by the remote tabular store.
type RemoteKind string

// Remote failure kinds.
const (
	RemoteQuota      RemoteKind = "quota"
	RemotePermission RemoteKind = "permission"
	RemoteCapacity   RemoteKind = "capacity"
	RemoteUnknown    RemoteKind = "unknown"
)

// RemoteError represents a classified failure from the remote sheet service.
// Synchronization never retries these; they are surfaced to the caller with
// a human-readable reason.
type RemoteError struct {
	Kind       RemoteKind
	Operation  string // "read header", "write header", "backfill", "append", "row count"
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s error during %s (status %d): %s", e.Kind, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote %s error during %s: %s", e.Kind, e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RemoteError) Is(target error) bool {
	switch e.Kind {
	case RemoteQuota:
		return target == ErrQuotaExceeded
	case RemotePermission:
		return target == ErrPermissionDenied
	case RemoteCapacity:
		return target == ErrCapacityExceeded
	}
	return false
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(kind RemoteKind, operation string, statusCode int, message string, err error) *RemoteError {
	return &RemoteError{
		Kind:       kind,
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "xlsx", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for error checking

// IsSourceMissing checks if an error reports an absent mandatory input
func IsSourceMissing(err error) bool {
	return errors.Is(err, ErrSourceMissing)
}

// IsSourceEmpty checks if an error reports an empty input dataset
func IsSourceEmpty(err error) bool {
	return errors.Is(err, ErrSourceEmpty)
}

// IsQuotaExceeded checks if an error is a remote quota error
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsPermissionDenied checks if an error is a remote permission error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsCapacityExceeded checks if an error is a remote capacity error
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// Retryable reports whether a failed synchronization may be retried later
// without operator action. Quota errors clear on their own; permission and
// capacity errors require configuration or a new destination.
func Retryable(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
