// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package security

import (
	"errors"
	"net/http"
)

// Rule kinds reported by the validators. A *ValidationError unwraps to exactly
// one of these, so callers can branch with errors.Is.
var (
	// ErrMalformedInput indicates empty or whitespace-only input.
	ErrMalformedInput = errors.New("malformed input")
	// ErrPathTraversal indicates a path traversal attack attempt.
	ErrPathTraversal = errors.New("path traversal detected")
	// ErrShellInjection indicates a disallowed shell metacharacter.
	ErrShellInjection = errors.New("shell metacharacters")
	// ErrReservedName indicates a name that collides with a filesystem or registry special name.
	ErrReservedName = errors.New("reserved name")
	// ErrFormatViolation indicates input that fails a naming grammar or length limit.
	ErrFormatViolation = errors.New("format violation")
	// ErrFileSpec indicates a file: package reference that is missing, of the wrong type, or lacks a manifest.
	ErrFileSpec = errors.New("invalid file package")
)

// ValidationError is returned for every rejected input. The input is always
// the client's fault, so the error maps to HTTP 400 and is never retryable.
type ValidationError struct {
	// Kind is one of the rule sentinels above.
	Kind error
	// Msg names the violated rule and is safe to show to the caller.
	Msg string
}

// NewValidationError creates a ValidationError of the given kind.
func NewValidationError(kind error, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Msg: msg}
}

// Error returns the human-readable message only.
func (e *ValidationError) Error() string {
	return e.Msg
}

// Unwrap exposes the rule kind to errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// StatusCode reports the HTTP status for the failure.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Kind returns the rule kind of err, or nil when err is not a validation failure.
func Kind(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return nil
}

// RuleName returns a stable snake_case label for a rule kind, suitable for
// metric labels and audit log fields. Unknown kinds map to "unknown".
func RuleName(kind error) string {
	switch kind {
	case ErrMalformedInput:
		return "malformed_input"
	case ErrPathTraversal:
		return "path_traversal"
	case ErrShellInjection:
		return "shell_injection"
	case ErrReservedName:
		return "reserved_name"
	case ErrFormatViolation:
		return "format_violation"
	case ErrFileSpec:
		return "file_spec"
	default:
		return "unknown"
	}
}
