// Package errors provides structured error types for the orrery application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Identification of the offending node ids for data-integrity failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The hierarchy-integrity codes ([ErrCodeSchema], [ErrCodeDanglingReference],
// [ErrCodeCycle], [ErrCodeEmptyForest], [ErrCodeRecursionLimit]) abort a
// layout run. There is no partial layout: callers either get a complete,
// consistent snapshot or one of these errors.
//
// # Usage
//
//	err := errors.NewNodes(errors.ErrCodeDanglingReference, []string{id},
//	    "node %q names unknown parent %q", id, parent)
//	if errors.Is(err, errors.ErrCodeDanglingReference) {
//	    fmt.Println(errors.Nodes(err))
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Hierarchy integrity errors
	ErrCodeSchema            Code = "SCHEMA"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeCycle             Code = "CYCLE"
	ErrCodeEmptyForest       Code = "EMPTY_FOREST"
	ErrCodeRecursionLimit    Code = "RECURSION_LIMIT"
	ErrCodeDuplicateNode     Code = "DUPLICATE_NODE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code     // Machine-readable error code
	Message string   // Human-readable message
	Nodes   []string // Offending node ids, if any
	Cause   error    // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNodes creates a new Error that records the node ids it concerns.
func NewNodes(code Code, nodes []string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Nodes:   nodes,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Nodes returns the node ids recorded on the first *Error in the chain.
func Nodes(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Nodes
	}
	return nil
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsHierarchyError reports whether err is one of the codes that reject a
// malformed hierarchy.
func IsHierarchyError(err error) bool {
	switch GetCode(err) {
	case ErrCodeSchema, ErrCodeDanglingReference, ErrCodeCycle,
		ErrCodeEmptyForest, ErrCodeRecursionLimit, ErrCodeDuplicateNode:
		return true
	}
	return false
}

// QuoteIDs formats node ids for messages, truncating long lists.
func QuoteIDs(ids []string) string {
	const limit = 5
	quoted := make([]string, 0, min(len(ids), limit))
	for i, id := range ids {
		if i == limit {
			break
		}
		quoted = append(quoted, fmt.Sprintf("%q", id))
	}
	s := strings.Join(quoted, ", ")
	if len(ids) > limit {
		s += fmt.Sprintf(" (and %d more)", len(ids)-limit)
	}
	return s
}
