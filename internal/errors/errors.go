// Package errors provides structured error handling compatible with standard library.
//
// Overview:
//   - Responsibility: Classify generator failures and map them to process exit codes
//   - Key Types: Code type for error classification, E struct for structured errors
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library error wrapping
//   - Performance Notes: Minimal allocations
//
// Usage:
//
//	err := errors.New(errors.CodeInvalidArgument, "--class is required")
//	wrapped := errors.Wrap(errors.CodeIO, "write RayleighInteract.hh", originalErr)
//	code := errors.CodeOf(err)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents an error classification code.
type Code string

// Error codes used by the generator.
const (
	// CodeInvalidArgument reports a required command-line or manifest value that is absent
	// or malformed. It is raised before any rendering happens.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeMissingParameter reports a template slot with no value.
	CodeMissingParameter Code = "MISSING_PARAMETER"
	// CodeNotFound reports an unknown flavor, template or input file.
	CodeNotFound Code = "NOT_FOUND"
	// CodeIO reports a file system failure.
	CodeIO Code = "IO"
	// CodeStale reports generated files that differ from what would be rendered.
	CodeStale Code = "STALE"
	// CodeInternal reports anything else.
	CodeInternal Code = "INTERNAL"
)

// E represents a structured error with code, operation, message, and details.
type E struct {
	Code    Code   // Error classification code
	Op      string // Operation that failed
	Err     error  // Underlying error (may be nil)
	Msg     string // Human-readable message
	Details []any  // Additional structured details (e.g., missing slot names)
}

// Error implements the error interface.
func (e *E) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Op
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *E) Unwrap() error {
	return e.Err
}

// New creates a new structured error with the given code and message.
func New(code Code, msg string) error {
	return &E{
		Code: code,
		Msg:  msg,
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &E{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new structured error wrapping an existing error.
// The operation name helps identify where the error occurred.
func Wrap(code Code, op string, err error) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

// Wrapf creates a new structured error wrapping an existing error with formatted message.
func Wrapf(code Code, op string, err error, format string, args ...any) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// MissingParameters reports the template slots of op that have no value.
func MissingParameters(op string, names []string) error {
	details := make([]any, 0, len(names))
	for _, name := range names {
		details = append(details, name)
	}
	return &E{
		Code:    CodeMissingParameter,
		Op:      op,
		Msg:     fmt.Sprintf("%s: missing parameter(s) %s", op, strings.Join(names, ", ")),
		Details: details,
	}
}

// CodeOf extracts the error code from an error.
// Returns empty string if the error doesn't have a code.
func CodeOf(err error) Code {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// As is a type assertion helper for error unwrapping.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is checks if an error is of a specific type.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// Join combines errors, dropping nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// ExitCode maps an error to the process exit status.
// A nil error maps to 0 and an unclassified error to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return 2
	case CodeMissingParameter:
		return 3
	case CodeIO:
		return 4
	case CodeStale:
		return 5
	default:
		return 1
	}
}

// Builder provides a fluent interface for constructing errors.
type Builder struct {
	code    Code
	op      string
	err     error
	msg     string
	details []any
}

// Build constructs a new error with the builder's configuration.
func Build(code Code) *Builder {
	return &Builder{code: code}
}

// WithOp sets the operation that failed.
func (b *Builder) WithOp(op string) *Builder {
	b.op = op
	return b
}

// WithErr wraps an underlying error.
func (b *Builder) WithErr(err error) *Builder {
	b.err = err
	return b
}

// WithMsg sets a human-readable message.
func (b *Builder) WithMsg(msg string) *Builder {
	b.msg = msg
	return b
}

// WithMsgf sets a formatted human-readable message.
func (b *Builder) WithMsgf(format string, args ...any) *Builder {
	b.msg = fmt.Sprintf(format, args...)
	return b
}

// WithDetails adds structured details to the error.
func (b *Builder) WithDetails(details ...any) *Builder {
	b.details = append(b.details, details...)
	return b
}

// Err builds and returns the error.
func (b *Builder) Err() error {
	return &E{
		Code:    b.code,
		Op:      b.op,
		Err:     b.err,
		Msg:     b.msg,
		Details: b.details,
	}
}
