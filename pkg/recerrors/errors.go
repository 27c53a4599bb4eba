// Package recerrors provides structured error handling for recast with
// error categorization, key-value context, and stack capture.
//
// Every failure the importer can produce is categorized through ErrorType,
// which is what the run loop uses to decide between aborting the run
// (broken transform, unreadable file) and skipping a single record
// (validation noise).
//
// Basic usage:
//
//	err := recerrors.New(recerrors.ErrorTypeCoercion, "cannot convert value").
//	    WithDetail("field", "age").
//	    WithDetail("value", raw).
//	    WithDetail("type", "int")
package recerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType categorizes an error for propagation decisions and diagnostics.
type ErrorType string

const (
	// ErrorTypeUnsupportedFile indicates an input file whose extension maps
	// to no known format and no explicit override was given.
	ErrorTypeUnsupportedFile ErrorType = "unsupported_file"
	// ErrorTypeTransformNotFound indicates a named or path-based transform
	// specification that could not be located.
	ErrorTypeTransformNotFound ErrorType = "transform_not_found"
	// ErrorTypeTransformParse indicates a structurally invalid transform
	// specification.
	ErrorTypeTransformParse ErrorType = "transform_parse"
	// ErrorTypeCoercion indicates a raw value that cannot be converted to
	// its declared type.
	ErrorTypeCoercion ErrorType = "coercion"
	// ErrorTypeExpression indicates a scripted expression that failed to
	// compile or raised during execution.
	ErrorTypeExpression ErrorType = "expression"
	// ErrorTypeValidation indicates a translated record missing a required
	// output field. This is the only recoverable type.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig indicates invalid configuration.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile indicates a file system operation failure.
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeSink indicates a failure forwarding records to the event store.
	ErrorTypeSink ErrorType = "sink"
	// ErrorTypeInternal indicates an internal system error.
	ErrorTypeInternal ErrorType = "internal"
)

// Error is a structured error with a category, optional cause, key-value
// details, and the call stack captured at creation.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame in the call stack at error creation.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value detail. Chainable.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a previously attached detail value, or nil.
func (e *Error) Detail(key string) interface{} {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// New creates an error of the given type, capturing the call stack.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates an error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with a category and message, preserving the
// original as the cause. Returns nil if err is nil. If err is already a
// structured Error, its stack is preserved.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType reports whether err (or anything in its chain) is a structured
// error of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsFatal reports whether an error must abort the run. Per the propagation
// policy, validation failures are the only recoverable class; everything
// else indicates a misconfigured transform or a broken environment.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	return e.Type != ErrorTypeValidation
}

func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
