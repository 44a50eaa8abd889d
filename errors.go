// Package streamgraph structured error types for better error handling
package streamgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Invalid argument errors
	ErrTypeInvalidArg ErrorType = iota
	// Capture session errors
	ErrTypeCapture
	// Capture nesting discipline errors
	ErrTypeNesting
	// Graph execution errors
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
	// Device teardown errors
	ErrTypeShutdown
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("streamgraph %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("streamgraph %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeCapture:
		return "Capture"
	case ErrTypeNesting:
		return "Nesting"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	case ErrTypeShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewCaptureError creates a capture session error
func NewCaptureError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeCapture,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewNestingError creates a capture nesting discipline error
func NewNestingError(op string, message string) error {
	return &Error{
		Type:    ErrTypeNesting,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError creates a graph execution error
func NewExecutionError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewDeviceError creates a device error
func NewDeviceError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeDevice,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewShutdownError creates an error reporting a device operation issued
// while the owning context is tearing down
func NewShutdownError(op string) error {
	return &Error{
		Type:    ErrTypeShutdown,
		Op:      op,
		Message: shutdownMessage,
		Err:     ErrDriverShutdown,
	}
}

// shutdownMessage is the description carried by teardown errors. Foreign
// device errors are matched against it as a fallback when no structured
// code is available.
const shutdownMessage = "driver shutting down"

// Common pre-defined errors

var (
	// ErrDriverShutdown indicates the device context is tearing down
	ErrDriverShutdown = errors.New(shutdownMessage)

	// ErrCaptureImplicit indicates the platform currently disallows
	// implicit capture of the legacy stream
	ErrCaptureImplicit = NewCaptureError("CaptureStatus", "implicit capture of the legacy stream is disallowed", nil)

	// ErrNilStream indicates a nil stream argument
	ErrNilStream = NewInvalidArgError("Stream", "nil stream")

	// ErrLegacyStreamCapture indicates an attempt to capture the legacy stream
	ErrLegacyStreamCapture = NewInvalidArgError("BeginCapture", "cannot capture on the legacy stream")
)

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsCaptureError checks if an error is a capture session error
func IsCaptureError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeCapture
	}
	return false
}

// IsNestingError checks if an error is a capture nesting discipline error
func IsNestingError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeNesting
	}
	return false
}

// IsExecutionError checks if an error is a graph execution error
func IsExecutionError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeExecution
	}
	return false
}

// IsDeviceError checks if an error is a device error
func IsDeviceError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeDevice
	}
	return false
}

// IsShutdownError checks if an error reports the device tearing down.
// Structured errors are matched through the error chain; errors from
// foreign sources fall back to a description match.
func IsShutdownError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDriverShutdown) {
		return true
	}
	return strings.Contains(err.Error(), shutdownMessage)
}
