// Package errors gives every failure dotlink reports a stable code, so
// tests and callers can tell which step of a run failed without matching
// on message text. The wrapped cause stays reachable through errors.Is
// and errors.As.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of failure
type ErrorCode string

const (
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT" // bad roots or options; nothing was touched
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Reading dotlink.toml or the dirlinks file
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// One per step of linking a destination: inspect, remove what is
	// there, create the parent, create the link
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileRemove    ErrorCode = "FILE_REMOVE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
)

// DotlinkError is a coded error. Details carries the paths involved,
// usually "source" and "target".
type DotlinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *DotlinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DotlinkError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a DotlinkError with the same code, so a
// bare New(code, "") works as a sentinel.
func (e *DotlinkError) Is(target error) bool {
	var other *DotlinkError
	return errors.As(target, &other) && e.Code == other.Code
}

// WithDetail records key on the error and returns it for chaining
func (e *DotlinkError) WithDetail(key string, value interface{}) *DotlinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func build(code ErrorCode, message string, wrapped error) *DotlinkError {
	return &DotlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: wrapped,
	}
}

func New(code ErrorCode, message string) *DotlinkError {
	return build(code, message, nil)
}

func Newf(code ErrorCode, format string, args ...interface{}) *DotlinkError {
	return build(code, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *DotlinkError {
	if err == nil {
		return nil
	}
	return build(code, message, err)
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotlinkError {
	if err == nil {
		return nil
	}
	return build(code, fmt.Sprintf(format, args...), err)
}

func as(err error) (*DotlinkError, bool) {
	var dlErr *DotlinkError
	ok := errors.As(err, &dlErr)
	return dlErr, ok
}

// IsErrorCode reports whether err, or anything it wraps, carries code
func IsErrorCode(err error, code ErrorCode) bool {
	dlErr, ok := as(err)
	return ok && dlErr.Code == code
}

// GetErrorCode returns the outermost code in err's chain, ErrUnknown if
// there is none
func GetErrorCode(err error) ErrorCode {
	if dlErr, ok := as(err); ok {
		return dlErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details of the outermost DotlinkError in
// err's chain, or nil
func GetErrorDetails(err error) map[string]interface{} {
	if dlErr, ok := as(err); ok {
		return dlErr.Details
	}
	return nil
}
