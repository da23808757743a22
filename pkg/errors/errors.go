package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a pipeline failure
type ErrorType string

const (
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeRejected  ErrorType = "rejected"
	ErrorTypeMalformed ErrorType = "malformed"
	ErrorTypeStorage   ErrorType = "storage"
	ErrorTypeInvalid   ErrorType = "invalid"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error carries the failure class, the HTTP status (0 when there was no
// response) and the underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(errType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// Wrap attaches a type to an existing error
func Wrap(errType ErrorType, err error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{
		Type:    errType,
		Message: msg,
		Err:     err,
	}
}

// TypeOf returns the type of the first *Error in the chain, or
// ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// CodeOf returns the HTTP status carried by err, or 0
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsRetryable reports whether a failure of this type may succeed on a later
// attempt. Only transport faults qualify; a rejected request is final.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork:
		return true
	default:
		return false
	}
}
