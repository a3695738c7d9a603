// Package errors defines the typed failures that cross component
// boundaries: feed failures, storage failures and protocol mismatches.
package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	// Feed
	ErrTypeUnreachable       ErrorType = "UNREACHABLE"
	ErrTypeMalformedResponse ErrorType = "MALFORMED_RESPONSE"
	ErrTypeUnauthorized      ErrorType = "UNAUTHORIZED"

	// Storage
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrTypeWriteFailed ErrorType = "WRITE_FAILED"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"

	// Protocol
	ErrTypeUnexpectedInput ErrorType = "UNEXPECTED_INPUT"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// TypeOf returns the type of the first DomainError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

func Unreachable(message string, err error) *DomainError {
	return New(ErrTypeUnreachable, message, err)
}

func MalformedResponse(message string, err error) *DomainError {
	return New(ErrTypeMalformedResponse, message, err)
}

func Unauthorized(message string, err error) *DomainError {
	return New(ErrTypeUnauthorized, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func WriteFailed(message string, err error) *DomainError {
	return New(ErrTypeWriteFailed, message, err)
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func UnexpectedInput(message string) *DomainError {
	return New(ErrTypeUnexpectedInput, message, nil)
}
