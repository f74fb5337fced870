package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the user.
type ErrorKind string

const (
	KindMissingCredential      ErrorKind = "missing_credential"
	KindNetworkFailure         ErrorKind = "network_failure"
	KindInvalidResponse        ErrorKind = "invalid_response"
	KindContentFiltered        ErrorKind = "content_filtered"
	KindRateLimited            ErrorKind = "rate_limited"
	KindImageProcessingFailure ErrorKind = "image_processing_failure"
	KindGeneral                ErrorKind = "general"
	KindInvalidInput           ErrorKind = "invalid_input"
)

// Origin tells whether a rejection was decided locally or by the server.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginServer Origin = "server"
)

// Error is a classified failure. Err keeps the internal cause for logs and
// errors.Is checks; it is never shown to the user.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Origin     Origin
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the internal cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, ErrRateLimited) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.StatusCode == 0
}

// Retryable reports whether repeating the same request may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetworkFailure, KindInvalidResponse:
		return true
	case KindGeneral:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// Kind sentinels for errors.Is.
var (
	ErrMissingCredential = &Error{Kind: KindMissingCredential}
	ErrNetworkFailure    = &Error{Kind: KindNetworkFailure}
	ErrInvalidResponse   = &Error{Kind: KindInvalidResponse}
	ErrContentFiltered   = &Error{Kind: KindContentFiltered}
	ErrRateLimited       = &Error{Kind: KindRateLimited}
	ErrImageProcessing   = &Error{Kind: KindImageProcessingFailure}
	ErrGeneral           = &Error{Kind: KindGeneral}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
)

// NewError creates a classified error wrapping cause.
func NewError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// GeneralError creates a General error with a message and optional status code.
func GeneralError(message string, statusCode int, cause error) *Error {
	return &Error{Kind: KindGeneral, Message: message, StatusCode: statusCode, Err: cause}
}

// KindOf returns the kind of err, or KindGeneral when err is not classified.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindGeneral
}

// Classify returns err as *Error, wrapping unclassified errors as General.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return GeneralError(err.Error(), 0, err)
}

// IsRetryable reports whether err is a classified error that may be retried.
func IsRetryable(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Retryable()
}
