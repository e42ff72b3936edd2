package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors. ChatMessage, when set, is
// the in-band text shown to the chat participant who triggered the error;
// errors without one are never surfaced in chat.
type DomainError struct {
	Code        string
	Message     string
	ChatMessage string
	HTTPStatus  int
	Err         error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// NewValidationError reports malformed user input. chatMessage is replied
// in-band; the flow either retries the step or aborts, per the caller.
func NewValidationError(message, chatMessage string) error {
	return &DomainError{
		Code:        "VALIDATION_FAILED",
		Message:     message,
		ChatMessage: chatMessage,
		HTTPStatus:  http.StatusBadRequest,
	}
}

func NewNotFound(resource string, chatMessage string) error {
	return &DomainError{
		Code:        "NOT_FOUND",
		Message:     fmt.Sprintf("%s not found", resource),
		ChatMessage: chatMessage,
		HTTPStatus:  http.StatusNotFound,
	}
}

// NewUnauthorized marks a non-admin call to an admin-only entry point.
// No ChatMessage: privileged commands are silently ignored so their
// existence does not leak.
func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusForbidden)
}

// NewTransportError wraps an outbound send failure. Logged by the caller,
// never surfaced to the other party, and never aborts the action that
// triggered the send.
func NewTransportError(err error) error {
	return &DomainError{
		Code:       "TRANSPORT_FAILED",
		Message:    "outbound send failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
