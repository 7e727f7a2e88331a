// Package apperr defines the recoverable error taxonomy shared by all
// services. Every failure a caller can act on is an *Error with a stable
// code; anything else is treated as an internal fault by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeNotAuthenticated   Code = "not_authenticated"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeDuplicateEmail     Code = "duplicate_email"
	CodeInsufficientBal    Code = "insufficient_balance"
	CodeNotAvailable       Code = "not_available"
	CodeInvalidTransition  Code = "invalid_transition"
	CodeSelfTrade          Code = "self_trade"
	CodeOrderNotFound      Code = "order_not_found"
	CodeAlreadySettled     Code = "already_settled"
	CodeConflict           Code = "conflict"
	CodeExternalService    Code = "external_service_failure"
)

type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches a field-level detail, used by validation failures.
func (e *Error) WithDetail(field, message string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[field] = message
	return e
}

// CodeOf extracts the taxonomy code from err, or "" for internal faults.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is lets sentinel-style comparisons (errors.Is against a bare code error)
// match on code alone.
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}
