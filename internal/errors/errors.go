// Package errors provides the domain error taxonomy shared by the
// tokenization, transaction, and auction engines. Every engine operation
// that can fail for a reason the caller should branch on returns a *Error
// built from one of the constructors below; unexpected failures are wrapped
// with Internal instead of leaking driver-specific error types.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a domain-level error classification, orthogonal to transport.
type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidStatus       Code = "INVALID_STATUS"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeConflict            Code = "CONFLICT"
	CodeForbidden           Code = "FORBIDDEN"
	CodeKYCRequired         Code = "KYC_REQUIRED"
	CodeCollaboratorFailure Code = "COLLABORATOR_FAILURE"
	CodeInternal            Code = "INTERNAL"
)

// httpStatus is the default HTTP mapping for a Code, used by callers that
// render a user-visible error envelope. The core itself never touches HTTP.
var httpStatus = map[Code]int{
	CodeNotFound:            http.StatusNotFound,
	CodeInvalidStatus:       http.StatusBadRequest,
	CodeInvalidInput:        http.StatusBadRequest,
	CodeConflict:            http.StatusConflict,
	CodeForbidden:           http.StatusForbidden,
	CodeKYCRequired:         http.StatusForbidden,
	CodeCollaboratorFailure: http.StatusBadGateway,
	CodeInternal:            http.StatusInternalServerError,
}

// Error is a structured domain error carrying a stable Code plus an optional
// wrapped cause and free-form details for diagnostics.
type Error struct {
	Code    Code
	Reason  string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Code, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Code, e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail attaches a diagnostic key/value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus returns the conventional HTTP status for the error's Code.
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds a domain error. reason is a short machine-stable token (e.g.
// "INSUFFICIENT_SUPPLY", "ASSET_NOT_FOUND") distinguishing causes that share
// a Code; message is the human-readable description.
func New(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Wrap builds a domain error around an underlying cause.
func Wrap(code Code, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// NotFound builds a CodeNotFound error naming the missing resource.
func NotFound(resource, id string) *Error {
	return New(CodeNotFound, resource+"_NOT_FOUND", fmt.Sprintf("%s %q not found", resource, id))
}

// InvalidStatus builds a CodeInvalidStatus error describing a failed
// state-machine precondition.
func InvalidStatus(reason, message string) *Error {
	return New(CodeInvalidStatus, reason, message)
}

// InvalidInput builds a CodeInvalidInput error for a bad request field.
func InvalidInput(field, message string) *Error {
	return New(CodeInvalidInput, "INVALID_INPUT", message).WithDetail("field", field)
}

// Conflict builds a CodeConflict error, e.g. a uniqueness or overlap
// violation, or the losing side of a supply race.
func Conflict(reason, message string) *Error {
	return New(CodeConflict, reason, message)
}

// Forbidden builds a CodeForbidden error for an ownership/identity check.
func Forbidden(reason, message string) *Error {
	return New(CodeForbidden, reason, message)
}

// KYCRequired builds the CodeKYCRequired error returned whenever a purchase
// or bid is attempted by a user who is not VERIFIED.
func KYCRequired(userID string) *Error {
	return New(CodeKYCRequired, "KYC_REQUIRED", "acting user is not KYC verified").WithDetail("user_id", userID)
}

// CollaboratorFailure wraps a failure returned by an external collaborator
// (Tokenization, Escrow, Payment, Token-transfer, KYC) after retries are
// exhausted.
func CollaboratorFailure(collaborator string, err error) *Error {
	return Wrap(CodeCollaboratorFailure, "COLLABORATOR_FAILURE", fmt.Sprintf("%s collaborator call failed", collaborator), err).
		WithDetail("collaborator", collaborator)
}

// Internal wraps an unexpected error (store failure, programming error).
func Internal(message string, err error) *Error {
	return Wrap(CodeInternal, "INTERNAL", message, err)
}

// As extracts an *Error from an error chain, mirroring errors.As.
func As(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// CodeOf returns the Code of err if it is (or wraps) an *Error, else
// CodeInternal.
func CodeOf(err error) Code {
	if domainErr, ok := As(err); ok {
		return domainErr.Code
	}
	return CodeInternal
}
