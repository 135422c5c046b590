// Package apperror defines the error kinds services return and how they map onto
// HTTP responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Conflict
	Unauthorized
	Forbidden
	NotFound
	UploadError
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case UploadError:
		return "upload_error"
	default:
		return "internal"
	}
}

// AppError carries a client-facing message and an optional underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
// Conflict is answered with 400: registration clients only distinguish success from 400.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case BadRequest, Conflict:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToResponse hides the underlying cause from clients.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewBadRequest(message string) *AppError {
	return New(BadRequest, message, nil)
}

func NewConflict(message string) *AppError {
	return New(Conflict, message, nil)
}

func NewUnauthorized(message string, err error) *AppError {
	return New(Unauthorized, message, err)
}

func NewForbidden(message string) *AppError {
	return New(Forbidden, message, nil)
}

func NewNotFound(message string) *AppError {
	return New(NotFound, message, nil)
}

func NewUploadError(message string, err error) *AppError {
	return New(UploadError, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(Internal, message, err)
}

// From returns err as an *AppError. Anything that is not one becomes Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("Internal server error", err)
}

// KindOf returns the kind of err, Internal for foreign errors.
func KindOf(err error) Kind {
	return From(err).Kind
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
