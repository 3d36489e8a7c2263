package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Type categorizes an AppError for the transport layer.
type Type string

const (
	TypeNotFound           Type = "NOT_FOUND"
	TypeForbidden          Type = "FORBIDDEN"
	TypePreconditionFailed Type = "PRECONDITION_FAILED"
	TypeValidation         Type = "VALIDATION"
	TypeConflict           Type = "CONFLICT"
	TypeUnauthorized       Type = "UNAUTHORIZED"
	TypeInternal           Type = "INTERNAL"
)

// AppError is an error with a category and a client-safe message.
type AppError struct {
	Type    Type
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error category to a response code.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case TypeNotFound:
		return http.StatusNotFound
	case TypeForbidden:
		return http.StatusForbidden
	case TypePreconditionFailed, TypeValidation:
		return http.StatusBadRequest
	case TypeConflict:
		return http.StatusConflict
	case TypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(message string) *AppError {
	return &AppError{Type: TypeNotFound, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Type: TypeForbidden, Message: message}
}

func PreconditionFailed(message string) *AppError {
	return &AppError{Type: TypePreconditionFailed, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Type: TypeValidation, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Type: TypeConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Type: TypeUnauthorized, Message: message}
}

func Internal(message string, err error) *AppError {
	return &AppError{Type: TypeInternal, Message: message, Err: err}
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of type t.
func IsType(err error, t Type) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}
