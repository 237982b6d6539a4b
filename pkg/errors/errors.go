package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so Clone'd errors still match their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Messages are shown to operators as-is.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "correo o contraseña incorrectos")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "la cuenta está inactiva")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "no se encontró el registro")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "no tienes permiso para esta acción")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "sesión no válida")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "verifica los datos")
	ErrConstraint         = New("CONSTRAINT_VIOLATION", http.StatusConflict, "el registro ya existe")
	ErrBackend            = New("BACKEND_ERROR", http.StatusInternalServerError, "no se pudo completar la operación")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "error interno del servidor")
	ErrPayloadTooLarge    = New("PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, "el archivo es demasiado grande")
	ErrCacheMiss          = errors.New("cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Backend wraps a storage-layer failure with a business-facing message.
func Backend(err error, message string) *Error {
	if message == "" {
		message = ErrBackend.Message
	}
	return Wrap(err, ErrBackend.Code, ErrBackend.Status, message)
}

// Validation builds a validation error carrying per-field messages.
func Validation(err error, details map[string]string) *Error {
	e := Wrap(err, ErrValidation.Code, ErrValidation.Status, ErrValidation.Message)
	if len(details) > 0 {
		e.Details = details
	}
	return e
}
