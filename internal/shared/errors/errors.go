// Package errors provides the application error envelope returned by the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation_error"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypePaymentRequired ErrorType = "payment_required"
	ErrorTypeUnavailable     ErrorType = "unavailable"
	ErrorTypeInternal        ErrorType = "internal_error"
	ErrorTypeBadRequest      ErrorType = "bad_request"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:      http.StatusBadRequest,
	ErrorTypeNotFound:        http.StatusNotFound,
	ErrorTypeConflict:        http.StatusConflict,
	ErrorTypeForbidden:       http.StatusForbidden,
	ErrorTypePaymentRequired: http.StatusPaymentRequired,
	ErrorTypeUnavailable:     http.StatusServiceUnavailable,
	ErrorTypeInternal:        http.StatusInternalServerError,
	ErrorTypeBadRequest:      http.StatusBadRequest,
}

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// New builds an AppError whose HTTP code follows from its type.
func New(t ErrorType, message string, details ...string) *AppError {
	code, ok := statusByType[t]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: strings.Join(details, "; "),
	}
}

func NewValidationError(message string, details ...string) *AppError {
	return New(ErrorTypeValidation, message, details...)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return New(ErrorTypeNotFound, message, details...)
}

func NewConflictError(message string, details ...string) *AppError {
	return New(ErrorTypeConflict, message, details...)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return New(ErrorTypeForbidden, message, details...)
}

func NewInternalError(message string, details ...string) *AppError {
	return New(ErrorTypeInternal, message, details...)
}

func NewBadRequestError(message string, details ...string) *AppError {
	return New(ErrorTypeBadRequest, message, details...)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// Mapping binds a domain sentinel error to the envelope it is reported as.
type Mapping struct {
	Target  error
	Type    ErrorType
	Message string
}

// FromDomain converts err into an AppError using the first mapping whose target
// matches with errors.Is. Unmatched errors become internal errors without leaking
// their text.
func FromDomain(err error, mappings ...Mapping) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.Target) {
			msg := m.Message
			if msg == "" {
				msg = m.Target.Error()
			}
			return New(m.Type, msg)
		}
	}
	return NewInternalError("internal server error")
}

// IsDuplicateError reports whether err is a unique-constraint violation from
// any of the supported drivers.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "violates unique constraint")
}
