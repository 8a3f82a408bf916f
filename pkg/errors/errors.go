package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusClientClosedRequest is the non-standard status logged when the client
// disconnects before a response is written.
const StatusClientClosedRequest = 499

// ErrorCode is the machine-readable code returned to clients.
type ErrorCode string

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// HTTPStatus maps the code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrExternalAPI:
		return http.StatusBadGateway
	case ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrAnalysisTimeout:
		return http.StatusGatewayTimeout
	case ErrRequestCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
	ErrConfiguration      ErrorCode = "CONFIGURATION_ERROR"
	ErrExternalAPI        ErrorCode = "EXTERNAL_API_ERROR"
	ErrAnalysisTimeout    ErrorCode = "ANALYSIS_TIMEOUT"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrRequestCanceled    ErrorCode = "REQUEST_CANCELED"
	ErrInternal           ErrorCode = "INTERNAL_ERROR"
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewConfiguration reports a missing or invalid server setting. The message
// names the setting so an operator can fix it.
func NewConfiguration(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConfiguration,
		Message: message,
		Err:     err,
	}
}

func NewExternalAPI(message string, err error) *AppError {
	return &AppError{
		Code:    ErrExternalAPI,
		Message: message,
		Err:     err,
	}
}

func NewAnalysisTimeout(err error) *AppError {
	return &AppError{
		Code:    ErrAnalysisTimeout,
		Message: "analysis did not complete in time",
		Err:     err,
	}
}

func NewRequestCanceled(err error) *AppError {
	return &AppError{
		Code:    ErrRequestCanceled,
		Message: "request canceled by client",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func RateLimited() *AppError {
	return &AppError{
		Code:    ErrRateLimited,
		Message: "too many requests",
	}
}

func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    ErrServiceUnavailable,
		Message: message,
		Err:     err,
	}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
