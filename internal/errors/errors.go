package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so a wrapped copy still equals its predefined error
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// WithMessage keeps the code of domainErr but replaces its message
func WithMessage(domainErr *DomainError, message string, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// User errors
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrUsernameExists     = NewDomainError("USERNAME_EXISTS", "username already exists")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid credentials")
	ErrSelfDeletion       = NewDomainError("SELF_DELETION", "users cannot delete themselves")

	// Catalog errors
	ErrClientNotFound     = NewDomainError("CLIENT_NOT_FOUND", "client not found")
	ErrProductNotFound    = NewDomainError("PRODUCT_NOT_FOUND", "product not found")
	ErrSerialNumberExists = NewDomainError("SERIAL_NUMBER_EXISTS", "serial number already exists")

	// Pagination errors
	ErrPageNotFound = NewDomainError("PAGE_NOT_FOUND", "the page that you are looking for does not exist")

	// Authentication errors
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrForbidden           = NewDomainError("FORBIDDEN", "you are not allowed to access this resource")
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", "invalid or expired token")
	ErrTokenExpired        = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", "invalid refresh token")

	// Validation errors
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input")
	ErrPasswordMismatch  = NewDomainError("PASSWORD_MISMATCH", "new password and confirmation do not match")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps specific domain errors to HTTP status codes
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "PASSWORD_MISMATCH":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN",
		"TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "FORBIDDEN", "SELF_DELETION":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "CLIENT_NOT_FOUND", "PRODUCT_NOT_FOUND", "PAGE_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "USERNAME_EXISTS", "SERIAL_NUMBER_EXISTS":
		return http.StatusConflict

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message.
// Errors that are not domain errors never leak their text to clients.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return ErrInternal.Message
}
