package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the HTTP status code the error is sent with.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Session failures ---

// Unauthorized is sent when a request carries no credential at all.
func Unauthorized() *AppError {
	return New(ErrCodeUnauthorized, MsgUnauthorized, http.StatusUnauthorized)
}

// InvalidCredentials is sent when a login does not match an account.
func InvalidCredentials() *AppError {
	return New(ErrCodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
}

// TokenExpired is sent when the short-lived credential has expired.
func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, MsgTokenExpired, http.StatusUnauthorized)
}

// InvalidToken is sent when the credential cannot be verified.
func InvalidToken() *AppError {
	return New(ErrCodeInvalidToken, MsgInvalidToken, http.StatusUnauthorized)
}

// TokenBlacklisted is sent when the credential has been revoked.
func TokenBlacklisted() *AppError {
	return New(ErrCodeTokenBlacklisted, MsgTokenBlacklisted, http.StatusForbidden)
}

// AccountBlocked is sent when an administrator disabled the account.
func AccountBlocked() *AppError {
	return New(ErrCodeAccountBlocked, MsgAccountBlocked, http.StatusForbidden)
}

// Forbidden is sent when the caller lacks permission for an action.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return New(ErrCodeForbidden, reason, http.StatusForbidden)
}

// --- Request failures ---

// NotFound creates an error for a resource that was not found.
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound)
	e.WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// InvalidInput creates an error for a malformed request.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates an error carrying a composed validation message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// Conflict creates an error for a conflict with the current state.
func Conflict(reason string) *AppError {
	return New(ErrCodeConflict, reason, http.StatusConflict)
}

// Internal creates an error for an unexpected server failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.",
		http.StatusInternalServerError).WithCause(cause)
}
