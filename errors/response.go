package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON envelope the backend sends with a failure.
//
// The legacy form carries only success and message; the structured form adds
// code. Clients must accept both.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    ErrorCode      `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to its wire envelope. When withCode is
// false the legacy message-only form is produced.
func (e *AppError) ToResponse(withCode bool) ErrorResponse {
	resp := ErrorResponse{
		Success: false,
		Message: e.Message,
		Details: e.Details,
	}
	if withCode {
		resp.Code = e.Code
	}
	return resp
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
