package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the caller is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Request errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Session errors
const (
	// ErrCodeUnauthorized indicates no credential was presented.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInvalidCredentials indicates a login with a wrong email or password.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeTokenExpired indicates the short-lived credential expired and can be refreshed.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidToken indicates the credential itself is invalid.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	// ErrCodeTokenBlacklisted indicates the credential was revoked server-side.
	ErrCodeTokenBlacklisted ErrorCode = "TOKEN_BLACKLISTED"
	// ErrCodeAccountBlocked indicates the account was disabled by an administrator.
	ErrCodeAccountBlocked ErrorCode = "ACCOUNT_BLOCKED"
	// ErrCodeForbidden indicates the caller lacks permission.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Session failure messages. Clients match these byte for byte.
const (
	MsgUnauthorized     = "Unauthorized"
	MsgTokenExpired     = "Token Expired"
	MsgInvalidToken     = "Invalid token"
	MsgTokenBlacklisted = "Token is blacklisted"
	MsgAccountBlocked   = "Access denied: Your account has been blocked"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsSessionCode reports whether code belongs to the session family.
func IsSessionCode(code ErrorCode) bool {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials, ErrCodeTokenExpired,
		ErrCodeInvalidToken, ErrCodeTokenBlacklisted, ErrCodeAccountBlocked:
		return true
	}
	return false
}
