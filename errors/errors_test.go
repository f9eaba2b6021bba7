package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew_RetryableDetection(t *testing.T) {
	if err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout); !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if err := New(ErrCodeNotFound, "missing", http.StatusNotFound); err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestSessionConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    ErrorCode
		status  int
		message string
	}{
		{"unauthorized", Unauthorized(), ErrCodeUnauthorized, 401, MsgUnauthorized},
		{"expired", TokenExpired(), ErrCodeTokenExpired, 401, "Token Expired"},
		{"invalid", InvalidToken(), ErrCodeInvalidToken, 401, "Invalid token"},
		{"blacklisted", TokenBlacklisted(), ErrCodeTokenBlacklisted, 403, "Token is blacklisted"},
		{"blocked", AccountBlocked(), ErrCodeAccountBlocked, 403, "Access denied: Your account has been blocked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
			if tt.err.Message != tt.message {
				t.Errorf("message = %q, want %q", tt.err.Message, tt.message)
			}
			if !IsSessionCode(tt.err.Code) {
				t.Errorf("%s should be a session code", tt.err.Code)
			}
		})
	}
}

func TestNotFound_Details(t *testing.T) {
	err := NotFound("booking", "b-1")
	if err.Details["resource"] != "booking" || err.Details["id"] != "b-1" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if _, ok := NotFound("booking", "").Details["id"]; ok {
		t.Error("expected no id detail when id is empty")
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal(cause)
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	wrapped := fmt.Errorf("handler: %w", err)
	got, ok := AsAppError(wrapped)
	if !ok || got.Code != ErrCodeInternal {
		t.Errorf("AsAppError failed: %v %v", got, ok)
	}
	if !IsAppError(wrapped) {
		t.Error("IsAppError should see through wrapping")
	}
	if IsAppError(cause) {
		t.Error("plain error is not an AppError")
	}
}

func TestToResponse(t *testing.T) {
	legacy, err := json.Marshal(TokenBlacklisted().ToResponse(false))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(legacy) != `{"success":false,"message":"Token is blacklisted"}` {
		t.Errorf("unexpected legacy body: %s", legacy)
	}

	structured, err := json.Marshal(TokenBlacklisted().ToResponse(true))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(structured), `"code":"TOKEN_BLACKLISTED"`) {
		t.Errorf("expected code in structured body: %s", structured)
	}
}
