package httpclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeAuth, "auth"},
		{ErrCodeNotFound, "not_found"},
		{ErrCodeRateLimit, "rate_limit"},
		{ErrCodeValidation, "validation"},
		{ErrCodeServer, "server"},
		{ErrCodeUnavailable, "unavailable"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_Error(t *testing.T) {
	e := &Error{StatusCode: 403, Code: ErrCodeAuth, Message: "Token is blacklisted"}
	want := "httpclient: auth (HTTP 403): Token is blacklisted"
	if got := e.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	e2 := &Error{Code: ErrCodeConnection, Message: "connection refused"}
	want2 := "httpclient: connection: connection refused"
	if got := e2.Error(); got != want2 {
		t.Errorf("got %q, want %q", got, want2)
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		wantNil   bool
		code      ErrorCode
		retryable bool
	}{
		{200, true, 0, false},
		{204, true, 0, false},
		{400, false, ErrCodeValidation, false},
		{401, false, ErrCodeAuth, false},
		{403, false, ErrCodeAuth, false},
		{404, false, ErrCodeNotFound, false},
		{409, false, ErrCodeValidation, false},
		{429, false, ErrCodeRateLimit, true},
		{500, false, ErrCodeServer, true},
		{503, false, ErrCodeServer, true},
		{302, false, ErrCodeServer, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.status), func(t *testing.T) {
			err := ClassifyStatusCode(tt.status, nil)
			if tt.wantNil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Code != tt.code || err.Retryable != tt.retryable {
				t.Errorf("got code=%s retryable=%v, want %s/%v", err.Code, err.Retryable, tt.code, tt.retryable)
			}
			if err.Message != fmt.Sprintf("HTTP %d", tt.status) {
				t.Errorf("unexpected default message %q", err.Message)
			}
		})
	}
}

func TestClassifyStatusCode_UsesServerMessage(t *testing.T) {
	err := ClassifyStatusCode(401, []byte(`{"success":false,"message":"Token Expired"}`))
	if err.Message != "Token Expired" {
		t.Errorf("expected server message, got %q", err.Message)
	}
}

func TestError_APIFields(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{"empty", ``, "", ""},
		{"not json", `<html>bad gateway</html>`, "", ""},
		{"flat message", `{"success":false,"message":"Invalid token"}`, "", "Invalid token"},
		{"flat code", `{"message":"Token is blacklisted","code":"TOKEN_BLACKLISTED"}`, "TOKEN_BLACKLISTED", "Token is blacklisted"},
		{"nested", `{"error":{"code":"ACCOUNT_BLOCKED","message":"Access denied: Your account has been blocked"}}`, "ACCOUNT_BLOCKED", "Access denied: Your account has been blocked"},
		{"flat wins over nested", `{"code":"TOKEN_EXPIRED","error":{"code":"OTHER","message":"nested"}}`, "TOKEN_EXPIRED", "nested"},
		{"error string", `{"error":"Rate limit exceeded"}`, "", "Rate limit exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Error{Body: []byte(tt.body)}
			if got := e.APICode(); got != tt.wantCode {
				t.Errorf("APICode() = %q, want %q", got, tt.wantCode)
			}
			if got := e.APIMessage(); got != tt.wantMsg {
				t.Errorf("APIMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("calling api: %w", NewConnectionError(base))

	if !IsConnection(wrapped) || !IsRetryable(wrapped) {
		t.Error("wrapped connection error should be detected and retryable")
	}
	if !errors.Is(wrapped, base) {
		t.Error("underlying error should be reachable")
	}
	if IsTimeout(wrapped) || IsAuth(wrapped) {
		t.Error("wrong classification")
	}
	if !IsTimeout(NewTimeoutError(base)) {
		t.Error("expected timeout")
	}
	if !IsAuth(ClassifyStatusCode(401, nil)) || !IsNotFound(ClassifyStatusCode(404, nil)) {
		t.Error("status predicates failed")
	}
	if !IsRateLimit(ClassifyStatusCode(429, nil)) || !IsServerError(ClassifyStatusCode(500, nil)) {
		t.Error("status predicates failed")
	}
	if StatusCode(wrapped) != 0 || StatusCode(ClassifyStatusCode(403, nil)) != 403 {
		t.Error("StatusCode extraction failed")
	}
	if NewUnavailableError(base).Retryable {
		t.Error("unavailable errors are not retryable")
	}
}
