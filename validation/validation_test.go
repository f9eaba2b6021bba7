package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/deskhub/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "John")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorEmail(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{"vendor@example.com", false},
		{"not-an-email", true},
		{"Vendor <vendor@example.com>", true},
	}
	for _, tt := range tests {
		v := New().Email("email", tt.value)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("Email(%q): HasErrors=%v, want %v", tt.value, v.HasErrors(), tt.wantErr)
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"client", "vendor"}
	if New().OneOf("role", "vendor", allowed).HasErrors() {
		t.Error("expected vendor to be accepted")
	}
	if New().OneOf("role", "", allowed).HasErrors() {
		t.Error("empty value should be skipped")
	}
	v := New().OneOf("role", "owner", allowed)
	if !v.HasErrors() {
		t.Fatal("expected error for unknown value")
	}
	if !strings.Contains(v.Errors()[0].Message, "client, vendor") {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New().
		Required("email", "").
		MinLength("password", "abc", 8).
		Custom(false, "terms", "must be accepted")

	if len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(v.Errors()))
	}

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	for _, field := range []string{"email", "password", "terms"} {
		if !strings.Contains(appErr.Message, field) {
			t.Errorf("message %q should mention %s", appErr.Message, field)
		}
	}
	if _, ok := appErr.Details["fields"]; !ok {
		t.Error("expected fields detail")
	}
}

func TestValidatorNoErrors(t *testing.T) {
	if err := New().Required("a", "b").Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

type clientConfig struct {
	BackendURL string        `mapstructure:"backend_url" validate:"required,url"`
	Role       string        `json:"role" validate:"required,role"`
	Timeout    time.Duration `validate:"min=0"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := clientConfig{BackendURL: "http://localhost:8080/api", Role: "vendor"}
		if err := Validate(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing url", func(t *testing.T) {
		err := Validate(clientConfig{Role: "client"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "backend_url: is required") {
			t.Errorf("unexpected error %q", err.Error())
		}
	})

	t.Run("bad url and role", func(t *testing.T) {
		err := Validate(clientConfig{BackendURL: "::nope", Role: "owner"})
		if err == nil {
			t.Fatal("expected error")
		}
		appErr, ok := errors.AsAppError(err)
		if !ok {
			t.Fatalf("expected AppError, got %T", err)
		}
		fields, _ := appErr.Details["fields"].([]FieldError)
		if len(fields) != 2 {
			t.Fatalf("expected 2 field errors, got %+v", fields)
		}
		if fields[1].Field != "role" || !strings.Contains(fields[1].Message, "client, vendor, admin") {
			t.Errorf("unexpected role error %+v", fields[1])
		}
	})
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"BackendURL": "backend_u_r_l",
		"Timeout":    "timeout",
		"refreshTTL": "refresh_t_t_l",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
