package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if idx := strings.LastIndex(line, "\n"); idx >= 0 {
		line = line[idx+1:]
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug")
	l.Info("refresh succeeded", Fields("role", "client", "attempt", 1))

	m := decodeLine(t, &buf)
	if m["message"] != "refresh succeeded" {
		t.Errorf("unexpected message: %v", m["message"])
	}
	if m["role"] != "client" {
		t.Errorf("expected role=client, got %v", m["role"])
	}
	if m["service"] != "test-svc" {
		t.Errorf("expected service field, got %v", m["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn should pass at warn level, got %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "nonsense")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info level fallback, got %q", buf.String())
	}
}

func TestWithComponentAndContext(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info").WithComponent("authclient.vendor")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithRole(ctx, "vendor")
	l.WithContext(ctx).Info("terminated")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "authclient.vendor" {
		t.Errorf("expected component field, got %v", m[FieldComponent])
	}
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request id, got %v", m[FieldRequestID])
	}
	if m[FieldRole] != "vendor" {
		t.Errorf("expected role, got %v", m[FieldRole])
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("RequestIDFromContext should return the stored id")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info").
		WithFields(map[string]interface{}{"path": "/bookings"}).
		WithError(context.Canceled)
	l.Error("request failed")

	m := decodeLine(t, &buf)
	if m["path"] != "/bookings" {
		t.Errorf("expected path field, got %v", m["path"])
	}
	if m["error"] != context.Canceled.Error() {
		t.Errorf("expected error field, got %v", m["error"])
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "deskhub", &buf)
	l.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "[DES][INF]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
	if strings.Contains(out, "service:") {
		t.Errorf("service field should be excluded from console output, got %q", out)
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("discarded") // must not panic
}

func TestGlobalLogger(t *testing.T) {
	l := NewNop()
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
	Info("via global")
	Init(Config{Level: "info", Format: "json"})
	if GetGlobalLogger() == l {
		t.Error("Init should replace the global logger")
	}
}

func TestRegistry(t *testing.T) {
	l := NewNop()
	Register("custom", l)
	if Get("custom") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered") == nil {
		t.Error("expected fallback logger for unregistered name")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields: %v", f)
	}
	ef := ErrorFields("refresh", context.DeadlineExceeded)
	if ef[FieldOperation] != "refresh" || ef[FieldError] == "" {
		t.Errorf("unexpected error fields: %v", ef)
	}
}
