package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/deskhub/auth/jwt"
	"github.com/kbukum/deskhub/auth/password"
	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/role"
)

const testPassword = "correct-horse"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	return Config{
		JWT: jwt.Config{
			Secret:          "mockapi-test-secret-0123456789",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Password:   password.Config{BcryptCost: 4},
		LoginRate:  0.01,
		LoginBurst: 3,
		Accounts: []AccountConfig{
			{Role: "client", Email: "alice@example.com", Password: testPassword, Name: "Alice"},
			{Role: "vendor", Email: "vera@example.com", Password: testPassword, Name: "Vera"},
			{Role: "admin", Email: "ada@example.com", Password: testPassword, Name: "Ada"},
		},
	}
}

type harness struct {
	t       *testing.T
	api     *API
	handler http.Handler
	clock   *fakeClock
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	clock := newFakeClock()
	api, err := New(cfg, WithClock(clock.Now), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{t: t, api: api, handler: api.Handler(), clock: clock}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (h *harness) do(method, path string, body any, cookies []*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("%s %s: decode %q: %v", method, path, rr.Body.String(), err)
		}
	}
	return rr, env
}

func (h *harness) login(r role.Role, email string) []*http.Cookie {
	h.t.Helper()
	rr, env := h.do(http.MethodPost, "/api/"+r.String()+"/login",
		map[string]string{"email": email, "password": testPassword}, nil)
	if rr.Code != http.StatusOK || !env.Success {
		h.t.Fatalf("login %s %s = %d %+v", r, email, rr.Code, env)
	}
	return rr.Result().Cookies()
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsCookies(t *testing.T) {
	h := newHarness(t)
	cookies := h.login(role.Client, "alice@example.com")

	for _, name := range []string{"client_access", "client_refresh"} {
		c := cookieNamed(cookies, name)
		if c == nil {
			t.Fatalf("cookie %s not set", name)
		}
		if c.Path != "/" || !c.HttpOnly {
			t.Errorf("cookie %s: path=%q httpOnly=%v", name, c.Path, c.HttpOnly)
		}
	}

	rr, env := h.do(http.MethodGet, "/api/client/profile", nil, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("profile = %d %+v", rr.Code, env)
	}
	var acct Account
	if err := json.Unmarshal(env.Data, &acct); err != nil {
		t.Fatal(err)
	}
	if acct.Email != "alice@example.com" || acct.Role != role.Client || acct.ID == "" {
		t.Errorf("profile = %+v", acct)
	}
}

func TestLoginRejections(t *testing.T) {
	h := newHarness(t)

	rr, env := h.do(http.MethodPost, "/api/client/login",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil)
	if rr.Code != http.StatusUnauthorized || env.Message != "Invalid email or password" {
		t.Errorf("wrong password = %d %q", rr.Code, env.Message)
	}

	// Accounts are per role.
	rr, _ = h.do(http.MethodPost, "/api/vendor/login",
		map[string]string{"email": "alice@example.com", "password": testPassword}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("cross-role login = %d", rr.Code)
	}

	rr, _ = h.do(http.MethodPost, "/api/client/login", map[string]string{"email": "not-an-email"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid body = %d", rr.Code)
	}

	if err := h.api.Accounts().SetBlocked(role.Client, "alice@example.com", true); err != nil {
		t.Fatal(err)
	}
	rr, env = h.do(http.MethodPost, "/api/client/login",
		map[string]string{"email": "alice@example.com", "password": testPassword}, nil)
	if rr.Code != http.StatusForbidden || env.Message != "Access denied: Your account has been blocked" {
		t.Errorf("blocked login = %d %q", rr.Code, env.Message)
	}
}

func TestLoginThrottled(t *testing.T) {
	h := newHarness(t)
	bad := map[string]string{"email": "alice@example.com", "password": "wrong-password"}

	for i := 0; i < 3; i++ {
		if rr, _ := h.do(http.MethodPost, "/api/client/login", bad, nil); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d = %d", i, rr.Code)
		}
	}
	rr, _ := h.do(http.MethodPost, "/api/client/login", bad, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("throttled attempt = %d, want 429", rr.Code)
	}

	// Other accounts are throttled separately.
	h.login(role.Vendor, "vera@example.com")
}

func TestProtectedFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness) []*http.Cookie
		status  int
		message string
		code    string
	}{
		{
			name:    "no cookie",
			setup:   func(*harness) []*http.Cookie { return nil },
			status:  http.StatusUnauthorized,
			message: "Unauthorized",
			code:    "UNAUTHORIZED",
		},
		{
			name: "expired access token",
			setup: func(h *harness) []*http.Cookie {
				cookies := h.login(role.Client, "alice@example.com")
				h.clock.Advance(2 * time.Minute)
				return cookies
			},
			status:  http.StatusUnauthorized,
			message: "Token Expired",
			code:    "TOKEN_EXPIRED",
		},
		{
			name: "garbage token",
			setup: func(*harness) []*http.Cookie {
				return []*http.Cookie{{Name: "client_access", Value: "not.a.jwt"}}
			},
			status:  http.StatusUnauthorized,
			message: "Invalid token",
			code:    "INVALID_TOKEN",
		},
		{
			name: "refresh token used as access token",
			setup: func(h *harness) []*http.Cookie {
				refresh := cookieNamed(h.login(role.Client, "alice@example.com"), "client_refresh")
				return []*http.Cookie{{Name: "client_access", Value: refresh.Value}}
			},
			status:  http.StatusUnauthorized,
			message: "Invalid token",
			code:    "INVALID_TOKEN",
		},
		{
			name: "logged out token",
			setup: func(h *harness) []*http.Cookie {
				cookies := h.login(role.Client, "alice@example.com")
				h.do(http.MethodPost, "/api/client/logout", nil, cookies)
				return cookies
			},
			status:  http.StatusForbidden,
			message: "Token is blacklisted",
			code:    "TOKEN_BLACKLISTED",
		},
		{
			name: "blocked account",
			setup: func(h *harness) []*http.Cookie {
				cookies := h.login(role.Client, "alice@example.com")
				_ = h.api.Accounts().SetBlocked(role.Client, "alice@example.com", true)
				return cookies
			},
			status:  http.StatusForbidden,
			message: "Access denied: Your account has been blocked",
			code:    "ACCOUNT_BLOCKED",
		},
	}
	for _, tt := range tests {
		for _, emit := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/codes=%v", tt.name, emit), func(t *testing.T) {
				h := newHarness(t, func(c *Config) { c.EmitCodes = emit })
				rr, env := h.do(http.MethodGet, "/api/client/profile", nil, tt.setup(h))
				if rr.Code != tt.status || env.Message != tt.message || env.Success {
					t.Fatalf("got %d %+v, want %d %q", rr.Code, env, tt.status, tt.message)
				}
				wantCode := ""
				if emit {
					wantCode = tt.code
				}
				if env.Code != wantCode {
					t.Errorf("code = %q, want %q", env.Code, wantCode)
				}
			})
		}
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	h := newHarness(t)
	cookies := h.login(role.Vendor, "vera@example.com")
	h.clock.Advance(2 * time.Minute)

	if rr, env := h.do(http.MethodGet, "/api/vendor/profile", nil, cookies); env.Message != "Token Expired" {
		t.Fatalf("before refresh = %d %q", rr.Code, env.Message)
	}

	rr, env := h.do(http.MethodPost, "/api/vendor/refresh-token", nil, cookies)
	if rr.Code != http.StatusOK || !env.Success {
		t.Fatalf("refresh = %d %+v", rr.Code, env)
	}
	fresh := rr.Result().Cookies()
	if cookieNamed(fresh, "vendor_access") == nil || cookieNamed(fresh, "vendor_refresh") == nil {
		t.Fatalf("refresh did not rotate both cookies: %v", fresh)
	}

	if rr, _ := h.do(http.MethodGet, "/api/vendor/profile", nil, fresh); rr.Code != http.StatusOK {
		t.Fatalf("after refresh = %d", rr.Code)
	}

	// The consumed refresh token cannot be replayed.
	rr, env = h.do(http.MethodPost, "/api/vendor/refresh-token", nil, cookies)
	if rr.Code != http.StatusForbidden || env.Message != "Token is blacklisted" {
		t.Errorf("reused refresh token = %d %q", rr.Code, env.Message)
	}
}

func TestRefreshFailures(t *testing.T) {
	h := newHarness(t)

	if rr, env := h.do(http.MethodPost, "/api/client/refresh-token", nil, nil); rr.Code != http.StatusUnauthorized || env.Message != "Unauthorized" {
		t.Errorf("no cookie = %d %q", rr.Code, env.Message)
	}

	cookies := h.login(role.Client, "alice@example.com")
	h.clock.Advance(2 * time.Hour)
	if rr, env := h.do(http.MethodPost, "/api/client/refresh-token", nil, cookies); rr.Code != http.StatusUnauthorized || env.Message != "Token Expired" {
		t.Errorf("expired refresh token = %d %q", rr.Code, env.Message)
	}

	cookies = h.login(role.Client, "alice@example.com")
	_ = h.api.Accounts().SetBlocked(role.Client, "alice@example.com", true)
	if rr, env := h.do(http.MethodPost, "/api/client/refresh-token", nil, cookies); rr.Code != http.StatusForbidden || env.Message != "Access denied: Your account has been blocked" {
		t.Errorf("blocked refresh = %d %q", rr.Code, env.Message)
	}
}

func TestLogoutClearsCookies(t *testing.T) {
	h := newHarness(t)
	cookies := h.login(role.Client, "alice@example.com")

	rr, env := h.do(http.MethodPost, "/api/client/logout", nil, cookies)
	if rr.Code != http.StatusOK || env.Message != "Logged out" {
		t.Fatalf("logout = %d %+v", rr.Code, env)
	}
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s not cleared: MaxAge=%d", c.Name, c.MaxAge)
		}
	}

	if rr, env := h.do(http.MethodPost, "/api/client/refresh-token", nil, cookies); rr.Code != http.StatusForbidden || env.Message != "Token is blacklisted" {
		t.Errorf("refresh after logout = %d %q", rr.Code, env.Message)
	}

	// Logging out without a session still succeeds.
	if rr, _ := h.do(http.MethodPost, "/api/client/logout", nil, nil); rr.Code != http.StatusOK {
		t.Errorf("anonymous logout = %d", rr.Code)
	}
}

func TestBookingsFilter(t *testing.T) {
	h := newHarness(t)
	for _, status := range []string{"active", "pending", "cancelled"} {
		if _, err := h.api.AddBooking(role.Client, "alice@example.com", "desk-"+status, status); err != nil {
			t.Fatal(err)
		}
	}
	cookies := h.login(role.Client, "alice@example.com")

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?status=active", 1},
		{"?status=active&status=pending", 2},
		{"?status=archived", 0},
	}
	for _, tt := range tests {
		rr, env := h.do(http.MethodGet, "/api/client/bookings"+tt.query, nil, cookies)
		if rr.Code != http.StatusOK {
			t.Fatalf("%q = %d", tt.query, rr.Code)
		}
		var got []Booking
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("%q returned %d bookings, want %d", tt.query, len(got), tt.want)
		}
	}

	if _, err := h.api.AddBooking(role.Client, "nobody@example.com", "d", "active"); err == nil {
		t.Error("AddBooking for unknown account should fail")
	}
}

func TestEmptyBookingsBody(t *testing.T) {
	h := newHarness(t)
	cookies := h.login(role.Client, "alice@example.com")
	rr, _ := h.do(http.MethodGet, "/api/client/bookings", nil, cookies)
	if got := rr.Body.String(); got != `{"success":true,"data":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestAdminBlockAndUnblock(t *testing.T) {
	h := newHarness(t)
	admin := h.login(role.Admin, "ada@example.com")
	vendor := h.login(role.Vendor, "vera@example.com")
	target := map[string]string{"role": "vendor", "email": "vera@example.com"}

	rr, env := h.do(http.MethodPost, "/api/admin/accounts/block", target, admin)
	if rr.Code != http.StatusOK || env.Message != "Account blocked" {
		t.Fatalf("block = %d %+v", rr.Code, env)
	}
	if rr, env := h.do(http.MethodGet, "/api/vendor/profile", nil, vendor); rr.Code != http.StatusForbidden || env.Message != "Access denied: Your account has been blocked" {
		t.Errorf("blocked vendor = %d %q", rr.Code, env.Message)
	}

	if rr, _ := h.do(http.MethodPost, "/api/admin/accounts/unblock", target, admin); rr.Code != http.StatusOK {
		t.Fatalf("unblock = %d", rr.Code)
	}
	if rr, _ := h.do(http.MethodGet, "/api/vendor/profile", nil, vendor); rr.Code != http.StatusOK {
		t.Errorf("unblocked vendor = %d", rr.Code)
	}

	if rr, _ := h.do(http.MethodPost, "/api/admin/accounts/block",
		map[string]string{"role": "owner", "email": "vera@example.com"}, admin); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown role = %d", rr.Code)
	}
	if rr, _ := h.do(http.MethodPost, "/api/admin/accounts/block",
		map[string]string{"role": "vendor", "email": "nobody@example.com"}, admin); rr.Code != http.StatusNotFound {
		t.Errorf("unknown account = %d", rr.Code)
	}

	// Only the admin role has moderation routes.
	if rr, _ := h.do(http.MethodPost, "/api/client/accounts/block", target, vendor); rr.Code != http.StatusNotFound {
		t.Errorf("client block route = %d", rr.Code)
	}
}

func TestSegmentOverride(t *testing.T) {
	h := newHarness(t, func(c *Config) {
		c.Prefix = "v2/"
		c.Segments = map[string]string{"Vendor": "/partners/"}
	})
	rr, _ := h.do(http.MethodPost, "/v2/partners/login",
		map[string]string{"email": "vera@example.com", "password": testPassword}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login under overridden segment = %d", rr.Code)
	}
	cfg := h.api.Config()
	if got := cfg.BasePath(role.Client); got != "/v2/client" {
		t.Errorf("BasePath(client) = %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"unknown segment role", func(c *Config) { c.Segments = map[string]string{"owner": "o"} }},
		{"seed with unknown role", func(c *Config) { c.Accounts[0].Role = "owner" }},
		{"seed with bad email", func(c *Config) { c.Accounts[0].Email = "alice" }},
		{"bcrypt cost too low", func(c *Config) { c.Password.BcryptCost = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, WithLogger(logger.NewNop())); err == nil {
				t.Error("expected error")
			}
		})
	}

	cfg := testConfig()
	cfg.Accounts = append(cfg.Accounts, cfg.Accounts[0])
	if _, err := New(cfg, WithLogger(logger.NewNop())); err == nil {
		t.Error("duplicate seed account should fail")
	}
}
