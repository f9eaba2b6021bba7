package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/deskhub/httpclient"
	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/role"
)

// backend is a fake API. Refresh issues a new access_token cookie; the
// default protected handler accepts only the latest one.
type backend struct {
	srv *httptest.Server

	mu     sync.Mutex
	valid  string
	bodies []string

	refreshCalls   atomic.Int32
	requests       atomic.Int32
	refreshFail    bool
	refreshDelay   time.Duration
	refreshGate    chan struct{}
	refreshEntered chan struct{}

	// protected overrides the default handler of non-refresh paths.
	protected func(w http.ResponseWriter, r *http.Request, authorized bool)
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) apiURL() string {
	return b.srv.URL + "/api"
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/refresh-token") {
		b.serveRefresh(w, r)
		return
	}
	b.requests.Add(1)

	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, string(body))
	valid := b.valid
	b.mu.Unlock()

	cookie, err := r.Cookie("access_token")
	authorized := err == nil && valid != "" && cookie.Value == valid

	if b.protected != nil {
		b.protected(w, r, authorized)
		return
	}
	if !authorized {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token Expired"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"path": r.URL.Path, "query": r.URL.RawQuery},
	})
}

func (b *backend) serveRefresh(w http.ResponseWriter, r *http.Request) {
	n := b.refreshCalls.Add(1)
	if b.refreshEntered != nil {
		select {
		case b.refreshEntered <- struct{}{}:
		default:
		}
	}
	if b.refreshGate != nil {
		<-b.refreshGate
	}
	if b.refreshDelay > 0 {
		time.Sleep(b.refreshDelay)
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false})
		return
	}
	if b.refreshFail {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Refresh token expired"})
		return
	}
	token := fmt.Sprintf("t%d", n)
	b.mu.Lock()
	b.valid = token
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Token refreshed"})
}

func (b *backend) seenBodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeGateway records session side effects.
type fakeGateway struct {
	mu       sync.Mutex
	failures []string
	notes    []string
	err      error
}

func (g *fakeGateway) OnTerminalFailure(_ context.Context, r role.Role, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = append(g.failures, r.String()+":"+reason)
	return g.err
}

func (g *fakeGateway) Notify(_ context.Context, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notes = append(g.notes, msg)
}

func (g *fakeGateway) terminations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.failures...)
}

func (g *fakeGateway) notifications() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.notes...)
}

func newTestClient(t *testing.T, b *backend, r role.Role, gw SessionGateway, opts ...Option) *Client {
	t.Helper()
	cfg := Config{BackendURL: b.apiURL(), RefreshTimeout: 2 * time.Second}
	c, err := New(r, cfg, gw, append([]Option{WithLogger(logger.NewNop())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadInput(t *testing.T) {
	gw := &fakeGateway{}
	if _, err := New("guest", Config{BackendURL: "http://localhost"}, gw); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := New(role.Client, Config{BackendURL: "http://localhost"}, nil); err == nil {
		t.Error("expected error without gateway")
	}
	if _, err := New(role.Client, Config{}, gw); err == nil {
		t.Error("expected error without backend url")
	}
}

func TestClientBaseURL(t *testing.T) {
	b := newBackend(t)
	c := newTestClient(t, b, role.Vendor, &fakeGateway{})
	if got, want := c.BaseURL(), b.apiURL()+"/vendor"; got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
	if c.Role() != role.Vendor {
		t.Errorf("Role() = %q", c.Role())
	}
}

func TestClientRefreshesAndReplays(t *testing.T) {
	b := newBackend(t)
	gw := &fakeGateway{}
	c := newTestClient(t, b, role.Client, gw)

	resp, err := c.Post(context.Background(), "/bookings", map[string]any{"desk": "d-1", "seats": 2})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := b.refreshCalls.Load(); n != 1 {
		t.Errorf("refresh calls = %d, want 1", n)
	}
	bodies := b.seenBodies()
	if len(bodies) != 2 {
		t.Fatalf("expected original and replay, got %d requests", len(bodies))
	}
	if bodies[0] != bodies[1] || bodies[0] == "" {
		t.Errorf("replay body %q differs from original %q", bodies[1], bodies[0])
	}
	if len(gw.terminations()) != 0 {
		t.Errorf("unexpected terminations %v", gw.terminations())
	}
	if c.Refreshing() {
		t.Error("refresh should have settled")
	}

	// The refreshed cookie is reused without another refresh.
	if _, err := c.Get(context.Background(), "/bookings"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n := b.refreshCalls.Load(); n != 1 {
		t.Errorf("refresh calls = %d after second request, want 1", n)
	}
}

func TestConcurrentExpiredRequestsShareOneRefresh(t *testing.T) {
	b := newBackend(t)
	b.refreshDelay = 100 * time.Millisecond
	gw := &fakeGateway{}
	c := newTestClient(t, b, role.Client, gw)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	statuses := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Get(context.Background(), fmt.Sprintf("/bookings/%d", i))
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Errorf("request %d: %v", i, errs[i])
		}
		if statuses[i] != http.StatusOK {
			t.Errorf("request %d: status %d", i, statuses[i])
		}
	}
	if got := b.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if len(gw.terminations()) != 0 {
		t.Errorf("unexpected terminations %v", gw.terminations())
	}
}

func TestRefreshFromStaleEpochReusesSettledOutcome(t *testing.T) {
	b := newBackend(t)
	c := newTestClient(t, b, role.Client, &fakeGateway{})
	ctx := context.Background()

	if err := c.refresh(ctx, 0); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	// Sent before the first refresh settled, however long ago.
	if err := c.refresh(ctx, 0); err != nil {
		t.Fatalf("stale refresh: %v", err)
	}
	if got := b.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d after stale epoch, want 1", got)
	}

	if err := c.refresh(ctx, 1); err != nil {
		t.Fatalf("current refresh: %v", err)
	}
	if got := b.refreshCalls.Load(); got != 2 {
		t.Errorf("refresh calls = %d, want 2", got)
	}
}

func TestRefreshingReportsInFlightRefresh(t *testing.T) {
	b := newBackend(t)
	b.refreshGate = make(chan struct{})
	b.refreshEntered = make(chan struct{}, 1)
	c := newTestClient(t, b, role.Client, &fakeGateway{})

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "/bookings")
		done <- err
	}()

	select {
	case <-b.refreshEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}
	if !c.Refreshing() {
		t.Error("Refreshing() = false during refresh")
	}
	close(b.refreshGate)

	if err := <-done; err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Refreshing() {
		t.Error("Refreshing() = true after refresh")
	}
}

func TestRefreshFailureTerminatesOnce(t *testing.T) {
	b := newBackend(t)
	b.refreshFail = true
	b.refreshDelay = 50 * time.Millisecond
	gw := &fakeGateway{}
	c := newTestClient(t, b, role.Vendor, gw)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "/spaces")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if TerminationReason(err) != ReasonRefreshFailed {
			t.Errorf("request %d: err = %v, want refresh failure", i, err)
		}
		var httpErr *httpclient.Error
		if !errors.As(err, &httpErr) || httpErr.APIMessage() != "Refresh token expired" {
			t.Errorf("request %d: refresh error not reachable: %v", i, err)
		}
	}
	if got := b.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := gw.terminations(); len(got) != 1 || got[0] != "vendor:refresh_failed" {
		t.Errorf("terminations = %v, want one vendor:refresh_failed", got)
	}
	if got := gw.notifications(); len(got) != 1 || got[0] != ReasonRefreshFailed.Message() {
		t.Errorf("notifications = %v", got)
	}
	if c.Refreshing() {
		t.Error("refresh should have settled")
	}
}

func TestTerminalResponsesEndSession(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		reason Reason
	}{
		{"invalid token", 401, map[string]any{"success": false, "message": "Invalid token"}, ReasonInvalidToken},
		{"blacklisted", 403, map[string]any{"success": false, "message": "Token is blacklisted"}, ReasonBlacklisted},
		{"blocked", 403, map[string]any{"success": false, "message": "Access denied: Your account has been blocked"}, ReasonAccountBlocked},
		{"blocked by code", 403, map[string]any{"success": false, "message": "Forbidden", "code": "ACCOUNT_BLOCKED"}, ReasonAccountBlocked},
		{"blacklisted message with unknown code", 403, map[string]any{"success": false, "message": "Token is blacklisted", "code": "FORBIDDEN"}, ReasonBlacklisted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			b.protected = func(w http.ResponseWriter, _ *http.Request, _ bool) {
				writeJSON(w, tt.status, tt.body)
			}
			gw := &fakeGateway{}
			c := newTestClient(t, b, role.Admin, gw)

			resp, err := c.Get(context.Background(), "/users")
			if TerminationReason(err) != tt.reason {
				t.Fatalf("err = %v, want reason %s", err, tt.reason)
			}
			if httpclient.StatusCode(err) != tt.status {
				t.Errorf("original status not reachable: %d", httpclient.StatusCode(err))
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("expected the failing response alongside the error")
			}
			if b.refreshCalls.Load() != 0 {
				t.Error("terminal responses must not refresh")
			}
			if got := gw.terminations(); len(got) != 1 || got[0] != "admin:"+string(tt.reason) {
				t.Errorf("terminations = %v", got)
			}
			if got := gw.notifications(); len(got) != 1 || got[0] != tt.reason.Message() {
				t.Errorf("notifications = %v", got)
			}
		})
	}
}

func TestReplayFailuresAreClassifiedAsRetried(t *testing.T) {
	tests := []struct {
		name       string
		replay     func(w http.ResponseWriter)
		wantReason Reason
		wantStatus int
	}{
		{
			name: "expired again passes through",
			replay: func(w http.ResponseWriter) {
				writeJSON(w, 401, map[string]any{"success": false, "message": "Token Expired"})
			},
			wantStatus: 401,
		},
		{
			name: "blocked after replay passes through",
			replay: func(w http.ResponseWriter) {
				writeJSON(w, 403, map[string]any{"success": false, "message": "Access denied: Your account has been blocked"})
			},
			wantStatus: 403,
		},
		{
			name: "invalid token after replay terminates",
			replay: func(w http.ResponseWriter) {
				writeJSON(w, 401, map[string]any{"success": false, "message": "Invalid token"})
			},
			wantReason: ReasonInvalidToken,
			wantStatus: 401,
		},
		{
			name: "blacklisted after replay terminates",
			replay: func(w http.ResponseWriter) {
				writeJSON(w, 403, map[string]any{"success": false, "message": "Token is blacklisted"})
			},
			wantReason: ReasonBlacklisted,
			wantStatus: 403,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			var calls atomic.Int32
			b.protected = func(w http.ResponseWriter, _ *http.Request, _ bool) {
				if calls.Add(1) == 1 {
					writeJSON(w, 401, map[string]any{"success": false, "message": "Token Expired"})
					return
				}
				tt.replay(w)
			}
			gw := &fakeGateway{}
			c := newTestClient(t, b, role.Client, gw)

			_, err := c.Get(context.Background(), "/bookings")
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := calls.Load(); got != 2 {
				t.Errorf("requests = %d, want original and one replay", got)
			}
			if got := b.refreshCalls.Load(); got != 1 {
				t.Errorf("refresh calls = %d, want 1", got)
			}
			if TerminationReason(err) != tt.wantReason {
				t.Errorf("reason = %q, want %q", TerminationReason(err), tt.wantReason)
			}
			if httpclient.StatusCode(err) != tt.wantStatus {
				t.Errorf("status = %d, want %d", httpclient.StatusCode(err), tt.wantStatus)
			}
			wantTerminations := 0
			if tt.wantReason != "" {
				wantTerminations = 1
			}
			if got := len(gw.terminations()); got != wantTerminations {
				t.Errorf("terminations = %d, want %d", got, wantTerminations)
			}
		})
	}
}

func TestOtherFailuresPassThrough(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
	}{
		{"forbidden", 403, map[string]any{"success": false, "message": "Forbidden"}},
		{"not found", 404, map[string]any{"success": false, "message": "Booking not found"}},
		{"validation", 400, map[string]any{"success": false, "message": "Invalid input", "code": "INVALID_INPUT"}},
		{"server error", 500, map[string]any{"success": false, "message": "Invalid token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			b.protected = func(w http.ResponseWriter, _ *http.Request, _ bool) {
				writeJSON(w, tt.status, tt.body)
			}
			gw := &fakeGateway{}
			c := newTestClient(t, b, role.Client, gw)

			resp, err := c.Get(context.Background(), "/bookings")
			var httpErr *httpclient.Error
			if !errors.As(err, &httpErr) || httpErr.StatusCode != tt.status {
				t.Fatalf("err = %v, want status %d", err, tt.status)
			}
			if IsSessionTerminated(err) {
				t.Error("pass-through failure must not terminate")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Error("expected the response alongside the error")
			}
			if b.refreshCalls.Load() != 0 || len(gw.terminations()) != 0 {
				t.Error("pass-through failure must have no side effects")
			}
		})
	}
}

func TestConnectionErrorPassesThrough(t *testing.T) {
	b := newBackend(t)
	gw := &fakeGateway{}
	c := newTestClient(t, b, role.Client, gw)
	b.srv.Close()

	_, err := c.Get(context.Background(), "/bookings")
	if !httpclient.IsConnection(err) && !httpclient.IsTimeout(err) {
		t.Fatalf("expected a transport error, got %v", err)
	}
	if len(gw.terminations()) != 0 {
		t.Error("connection errors must not terminate")
	}
}

func TestWaiterCancellationDoesNotAbortRefresh(t *testing.T) {
	b := newBackend(t)
	b.refreshGate = make(chan struct{})
	b.refreshEntered = make(chan struct{}, 1)
	gw := &fakeGateway{}
	c := newTestClient(t, b, role.Client, gw)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "/bookings")
		done <- err
	}()

	select {
	case <-b.refreshEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled waiter did not return")
	}

	close(b.refreshGate)
	deadline := time.Now().Add(2 * time.Second)
	for c.Refreshing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Refreshing() {
		t.Fatal("refresh did not settle")
	}

	// The refresh completed on its own; the next request uses the new cookie.
	if _, err := c.Get(context.Background(), "/bookings"); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	if got := b.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if len(gw.terminations()) != 0 {
		t.Errorf("unexpected terminations %v", gw.terminations())
	}
}

func TestGatewayErrorStillReturnsTermination(t *testing.T) {
	b := newBackend(t)
	b.protected = func(w http.ResponseWriter, _ *http.Request, _ bool) {
		writeJSON(w, 401, map[string]any{"success": false, "message": "Invalid token"})
	}
	gw := &fakeGateway{err: errors.New("store down")}
	c := newTestClient(t, b, role.Client, gw)

	_, err := c.Get(context.Background(), "/bookings")
	if TerminationReason(err) != ReasonInvalidToken {
		t.Fatalf("err = %v", err)
	}
	if len(gw.notifications()) != 1 {
		t.Error("user should be notified even when logout failed")
	}
}
