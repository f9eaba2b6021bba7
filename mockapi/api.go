package mockapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/deskhub/auth/password"
	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/resilience"
	"github.com/kbukum/deskhub/role"
)

// Booking is a desk reservation owned by an account.
type Booking struct {
	ID        string    `json:"id"`
	Desk      string    `json:"desk"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// API is the reference backend.
type API struct {
	cfg       Config
	accounts  *Accounts
	tokens    *issuer
	blacklist Blacklist
	limiter   *resilience.KeyedRateLimiter
	log       *logger.Logger
	now       func() time.Time

	mu       sync.RWMutex
	bookings map[string][]Booking
}

// Option customises an API.
type Option func(*API)

// WithClock replaces time.Now for tokens, the blacklist and login throttling.
func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

// WithBlacklist replaces the in-memory blacklist.
func WithBlacklist(b Blacklist) Option {
	return func(a *API) { a.blacklist = b }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *API) { a.log = l }
}

// New creates the backend and seeds the configured accounts.
func New(cfg Config, opts ...Option) (*API, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &API{
		cfg:      cfg,
		now:      time.Now,
		bookings: make(map[string][]Booking),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.NewDefault("deskhub")
	}
	a.log = a.log.WithComponent("mockapi")
	if a.blacklist == nil {
		a.blacklist = NewMemoryBlacklist(a.now)
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}
	a.accounts = NewAccounts(hasher)

	a.tokens, err = newIssuer(cfg.JWT, a.now)
	if err != nil {
		return nil, err
	}

	a.limiter = resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
		Name:  "mockapi.login",
		Rate:  cfg.LoginRate,
		Burst: cfg.LoginBurst,
		Now:   a.now,
		OnLimit: func(name string) {
			a.log.Warn("Login throttled", map[string]interface{}{"limiter": name})
		},
	})

	for _, seed := range cfg.Accounts {
		r, _ := role.Parse(seed.Role)
		if _, err := a.accounts.Add(r, seed.Email, seed.Password, seed.Name); err != nil {
			return nil, fmt.Errorf("mockapi: seed %s %s: %w", seed.Role, seed.Email, err)
		}
	}
	return a, nil
}

// Accounts returns the account registry.
func (a *API) Accounts() *Accounts {
	return a.accounts
}

// Config returns the effective configuration.
func (a *API) Config() Config {
	return a.cfg
}

// AddBooking creates a booking for an existing account.
func (a *API) AddBooking(r role.Role, email, desk, status string) (Booking, error) {
	acct, ok := a.accounts.Lookup(r, email)
	if !ok {
		return Booking{}, fmt.Errorf("mockapi: no %s account %q", r, email)
	}
	b := Booking{ID: uuid.NewString(), Desk: desk, Status: status, CreatedAt: a.now().UTC()}
	a.mu.Lock()
	a.bookings[acct.ID] = append(a.bookings[acct.ID], b)
	a.mu.Unlock()
	return b, nil
}

// bookingsFor returns the bookings of an account whose status is in
// statuses, or all of them when statuses is empty.
func (a *API) bookingsFor(accountID string, statuses []string) []Booking {
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Booking, 0, len(a.bookings[accountID]))
	for _, b := range a.bookings[accountID] {
		if len(want) == 0 || want[b.Status] {
			out = append(out, b)
		}
	}
	return out
}

// Register mounts every role's routes on r.
func (a *API) Register(r gin.IRouter) {
	for _, rl := range role.All() {
		g := r.Group(a.cfg.BasePath(rl))
		g.POST("/login", a.login(rl))
		g.POST("/refresh-token", a.refresh(rl))
		g.POST("/logout", a.logout(rl))

		protected := g.Group("", a.requireAccess(rl))
		protected.GET("/profile", a.profile)
		protected.GET("/bookings", a.listBookings)
		if rl == role.Admin {
			protected.POST("/accounts/block", a.setBlocked(true))
			protected.POST("/accounts/unblock", a.setBlocked(false))
		}
	}
}

// Handler returns a standalone gin engine serving the API.
func (a *API) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	a.Register(engine)
	return engine
}
