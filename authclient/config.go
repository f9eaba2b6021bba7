package authclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/deskhub/httpclient"
	"github.com/kbukum/deskhub/role"
	"github.com/kbukum/deskhub/security"
	"github.com/kbukum/deskhub/validation"
	"github.com/kbukum/deskhub/version"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultRefreshPath    = "/refresh-token"
)

// Config configures the API clients of every role.
type Config struct {
	// BackendURL is the API root, e.g. https://api.example.com/api.
	BackendURL string `yaml:"backend_url" mapstructure:"backend_url" validate:"required,url"`

	// Timeout bounds each HTTP attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// RefreshTimeout bounds a credential refresh. Defaults to 10s.
	RefreshTimeout time.Duration `yaml:"refresh_timeout" mapstructure:"refresh_timeout" validate:"gte=0"`

	// RefreshPath is appended to a role's base URL to renew the credential.
	RefreshPath string `yaml:"refresh_path" mapstructure:"refresh_path"`

	// Segments overrides the path segment of a role, keyed by role name.
	Segments map[string]string `yaml:"segments" mapstructure:"segments"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RetryAttempts retries transient failures (timeouts, 5xx, 429). 0 or 1
	// sends every request once.
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts" validate:"gte=0,lte=10"`

	// CircuitBreaker stops calling a failing backend for a while.
	CircuitBreaker bool `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// RateLimit caps requests per second for each role. 0 disables it.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`

	// RateBurst is the burst allowed above RateLimit. Defaults to 1.
	RateBurst int `yaml:"rate_burst" mapstructure:"rate_burst" validate:"gte=0"`

	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = defaultRefreshTimeout
	}
	if c.RefreshPath == "" {
		c.RefreshPath = defaultRefreshPath
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	c.Segments = role.CanonicalKeys(c.Segments)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	for name, seg := range c.Segments {
		if _, err := role.Parse(name); err != nil {
			return fmt.Errorf("authclient: segments: %w", err)
		}
		if strings.Trim(seg, "/") == "" {
			return fmt.Errorf("authclient: segments: empty segment for role %q", name)
		}
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Segment returns the path segment of r.
func (c *Config) Segment(r role.Role) string {
	if seg, ok := c.Segments[r.String()]; ok {
		return strings.Trim(seg, "/")
	}
	return r.PathSegment()
}

// BaseURL returns {BackendURL}/{segment} for r.
func (c *Config) BaseURL(r role.Role) string {
	return strings.TrimRight(c.BackendURL, "/") + "/" + c.Segment(r)
}

func (c *Config) httpConfig(r role.Role) httpclient.Config {
	hc := httpclient.Config{
		Name:    "authclient." + r.String(),
		BaseURL: c.BaseURL(r),
		Timeout: c.Timeout,
		Headers: c.headers(),
		TLS:     c.TLS,
	}
	if c.RetryAttempts > 1 {
		retry := httpclient.DefaultRetryConfig()
		retry.MaxAttempts = c.RetryAttempts
		hc.Retry = retry
	}
	if c.CircuitBreaker {
		hc.CircuitBreaker = httpclient.DefaultCircuitBreakerConfig(hc.Name)
	}
	if c.RateLimit > 0 {
		rl := httpclient.DefaultRateLimiterConfig(hc.Name)
		rl.Rate = c.RateLimit
		rl.Burst = c.RateBurst
		hc.RateLimiter = rl
	}
	return hc
}

func (c *Config) headers() map[string]string {
	h := make(map[string]string, len(c.Headers)+1)
	h["User-Agent"] = version.UserAgent()
	for k, v := range c.Headers {
		h[k] = v
	}
	return h
}
