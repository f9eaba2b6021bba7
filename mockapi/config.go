package mockapi

import (
	"fmt"
	"strings"

	"github.com/kbukum/deskhub/auth/jwt"
	"github.com/kbukum/deskhub/auth/password"
	"github.com/kbukum/deskhub/role"
	"github.com/kbukum/deskhub/validation"
)

// Config configures the reference backend.
type Config struct {
	// Prefix is the path every role is mounted under (default: /api).
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// Segments overrides the path segment of a role, keyed by role name.
	Segments map[string]string `yaml:"segments" mapstructure:"segments"`

	JWT      jwt.Config      `yaml:"jwt" mapstructure:"jwt"`
	Password password.Config `yaml:"password" mapstructure:"password"`

	// EmitCodes adds structured error codes to failure bodies.
	EmitCodes bool `yaml:"emit_codes" mapstructure:"emit_codes"`

	// LoginRate is the sustained login attempts per second per client and
	// email; LoginBurst the attempts allowed at once.
	LoginRate  float64 `yaml:"login_rate" mapstructure:"login_rate" validate:"gte=0"`
	LoginBurst int     `yaml:"login_burst" mapstructure:"login_burst" validate:"gte=0"`

	// Accounts are created at startup.
	Accounts []AccountConfig `yaml:"accounts" mapstructure:"accounts" validate:"dive"`
}

// AccountConfig seeds one account.
type AccountConfig struct {
	Role     string `yaml:"role" mapstructure:"role" validate:"required,role"`
	Email    string `yaml:"email" mapstructure:"email" validate:"required,email"`
	Password string `yaml:"password" mapstructure:"password" validate:"required"`
	Name     string `yaml:"name" mapstructure:"name"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Prefix == "" {
		c.Prefix = "/api"
	}
	c.Prefix = "/" + strings.Trim(c.Prefix, "/")
	if c.Prefix == "/" {
		c.Prefix = ""
	}
	if c.LoginRate == 0 {
		c.LoginRate = 0.2
	}
	if c.LoginBurst == 0 {
		c.LoginBurst = 5
	}
	c.Segments = role.CanonicalKeys(c.Segments)
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	for name := range c.Segments {
		if _, err := role.Parse(name); err != nil {
			return fmt.Errorf("mockapi: segments: %w", err)
		}
	}
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	return c.Password.Validate()
}

// Segment returns the path segment of r.
func (c *Config) Segment(r role.Role) string {
	if seg, ok := c.Segments[r.String()]; ok && strings.Trim(seg, "/") != "" {
		return strings.Trim(seg, "/")
	}
	return r.PathSegment()
}

// BasePath returns {prefix}/{segment} for r.
func (c *Config) BasePath(r role.Role) string {
	return c.Prefix + "/" + c.Segment(r)
}
