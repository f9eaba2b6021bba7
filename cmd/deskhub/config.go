package main

import (
	"fmt"
	"time"

	"github.com/kbukum/deskhub/authclient"
	"github.com/kbukum/deskhub/config"
	"github.com/kbukum/deskhub/mockapi"
	"github.com/kbukum/deskhub/observability"
	"github.com/kbukum/deskhub/redis"
	"github.com/kbukum/deskhub/server"
)

const serviceName = "deskhub"

// defaultBackendURL points the client at `deskhub mock-api` with defaults.
const defaultBackendURL = "http://127.0.0.1:8080/api"

// Config is the configuration of every deskhub command. Sections a command
// does not use are defaulted but not validated.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	MockAPI       mockapi.Config       `yaml:"mockapi" mapstructure:"mockapi"`
	Client        authclient.Config    `yaml:"client" mapstructure:"client"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`

	// SessionTTL bounds sessions kept in Redis; zero keeps them until logout.
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
}

// ApplyDefaults fills in zero-value fields of the shared sections.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Client.BackendURL == "" {
		c.Client.BackendURL = defaultBackendURL
	}
}

// Validate checks the shared sections.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("config.redis: %w", err)
	}
	return c.Observability.Validate()
}

func loadConfig(flags *rootFlags) (*Config, error) {
	var opts []config.LoaderOption
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
