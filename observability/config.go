package observability

import (
	"fmt"
	"time"

	"github.com/kbukum/deskhub/validation"
)

// Config configures trace and metric export over OTLP/HTTP.
type Config struct {
	// Enabled turns on export. Disabled telemetry is a no-op.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// ServiceName is the service.name resource attribute (default: deskhub).
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// Environment is the deployment.environment resource attribute.
	Environment string `yaml:"environment" mapstructure:"environment"`

	// Endpoint is the OTLP HTTP collector host:port (default: localhost:4318).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`

	// SampleRate is the fraction of traces kept. Zero means 1.0; a negative
	// rate drops every trace.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"lte=1"`

	// MetricInterval is the metric export period (default: 15s).
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "deskhub"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("observability: metric_interval must not be negative (got: %s)", c.MetricInterval)
	}
	return nil
}
