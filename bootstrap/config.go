package bootstrap

import (
	"github.com/kbukum/deskhub/config"
)

// Config is the constraint on application configuration types. Any struct
// embedding config.ServiceConfig gets GetServiceConfig through promotion and
// only adds ApplyDefaults and Validate for its own sections.
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Redis redis.Config   `yaml:"redis" mapstructure:"redis"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
