// Package config loads deskhub configuration from YAML files, .env files
// and environment variables using viper.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("deskhub", &cfg, config.WithConfigFile("deskhub.yml"))
//
// Environment variables prefixed with DESKHUB_ override file values. A double
// underscore separates nesting levels, so DESKHUB_CLIENT__BACKEND_URL sets
// client.backend_url.
package config
