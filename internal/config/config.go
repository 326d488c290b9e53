// Package config provides hierarchical configuration loading for rcachat.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the rcachat service.
type Config struct {
	Server    Server    `yaml:"server"`
	Agent     Agent     `yaml:"agent"`
	Runtime   Runtime   `yaml:"runtime"`
	Logging   Logging   `yaml:"logging"`
	Breaker   Breaker   `yaml:"breaker"`
	Cache     Cache     `yaml:"cache"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Agent identifies the remote agent to invoke.
type Agent struct {
	ID          string `yaml:"id"`
	AliasID     string `yaml:"alias_id"`
	Region      string `yaml:"region"`
	Environment string `yaml:"environment"` // display label only
}

// Runtime holds remote invocation transport configuration.
type Runtime struct {
	Provider    string        `yaml:"provider"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for the invocation endpoint.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// Cache holds idempotency cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Telemetry holds OpenTelemetry export configuration.
type Telemetry struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Defaults returns a Config with sensible default values for local use.
// Agent id and alias id have no default; they must be supplied.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Agent: Agent{
			Region:      "us-east-1",
			Environment: "development",
		},
		Runtime: Runtime{
			Provider:    "bedrock",
			ReadTimeout: 10 * time.Minute,
			MaxRetries:  3,
		},
		Logging: Logging{
			Level:   "info",
			Service: "rcachat",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
		},
		Cache: Cache{
			MaxSizeMB: 16,
			TTL:       10 * time.Minute,
		},
		Telemetry: Telemetry{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	}
}
