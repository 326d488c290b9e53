package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsline/rcachat/internal/domain"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "rcachat.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "RCACHAT_PORT")
	setString(&cfg.Server.CORSOrigin, "RCACHAT_CORS_ORIGIN")

	setString(&cfg.Agent.ID, "RCACHAT_AGENT_ID")
	setString(&cfg.Agent.AliasID, "RCACHAT_AGENT_ALIAS_ID")
	setString(&cfg.Agent.Region, "AWS_REGION")
	setString(&cfg.Agent.Environment, "RCACHAT_ENVIRONMENT")

	setString(&cfg.Runtime.Provider, "RCACHAT_RUNTIME_PROVIDER")
	setDuration(&cfg.Runtime.ReadTimeout, "RCACHAT_READ_TIMEOUT")
	setInt(&cfg.Runtime.MaxRetries, "RCACHAT_MAX_RETRIES")

	setString(&cfg.Logging.Level, "RCACHAT_LOG_LEVEL")
	setString(&cfg.Logging.Service, "RCACHAT_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "RCACHAT_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "RCACHAT_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Cooldown, "RCACHAT_BREAKER_COOLDOWN")

	setInt64(&cfg.Cache.MaxSizeMB, "RCACHAT_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "RCACHAT_CACHE_TTL")

	setBool(&cfg.Telemetry.Enabled, "RCACHAT_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "RCACHAT_TELEMETRY_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("%w: server.port is required", domain.ErrConfiguration)
	}
	if cfg.Agent.ID == "" {
		return fmt.Errorf("%w: agent.id is required", domain.ErrConfiguration)
	}
	if cfg.Agent.AliasID == "" {
		return fmt.Errorf("%w: agent.alias_id is required", domain.ErrConfiguration)
	}
	if cfg.Runtime.Provider == "" {
		return fmt.Errorf("%w: runtime.provider is required", domain.ErrConfiguration)
	}
	if cfg.Runtime.ReadTimeout <= 0 {
		return fmt.Errorf("%w: runtime.read_timeout must be positive", domain.ErrConfiguration)
	}
	if cfg.Breaker.MaxFailures < 1 {
		return fmt.Errorf("%w: breaker.max_failures must be >= 1", domain.ErrConfiguration)
	}
	if cfg.Cache.MaxSizeMB < 1 {
		return fmt.Errorf("%w: cache.max_size_mb must be >= 1", domain.ErrConfiguration)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
