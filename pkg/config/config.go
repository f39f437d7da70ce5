package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for one connector's HTTP client.
type Config struct {
	Client  ClientConfig   `yaml:"client" json:"client"`
	Retry   RetryConfig    `yaml:"retry" json:"retry"`
	Budget  []PolicyConfig `yaml:"budget" json:"budget"`
	Logging LoggingConfig  `yaml:"logging" json:"logging"`
}

// ClientConfig names the client and bounds individual calls.
type ClientConfig struct {
	// Name identifies the connector in logs and cache files.
	Name string `yaml:"name" json:"name"`
	// Timeout bounds one network round trip, not the whole retry sequence.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// UseCache enables the in-process response cache.
	UseCache bool `yaml:"use_cache" json:"use_cache"`
}

// RetryConfig sets the client-level retry bounds. Error handlers and backoff
// strategies may still override them per the executor's precedence rules.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
	MaxTime    time.Duration `yaml:"max_time" json:"max_time"`
	Factor     float64       `yaml:"factor" json:"factor"`
}

// PolicyConfig declares one call-rate budget policy. Policies apply in
// declaration order; the first match governs a request. Exactly one of
// Calls+Window or Interval must be set.
type PolicyConfig struct {
	Method     string        `yaml:"method" json:"method"`
	PathPrefix string        `yaml:"path_prefix" json:"path_prefix"`
	Calls      int           `yaml:"calls" json:"calls"`
	Window     time.Duration `yaml:"window" json:"window"`
	Interval   time.Duration `yaml:"interval" json:"interval"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	Console bool   `yaml:"console" json:"console"`
}

// DefaultConfig mirrors the executor's built-in retry defaults.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Name:    "connector",
			Timeout: 60 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries: 5,
			MaxTime:    600 * time.Second,
			Factor:     5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads config from an optional YAML file, after loading a .env file if
// one exists, then applies CONNKIT_* environment overrides and validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONNKIT_CLIENT_NAME"); v != "" {
		cfg.Client.Name = v
	}
	if v := os.Getenv("CONNKIT_CLIENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("CONNKIT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("CONNKIT_MAX_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.MaxTime = d
		}
	}
	if v := os.Getenv("CONNKIT_RETRY_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retry.Factor = f
		}
	}
	if v := os.Getenv("CONNKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks cross-field constraints and returns the first problem.
func (c *Config) Validate() error {
	if c.Client.Name == "" {
		return fmt.Errorf("client.name must not be empty")
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Retry.MaxTime <= 0 {
		return fmt.Errorf("retry.max_time must be positive")
	}
	if c.Retry.Factor <= 0 {
		return fmt.Errorf("retry.factor must be positive")
	}
	for i, p := range c.Budget {
		hasRate := p.Calls > 0 || p.Window > 0
		hasInterval := p.Interval > 0
		if hasRate && hasInterval {
			return fmt.Errorf("budget[%d]: calls/window and interval are mutually exclusive", i)
		}
		if !hasRate && !hasInterval {
			return fmt.Errorf("budget[%d]: one of calls/window or interval is required", i)
		}
		if hasRate && (p.Calls <= 0 || p.Window <= 0) {
			return fmt.Errorf("budget[%d]: calls and window must both be positive", i)
		}
	}
	return nil
}
