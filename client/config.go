package client

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultBaseURL         = "http://localhost:8080"
	defaultTimeout         = 10 * time.Second
	defaultMaxAttempts     = 2
	defaultRetryBackoff    = 50 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 10 * time.Second
)

// Config configures the backend client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a whole request. Streams are bounded by their context only.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxAttempts bounds the attempts of a GET that fails with a connection
	// error or a 502, 503 or 504. 1 disables retries.
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// BreakerFailures consecutive backend failures open the circuit for
	// BreakerCooldown. Requests fail fast while it is open.
	BreakerFailures int           `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = defaultBreakerFailures
	}
	if c.BreakerCooldown == 0 {
		c.BreakerCooldown = defaultBreakerCooldown
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("client: timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("client: max_attempts must be at least 1")
	}
	if c.BreakerFailures < 1 {
		return fmt.Errorf("client: breaker_failures must be at least 1")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("client: invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("client: base_url must be http or https, got %q", c.BaseURL)
	}
	return nil
}
