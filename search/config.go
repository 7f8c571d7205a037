package search

import (
	"fmt"
	"time"
)

// Defaults for the search section.
const (
	DefaultDebounce      = 300 * time.Millisecond
	DefaultSessionTTL    = 10 * time.Minute
	DefaultLookupTimeout = 5 * time.Second
)

// Config holds search pipeline settings.
type Config struct {
	// Debounce is the quiet period D a query must survive before lookup.
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	// SessionTTL is how long an idle remote session is kept.
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	// LookupTimeout bounds a single lookup. Zero disables the bound.
	LookupTimeout time.Duration `yaml:"lookup_timeout" mapstructure:"lookup_timeout"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.LookupTimeout == 0 {
		c.LookupTimeout = DefaultLookupTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative, got %s", c.Debounce)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("search.session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.LookupTimeout < 0 {
		return fmt.Errorf("search.lookup_timeout must not be negative, got %s", c.LookupTimeout)
	}
	return nil
}
