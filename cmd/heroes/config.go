package main

import (
	"fmt"
	"slices"

	"github.com/kbukum/heroes/client"
	"github.com/kbukum/heroes/config"
	"github.com/kbukum/heroes/observability"
	"github.com/kbukum/heroes/search"
	"github.com/kbukum/heroes/server"
	"github.com/kbukum/heroes/version"
)

// AppConfig is the heroes configuration file, loaded from config.yml,
// .env files and HEROES_* environment variables.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Search        search.Config        `yaml:"search" mapstructure:"search"`
	Client        client.Config        `yaml:"client" mapstructure:"client"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.Server.ApplyDefaults()
	c.Search.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.IsProduction() && c.Server.CORS.AllowCredentials && slices.Contains(c.Server.CORS.AllowedOrigins, "*") {
		return fmt.Errorf("server.cors: credentials with a wildcard origin are not allowed in production")
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("config.%w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	return nil
}

func loadConfig() (*AppConfig, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix("HEROES")}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig("heroes", cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debounce > 0 {
		cfg.Search.Debounce = debounce
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
