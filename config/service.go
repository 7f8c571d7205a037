package config

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kbukum/heroes/logger"
)

// Environments lists the accepted values of ServiceConfig.Environment.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds what every heroes command shares. AppConfig embeds
// it with mapstructure squash so its keys sit at the top level of the file.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig is promoted through embedding and satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }

// ApplyDefaults fills the name and environment. Development turns on debug
// logging unless a level was configured.
func (c *ServiceConfig) ApplyDefaults() {
	c.Name = cmp.Or(c.Name, "heroes")
	c.Environment = cmp.Or(c.Environment, "development")
	c.Debug = c.Debug || c.Environment == "development"
	if c.Debug {
		c.Logging.Level = cmp.Or(c.Logging.Level, "debug")
	}
	c.Logging.ApplyDefaults()
}

// IsProduction reports whether the service runs with production settings.
func (c *ServiceConfig) IsProduction() bool { return c.Environment == "production" }

func (c *ServiceConfig) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("config.name is required")
	case !slices.Contains(Environments, c.Environment):
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
