package bootstrap

import "github.com/kbukum/heroes/config"

// Config is satisfied by any struct embedding config.ServiceConfig. The
// embedding type overrides ApplyDefaults and Validate to cover its own
// sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
