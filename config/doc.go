// Package config loads service configuration with Viper.
//
// Sources are applied in order: config.yml (found under ./cmd/<service>,
// ./config or the working directory), a .env file loaded with godotenv,
// then environment variables. Environment keys are mapped onto nested
// config keys, so with WithEnvPrefix("HEROES") the variable
// HEROES_SEARCH_DEBOUNCE=500ms overrides search.debounce.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("heroes", &cfg, config.WithEnvPrefix("HEROES"))
package config
