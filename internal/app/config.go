package app

import (
	"mcpool/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug logging regardless of the config file
	Debug bool

	// ConfigPath is the configuration directory; empty selects
	// ~/.config/mcpool
	ConfigPath string

	// MCPool is the loaded configuration file. NewApplication fills it when nil.
	MCPool *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
