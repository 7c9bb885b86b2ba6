package config

import "time"

const (
	// DefaultHost is the default bind host of the admin API.
	DefaultHost = "localhost"

	// DefaultPort is the default port of the admin API.
	DefaultPort = 8095

	// DefaultShutdownTimeout bounds the graceful shutdown phase.
	DefaultShutdownTimeout = 15 * time.Second

	// DefaultEstablishConcurrency bounds parallel session establishment per pool.
	DefaultEstablishConcurrency = 4
)

// GetDefaultConfig returns the default configuration for mcpool.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Sessions: SessionsConfig{
			Teardown:             TeardownPool,
			EstablishConcurrency: DefaultEstablishConcurrency,
		},
		Profiles: map[string]Profile{},
	}
}

// applyDefaults fills zero values left by a partial config file.
func applyDefaults(cfg *Config) {
	defaults := GetDefaultConfig()

	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Sessions.Teardown == "" {
		cfg.Sessions.Teardown = defaults.Sessions.Teardown
	}
	if cfg.Sessions.EstablishConcurrency == 0 {
		cfg.Sessions.EstablishConcurrency = defaults.Sessions.EstablishConcurrency
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
}
