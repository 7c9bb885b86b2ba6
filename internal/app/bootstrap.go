package app

import (
	"context"
	"fmt"
	"os"

	"mcpool/internal/config"
	"mcpool/pkg/logging"
)

// Application is the mcpool server process: configuration, the session
// manager and its admin API, bundled for one Run.
//
// Example usage:
//
//	cfg := app.NewConfig(false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance with the provided configuration.
// This function performs the complete bootstrap sequence:
//
//  1. Configures bootstrap logging based on the debug flag
//  2. Loads config.yaml from cfg.ConfigPath (or the default directory)
//  3. Re-initializes logging with the configured level and format
//  4. Initializes the session manager, admin API and config watcher
func NewApplication(cfg *Config) (*Application, error) {
	bootstrapLevel := logging.LevelInfo
	if cfg.Debug {
		bootstrapLevel = logging.LevelDebug
	}
	logging.InitForCLI(bootstrapLevel, os.Stderr)

	if cfg.ConfigPath == "" {
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfg.ConfigPath = path
	}

	if cfg.MCPool == nil {
		loaded, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		cfg.MCPool = &loaded
	}

	if err := initLogging(cfg); err != nil {
		return nil, err
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// initLogging applies the logging section of the loaded configuration.
// --debug wins over the configured level.
func initLogging(cfg *Config) error {
	level, err := logging.ParseLevel(cfg.MCPool.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, cfg.MCPool.Logging.Format, os.Stderr)
	return nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	return runServer(ctx, a.services)
}
