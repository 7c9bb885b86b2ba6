package app

import (
	"fmt"
	"time"

	"mcpool/internal/api"
	"mcpool/internal/config"
	"mcpool/internal/metrics"
	"mcpool/internal/session"
	"mcpool/pkg/logging"
)

// Services holds all initialized components of the server process.
//
// Initialization order follows the dependencies:
//  1. Metrics registry
//  2. Session manager (uses metrics)
//  3. Profile table (from the loaded config)
//  4. Admin API (uses manager, profiles, metrics)
//  5. Config watcher (feeds the profile table)
type Services struct {
	// Metrics is the Prometheus sink shared by the manager and the API.
	Metrics metrics.Metrics

	// Manager owns every connection pool and context record.
	Manager *session.Manager

	// Profiles is the hot-reloadable table of named server sets.
	Profiles *api.ProfileTable

	// APIServer exposes the manager over HTTP.
	APIServer *api.Server

	// Watcher reloads profiles when config.yaml changes.
	Watcher *config.Watcher

	// ShutdownTimeout bounds the graceful shutdown phase.
	ShutdownTimeout time.Duration
}

// InitializeServices creates all components from cfg.MCPool. Nothing is
// started; see runServer.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.MCPool == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	mc := *cfg.MCPool

	m := metrics.NewMetrics()

	manager := session.NewManager(session.ManagerConfig{
		Metrics:              m,
		Teardown:             mc.Sessions.Teardown,
		EstablishConcurrency: mc.Sessions.EstablishConcurrency,
	})

	profiles := api.NewProfileTable(mc)

	apiServer := api.NewServer(api.Options{
		Host:     mc.Server.Host,
		Port:     mc.Server.Port,
		Manager:  manager,
		Profiles: profiles,
		Metrics:  m,
	})

	services := &Services{
		Metrics:         m,
		Manager:         manager,
		Profiles:        profiles,
		APIServer:       apiServer,
		ShutdownTimeout: mc.Server.ShutdownTimeout,
	}
	if services.ShutdownTimeout <= 0 {
		services.ShutdownTimeout = config.DefaultShutdownTimeout
	}

	if cfg.ConfigPath != "" {
		services.Watcher = config.NewWatcher(cfg.ConfigPath, config.DefaultReloadDebounce, services.reloadProfiles(mc))
	}

	logging.Info("Services", "Initialized session manager (teardown=%s, establishConcurrency=%d) with %d profiles",
		mc.Sessions.Teardown, mc.Sessions.EstablishConcurrency, len(mc.Profiles))

	return services, nil
}

// reloadProfiles returns the watcher callback. Only profiles are applied
// live; changes to other sections take effect on restart.
func (s *Services) reloadProfiles(initial config.Config) config.ReloadFunc {
	return func(next config.Config) {
		s.Profiles.Replace(next)
		logging.Info("Services", "Reloaded %d profiles", len(next.Profiles))

		if next.Server != initial.Server || next.Sessions != initial.Sessions || next.Logging != initial.Logging {
			logging.Warn("Services", "Changes outside the profiles section require a restart to take effect")
		}
	}
}
