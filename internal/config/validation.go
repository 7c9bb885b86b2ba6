package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks a loaded configuration and returns ValidationErrors
// describing every problem found, or nil.
func ValidateConfig(cfg Config) error {
	var errs ValidationErrors

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 1 and 65535", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs.Add("server.shutdownTimeout", "must not be negative", cfg.Server.ShutdownTimeout)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs.Add("logging.format", "must be one of: text, json", cfg.Logging.Format)
	}

	switch cfg.Sessions.Teardown {
	case TeardownPool, TeardownRefCounted:
	default:
		errs.Add("sessions.teardown", fmt.Sprintf("must be one of: %s, %s", TeardownPool, TeardownRefCounted), cfg.Sessions.Teardown)
	}
	if cfg.Sessions.EstablishConcurrency < 1 {
		errs.Add("sessions.establishConcurrency", "must be at least 1", cfg.Sessions.EstablishConcurrency)
	}

	for _, name := range cfg.ProfileNames() {
		profile := cfg.Profiles[name]
		if strings.TrimSpace(name) == "" {
			errs.Add("profiles", "profile name must not be empty")
			continue
		}
		errs = append(errs, ValidateServerSet(profile.Servers, "profiles."+name+".servers")...)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateServerSet checks the connection parameters of every server in set.
// field prefixes the reported field names.
func ValidateServerSet(set ServerSet, field string) ValidationErrors {
	var errs ValidationErrors

	if len(set) == 0 {
		errs.Add(field, "must define at least one server")
		return errs
	}

	for _, name := range set.Names() {
		def := set[name]
		prefix := field + "." + name

		if strings.TrimSpace(name) == "" {
			errs.Add(field, "server name must not be empty")
			continue
		}

		switch def.Transport {
		case TransportStdio:
			if strings.TrimSpace(def.Command) == "" {
				errs.Add(prefix+".command", "is required for stdio transport")
			}
		case TransportSSE, TransportStreamableHTTP:
			if strings.TrimSpace(def.URL) == "" {
				errs.Add(prefix+".url", fmt.Sprintf("is required for %s transport", def.Transport))
			}
		case "":
			errs.Add(prefix+".transport", "is required")
		default:
			errs.Add(prefix+".transport",
				fmt.Sprintf("unsupported transport (supported: %s, %s, %s)", TransportStdio, TransportSSE, TransportStreamableHTTP),
				def.Transport)
		}
	}

	return errs
}
