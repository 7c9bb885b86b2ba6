package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mcpool/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir = ".config/mcpool"

	// ConfigFileName is the name of the main configuration file.
	ConfigFileName = "config.yaml"
)

// GetDefaultConfigPath returns the user configuration directory.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}

	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath. A missing file yields the
// default configuration. Server templates are rendered, disabled servers are
// dropped and the result is validated.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, ConfigFileName)
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No %s found at %s, using defaults", ConfigFileName, configFilePath)
			return cfg, nil
		}
		return Config{}, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "io",
			Message:   err.Error(),
		}
	}

	cfg, err = Parse(data)
	if err != nil {
		var ce ConfigurationError
		if errors.As(err, &ce) {
			ce.FilePath = configFilePath
			return Config{}, ce
		}
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	logging.Info("Config", "Loaded configuration from %s (%d profiles)", configFilePath, len(cfg.Profiles))
	return cfg, nil
}

// Parse decodes, normalizes and validates a YAML configuration document.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, ConfigurationError{
			ErrorType:   "parse",
			Message:     "malformed YAML",
			Details:     err.Error(),
			Suggestions: []string{"Check indentation and quoting of template expressions such as '{{ env \"TOKEN\" }}'"},
		}
	}
	applyDefaults(&cfg)

	for name, profile := range cfg.Profiles {
		enabled := profile.Servers.Enabled()
		if len(profile.Servers) > 0 && len(enabled) == 0 {
			logging.Info("Config", "Profile %s has no enabled servers, skipping", name)
			delete(cfg.Profiles, name)
			continue
		}

		servers, err := RenderServerSet(enabled)
		if err != nil {
			return Config{}, ConfigurationError{
				ErrorType: "template",
				Message:   fmt.Sprintf("profile %s", name),
				Details:   err.Error(),
			}
		}
		profile.Servers = servers
		cfg.Profiles[name] = profile
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, ConfigurationError{
			ErrorType: "validation",
			Message:   err.Error(),
		}
	}

	return cfg, nil
}
