package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"composer/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/composer"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the default configuration directory
// (~/.config/composer). It panics if the user's home directory cannot be
// determined, which only happens in broken environments.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from a single specified directory.
// The directory should contain config.yaml; missing files fall back to
// defaults, malformed files are an error.
func LoadConfig(configPath string) (ComposerConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return cfg, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return ComposerConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ComposerConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	applyDefaults(&cfg)

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return cfg, nil
}

// applyDefaults fills zero-valued fields so a sparse config.yaml does not
// disable the controller's safety nets.
func applyDefaults(cfg *ComposerConfig) {
	if cfg.Controller.WorkerCount == 0 {
		cfg.Controller.WorkerCount = DefaultWorkerCount
	}
	if cfg.Controller.ResyncInterval == 0 {
		cfg.Controller.ResyncInterval = DefaultResyncInterval
	}
	if cfg.Controller.ErrorBackoff == 0 {
		cfg.Controller.ErrorBackoff = DefaultErrorBackoff
	}
	if cfg.Controller.MaxBackoff == 0 {
		cfg.Controller.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Controller.ReconcileTimeout == 0 {
		cfg.Controller.ReconcileTimeout = DefaultReconcileTimeout
	}
	if cfg.Registry.Host == "" {
		cfg.Registry.Host = DefaultRegistryHost
	}
	if cfg.Registry.Project == "" {
		cfg.Registry.Project = DefaultRegistryProject
	}
}
