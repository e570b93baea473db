// Package config provides configuration management for composer.
//
// Configuration is loaded from a single directory containing config.yaml.
// The default directory is ~/.config/composer; the serve command accepts
// a --config flag to override it. Missing configuration falls back to
// defaults; malformed configuration is an error.
package config
