package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkerCount, cfg.Controller.WorkerCount)
	assert.Equal(t, DefaultResyncInterval, cfg.Controller.ResyncInterval)
	assert.Equal(t, DefaultErrorBackoff, cfg.Controller.ErrorBackoff)
	assert.Equal(t, DefaultRegistryHost, cfg.Registry.Host)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
controller:
  workerCount: 4
registry:
  host: registry.example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Controller.WorkerCount)
	assert.Equal(t, "registry.example.com", cfg.Registry.Host)
	// Unset fields keep defaults.
	assert.Equal(t, DefaultResyncInterval, cfg.Controller.ResyncInterval)
	assert.Equal(t, DefaultRegistryProject, cfg.Registry.Project)
}

func TestLoadConfig_FullFile(t *testing.T) {
	dir := t.TempDir()
	content := `
controller:
  workerCount: 1
  resyncInterval: 1m
  errorBackoff: 30s
  maxBackoff: 10m
  namespace: composer-system
registry:
  host: harbor.internal
  project: apps
credentials:
  - kind: image
    host: harbor.internal
    username: admin
    password: secret
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Controller.ResyncInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.Controller.ErrorBackoff.Std())
	assert.Equal(t, "composer-system", cfg.Controller.Namespace)
	require.Len(t, cfg.Credentials, 1)
	assert.Equal(t, "image", cfg.Credentials[0].Kind)
	assert.Equal(t, "harbor.internal", cfg.Credentials[0].Host)
}

func TestLoadConfig_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("controller: ["), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
