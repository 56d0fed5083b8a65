package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model_dir: /srv/models\nlog_level: debug\n"), 0o644))

	cfg, err := load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "/srv/models", cfg.ModelDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.ModelURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model_dir: /srv/models\n"), 0o644))

	cfg, err := load("", env(map[string]string{
		EnvConfig:   path,
		EnvModelDir: "/tmp/models",
		EnvModelURL: "https://example.org/{name}.tcnn",
		EnvLogLevel: "warn",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/models", cfg.ModelDir)
	assert.Equal(t, "https://example.org/{name}.tcnn", cfg.ModelURL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := load(missing, env(nil))
	assert.Error(t, err)

	_, err = load("", env(map[string]string{EnvConfig: missing}))
	assert.Error(t, err)
}

func TestLoadEmptyAndUnknown(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	cfg, err := load(empty, env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("model_path: x\n"), 0o644))
	_, err = load(unknown, env(nil))
	assert.Error(t, err)
}
