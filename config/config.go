// Package config loads the settings shared by the tempocnn commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvConfig   = "TEMPOCNN_CONFIG"
	EnvModelDir = "TEMPOCNN_MODEL_DIR"
	EnvModelURL = "TEMPOCNN_MODEL_URL"
	EnvLogLevel = "LOG_LEVEL"
)

// Config holds the model location and logging settings.
type Config struct {
	// ModelDir is searched for <name>.tcnn when a model is given by name.
	ModelDir string `yaml:"model_dir"`
	// ModelURL, if set, is a template like https://host/models/{name}.tcnn
	// used to fetch models missing from ModelDir.
	ModelURL string `yaml:"model_url"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	dir := "models"
	if data, err := userDataDir(); err == nil {
		dir = filepath.Join(data, "tempocnn", "models")
	}
	return Config{ModelDir: dir, LogLevel: "info"}
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tempocnn", "config.yaml")
}

// Load reads the config file at path, falling back to $TEMPOCNN_CONFIG and
// DefaultPath. A missing default file is not an error; a missing explicit
// file is. Environment variables override values from the file.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if path = getenv(EnvConfig); path != "" {
			explicit = true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			dec := yaml.NewDecoder(bytes.NewReader(raw))
			dec.KnownFields(true)
			if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	if v := getenv(EnvModelDir); v != "" {
		cfg.ModelDir = v
	}
	if v := getenv(EnvModelURL); v != "" {
		cfg.ModelURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

func userDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}
