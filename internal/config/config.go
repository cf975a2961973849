package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the marksheet client.
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	DBPath          string `yaml:"db_path"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	UploadTimeoutMs int    `yaml:"upload_timeout_ms"`
	LogCalls        bool   `yaml:"log_calls"`
	OutputDir       string `yaml:"output_dir"`
	Parallel        int    `yaml:"parallel"`
}

// Default returns a Config pointing at a local development server.
// DBPath is left empty and resolved against the home directory by Load.
func Default() Config {
	return Config{
		Endpoint:        "http://localhost:5000",
		TimeoutMs:       10000,
		UploadTimeoutMs: 120000,
		LogCalls:        false,
		OutputDir:       ".",
		Parallel:        2,
	}
}

// Timeout is the per-request timeout for non-upload calls.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// UploadTimeout bounds a single marksheet upload, including server processing.
func (c Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutMs) * time.Millisecond
}

// Load builds the effective configuration: defaults, then the YAML file (if
// present), then MARKSHEET_* environment variables.
func Load() (Config, error) {
	path, err := filePath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".marksheet", "marksheet.db")
	}
	return cfg, nil
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = Default().TimeoutMs
	}
	if cfg.UploadTimeoutMs <= 0 {
		cfg.UploadTimeoutMs = Default().UploadTimeoutMs
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = Default().Parallel
	}
	return cfg, nil
}

func filePath() (string, error) {
	if v := os.Getenv("MARKSHEET_CONFIG"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".marksheet", "config.yaml"), nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MARKSHEET_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("MARKSHEET_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MARKSHEET_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("MARKSHEET_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	applyPositiveInt(&cfg.TimeoutMs, "MARKSHEET_TIMEOUT_MS")
	applyPositiveInt(&cfg.UploadTimeoutMs, "MARKSHEET_UPLOAD_TIMEOUT_MS")
	applyPositiveInt(&cfg.Parallel, "MARKSHEET_PARALLEL")
}

func applyPositiveInt(dst *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}
