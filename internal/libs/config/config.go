// Package config provides application configuration from an optional TOML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds application configuration
type Config struct {
	DataDir         string `toml:"data_dir"`
	LogLevel        string `toml:"log_level"`
	APIHost         string `toml:"api_host"`
	APIPort         string `toml:"api_port"`
	StoreBackend    string `toml:"store_backend"`
	DatabaseURL     string `toml:"database_url"`
	StateKey        string `toml:"state_key"`
	ExportDir       string `toml:"export_dir"`
	AutoExportEvery int    `toml:"auto_export_every"`
	ChecklistImport bool   `toml:"import_checklist"`
}

var validBackends = map[string]bool{
	"file":     true,
	"sqlite":   true,
	"postgres": true,
	"memory":   true,
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		DataDir:         filepath.Join(".", "data"),
		LogLevel:        "info",
		APIHost:         "0.0.0.0",
		APIPort:         "8080",
		StoreBackend:    "file",
		StateKey:        "taskQueue.state",
		AutoExportEvery: 5,
	}
}

// Load reads configuration: defaults, then the TOML file named by CONFIG_FILE
// when set, then environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(cfg.DataDir, "exports")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	backend := strings.ToLower(c.StoreBackend)
	if !validBackends[backend] {
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if backend == "postgres" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres backend")
	}
	if c.AutoExportEvery < 0 {
		return fmt.Errorf("AUTO_EXPORT_EVERY must not be negative, got %d", c.AutoExportEvery)
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR must not be empty")
	}
	return nil
}

// LogFile returns the path the TUI writes its logs to
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "taskpop.log")
}

func (c *Config) mergeFile(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.APIHost = getEnv("API_HOST", c.APIHost)
	c.APIPort = getEnv("API_PORT", c.APIPort)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.StateKey = getEnv("STATE_KEY", c.StateKey)
	c.ExportDir = getEnv("EXPORT_DIR", c.ExportDir)

	if v := os.Getenv("AUTO_EXPORT_EVERY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_EXPORT_EVERY %q: %w", v, err)
		}
		c.AutoExportEvery = n
	}
	if v := os.Getenv("IMPORT_CHECKLIST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid IMPORT_CHECKLIST %q: %w", v, err)
		}
		c.ChecklistImport = b
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
