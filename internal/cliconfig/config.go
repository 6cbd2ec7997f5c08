// Package cliconfig loads cmd/tusclient's configuration: environment
// variables take precedence over a YAML file, which takes precedence over
// built-in defaults, the same three-tier precedence the rest of this
// corpus's CLIs use for their own config loading.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/tusclient/go-tus/tus"
)

// Config is the subset of tus.Config a CLI user can reasonably set from a
// file or the environment, plus the transport tuning knobs.
type Config struct {
	BaseURL        string        `yaml:"baseUrl"`
	APIPath        string        `yaml:"apiPath"`
	Algorithm      string        `yaml:"algorithm"`
	ChunkSize      int64         `yaml:"chunkSize"`
	MaxRetries     int           `yaml:"maxRetries"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DefaultConfig mirrors tus.DefaultConfig's values for the fields the CLI
// exposes, and adds an APIPath of "/files", which tus.DefaultConfig leaves
// empty.
var DefaultConfig = Config{
	APIPath:        "/files",
	Algorithm:      tus.DefaultAlgorithm,
	ChunkSize:      8 * 1024 * 1024,
	MaxRetries:     3,
	RequestTimeout: 30 * time.Second,
}

// Load resolves configuration from, in increasing precedence: built-in
// defaults, a YAML file, then environment variables. It returns the
// resolved config and a human-readable description of where the file (if
// any) came from.
func Load() (*Config, string, error) {
	cfg := DefaultConfig

	source, err := loadFromFile(&cfg)
	if err != nil {
		return nil, "", fmt.Errorf("load config file: %w", err)
	}

	loadFromEnv(&cfg)

	if cfg.BaseURL == "" {
		return nil, "", fmt.Errorf("no base URL configured: set TUSCLIENT_BASE_URL or baseUrl in the config file")
	}

	return &cfg, source, nil
}

func loadFromFile(cfg *Config) (string, error) {
	candidates := []string{
		os.Getenv("TUSCLIENT_CONFIG_PATH"),
		"./tusclient.yaml",
		"./.tusclient.yaml",
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return path, nil
	}

	return "built-in defaults (no config file found)", nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TUSCLIENT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TUSCLIENT_API_PATH"); v != "" {
		cfg.APIPath = v
	}
	if v := os.Getenv("TUSCLIENT_ALGORITHM"); v != "" {
		cfg.Algorithm = v
	}
	if v := os.Getenv("TUSCLIENT_CHUNK_SIZE"); v != "" {
		if n, err := units.RAMInBytes(v); err == nil {
			cfg.ChunkSize = n
		}
	}
	if v := os.Getenv("TUSCLIENT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("TUSCLIENT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}

// ToTusConfig renders the CLI config as a tus.Config, ready for
// tus.NewClient.
func (c Config) ToTusConfig() tus.Config {
	return tus.Config{
		BaseURL:        c.BaseURL,
		APIPath:        c.APIPath,
		Algorithm:      c.Algorithm,
		ChunkSize:      c.ChunkSize,
		MaxRetries:     c.MaxRetries,
		RequestTimeout: c.RequestTimeout,
	}
}
