// Package daemon provides the declarative config and the cron-driven
// watcher behind `bundlecheck watch`.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petal-labs/bundlecheck/resolve"
)

const (
	projectConfigName = "bundlecheck.yaml"
	homeConfigDir     = ".bundlecheck"
	homeConfigName    = "config.yaml"

	// DefaultSchedule re-validates every five minutes.
	DefaultSchedule = "*/5 * * * *"
)

// Config is the declarative shape of bundlecheck.yaml.
type Config struct {
	// Catalog is the catalog document path. Required.
	Catalog string `yaml:"catalog"`
	// Artifacts is the artifact tree root. Required.
	Artifacts string `yaml:"artifacts"`
	// Namespace overrides the shared-namespace root artifacts register into.
	Namespace string `yaml:"namespace,omitempty"`
	// Workers bounds the inspection pool.
	Workers int `yaml:"workers,omitempty"`
	// Schedule is a UTC 5-field cron expression; DefaultSchedule when empty.
	Schedule string `yaml:"schedule,omitempty"`
	// HistoryDSN is the SQLite path for run history; empty disables history.
	HistoryDSN string `yaml:"history_dsn,omitempty"`
	// OTLPEndpoint enables trace export to a collector when set.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	// CategoryOverrides and RegistrationOverrides extend the built-in
	// override tables; config entries win on conflict.
	CategoryOverrides     map[string]string `yaml:"category_overrides,omitempty"`
	RegistrationOverrides map[string]string `yaml:"registration_overrides,omitempty"`
}

// Tables merges the built-in override tables with the config's entries.
func (c Config) Tables() resolve.Tables {
	tables := resolve.DefaultTables()
	for id, cat := range c.CategoryOverrides {
		tables.Categories[id] = cat
	}
	for id, name := range c.RegistrationOverrides {
		tables.RegistrationNames[id] = name
	}
	return tables
}

// DiscoverConfigPath resolves the config location with first-match
// semantics: the explicit path, then ./bundlecheck.yaml, then
// ~/.bundlecheck/config.yaml.
func DiscoverConfigPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverConfigPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverConfigPathFrom is a testable variant of DiscoverConfigPath.
func DiscoverConfigPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 3)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// An explicit path that does not exist is an error, not a miss.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// LoadConfig reads and strictly decodes a config file; unknown keys are an
// error so typos surface at startup instead of silently using defaults.
func LoadConfig(path string) (Config, error) {
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}

	if strings.TrimSpace(cfg.Catalog) == "" {
		return Config{}, fmt.Errorf("config %q: catalog is required", path)
	}
	if strings.TrimSpace(cfg.Artifacts) == "" {
		return Config{}, fmt.Errorf("config %q: artifacts is required", path)
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}

	// Relative paths are resolved against the config file's directory.
	baseDir := filepath.Dir(path)
	cfg.Catalog = resolveConfigRelative(baseDir, cfg.Catalog)
	cfg.Artifacts = resolveConfigRelative(baseDir, cfg.Artifacts)
	if cfg.HistoryDSN != "" {
		cfg.HistoryDSN = resolveConfigRelative(baseDir, cfg.HistoryDSN)
	}
	return cfg, nil
}

func resolveConfigRelative(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
