package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to run the triage engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Catalogs CatalogsConfig `yaml:"catalogs"`
	History  HistoryConfig  `yaml:"history"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig controls the serve-mode HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CatalogsConfig points at an external knowledge-base catalog. Empty
// path means the built-in defaults.
type CatalogsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// HistoryConfig controls sqlite-backed report history in serve mode.
type HistoryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Path     string        `yaml:"path"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// AnalysisConfig carries per-run defaults.
type AnalysisConfig struct {
	HostApp       string `yaml:"hostApp"`
	RuntimeMarker string `yaml:"runtimeMarker"`
	MaxLines      int    `yaml:"maxLines"`
}

// Load initialises Config from a YAML file and optional environment
// overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WVTRIAGE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8343",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Catalogs: CatalogsConfig{
			Path:  "",
			Watch: false,
		},
		History: HistoryConfig{
			Enabled:  false,
			Path:     "wvtriage-history.db",
			CacheTTL: 5 * time.Minute,
		},
		Analysis: AnalysisConfig{
			MaxLines: 0,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WVTRIAGE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("WVTRIAGE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("WVTRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WVTRIAGE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("WVTRIAGE_CATALOG_PATH"); v != "" {
		cfg.Catalogs.Path = v
	}
	if v := os.Getenv("WVTRIAGE_CATALOG_WATCH"); isTrue(v) {
		cfg.Catalogs.Watch = true
	}
	if v := os.Getenv("WVTRIAGE_HISTORY_ENABLED"); v != "" {
		cfg.History.Enabled = isTrue(v)
	}
	if v := os.Getenv("WVTRIAGE_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("WVTRIAGE_HISTORY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.History.CacheTTL = d
		}
	}
	if v := os.Getenv("WVTRIAGE_HOST_APP"); v != "" {
		cfg.Analysis.HostApp = v
	}
	if v := os.Getenv("WVTRIAGE_RUNTIME_MARKER"); v != "" {
		cfg.Analysis.RuntimeMarker = v
	}
	if v := os.Getenv("WVTRIAGE_MAX_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MaxLines = n
		}
	}
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
}
