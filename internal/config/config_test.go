package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":8343" {
		t.Fatalf("address = %q", cfg.Server.Address)
	}
	if cfg.Server.GracefulTimeout != 10*time.Second {
		t.Fatalf("graceful timeout = %v", cfg.Server.GracefulTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.JSON {
		t.Fatalf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.History.Enabled || cfg.History.CacheTTL != 5*time.Minute {
		t.Fatalf("history defaults = %+v", cfg.History)
	}
}

func TestLoadFromYAML(t *testing.T) {
	doc := `
server:
  address: ":9000"
logging:
  level: debug
  json: true
catalogs:
  path: /etc/wvtriage/catalog.yaml
  watch: true
history:
  enabled: true
  cacheTTL: 90s
analysis:
  hostApp: contoso_shell
  maxLines: 500000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Fatalf("address = %q", cfg.Server.Address)
	}
	// Unset fields keep their defaults.
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("metrics address = %q", cfg.Server.MetricsAddress)
	}
	if !cfg.Logging.JSON || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if !cfg.Catalogs.Watch || cfg.Catalogs.Path != "/etc/wvtriage/catalog.yaml" {
		t.Fatalf("catalogs = %+v", cfg.Catalogs)
	}
	if !cfg.History.Enabled || cfg.History.CacheTTL != 90*time.Second {
		t.Fatalf("history = %+v", cfg.History)
	}
	if cfg.Analysis.HostApp != "contoso_shell" || cfg.Analysis.MaxLines != 500000 {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("explicit missing config must error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WVTRIAGE_SERVER_ADDRESS", ":7777")
	t.Setenv("WVTRIAGE_LOG_LEVEL", "warn")
	t.Setenv("WVTRIAGE_LOG_FORMAT", "json")
	t.Setenv("WVTRIAGE_HISTORY_ENABLED", "1")
	t.Setenv("WVTRIAGE_HISTORY_CACHE_TTL", "30s")
	t.Setenv("WVTRIAGE_MAX_LINES", "1000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":7777" {
		t.Fatalf("address = %q", cfg.Server.Address)
	}
	if cfg.Logging.Level != "warn" || !cfg.Logging.JSON {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if !cfg.History.Enabled || cfg.History.CacheTTL != 30*time.Second {
		t.Fatalf("history = %+v", cfg.History)
	}
	if cfg.Analysis.MaxLines != 1000 {
		t.Fatalf("max lines = %d", cfg.Analysis.MaxLines)
	}
}

func TestConfigEnvFallbackPath(t *testing.T) {
	doc := "server:\n  address: \":6000\"\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("WVTRIAGE_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":6000" {
		t.Fatalf("address = %q", cfg.Server.Address)
	}
}
