package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Cache.TTLDays != 30 {
		t.Errorf("expected 30 day TTL, got %d", cfg.Cache.TTLDays)
	}
	if cfg.Resolver.DelayMS != 500 {
		t.Errorf("expected 500ms delay, got %d", cfg.Resolver.DelayMS)
	}
	if cfg.Resolver.MaxBatch != 50 {
		t.Errorf("expected batch cap 50, got %d", cfg.Resolver.MaxBatch)
	}
	if cfg.Providers.MusicBrainzIntervalMS != 1100 {
		t.Errorf("expected 1100ms interval, got %d", cfg.Providers.MusicBrainzIntervalMS)
	}
	if cfg.CacheTTL() != 30*24*time.Hour {
		t.Errorf("unexpected CacheTTL: %v", cfg.CacheTTL())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
  base_path: /soundmap/
cache:
  redis_addr: localhost:6379
  ttl_days: 7
resolver:
  delay_ms: 100
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "/soundmap" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Server.BasePath)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr: %q", cfg.Cache.RedisAddr)
	}
	if cfg.Cache.TTLDays != 7 {
		t.Errorf("expected 7 day TTL, got %d", cfg.Cache.TTLDays)
	}
	// Unset keys keep their defaults.
	if cfg.Providers.MusicBrainzIntervalMS != 1100 {
		t.Errorf("expected default interval, got %d", cfg.Providers.MusicBrainzIntervalMS)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SM_PORT", "8888")
	t.Setenv("SM_LOG_LEVEL", "debug")
	t.Setenv("SM_DB_PATH", "")
	t.Setenv("SM_RESOLVE_DELAY_MS", "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("expected env port 8888, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Cache.SQLitePath != "" {
		t.Errorf("expected SM_DB_PATH= to clear sqlite path, got %q", cfg.Cache.SQLitePath)
	}
	if cfg.Resolver.DelayMS != 0 {
		t.Errorf("expected zero delay, got %d", cfg.Resolver.DelayMS)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SM_PORT", "70000")
	if _, err := Load(""); err == nil {
		t.Error("expected error for out-of-range port")
	}

	t.Setenv("SM_PORT", "8080")
	t.Setenv("SM_MB_INTERVAL_MS", "100")
	if _, err := Load(""); err == nil {
		t.Error("expected error for sub-second musicbrainz interval")
	}
}
