package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Providers ProvidersConfig `yaml:"providers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// CacheConfig selects the cache backend. When RedisAddr is set the Redis
// backend is used; otherwise, when SQLitePath is set, the SQLite backend is
// used; with both empty the service runs cache-less and every request fully
// resolves.
type CacheConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	SQLitePath string `yaml:"sqlite_path"`
	TTLDays    int    `yaml:"ttl_days"`
}

// ResolverConfig holds pipeline pacing settings.
type ResolverConfig struct {
	// DelayMS is the pause between successive uncached resolves in a batch,
	// spreading load across the upstream knowledge bases.
	DelayMS int `yaml:"delay_ms"`
	// MaxBatch caps how many artist names a single request may resolve.
	MaxBatch int `yaml:"max_batch"`
}

// ProvidersConfig holds upstream pacing and retry settings.
type ProvidersConfig struct {
	// MusicBrainzIntervalMS is the minimum gap between MusicBrainz requests.
	// The documented limit is one request per second; the default leaves headroom.
	MusicBrainzIntervalMS int `yaml:"musicbrainz_interval_ms"`
	// MaxRetries is how many times a 429/503 response is retried.
	MaxRetries int `yaml:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	FilePath      string `yaml:"file_path"`
	FileMaxSizeMB int    `yaml:"file_max_size_mb"`
	FileMaxFiles  int    `yaml:"file_max_files"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			BasePath: "",
		},
		Cache: CacheConfig{
			SQLitePath: "/data/soundmap.db",
			TTLDays:    30,
		},
		Resolver: ResolverConfig{
			DelayMS:  500,
			MaxBatch: 50,
		},
		Providers: ProvidersConfig{
			MusicBrainzIntervalMS: 1100,
			MaxRetries:            2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from SM_CONFIG_PATH, trusted
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("SM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SM_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("SM_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v, ok := os.LookupEnv("SM_DB_PATH"); ok {
		// Explicitly settable to "" to force cache-less operation.
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv("SM_CACHE_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLDays = n
		}
	}
	if v := os.Getenv("SM_RESOLVE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Resolver.DelayMS = n
		}
	}
	if v := os.Getenv("SM_MB_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Providers.MusicBrainzIntervalMS = n
		}
	}
	if v := os.Getenv("SM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SM_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Cache.TTLDays < 1 {
		return fmt.Errorf("invalid cache TTL: %d days", c.Cache.TTLDays)
	}
	if c.Resolver.MaxBatch < 1 {
		return fmt.Errorf("invalid max batch size: %d", c.Resolver.MaxBatch)
	}
	if c.Providers.MusicBrainzIntervalMS < 1000 {
		// MusicBrainz enforces one request per second per client.
		return fmt.Errorf("musicbrainz interval must be >= 1000ms, got %d", c.Providers.MusicBrainzIntervalMS)
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

// ResolveDelay returns the configured inter-resolve delay as a duration.
func (c *Config) ResolveDelay() time.Duration {
	return time.Duration(c.Resolver.DelayMS) * time.Millisecond
}

// MusicBrainzInterval returns the configured MusicBrainz pacing interval.
func (c *Config) MusicBrainzInterval() time.Duration {
	return time.Duration(c.Providers.MusicBrainzIntervalMS) * time.Millisecond
}
