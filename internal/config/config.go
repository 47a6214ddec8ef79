package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sitepages/internal/collection"
	"sitepages/internal/domain"
)

// Config is the sitepages configuration file.
type Config struct {
	Server      ServerConfig                  `yaml:"server"`
	Storage     StorageConfig                 `yaml:"storage"`
	Log         LogConfig                     `yaml:"log"`
	Render      RenderConfig                  `yaml:"render"`
	Cache       CacheConfig                   `yaml:"cache"`
	Editor      EditorConfig                  `yaml:"editor"`
	Warmup      WarmupConfig                  `yaml:"warmup"`
	Pages       map[string]domain.SEODefaults `yaml:"pages"`
	Collections map[string]collection.Config  `yaml:"collections"`
}

type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	Lang         string  `yaml:"lang"`
	ReadTimeout  string  `yaml:"read_timeout"`
	WriteTimeout string  `yaml:"write_timeout"`
	RateLimit    float64 `yaml:"rate_limit"` // page views per second, 0 disables
	RateBurst    int     `yaml:"rate_burst"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

type RenderConfig struct {
	BlockTimeout string `yaml:"block_timeout"`
}

type CacheConfig struct {
	TTL             string `yaml:"ttl"`
	CleanupInterval string `yaml:"cleanup_interval"`
	FetchTimeout    string `yaml:"fetch_timeout"`
}

type EditorConfig struct {
	SessionTTL    string `yaml:"session_ttl"`
	SweepSchedule string `yaml:"sweep_schedule"`
}

type WarmupConfig struct {
	Schedule string   `yaml:"schedule"` // cron spec; empty disables warm-up
	Entities []string `yaml:"entities"` // empty means every bound entity
}

// DefaultPages are the SEO fallbacks for the built-in page keys.
func DefaultPages() map[string]domain.SEODefaults {
	return map[string]domain.SEODefaults{
		"home_page": {
			Title:       "Home",
			Description: "Products, services and the latest news.",
		},
		"about_page": {
			Title:       "About us",
			Description: "Who we are, our history and our team.",
		},
		"suppliers_page": {
			Title:       "For suppliers",
			Description: "How to become a supplier and what we look for.",
		},
		"contacts_page": {
			Title:       "Contacts",
			Description: "Addresses, phone numbers and how to reach us.",
		},
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Pages: DefaultPages()}
}

// Load reads the YAML file at path on top of the defaults.
// A missing file yields the defaults. Environment overrides apply last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	for key, def := range DefaultPages() {
		if _, ok := cfg.Pages[key]; !ok {
			if cfg.Pages == nil {
				cfg.Pages = map[string]domain.SEODefaults{}
			}
			cfg.Pages[key] = def
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = env("SITEPAGES_ADDR", c.Server.Addr)
	c.Storage.Path = env("SITEPAGES_DB", c.Storage.Path)
	c.Log.Level = env("SITEPAGES_LOG_LEVEL", c.Log.Level)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GetAddr returns the listen address (default ":8080").
func (c *Config) GetAddr() string {
	if c.Server.Addr == "" {
		return ":8080"
	}
	return c.Server.Addr
}

// GetLang returns the html lang attribute (default "en").
func (c *Config) GetLang() string {
	if c.Server.Lang == "" {
		return "en"
	}
	return c.Server.Lang
}

// GetReadTimeout returns the HTTP read timeout (default 15s).
func (c *Config) GetReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout (default 30s).
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 30*time.Second)
}

// GetRateLimit returns page views per second and burst (default 20/40).
func (c *Config) GetRateLimit() (float64, int) {
	rps := c.Server.RateLimit
	if rps <= 0 {
		rps = 20
	}
	burst := c.Server.RateBurst
	if burst <= 0 {
		burst = int(rps * 2)
	}
	return rps, burst
}

// GetDBPath returns the SQLite file path (default "data/sitepages.db").
func (c *Config) GetDBPath() string {
	if c.Storage.Path == "" {
		return "data/sitepages.db"
	}
	return c.Storage.Path
}

// GetBlockTimeout bounds one dynamic block render (default 5s).
func (c *Config) GetBlockTimeout() time.Duration {
	return duration(c.Render.BlockTimeout, 5*time.Second)
}

// GetCacheTTL returns how long collection queries are cached (default 1m).
func (c *Config) GetCacheTTL() time.Duration {
	return duration(c.Cache.TTL, time.Minute)
}

// GetCacheCleanupInterval returns the expired-entry sweep period (default 1m).
func (c *Config) GetCacheCleanupInterval() time.Duration {
	return duration(c.Cache.CleanupInterval, time.Minute)
}

// GetFetchTimeout bounds one upstream collection query (default 10s).
func (c *Config) GetFetchTimeout() time.Duration {
	return duration(c.Cache.FetchTimeout, 10*time.Second)
}

// GetSessionTTL returns the idle lifetime of an editor session (default 2h).
func (c *Config) GetSessionTTL() time.Duration {
	return duration(c.Editor.SessionTTL, 2*time.Hour)
}

// GetSweepSchedule returns the cron spec for the idle-session sweep.
func (c *Config) GetSweepSchedule() string {
	if c.Editor.SweepSchedule == "" {
		return "@every 10m"
	}
	return c.Editor.SweepSchedule
}

// GetWarmSchedule returns the cron spec for cache warm-up, empty if disabled.
func (c *Config) GetWarmSchedule() string {
	return c.Warmup.Schedule
}
