package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Network  NetworkConfig  `yaml:"network"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
}

type BotConfig struct {
	Token string `yaml:"token" validate:"required"`
}

type DatabaseConfig struct {
	Path      string        `yaml:"path" validate:"required"`
	CacheSize int           `yaml:"cache_size" validate:"min=1"`
	CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gt=0"`
}

type EngineConfig struct {
	// ActionTimeout bounds every punishment, revert and delete call.
	ActionTimeout  time.Duration `yaml:"action_timeout" validate:"gt=0"`
	PunishCooldown time.Duration `yaml:"punish_cooldown" validate:"min=0"`
	AuditCacheSize int           `yaml:"audit_cache_size" validate:"min=1"`
	AuditCacheTTL  time.Duration `yaml:"audit_cache_ttl" validate:"gt=0"`
	TrackerSweep   time.Duration `yaml:"tracker_sweep" validate:"gt=0"`
	// AuditMaxAge is how old an audit entry may be to still explain an event.
	AuditMaxAge time.Duration `yaml:"audit_max_age" validate:"min=0"`
}

type NetworkConfig struct {
	HTTPPoolSize int    `yaml:"http_pool_size" validate:"min=1,max=64"`
	APIBaseURL   string `yaml:"api_base_url" validate:"required,url"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error critical"`
	File  string `yaml:"file"`
}

type WatchdogConfig struct {
	Interval       time.Duration `yaml:"interval" validate:"gt=0"`
	HeartbeatStale time.Duration `yaml:"heartbeat_stale" validate:"gt=0"`
	MaxRSSMB       uint64        `yaml:"max_rss_mb"`
}

var validate = validator.New()

// Load decodes path over DefaultConfig, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if listen := os.Getenv("METRICS_LISTEN"); listen != "" {
		cfg.Metrics.Listen = listen
		cfg.Metrics.Enabled = true
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "globex.db",
			CacheSize: 1024,
			CacheTTL:  30 * time.Second,
		},
		Engine: EngineConfig{
			ActionTimeout:  5 * time.Second,
			PunishCooldown: 3 * time.Second,
			AuditCacheSize: 512,
			AuditCacheTTL:  5 * time.Second,
			AuditMaxAge:    10 * time.Second,
			TrackerSweep:   time.Minute,
		},
		Network: NetworkConfig{
			HTTPPoolSize: 8,
			APIBaseURL:   "https://discord.com/api/v10",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9100",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "logs/globex.log",
		},
		Watchdog: WatchdogConfig{
			Interval:       15 * time.Second,
			HeartbeatStale: 2 * time.Minute,
			MaxRSSMB:       512,
		},
	}
}
