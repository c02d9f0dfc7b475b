package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"execcheck/internal/logging"
	"execcheck/pkg/core/edgar"
	"execcheck/pkg/core/transcripts"
)

// Config materialises application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     logging.Config    `mapstructure:"logging"`
	SEC         SECConfig         `mapstructure:"sec"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Transcripts TranscriptsConfig `mapstructure:"transcripts"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SECConfig covers EDGAR API access. The SEC requires a descriptive
// User-Agent with a contact address.
type SECConfig struct {
	UserAgent     string  `mapstructure:"user_agent"`
	BaseURL       string  `mapstructure:"base_url"`
	RatePerSecond float64 `mapstructure:"rate_per_sec"`
}

// CacheConfig governs the layered filing cache.
type CacheConfig struct {
	Dir       string        `mapstructure:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// TranscriptsConfig covers the earnings-call transcript API.
type TranscriptsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Load builds configuration from file, environment, and defaults. A .env
// file in the working directory is read first so EXECCHECK_* variables can
// live there during development.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXECCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "execcheck")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("sec.user_agent", edgar.DefaultUserAgent)
	v.SetDefault("sec.base_url", edgar.DefaultBaseURL)
	v.SetDefault("sec.rate_per_sec", float64(edgar.DefaultRequestsPerSecond))

	v.SetDefault("cache.dir", ".execcheck-cache")
	v.SetDefault("cache.memory_ttl", "0s")

	v.SetDefault("transcripts.base_url", transcripts.DefaultBaseURL)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.SEC.UserAgent == "" {
		return fmt.Errorf("sec.user_agent must be set; the SEC rejects anonymous clients")
	}
	if c.SEC.RatePerSecond <= 0 {
		return fmt.Errorf("sec.rate_per_sec must be greater than zero")
	}
	if c.SEC.RatePerSecond > 10 {
		return fmt.Errorf("sec.rate_per_sec must not exceed 10, the SEC fair-access limit")
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir must be set")
	}
	return nil
}
