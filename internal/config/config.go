package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	ListenAddr     string `mapstructure:"listen_addr"`
	FeedsFile      string `mapstructure:"feeds_file"`
	PublishersFile string `mapstructure:"publishers_file"`
	UserAgent      string `mapstructure:"user_agent"`

	CacheTTLSeconds   int64         `mapstructure:"cache_ttl_seconds"`
	CacheTTL          time.Duration `mapstructure:"-"`
	CacheSingleFlight bool          `mapstructure:"cache_single_flight"`

	CategoryLimit int `mapstructure:"category_limit"`
	GroupLimit    int `mapstructure:"group_limit"`

	FetchWorkers        int           `mapstructure:"fetch_workers"`
	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`
}

// DefaultUserAgent is sent with every feed request unless overridden.
const DefaultUserAgent = "samvad-news-aggregator/1.0 (+https://github.com/samvad-hq)"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	_ = cfg.finalize()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-news-aggregator")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("feeds_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("cache_ttl_seconds", int64((5*time.Minute)/time.Second))
	v.SetDefault("cache_single_flight", false)
	v.SetDefault("category_limit", 100)
	v.SetDefault("group_limit", 150)
	v.SetDefault("fetch_workers", 8)
	v.SetDefault("fetch_timeout_seconds", 15)
}

func (cfg *Config) finalize() error {
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.FeedsFile = strings.TrimSpace(cfg.FeedsFile)
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)

	if cfg.ListenAddr == "" {
		return fmt.Errorf("invalid listen_addr (must not be empty)")
	}
	if cfg.CacheTTLSeconds <= 0 {
		return fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	if cfg.FetchWorkers <= 0 {
		return fmt.Errorf("invalid fetch_workers (must be positive)")
	}
	if cfg.CategoryLimit <= 0 {
		return fmt.Errorf("invalid category_limit (must be positive)")
	}
	if cfg.GroupLimit <= 0 {
		return fmt.Errorf("invalid group_limit (must be positive)")
	}

	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	return nil
}
