package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Redirects  RedirectConfig   `mapstructure:"redirects"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Usage      UsageConfig      `mapstructure:"usage_tracking"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

// ServerConfig defines the API and metrics listeners used by `kdict serve`
type ServerConfig struct {
	BindAddress     string   `mapstructure:"bind_address"`
	APIPort         int      `mapstructure:"api_port"`
	MetricsPort     int      `mapstructure:"metrics_port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimit       int      `mapstructure:"rate_limit"`
	RateLimitWindow string   `mapstructure:"rate_limit_window"`
}

// DictionaryConfig defines the upstream dictionary API client
type DictionaryConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   string `mapstructure:"timeout"`
	CacheSize int    `mapstructure:"cache_size"`
}

// RedirectConfig defines the external tools a query can be handed off to
type RedirectConfig struct {
	TranslateURL     string `mapstructure:"translate_url"`
	SourceLanguage   string `mapstructure:"source_language"`
	TargetLanguage   string `mapstructure:"target_language"`
	PronunciationURL string `mapstructure:"pronunciation_url"`
	Accent           string `mapstructure:"accent"`
	ImageSearchURL   string `mapstructure:"image_search_url"`
	VideoURL         string `mapstructure:"video_url"`
	OpenBrowser      bool   `mapstructure:"open_browser"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines the remote per-user store
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UsageConfig defines usage tracking settings
type UsageConfig struct {
	TopWords      int    `mapstructure:"top_words"`
	SeriesDays    int    `mapstructure:"series_days"`
	Timezone      string `mapstructure:"timezone"`
	RemoteTimeout string `mapstructure:"remote_timeout"`
}

// AuthConfig defines account and token settings
type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	TokenExpiration   string `mapstructure:"token_expiration"`
	MinPasswordLength int    `mapstructure:"min_password_length"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	SetDefaults(v)

	// Configure viper
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	v.SetEnvPrefix("KDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found, use defaults and environment variables
		}
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns a configuration holding only default values
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind_address", "127.0.0.1")
	v.SetDefault("server.api_port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.rate_limit_window", "1m")

	// Dictionary defaults
	v.SetDefault("dictionary.base_url", "https://api.dictionaryapi.dev/api/v2/entries/en")
	v.SetDefault("dictionary.timeout", "10s")
	v.SetDefault("dictionary.cache_size", 512)

	// Redirect defaults
	v.SetDefault("redirects.translate_url", "https://translate.google.com/")
	v.SetDefault("redirects.source_language", "zh-CN")
	v.SetDefault("redirects.target_language", "en")
	v.SetDefault("redirects.pronunciation_url", "https://dict.youdao.com/dictvoice")
	v.SetDefault("redirects.accent", "us")
	v.SetDefault("redirects.image_search_url", "https://www.google.com/search")
	v.SetDefault("redirects.video_url", "https://youglish.com/pronounce")
	v.SetDefault("redirects.open_browser", true)

	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "~/.local/share/kdict/kdict.bolt")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Usage tracking defaults
	v.SetDefault("usage_tracking.top_words", 15)
	v.SetDefault("usage_tracking.series_days", 10)
	v.SetDefault("usage_tracking.timezone", "Local")
	v.SetDefault("usage_tracking.remote_timeout", "5s")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_expiration", "24h")
	v.SetDefault("auth.min_password_length", 6)
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.APIPort <= 0 || cfg.Server.APIPort > 65535 {
		return fmt.Errorf("invalid API port: %d", cfg.Server.APIPort)
	}
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	if _, err := url.ParseRequestURI(cfg.Dictionary.BaseURL); err != nil {
		return fmt.Errorf("invalid dictionary base_url: %w", err)
	}

	for name, value := range map[string]string{
		"dictionary.timeout":            cfg.Dictionary.Timeout,
		"usage_tracking.remote_timeout": cfg.Usage.RemoteTimeout,
		"auth.token_expiration":         cfg.Auth.TokenExpiration,
		"server.rate_limit_window":      cfg.Server.RateLimitWindow,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	switch cfg.Redirects.Accent {
	case "us", "uk":
	default:
		return fmt.Errorf("invalid redirects.accent: %s (must be us or uk)", cfg.Redirects.Accent)
	}

	if _, err := time.LoadLocation(cfg.Usage.Timezone); err != nil {
		return fmt.Errorf("invalid usage_tracking.timezone: %w", err)
	}
	if cfg.Usage.TopWords <= 0 {
		return fmt.Errorf("usage_tracking.top_words must be positive")
	}
	if cfg.Usage.SeriesDays <= 0 {
		return fmt.Errorf("usage_tracking.series_days must be positive")
	}

	if cfg.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.min_password_length must be positive")
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "bolt"
	}
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	switch cfg.Storage.Type {
	case "bolt":
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("storage.redis.host is required")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s (must be bolt or redis)", cfg.Storage.Type)
	}

	return nil
}

// Location returns the time zone used to compute calendar dates
func (c UsageConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ParseDuration parses a duration string with a fallback
func ParseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
