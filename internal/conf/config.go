package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type ProviderConfig struct {
	ID         string `mapstructure:"id"` // google or relay
	Name       string `mapstructure:"name"`
	APIHost    string `mapstructure:"api_host"`
	APIKey     string `mapstructure:"api_key"`
	HL         string `mapstructure:"hl"`
	TZ         int    `mapstructure:"tz"`
	Timeout    int    `mapstructure:"timeout"` // seconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxRequests   int  `mapstructure:"max_requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// LoadConfig reads configuration from an optional yaml file, then lets
// TRENDPULSE_* environment variables override individual keys. An empty path
// runs on defaults and environment alone.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("TRENDPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file.filename", "logs/trendpulse.log")
	v.SetDefault("log.file.maxsize", 100)
	v.SetDefault("log.file.maxage", 30)
	v.SetDefault("log.file.maxbackups", 10)
	v.SetDefault("log.file.compress", true)
	v.SetDefault("log.enablecaller", true)
	v.SetDefault("log.enablestacktrace", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("provider.id", "google")
	v.SetDefault("provider.name", "Google Trends")
	v.SetDefault("provider.api_host", "https://trends.google.com")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.hl", "en-US")
	v.SetDefault("provider.tz", 330)
	v.SetDefault("provider.timeout", 30)
	v.SetDefault("provider.max_retries", 3)

	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.max_requests", 30)
	v.SetDefault("rate_limit.window_seconds", 60)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %q, must be debug, release or test", c.Server.Mode)
	}

	if err := c.Provider.ToProviderConfig().Validate(); err != nil {
		return fmt.Errorf("invalid provider config: %w", err)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.MaxRequests <= 0 {
			return fmt.Errorf("rate limit max_requests must be greater than 0")
		}
		if c.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate limit window_seconds must be greater than 0")
		}
	}

	return nil
}

// ToProviderConfig maps the provider section onto the trends package config
func (p *ProviderConfig) ToProviderConfig() *types.ProviderConfig {
	return &types.ProviderConfig{
		ID:         types.ProviderID(p.ID),
		Name:       p.Name,
		APIHost:    p.APIHost,
		APIKey:     p.APIKey,
		HL:         p.HL,
		TZ:         p.TZ,
		Timeout:    p.Timeout,
		MaxRetries: p.MaxRetries,
	}
}
