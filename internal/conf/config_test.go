package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "release", config.Server.Mode)
	assert.Equal(t, "info", config.Log.Level)
	assert.False(t, config.Redis.Enabled)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, "google", config.Provider.ID)
	assert.Equal(t, "https://trends.google.com", config.Provider.APIHost)
	assert.Equal(t, "en-US", config.Provider.HL)
	assert.Equal(t, 330, config.Provider.TZ)
	assert.Equal(t, time.Hour, config.Cache.TTL)
	assert.True(t, config.RateLimit.Enabled)
	assert.Equal(t, 30, config.RateLimit.MaxRequests)
}

func TestLoadConfig_FromFile(t *testing.T) {
	content := `
server:
  host: 127.0.0.1
  port: 9000
  mode: debug
redis:
  enabled: true
  addr: redis:6379
provider:
  id: google
  hl: en-GB
  tz: 0
cache:
  ttl: 30m
rate_limit:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "debug", config.Server.Mode)
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, "en-GB", config.Provider.HL)
	assert.Equal(t, 0, config.Provider.TZ)
	assert.Equal(t, 30*time.Minute, config.Cache.TTL)
	assert.False(t, config.RateLimit.Enabled)

	// untouched keys keep their defaults
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 3, config.Provider.MaxRetries)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("TRENDPULSE_SERVER_PORT", "9090")
	t.Setenv("TRENDPULSE_PROVIDER_HL", "de-DE")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "de-DE", config.Provider.HL)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		config, err := LoadConfig("")
		require.NoError(t, err)
		return config
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Server.Mode = "production" },
			wantErr: "invalid server mode",
		},
		{
			name:    "relay without api key",
			mutate:  func(c *Config) { c.Provider.ID = "relay" },
			wantErr: "invalid provider config",
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Cache.TTL = -time.Minute },
			wantErr: "cache ttl",
		},
		{
			name:    "rate limit without budget",
			mutate:  func(c *Config) { c.RateLimit.MaxRequests = 0 },
			wantErr: "max_requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderConfig_ToProviderConfig(t *testing.T) {
	p := &ProviderConfig{
		ID:         "relay",
		Name:       "Trend Relay",
		APIHost:    "https://relay.example.com",
		APIKey:     "relay-key",
		HL:         "en-US",
		TZ:         330,
		Timeout:    15,
		MaxRetries: 2,
	}

	got := p.ToProviderConfig()
	assert.Equal(t, types.ProviderRelay, got.ID)
	assert.Equal(t, "Trend Relay", got.Name)
	assert.Equal(t, "https://relay.example.com", got.APIHost)
	assert.Equal(t, "relay-key", got.APIKey)
	assert.Equal(t, 15, got.Timeout)
	assert.Equal(t, 2, got.MaxRetries)
	assert.NoError(t, got.Validate())
}
