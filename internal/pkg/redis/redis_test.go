package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name: "missing addr",
			mutate: func(c *Config) {
				c.Addr = ""
			},
			wantErr: "addr is required",
		},
		{
			name: "db out of range",
			mutate: func(c *Config) {
				c.DB = 16
			},
			wantErr: "db must be between 0 and 15",
		},
		{
			name: "negative db",
			mutate: func(c *Config) {
				c.DB = -1
			},
			wantErr: "db must be between 0 and 15",
		},
		{
			name: "zero pool size",
			mutate: func(c *Config) {
				c.PoolSize = 0
			},
			wantErr: "pool_size must be > 0",
		},
		{
			name: "min idle exceeds pool size",
			mutate: func(c *Config) {
				c.MinIdleConns = 20
			},
			wantErr: "min_idle_conns cannot exceed pool_size",
		},
		{
			name: "zero dial timeout",
			mutate: func(c *Config) {
				c.DialTimeout = 0
			},
			wantErr: "dial_timeout must be > 0",
		},
		{
			name: "retry backoff inverted",
			mutate: func(c *Config) {
				c.MinRetryBackoff = time.Second
				c.MaxRetryBackoff = time.Millisecond
			},
			wantErr: "min_retry_backoff cannot exceed max_retry_backoff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestIsNil(t *testing.T) {
	assert.True(t, IsNil(ErrNil))
	assert.False(t, IsNil(ErrClosed))
	assert.False(t, IsNil(nil))
}
