package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.APIURL = "http://localhost:5000"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults with url",
			mutate: func(c *Config) {},
		},
		{
			name:        "future version",
			mutate:      func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr:     true,
			errContains: "from the future",
		},
		{
			name:        "metrics interval too short",
			mutate:      func(c *Config) { c.MetricsInterval = 100 * time.Millisecond },
			wantErr:     true,
			errContains: "metrics_interval",
		},
		{
			name:   "metrics interval at minimum",
			mutate: func(c *Config) { c.MetricsInterval = MinInterval },
		},
		{
			name:        "process interval too short",
			mutate:      func(c *Config) { c.ProcessInterval = 0 },
			wantErr:     true,
			errContains: "process_interval",
		},
		{
			name:        "negative request timeout",
			mutate:      func(c *Config) { c.RequestTimeout = -time.Second },
			wantErr:     true,
			errContains: "request_timeout",
		},
		{
			name:        "zero history",
			mutate:      func(c *Config) { c.HistorySize = 0 },
			wantErr:     true,
			errContains: "history_size",
		},
		{
			name:        "warn above crit",
			mutate:      func(c *Config) { c.Thresholds.CPU = Threshold{Warn: 95, Crit: 85} },
			wantErr:     true,
			errContains: "thresholds.cpu.warn",
		},
		{
			name:        "warn equals crit",
			mutate:      func(c *Config) { c.Thresholds.Disk = Threshold{Warn: 90, Crit: 90} },
			wantErr:     true,
			errContains: "thresholds.disk.warn",
		},
		{
			name:        "crit out of range",
			mutate:      func(c *Config) { c.Thresholds.Memory = Threshold{Warn: 50, Crit: 101} },
			wantErr:     true,
			errContains: "thresholds.memory.crit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestValidateAPIURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:5000", false},
		{"https://metrics.example.com", false},
		{"https://example.com/prefix", false},
		{"", true},
		{"   ", true},
		{"localhost:5000", true},
		{"ftp://example.com", true},
		{"http://", true},
		{"http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateAPIURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
