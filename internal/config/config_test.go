package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabaseDSN:            "user:pass@tcp(localhost:3306)/whaletracker",
		KalshiThresholdUSD:     500,
		PolymarketThresholdUSD: 25000,
		VolumeSpikeMultiplier:  2.5,
		SettlementBatchLimit:   100,
		AlertMode:              "log",
		FetchInterval:          5 * time.Minute,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing DSN",
			mutate:  func(c *Config) { c.DatabaseDSN = "" },
			wantErr: "DATABASE_DSN",
		},
		{
			name:    "zero kalshi threshold",
			mutate:  func(c *Config) { c.KalshiThresholdUSD = 0 },
			wantErr: "thresholds",
		},
		{
			name:    "negative polymarket threshold",
			mutate:  func(c *Config) { c.PolymarketThresholdUSD = -5 },
			wantErr: "thresholds",
		},
		{
			name:    "spike multiplier at or below 1",
			mutate:  func(c *Config) { c.VolumeSpikeMultiplier = 1 },
			wantErr: "VOLUME_SPIKE_MULTIPLIER",
		},
		{
			name:    "zero settlement batch",
			mutate:  func(c *Config) { c.SettlementBatchLimit = 0 },
			wantErr: "SETTLEMENT_BATCH_LIMIT",
		},
		{
			name:    "unknown alert mode",
			mutate:  func(c *Config) { c.AlertMode = "pigeon" },
			wantErr: "ALERT_MODE",
		},
		{
			name:    "discord mode without webhook",
			mutate:  func(c *Config) { c.AlertMode = "discord" },
			wantErr: "DISCORD_WEBHOOK_URL",
		},
		{
			name:    "smtp mode without host",
			mutate:  func(c *Config) { c.AlertMode = "smtp" },
			wantErr: "SMTP_HOST",
		},
		{
			name: "combined modes with prerequisites",
			mutate: func(c *Config) {
				c.AlertMode = "log, discord"
				c.DiscordWebhookURL = "https://discord.com/api/webhooks/x"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestThreshold(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 500.0, cfg.Threshold("kalshi"))
	assert.Equal(t, 25000.0, cfg.Threshold("polymarket"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500.0, cfg.KalshiThresholdUSD)
	assert.Equal(t, 25000.0, cfg.PolymarketThresholdUSD)
	assert.Equal(t, 2.5, cfg.VolumeSpikeMultiplier)
	assert.Equal(t, 5*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 30*time.Minute, cfg.SettlementInterval)
	assert.Equal(t, 100, cfg.SettlementBatchLimit)
	assert.Equal(t, "log", cfg.AlertMode)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("WT_TEST_STR", "hello")
	t.Setenv("WT_TEST_INT", "42")
	t.Setenv("WT_TEST_FLOAT", "2.75")
	t.Setenv("WT_TEST_BAD_INT", "not-a-number")

	assert.Equal(t, "hello", getEnv("WT_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("WT_TEST_MISSING", "fallback"))
	assert.Equal(t, 42, getEnvInt("WT_TEST_INT", 7))
	assert.Equal(t, 7, getEnvInt("WT_TEST_BAD_INT", 7))
	assert.Equal(t, 2.75, getEnvFloat("WT_TEST_FLOAT", 1.0))
	assert.Equal(t, 1.0, getEnvFloat("WT_TEST_MISSING", 1.0))
}
