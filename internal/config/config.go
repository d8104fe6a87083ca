package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"whaletracker/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseDSN         string
	DatabaseMaxConns    int
	DatabaseMaxIdleTime time.Duration

	// Venue APIs
	KalshiAPIBase      string
	PolymarketGammaAPI string
	PolymarketDataAPI  string

	// Detection thresholds
	KalshiThresholdUSD     float64
	PolymarketThresholdUSD float64
	VolumeSpikeMultiplier  float64

	// Fetch limits per cycle
	KalshiMaxTrades       int
	KalshiMaxMarkets      int
	PolymarketTradeLimit  int
	PolymarketMarketLimit int

	// Rate limits (requests per second)
	KalshiRPS float64
	GammaRPS  float64
	DataRPS   float64

	// Inter-page delay within pagination loops
	PageDelay time.Duration

	// Scheduling
	FetchInterval        time.Duration
	SettlementInterval   time.Duration
	SettlementBatchLimit int

	// Alerts
	AlertMode         string // log, discord, smtp (comma-separated)
	DiscordWebhookURL string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPFrom          string
	SMTPTo            []string

	// HTTP server (read API + health + metrics)
	HTTPPort int
}

// Load reads configuration from the environment, with an optional .env overlay
func Load() (*Config, error) {
	// Missing .env is fine; env vars win either way
	_ = godotenv.Load()

	cfg := &Config{
		Environment:            getEnv("ENVIRONMENT", "production"),
		DatabaseDSN:            secrets.GetOptionalSecret("DATABASE_DSN", "whaletracker:whaletracker@tcp(mysql:3306)/whaletracker?parseTime=true"),
		DatabaseMaxConns:       getEnvInt("DATABASE_MAX_CONNS", 25),
		DatabaseMaxIdleTime:    time.Duration(getEnvInt("DATABASE_MAX_IDLE_TIME_MINS", 5)) * time.Minute,
		KalshiAPIBase:          getEnv("KALSHI_API_BASE", "https://api.elections.kalshi.com/trade-api/v2"),
		PolymarketGammaAPI:     getEnv("POLYMARKET_GAMMA_API", "https://gamma-api.polymarket.com"),
		PolymarketDataAPI:      getEnv("POLYMARKET_DATA_API", "https://data-api.polymarket.com"),
		KalshiThresholdUSD:     getEnvFloat("KALSHI_THRESHOLD", 500),
		PolymarketThresholdUSD: getEnvFloat("POLYMARKET_THRESHOLD", 25000),
		VolumeSpikeMultiplier:  getEnvFloat("VOLUME_SPIKE_MULTIPLIER", 2.5),
		KalshiMaxTrades:        getEnvInt("KALSHI_MAX_TRADES", 2000),
		KalshiMaxMarkets:       getEnvInt("KALSHI_MAX_MARKETS", 500),
		PolymarketTradeLimit:   getEnvInt("POLYMARKET_TRADE_LIMIT", 500),
		PolymarketMarketLimit:  getEnvInt("POLYMARKET_MARKET_LIMIT", 30),
		KalshiRPS:              getEnvFloat("KALSHI_RPS", 5.0),
		GammaRPS:               getEnvFloat("GAMMA_RPS", 5.0),
		DataRPS:                getEnvFloat("DATA_RPS", 2.0),
		PageDelay:              time.Duration(getEnvInt("PAGE_DELAY_MS", 100)) * time.Millisecond,
		FetchInterval:          time.Duration(getEnvInt("FETCH_INTERVAL_MINUTES", 5)) * time.Minute,
		SettlementInterval:     time.Duration(getEnvInt("SETTLEMENT_INTERVAL_MINUTES", 30)) * time.Minute,
		SettlementBatchLimit:   getEnvInt("SETTLEMENT_BATCH_LIMIT", 100),
		AlertMode:              getEnv("ALERT_MODE", "log"),
		DiscordWebhookURL:      secrets.GetOptionalSecret("DISCORD_WEBHOOK_URL", ""),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           secrets.GetOptionalSecret("SMTP_PASSWORD", ""),
		SMTPFrom:               getEnv("SMTP_FROM", "whaletracker@example.com"),
		HTTPPort:               getEnvInt("HTTP_PORT", 8080),
	}

	if smtpTo := getEnv("SMTP_TO", ""); smtpTo != "" {
		for _, addr := range strings.Split(smtpTo, ",") {
			if trimmed := strings.TrimSpace(addr); trimmed != "" {
				cfg.SMTPTo = append(cfg.SMTPTo, trimmed)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Threshold returns the whale threshold for a platform
func (c *Config) Threshold(platform string) float64 {
	if platform == "kalshi" {
		return c.KalshiThresholdUSD
	}
	return c.PolymarketThresholdUSD
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.KalshiThresholdUSD <= 0 || c.PolymarketThresholdUSD <= 0 {
		return fmt.Errorf("whale thresholds must be positive")
	}
	if c.VolumeSpikeMultiplier <= 1 {
		return fmt.Errorf("VOLUME_SPIKE_MULTIPLIER must be greater than 1")
	}
	if c.SettlementBatchLimit <= 0 {
		return fmt.Errorf("SETTLEMENT_BATCH_LIMIT must be positive")
	}

	hasDiscord := false
	hasSMTP := false
	for _, mode := range strings.Split(c.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log":
		case "discord":
			hasDiscord = true
		case "smtp":
			hasSMTP = true
		default:
			return fmt.Errorf("invalid ALERT_MODE value: %s (valid values: log, discord, smtp)", mode)
		}
	}
	if hasDiscord && c.DiscordWebhookURL == "" {
		return fmt.Errorf("DISCORD_WEBHOOK_URL is required when discord is in ALERT_MODE")
	}
	if hasSMTP && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when smtp is in ALERT_MODE")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
