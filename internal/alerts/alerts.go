package alerts

import (
	"context"
	"time"

	"whaletracker/internal/insider"
)

// Alert types mirror the alert_type column in storage
const (
	TypeWhale       = "whale"
	TypeSportsWhale = "sports_whale"
	TypeVolumeSpike = "volume_spike"
)

// AlertPayload contains all information for an alert
type AlertPayload struct {
	Type         string
	Platform     string
	MarketID     string
	MarketTitle  string
	Side         string
	Outcome      string
	Size         float64
	Price        float64
	USDValue     float64
	InsiderScore float64
	ScoreLabel   string
	Breakdown    *insider.Breakdown // nil for non-whale alerts
	Category     string
	Message      string
	Timestamp    time.Time
	Environment  string
}

// Sender defines the interface for alert senders
type Sender interface {
	Send(ctx context.Context, payload *AlertPayload) error
}
