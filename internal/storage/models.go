package storage

import (
	"time"

	"gorm.io/gorm"
)

// Platform identifiers for the two tracked venues.
const (
	PlatformKalshi     = "kalshi"
	PlatformPolymarket = "polymarket"
)

// Trade is a normalized trade record. Rows are immutable once inserted;
// re-ingestion of the same (platform, trade id) is a no-op.
type Trade struct {
	Platform     string  `gorm:"primaryKey;size:16" json:"platform"`
	TradeID      string  `gorm:"primaryKey;size:128" json:"id"`
	MarketID     string  `gorm:"size:128;not null;index" json:"market_id"`
	MarketTitle  string  `gorm:"size:512" json:"market_title"`
	Side         string  `gorm:"size:16;not null" json:"side"`
	Outcome      string  `gorm:"size:255" json:"outcome"`
	Size         float64 `gorm:"type:decimal(20,6);not null" json:"size"`
	Price        float64 `gorm:"type:decimal(10,6);not null" json:"price"`
	USDValue     float64 `gorm:"type:decimal(20,6);not null" json:"usd_value"`
	TimestampSec int64   `gorm:"not null;index" json:"timestamp"`
	IsWhale      bool    `gorm:"not null;default:false;index" json:"is_whale"`
	InsiderScore float64 `gorm:"type:decimal(5,1);not null;default:0" json:"insider_score"`
	Category     string  `gorm:"size:32;not null;index" json:"category"`
	CreatedTS    int64   `gorm:"not null" json:"-"`
}

func (Trade) TableName() string {
	return "trades"
}

// Market is the mutable per-venue market state. Rows are replaced on every
// fetch cycle; Result is written exactly once, at settlement.
type Market struct {
	Platform      string  `gorm:"primaryKey;size:16" json:"platform"`
	MarketID      string  `gorm:"primaryKey;size:128" json:"id"`
	Title         string  `gorm:"size:512" json:"title"`
	Status        string  `gorm:"size:32" json:"status"`
	YesPrice      float64 `gorm:"type:decimal(10,6)" json:"yes_price"`
	NoPrice       float64 `gorm:"type:decimal(10,6)" json:"no_price"`
	Volume24h     float64 `gorm:"type:decimal(20,6);default:0" json:"volume_24h"`
	VolumeAvg     float64 `gorm:"type:decimal(20,6);default:0" json:"volume_avg"`
	OpenInterest  float64 `gorm:"type:decimal(20,6);default:0" json:"open_interest"`
	Result        string  `gorm:"size:255" json:"result"`
	SettlementTS  int64   `gorm:"default:0" json:"settlement_ts"`
	Category      string  `gorm:"size:32;index" json:"category"`
	LastUpdatedTS int64   `gorm:"not null" json:"-"`
}

func (Market) TableName() string {
	return "markets"
}

// Alert is a write-only event log entry.
type Alert struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform  string  `gorm:"size:16;not null;index" json:"platform"`
	AlertType string  `gorm:"size:32;not null;index" json:"alert_type"`
	MarketID  string  `gorm:"size:128" json:"market_id"`
	Title     string  `gorm:"size:512" json:"title"`
	Message   string  `gorm:"size:512;not null" json:"message"`
	TradeSize float64 `gorm:"type:decimal(20,6)" json:"trade_size"`
	Timestamp int64   `gorm:"not null;index" json:"timestamp"`
}

func (Alert) TableName() string {
	return "alerts"
}

// BeforeCreate hooks for timestamps
func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.CreatedTS == 0 {
		t.CreatedTS = time.Now().Unix()
	}
	return nil
}

func (m *Market) BeforeCreate(tx *gorm.DB) error {
	if m.LastUpdatedTS == 0 {
		m.LastUpdatedTS = time.Now().Unix()
	}
	return nil
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.Timestamp == 0 {
		a.Timestamp = time.Now().Unix()
	}
	return nil
}
