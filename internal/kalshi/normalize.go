package kalshi

import (
	"time"

	"whaletracker/internal/storage"
)

// Missing quoted prices default to the 50c midpoint
const defaultPriceCents = 50

// ParseTrade converts a raw Kalshi trade into the canonical shape. Returns
// nil when the record has no usable trade id; such records are dropped, not
// fatal. The trade price is the bid on the taker's side: yes-price if the
// taker bought yes, no-price otherwise. USD value is count × price / 100
// since Kalshi quotes cents.
func ParseTrade(raw *RawTrade) *storage.Trade {
	if raw.TradeID == "" {
		return nil
	}

	yesPrice := raw.YesPrice
	noPrice := raw.NoPrice
	if yesPrice == 0 && noPrice == 0 {
		yesPrice, noPrice = defaultPriceCents, defaultPriceCents
	}

	takerSide := raw.TakerSide
	if takerSide == "" {
		takerSide = "yes"
	}

	price := yesPrice
	if takerSide != "yes" {
		price = noPrice
	}

	return &storage.Trade{
		Platform:     storage.PlatformKalshi,
		TradeID:      raw.TradeID,
		MarketID:     raw.Ticker,
		Side:         takerSide,
		Outcome:      takerSide,
		Size:         raw.Count,
		Price:        price,
		USDValue:     raw.Count * price / 100,
		TimestampSec: parseTimestamp(raw.CreatedTime),
	}
}

// ParseMarket converts a raw Kalshi market into the canonical shape. Returns
// nil when the ticker is missing.
func ParseMarket(raw *RawMarket) *storage.Market {
	if raw.Ticker == "" {
		return nil
	}

	return &storage.Market{
		Platform:     storage.PlatformKalshi,
		MarketID:     raw.Ticker,
		Title:        raw.Title,
		Status:       normalizeStatus(raw.Status),
		YesPrice:     raw.YesBid,
		NoPrice:      raw.NoBid,
		Volume24h:    raw.Volume24h,
		OpenInterest: raw.OpenInterest,
	}
}

// Settled reports whether a raw market carries a final outcome
func Settled(raw *RawMarket) bool {
	return (raw.Status == "settled" || raw.Status == "finalized") && raw.Result != ""
}

func normalizeStatus(status string) string {
	switch status {
	case "settled", "finalized":
		return "settled"
	case "", "active", "open":
		return "open"
	default:
		return status
	}
}

// parseTimestamp returns 0 on any parse failure; a 0 timestamp is the
// "unknown time" sentinel and sorts as oldest downstream.
func parseTimestamp(createdTime string) int64 {
	if createdTime == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, createdTime)
	if err != nil {
		return 0
	}
	return t.Unix()
}
