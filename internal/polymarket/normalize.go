package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"

	"whaletracker/internal/storage"
)

// Missing prices default to the 50% midpoint
const defaultPrice = 0.5

// ParseTrade converts a raw Data API trade into the canonical shape. The
// transaction hash is the venue-unique id; records without one are dropped
// (nil return). Price is already a probability in [0,1], so USD value is
// size × price directly.
func ParseTrade(raw *RawTrade) *storage.Trade {
	if raw.TransactionHash == "" {
		return nil
	}

	price := raw.Price
	if price == 0 {
		price = defaultPrice
	}

	side := strings.ToUpper(raw.Side)
	if side == "" {
		side = "BUY"
	}

	return &storage.Trade{
		Platform:     storage.PlatformPolymarket,
		TradeID:      raw.TransactionHash,
		MarketID:     raw.ConditionID,
		MarketTitle:  raw.Title,
		Side:         side,
		Outcome:      raw.Outcome,
		Size:         raw.Size,
		Price:        price,
		USDValue:     raw.Size * price,
		TimestampSec: raw.Timestamp,
	}
}

// ParseMarket converts a raw Gamma market into the canonical shape. The
// condition id is preferred as the identifier, falling back to the Gamma id.
func ParseMarket(raw *RawMarket) *storage.Market {
	id := raw.ConditionID
	if id == "" {
		id = raw.ID
	}
	if id == "" {
		return nil
	}

	status := "open"
	if raw.Closed {
		status = "closed"
	}

	yesPrice, noPrice := outcomePrices(raw)

	return &storage.Market{
		Platform:  storage.PlatformPolymarket,
		MarketID:  id,
		Title:     raw.Question,
		Status:    status,
		YesPrice:  yesPrice,
		NoPrice:   noPrice,
		Volume24h: raw.Volume24h,
	}
}

// DetermineWinner parses the outcome/price arrays of a closed market and
// returns the outcome whose price has converged to at least 0.95. Empty
// string means no clear winner yet.
func DetermineWinner(raw *RawMarket) string {
	outcomes, prices := parseArrays(raw)
	if len(outcomes) == 0 || len(outcomes) != len(prices) {
		return ""
	}

	for i, priceStr := range prices {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			continue
		}
		if price >= 0.95 {
			return outcomes[i]
		}
	}
	return ""
}

func outcomePrices(raw *RawMarket) (yes, no float64) {
	outcomes, prices := parseArrays(raw)
	if len(outcomes) != len(prices) {
		return 0, 0
	}
	for i, outcome := range outcomes {
		price, err := strconv.ParseFloat(prices[i], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(outcome) {
		case "yes":
			yes = price
		case "no":
			no = price
		}
	}
	return yes, no
}

func parseArrays(raw *RawMarket) (outcomes, prices []string) {
	if raw.Outcomes == "" || raw.OutcomePrices == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw.Outcomes), &outcomes); err != nil {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw.OutcomePrices), &prices); err != nil {
		return nil, nil
	}
	return outcomes, prices
}
