package polymarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whaletracker/internal/storage"
)

func TestParseTrade(t *testing.T) {
	raw := RawTrade{
		TransactionHash: "0xabc",
		ConditionID:     "0xcond",
		Side:            "buy",
		Outcome:         "Yes",
		Size:            50000,
		Price:           0.62,
		Timestamp:       1764504000,
		Title:           "Will the Fed cut rates in December?",
	}

	trade := ParseTrade(&raw)
	require.NotNil(t, trade)
	assert.Equal(t, storage.PlatformPolymarket, trade.Platform)
	assert.Equal(t, "0xabc", trade.TradeID)
	assert.Equal(t, "0xcond", trade.MarketID)
	assert.Equal(t, "BUY", trade.Side, "side is uppercased")
	assert.Equal(t, 31000.0, trade.USDValue) // 50000 * 0.62
	assert.Equal(t, int64(1764504000), trade.TimestampSec)
}

func TestParseTradeDefaults(t *testing.T) {
	// Missing price falls back to the midpoint, missing side to BUY
	raw := RawTrade{TransactionHash: "0xabc", Size: 100}
	trade := ParseTrade(&raw)
	require.NotNil(t, trade)
	assert.Equal(t, 0.5, trade.Price)
	assert.Equal(t, "BUY", trade.Side)
	assert.Equal(t, 50.0, trade.USDValue)

	// No transaction hash: dropped
	assert.Nil(t, ParseTrade(&RawTrade{ConditionID: "0xcond", Size: 100}))
}

func TestParseMarket(t *testing.T) {
	raw := RawMarket{
		ID:            "12345",
		ConditionID:   "0xcond",
		Question:      "Will BTC close above 100k?",
		Volume24h:     250000,
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.62","0.38"]`,
	}

	market := ParseMarket(&raw)
	require.NotNil(t, market)
	assert.Equal(t, "0xcond", market.MarketID, "condition id preferred over gamma id")
	assert.Equal(t, "open", market.Status)
	assert.Equal(t, 0.62, market.YesPrice)
	assert.Equal(t, 0.38, market.NoPrice)

	raw.ConditionID = ""
	market = ParseMarket(&raw)
	require.NotNil(t, market)
	assert.Equal(t, "12345", market.MarketID, "falls back to gamma id")

	raw.ID = ""
	assert.Nil(t, ParseMarket(&raw))

	closed := RawMarket{ConditionID: "0xdone", Closed: true}
	market = ParseMarket(&closed)
	require.NotNil(t, market)
	assert.Equal(t, "closed", market.Status)
}

func TestDetermineWinner(t *testing.T) {
	tests := []struct {
		name string
		raw  RawMarket
		want string
	}{
		{
			name: "yes converged",
			raw:  RawMarket{Outcomes: `["Yes","No"]`, OutcomePrices: `["0.99","0.01"]`},
			want: "Yes",
		},
		{
			name: "no converged",
			raw:  RawMarket{Outcomes: `["Yes","No"]`, OutcomePrices: `["0.02","0.98"]`},
			want: "No",
		},
		{
			name: "exactly at threshold",
			raw:  RawMarket{Outcomes: `["Up","Down"]`, OutcomePrices: `["0.95","0.05"]`},
			want: "Up",
		},
		{
			name: "no clear winner",
			raw:  RawMarket{Outcomes: `["Yes","No"]`, OutcomePrices: `["0.60","0.40"]`},
			want: "",
		},
		{
			name: "malformed price arrays",
			raw:  RawMarket{Outcomes: `["Yes","No"]`, OutcomePrices: `not-json`},
			want: "",
		},
		{
			name: "length mismatch",
			raw:  RawMarket{Outcomes: `["Yes","No"]`, OutcomePrices: `["0.99"]`},
			want: "",
		},
		{
			name: "empty arrays",
			raw:  RawMarket{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineWinner(&tt.raw))
		})
	}
}
