package polymarket

// RawTrade is a trade from the public Data API
type RawTrade struct {
	ProxyWallet     string  `json:"proxyWallet"`
	Side            string  `json:"side"` // BUY, SELL
	ConditionID     string  `json:"conditionId"`
	Size            float64 `json:"size"`
	Price           float64 `json:"price"` // probability in [0,1]
	Timestamp       int64   `json:"timestamp"`
	Outcome         string  `json:"outcome"` // e.g. Yes, No, Up
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	TransactionHash string  `json:"transactionHash"`
}

// RawMarket is a market from the Gamma API
type RawMarket struct {
	ID            string  `json:"id"`
	ConditionID   string  `json:"conditionId"`
	Slug          string  `json:"slug"`
	Question      string  `json:"question"`
	EndDate       string  `json:"endDate"`
	Volume24h     float64 `json:"volume24hr"`
	LiquidityNum  float64 `json:"liquidityNum"`
	BestBid       float64 `json:"bestBid"`
	BestAsk       float64 `json:"bestAsk"`
	Active        bool    `json:"active"`
	Closed        bool    `json:"closed"`
	Outcomes      string  `json:"outcomes"`      // JSON array, e.g. ["Yes","No"]
	OutcomePrices string  `json:"outcomePrices"` // JSON array, e.g. ["0.02","0.98"]
}
