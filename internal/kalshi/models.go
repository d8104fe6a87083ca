package kalshi

// RawTrade is a trade as returned by the Kalshi trade API
type RawTrade struct {
	TradeID     string  `json:"trade_id"`
	Ticker      string  `json:"ticker"`
	Count       float64 `json:"count"`
	YesPrice    float64 `json:"yes_price"` // cents
	NoPrice     float64 `json:"no_price"`  // cents
	TakerSide   string  `json:"taker_side"` // yes, no
	CreatedTime string  `json:"created_time"`
}

// RawMarket is a market as returned by the Kalshi markets API
type RawMarket struct {
	Ticker       string  `json:"ticker"`
	Title        string  `json:"title"`
	Status       string  `json:"status"` // active, closed, settled, finalized
	YesBid       float64 `json:"yes_bid"`
	NoBid        float64 `json:"no_bid"`
	Volume24h    float64 `json:"volume_24h"`
	OpenInterest float64 `json:"open_interest"`
	Result       string  `json:"result"` // yes or no once settled
}

// TradesResponse wraps the cursor-paginated trades endpoint
type TradesResponse struct {
	Trades []RawTrade `json:"trades"`
	Cursor string     `json:"cursor"`
}

// MarketsResponse wraps the cursor-paginated markets endpoint
type MarketsResponse struct {
	Markets []RawMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// MarketResponse wraps the single-market endpoint
type MarketResponse struct {
	Market *RawMarket `json:"market"`
}
