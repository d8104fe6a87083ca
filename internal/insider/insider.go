// Package insider scores whale trades for the likelihood that they reflect
// non-public information. Five independent heuristics combine into one
// composite 0-100 score:
//
//   - size: how far above the whale threshold the trade sits
//   - contrarian: betting against the market's current consensus
//   - event: time-sensitive keywords in the market title
//   - liquidity: thin markets are easier to have an edge in
//   - timing: other whales converging on the same market
package insider

import (
	"context"
	"math"
	"strings"
	"time"
)

// Event-related keywords that suggest potential insider knowledge
var eventKeywords = []string{
	// Regulatory/Legal
	"fda", "approval", "court", "ruling", "verdict", "trial", "judge",
	"sec", "ftc", "doj", "indictment", "settlement", "lawsuit",
	// Political
	"announce", "resign", "nomination", "confirm", "veto", "executive order",
	"pardon", "impeach", "electoral", "delegate",
	// Corporate
	"earnings", "merger", "acquisition", "ipo", "bankruptcy",
	// Other time-sensitive
	"deadline", "vote", "decision", "result", "winner", "before",
}

// Weighted combination of sub-scores
const (
	weightSize       = 0.20
	weightContrarian = 0.25
	weightLiquidity  = 0.15
	weightTiming     = 0.20
	weightEvent      = 0.20
)

// DefaultTimingWindow is the lookaround window for the timing cluster score
const DefaultTimingWindow = 30 * time.Minute

// Breakdown holds the composite insider score and its components, all on a
// 0-100 scale. It is transient; only the composite is persisted on the trade.
type Breakdown struct {
	SizeScore       float64 `json:"size_score"`
	ContrarianScore float64 `json:"contrarian_score"`
	EventScore      float64 `json:"event_score"`
	LiquidityScore  float64 `json:"liquidity_score"`
	TimingScore     float64 `json:"timing_score"`
	InsiderScore    float64 `json:"insider_score"`
}

// Input is the trade/market context needed for one scoring call
type Input struct {
	Platform    string
	USDValue    float64
	Threshold   float64
	Price       float64
	Side        string
	MarketTitle string
	MarketID    string
	TradeID     string
	Timestamp   int64
	Volume24h   float64
}

// WhaleCounter answers the timing-cluster query against persisted trades
type WhaleCounter interface {
	CountOtherWhaleTrades(ctx context.Context, platform, marketID, excludeTradeID string, ts int64, window time.Duration) (int64, error)
}

// Scorer computes composite insider scores for whale trades
type Scorer struct {
	trades WhaleCounter
	window time.Duration
}

// NewScorer creates a scorer backed by the given trade store
func NewScorer(trades WhaleCounter) *Scorer {
	return &Scorer{trades: trades, window: DefaultTimingWindow}
}

// Score computes the composite insider score. Callers must only invoke it for
// trades already classified as whales; non-whale trades keep a score of 0.
func (s *Scorer) Score(ctx context.Context, in Input) (*Breakdown, error) {
	size := sizeScore(in.USDValue, in.Threshold)
	contrarian := contrarianScore(in.Price, in.Side, in.Platform)
	event := eventScore(in.MarketTitle)
	liquidity := liquidityScore(in.Volume24h, in.Platform)

	others, err := s.trades.CountOtherWhaleTrades(ctx, in.Platform, in.MarketID, in.TradeID, in.Timestamp, s.window)
	if err != nil {
		return nil, err
	}
	timing := timingScore(others)

	total := weightSize*size +
		weightContrarian*contrarian +
		weightLiquidity*liquidity +
		weightTiming*timing +
		weightEvent*event

	return &Breakdown{
		SizeScore:       round1(size * 100),
		ContrarianScore: round1(contrarian * 100),
		EventScore:      round1(event * 100),
		LiquidityScore:  round1(liquidity * 100),
		TimingScore:     round1(timing * 100),
		InsiderScore:    round1(total * 100),
	}, nil
}

// sizeScore rates how much larger than the whale threshold the trade is.
// 2x threshold = 0.3, 5x = 0.8, 10x+ = 1.0.
func sizeScore(usdValue, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	ratio := usdValue / threshold
	switch {
	case ratio <= 1:
		return 0
	case ratio <= 2:
		return 0.3
	case ratio <= 5:
		return 0.3 + (ratio-2)*0.167
	case ratio <= 10:
		return 0.8 + (ratio-5)*0.04
	default:
		return 1.0
	}
}

// contrarianScore rates betting against consensus. Buying YES at 10c or NO
// at 90c is very contrarian.
func contrarianScore(price float64, side, platform string) float64 {
	prob := NormalizeProb(platform, price)

	if isYesSide(side) {
		switch {
		case prob <= 0.15:
			return 1.0
		case prob <= 0.25:
			return 0.7
		case prob <= 0.35:
			return 0.4
		default:
			return 0
		}
	}

	switch {
	case prob >= 0.85:
		return 1.0
	case prob >= 0.75:
		return 0.7
	case prob >= 0.65:
		return 0.4
	default:
		return 0
	}
}

// eventScore counts title matches against the event keyword set
func eventScore(marketTitle string) float64 {
	if marketTitle == "" {
		return 0
	}
	titleLower := strings.ToLower(marketTitle)
	matches := 0
	for _, kw := range eventKeywords {
		if strings.Contains(titleLower, kw) {
			matches++
		}
	}
	return stepLadder(int64(matches))
}

// liquidityScore steps down with 24h volume; ladders are venue-specific since
// Kalshi volumes run an order of magnitude below Polymarket's.
func liquidityScore(volume24h float64, platform string) float64 {
	if platform == "kalshi" {
		switch {
		case volume24h <= 1000:
			return 1.0
		case volume24h <= 5000:
			return 0.7
		case volume24h <= 20000:
			return 0.4
		default:
			return 0.1
		}
	}
	switch {
	case volume24h <= 10000:
		return 1.0
	case volume24h <= 50000:
		return 0.7
	case volume24h <= 200000:
		return 0.4
	default:
		return 0.1
	}
}

// timingScore rates convergence of other whales on the same market
func timingScore(otherWhales int64) float64 {
	return stepLadder(otherWhales)
}

func stepLadder(n int64) float64 {
	switch {
	case n >= 3:
		return 1.0
	case n == 2:
		return 0.7
	case n == 1:
		return 0.4
	default:
		return 0
	}
}

// NormalizeProb converts a venue price to an implied probability in [0,1].
// Kalshi quotes cents (0-100); Polymarket quotes probabilities directly.
func NormalizeProb(platform string, price float64) float64 {
	if platform == "kalshi" {
		return price / 100.0
	}
	if price > 1 {
		return price / 100.0
	}
	return price
}

func isYesSide(side string) bool {
	s := strings.ToLower(side)
	return s == "yes" || s == "buy" || strings.HasPrefix(s, "buy ") || strings.HasPrefix(s, "yes ")
}

// Label buckets a composite score into a display tier
func Label(score float64) string {
	switch {
	case score >= 70:
		return "High"
	case score >= 50:
		return "Medium"
	case score >= 30:
		return "Low"
	default:
		return "Unlikely"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
