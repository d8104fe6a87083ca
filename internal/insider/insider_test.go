package insider

import (
	"context"
	"math"
	"testing"
	"time"
)

type fakeWhaleCounter struct {
	count int64
	err   error
}

func (f *fakeWhaleCounter) CountOtherWhaleTrades(ctx context.Context, platform, marketID, excludeTradeID string, ts int64, window time.Duration) (int64, error) {
	return f.count, f.err
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestSizeScore(t *testing.T) {
	tests := []struct {
		name      string
		usdValue  float64
		threshold float64
		want      float64
	}{
		{"at threshold", 500, 500, 0},
		{"below threshold", 300, 500, 0},
		{"1.5x threshold", 750, 500, 0.3},
		{"exactly 2x", 1000, 500, 0.3},
		{"3x interpolated", 1500, 500, 0.467},
		{"exactly 5x", 2500, 500, 0.801},
		{"7x interpolated", 3500, 500, 0.88},
		{"exactly 10x", 5000, 500, 1.0},
		{"far above 10x", 50000, 500, 1.0},
		{"zero threshold guarded", 5000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sizeScore(tt.usdValue, tt.threshold)
			if !almostEqual(got, tt.want) {
				t.Errorf("sizeScore(%.0f, %.0f) = %.3f, want %.3f", tt.usdValue, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestContrarianScore(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		side     string
		platform string
		want     float64
	}{
		{"kalshi deep underdog yes", 10, "yes", "kalshi", 1.0},
		{"kalshi underdog yes", 20, "yes", "kalshi", 0.7},
		{"kalshi mild underdog yes", 30, "yes", "kalshi", 0.4},
		{"kalshi coinflip yes", 50, "yes", "kalshi", 0},
		{"kalshi no against strong favorite", 92, "no", "kalshi", 1.0},
		{"kalshi no against favorite", 80, "no", "kalshi", 0.7},
		{"kalshi no against mild favorite", 70, "no", "kalshi", 0.4},
		{"kalshi no at coinflip", 40, "no", "kalshi", 0},
		{"polymarket deep underdog buy", 0.12, "BUY", "polymarket", 1.0},
		{"polymarket sell against favorite", 0.90, "SELL", "polymarket", 1.0},
		{"polymarket buy at consensus", 0.55, "BUY", "polymarket", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contrarianScore(tt.price, tt.side, tt.platform)
			if !almostEqual(got, tt.want) {
				t.Errorf("contrarianScore(%.2f, %q, %q) = %.2f, want %.2f", tt.price, tt.side, tt.platform, got, tt.want)
			}
		})
	}
}

func TestEventScore(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  float64
	}{
		{"three keywords", "FDA approval decision expected", 1.0},
		{"two keywords", "Court ruling this week?", 0.7},
		{"one keyword", "Will the Senate vote pass?", 0.4},
		{"no keywords", "High temperature in Miami?", 0},
		{"empty title", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eventScore(tt.title)
			if !almostEqual(got, tt.want) {
				t.Errorf("eventScore(%q) = %.2f, want %.2f", tt.title, got, tt.want)
			}
		})
	}
}

func TestLiquidityScore(t *testing.T) {
	tests := []struct {
		name      string
		volume24h float64
		platform  string
		want      float64
	}{
		{"kalshi thin", 800, "kalshi", 1.0},
		{"kalshi moderate", 3000, "kalshi", 0.7},
		{"kalshi liquid", 15000, "kalshi", 0.4},
		{"kalshi deep", 50000, "kalshi", 0.1},
		{"polymarket thin", 5000, "polymarket", 1.0},
		{"polymarket moderate", 30000, "polymarket", 0.7},
		{"polymarket liquid", 100000, "polymarket", 0.4},
		{"polymarket deep", 1000000, "polymarket", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := liquidityScore(tt.volume24h, tt.platform)
			if !almostEqual(got, tt.want) {
				t.Errorf("liquidityScore(%.0f, %q) = %.2f, want %.2f", tt.volume24h, tt.platform, got, tt.want)
			}
		})
	}
}

func TestTimingScore(t *testing.T) {
	tests := []struct {
		otherWhales int64
		want        float64
	}{
		{0, 0},
		{1, 0.4},
		{2, 0.7},
		{3, 1.0},
		{10, 1.0},
	}

	for _, tt := range tests {
		got := timingScore(tt.otherWhales)
		if !almostEqual(got, tt.want) {
			t.Errorf("timingScore(%d) = %.2f, want %.2f", tt.otherWhales, got, tt.want)
		}
	}
}

func TestNormalizeProb(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		price    float64
		want     float64
	}{
		{"kalshi cents", "kalshi", 70, 0.7},
		{"polymarket probability", "polymarket", 0.7, 0.7},
		{"polymarket cents fallback", "polymarket", 70, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeProb(tt.platform, tt.price)
			if !almostEqual(got, tt.want) {
				t.Errorf("NormalizeProb(%q, %.2f) = %.3f, want %.3f", tt.platform, tt.price, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{85, "High"},
		{70, "High"},
		{55, "Medium"},
		{50, "Medium"},
		{35, "Low"},
		{30, "Low"},
		{10, "Unlikely"},
	}

	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%.0f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreComposite(t *testing.T) {
	scorer := NewScorer(&fakeWhaleCounter{count: 2})

	breakdown, err := scorer.Score(context.Background(), Input{
		Platform:    "kalshi",
		USDValue:    2500,
		Threshold:   500,
		Price:       10,
		Side:        "yes",
		MarketTitle: "FDA approval decision expected",
		MarketID:    "KXFDA-25DEC",
		TradeID:     "t-1",
		Timestamp:   1700000000,
		Volume24h:   800,
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	// size 0.801, contrarian 1.0, event 1.0, liquidity 1.0, timing 0.7
	// composite = .2*.801 + .25*1 + .15*1 + .2*.7 + .2*1 = 0.9002
	if !almostEqual(breakdown.SizeScore, 80.1) {
		t.Errorf("SizeScore = %.1f, want 80.1", breakdown.SizeScore)
	}
	if !almostEqual(breakdown.ContrarianScore, 100) {
		t.Errorf("ContrarianScore = %.1f, want 100", breakdown.ContrarianScore)
	}
	if !almostEqual(breakdown.EventScore, 100) {
		t.Errorf("EventScore = %.1f, want 100", breakdown.EventScore)
	}
	if !almostEqual(breakdown.LiquidityScore, 100) {
		t.Errorf("LiquidityScore = %.1f, want 100", breakdown.LiquidityScore)
	}
	if !almostEqual(breakdown.TimingScore, 70) {
		t.Errorf("TimingScore = %.1f, want 70", breakdown.TimingScore)
	}
	if !almostEqual(breakdown.InsiderScore, 90.0) {
		t.Errorf("InsiderScore = %.1f, want 90.0", breakdown.InsiderScore)
	}
}

func TestScoreRange(t *testing.T) {
	// The composite stays within [0, 100] at the extremes
	maxed := NewScorer(&fakeWhaleCounter{count: 5})
	breakdown, err := maxed.Score(context.Background(), Input{
		Platform:    "kalshi",
		USDValue:    100000,
		Threshold:   500,
		Price:       5,
		Side:        "yes",
		MarketTitle: "FDA approval court ruling verdict announced before deadline vote",
		Volume24h:   100,
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if breakdown.InsiderScore < 0 || breakdown.InsiderScore > 100 {
		t.Errorf("InsiderScore = %.1f, want within [0, 100]", breakdown.InsiderScore)
	}
	if !almostEqual(breakdown.InsiderScore, 100) {
		t.Errorf("InsiderScore = %.1f, want 100 with every component maxed", breakdown.InsiderScore)
	}

	quiet := NewScorer(&fakeWhaleCounter{count: 0})
	breakdown, err = quiet.Score(context.Background(), Input{
		Platform:    "polymarket",
		USDValue:    25000,
		Threshold:   25000,
		Price:       0.5,
		Side:        "BUY",
		MarketTitle: "Plain market title",
		Volume24h:   5000000,
	})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	// Only liquidity contributes 0.1; composite = .15*.1 = 0.015 -> 1.5
	if !almostEqual(breakdown.InsiderScore, 1.5) {
		t.Errorf("InsiderScore = %.1f, want 1.5", breakdown.InsiderScore)
	}
}
