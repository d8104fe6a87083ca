// Package backtest measures how whale trades performed against the odds they
// were placed at, using markets that have since settled.
package backtest

import (
	"context"
	"strings"

	"whaletracker/internal/insider"
	"whaletracker/internal/storage"
)

// CategoryStats aggregates results for one market category
type CategoryStats struct {
	Trades        int     `json:"trades"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	ActualWinRate float64 `json:"actual_win_rate"`
	TotalPnL      float64 `json:"total_pnl"`
}

// Report summarizes whale performance versus implied probabilities. A report
// over zero settled trades is valid and all-zero.
type Report struct {
	TotalTrades     int                       `json:"total_trades"`
	Wins            int                       `json:"wins"`
	Losses          int                       `json:"losses"`
	ActualWinRate   float64                   `json:"actual_win_rate"`
	ExpectedWinRate float64                   `json:"expected_win_rate"`
	Edge            float64                   `json:"edge"`
	TotalPnL        float64                   `json:"total_pnl"`
	ByCategory      map[string]*CategoryStats `json:"by_category"`
}

// SettledTradeSource yields whale trades whose markets have settled
type SettledTradeSource interface {
	SettledWhaleTrades(ctx context.Context) ([]storage.SettledWhaleTrade, error)
}

// Aggregator computes performance reports over settled whale trades
type Aggregator struct {
	trades SettledTradeSource
}

// New creates an aggregator backed by the given trade source
func New(trades SettledTradeSource) *Aggregator {
	return &Aggregator{trades: trades}
}

// Performance builds the full backtest report. Each trade is treated as if
// held to settlement: a win pays out the remaining distance to 1.0 per
// contract, a loss forfeits the stake.
func (a *Aggregator) Performance(ctx context.Context) (*Report, error) {
	rows, err := a.trades.SettledWhaleTrades(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{ByCategory: make(map[string]*CategoryStats)}
	var probSum float64

	for i := range rows {
		row := &rows[i]
		prob := insider.NormalizeProb(row.Platform, row.Price)
		won := tradeWon(row)
		pnl := tradePnL(row.USDValue, prob, won)

		report.TotalTrades++
		probSum += prob
		report.TotalPnL += pnl
		if won {
			report.Wins++
		} else {
			report.Losses++
		}

		cat := row.Category
		if cat == "" {
			cat = "other"
		}
		stats, ok := report.ByCategory[cat]
		if !ok {
			stats = &CategoryStats{}
			report.ByCategory[cat] = stats
		}
		stats.Trades++
		stats.TotalPnL += pnl
		if won {
			stats.Wins++
		} else {
			stats.Losses++
		}
	}

	if report.TotalTrades > 0 {
		report.ActualWinRate = float64(report.Wins) / float64(report.TotalTrades)
		report.ExpectedWinRate = probSum / float64(report.TotalTrades)
		report.Edge = report.ActualWinRate - report.ExpectedWinRate
	}
	for _, stats := range report.ByCategory {
		if stats.Trades > 0 {
			stats.ActualWinRate = float64(stats.Wins) / float64(stats.Trades)
		}
	}

	return report, nil
}

// tradeWon decides whether a settled trade paid out. Kalshi sides are yes/no
// and match the result directly. Polymarket buys win when the bought outcome
// settled; sells win when it did not.
func tradeWon(row *storage.SettledWhaleTrade) bool {
	if row.Platform == storage.PlatformKalshi {
		return strings.EqualFold(row.Side, row.Result)
	}

	outcomeSettled := strings.EqualFold(row.Outcome, row.Result)
	if strings.EqualFold(row.Side, "sell") {
		return !outcomeSettled
	}
	return outcomeSettled
}

// tradePnL computes settlement profit. contracts = stake / price, each paying
// 1.0 on a win. A zero or invalid price contributes zero contracts, so a win
// at that price nets nothing while a loss still forfeits the stake.
func tradePnL(usdValue, prob float64, won bool) float64 {
	if !won {
		return -usdValue
	}
	if prob <= 0 {
		return 0
	}
	contracts := usdValue / prob
	return contracts * (1 - prob)
}
