// Package settlement resolves market outcomes for markets that attracted
// whale trades, so realized results can be compared against implied odds.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"whaletracker/internal/kalshi"
	"whaletracker/internal/metrics"
	"whaletracker/internal/polymarket"
	"whaletracker/internal/storage"
)

// KalshiMarketFetcher fetches a single Kalshi market by ticker
type KalshiMarketFetcher interface {
	GetMarket(ctx context.Context, ticker string) (*kalshi.RawMarket, error)
}

// PolymarketMarketFetcher fetches a single Polymarket market by condition id
type PolymarketMarketFetcher interface {
	GetMarketByConditionID(ctx context.Context, conditionID string) (*polymarket.RawMarket, error)
}

// Tracker checks unresolved whale markets against venue APIs and records
// final outcomes. Each run is bounded to batchLimit markets per venue.
type Tracker struct {
	db         *storage.DB
	kalshi     KalshiMarketFetcher
	poly       PolymarketMarketFetcher
	batchLimit int
	log        *logrus.Logger
}

// New creates a settlement tracker
func New(db *storage.DB, kalshiClient KalshiMarketFetcher, polyClient PolymarketMarketFetcher, batchLimit int, log *logrus.Logger) *Tracker {
	return &Tracker{
		db:         db,
		kalshi:     kalshiClient,
		poly:       polyClient,
		batchLimit: batchLimit,
		log:        log,
	}
}

// CheckSettlements runs one settlement pass over both venues. Returns how many
// markets were checked and how many were newly settled. Per-market API errors
// are logged and skipped; the pass continues.
func (t *Tracker) CheckSettlements(ctx context.Context) (checked, settled int, err error) {
	start := time.Now()

	kc, ks, kerr := t.checkKalshi(ctx)
	checked += kc
	settled += ks

	pc, ps, perr := t.checkPolymarket(ctx)
	checked += pc
	settled += ps

	metrics.RecordSettlementRun(time.Since(start), settled)
	t.log.WithFields(logrus.Fields{
		"checked": checked,
		"settled": settled,
	}).Info("Settlement pass complete")

	if kerr != nil {
		return checked, settled, kerr
	}
	return checked, settled, perr
}

func (t *Tracker) checkKalshi(ctx context.Context) (checked, settled int, err error) {
	markets, err := t.db.MarketsAwaitingSettlement(ctx, storage.PlatformKalshi, t.batchLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("list kalshi markets: %w", err)
	}

	for i := range markets {
		checked++
		raw, err := t.kalshi.GetMarket(ctx, markets[i].MarketID)
		if err != nil {
			t.log.WithError(err).WithField("ticker", markets[i].MarketID).Debug("Kalshi market lookup failed")
			continue
		}
		if !kalshi.Settled(raw) {
			continue
		}

		if err := t.record(ctx, storage.PlatformKalshi, markets[i].MarketID, raw.Result); err != nil {
			t.log.WithError(err).WithField("ticker", markets[i].MarketID).Warn("Settlement write failed")
			continue
		}
		settled++
	}
	return checked, settled, nil
}

func (t *Tracker) checkPolymarket(ctx context.Context) (checked, settled int, err error) {
	markets, err := t.db.MarketsAwaitingSettlement(ctx, storage.PlatformPolymarket, t.batchLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("list polymarket markets: %w", err)
	}

	for i := range markets {
		checked++
		raw, err := t.poly.GetMarketByConditionID(ctx, markets[i].MarketID)
		if err != nil {
			t.log.WithError(err).WithField("condition_id", markets[i].MarketID).Debug("Polymarket market lookup failed")
			continue
		}
		if !raw.Closed {
			continue
		}

		winner := polymarket.DetermineWinner(raw)
		if winner == "" {
			continue
		}

		if err := t.record(ctx, storage.PlatformPolymarket, markets[i].MarketID, winner); err != nil {
			t.log.WithError(err).WithField("condition_id", markets[i].MarketID).Warn("Settlement write failed")
			continue
		}
		settled++
	}
	return checked, settled, nil
}

func (t *Tracker) record(ctx context.Context, platform, marketID, outcome string) error {
	if err := t.db.SetMarketResult(ctx, platform, marketID, "settled", outcome, time.Now().Unix()); err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{
		"platform":  platform,
		"market_id": marketID,
		"result":    outcome,
	}).Info("Market settled")
	return nil
}
