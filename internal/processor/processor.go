// Package processor runs the fetch cycle: pull markets and trades from each
// venue, classify whales, score them, and persist everything with alerts.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"whaletracker/internal/alerts"
	"whaletracker/internal/category"
	"whaletracker/internal/config"
	"whaletracker/internal/insider"
	"whaletracker/internal/kalshi"
	"whaletracker/internal/metrics"
	"whaletracker/internal/polymarket"
	"whaletracker/internal/storage"
)

// titleCacheLimit bounds the per-cycle market title cache
const titleCacheLimit = 2000

// KalshiAPI is the slice of the Kalshi client the processor needs
type KalshiAPI interface {
	GetAllTrades(ctx context.Context, maxTrades int) ([]kalshi.RawTrade, error)
	GetAllMarkets(ctx context.Context, maxMarkets int) ([]kalshi.RawMarket, error)
	GetMarket(ctx context.Context, ticker string) (*kalshi.RawMarket, error)
}

// PolymarketAPI is the slice of the Polymarket client the processor needs
type PolymarketAPI interface {
	GetTrades(ctx context.Context, limit int) ([]polymarket.RawTrade, error)
	GetTopVolumeMarkets(ctx context.Context, limit int) ([]polymarket.RawMarket, error)
}

// Processor ingests venue data into storage and emits alerts
type Processor struct {
	cfg    *config.Config
	db     *storage.DB
	kalshi KalshiAPI
	poly   PolymarketAPI
	scorer *insider.Scorer
	sender alerts.Sender
	log    *logrus.Logger

	// Per-cycle cache of market titles, cleared at the start of each cycle so
	// stale titles never outlive one run.
	titleCache map[string]string
}

// New creates a processor
func New(cfg *config.Config, db *storage.DB, kalshiClient KalshiAPI, polyClient PolymarketAPI, scorer *insider.Scorer, sender alerts.Sender, log *logrus.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		db:         db,
		kalshi:     kalshiClient,
		poly:       polyClient,
		scorer:     scorer,
		sender:     sender,
		log:        log,
		titleCache: make(map[string]string),
	}
}

// RunFetchCycle pulls markets then trades from both venues. Markets go first
// so trade categorization can resolve titles from fresh local data. Venue
// failures are logged and do not abort the rest of the cycle.
func (p *Processor) RunFetchCycle(ctx context.Context) error {
	start := time.Now()
	p.titleCache = make(map[string]string)

	var firstErr error
	record := func(venue string, err error) {
		if err != nil {
			p.log.WithError(err).WithField("venue", venue).Error("Fetch cycle step failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", venue, err)
			}
		}
	}

	record("kalshi markets", p.syncKalshiMarkets(ctx))
	record("kalshi trades", p.syncKalshiTrades(ctx))
	record("polymarket markets", p.syncPolymarketMarkets(ctx))
	record("polymarket trades", p.syncPolymarketTrades(ctx))

	metrics.RecordFetchCycle(time.Since(start))
	p.log.WithField("duration", time.Since(start).String()).Info("Fetch cycle complete")
	return firstErr
}

func (p *Processor) syncKalshiMarkets(ctx context.Context) error {
	start := time.Now()
	raws, err := p.kalshi.GetAllMarkets(ctx, p.cfg.KalshiMaxMarkets)
	metrics.RecordAPIRequest("kalshi", "/markets", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	for i := range raws {
		market := kalshi.ParseMarket(&raws[i])
		if market == nil {
			continue
		}
		p.cacheTitle(market.Platform, market.MarketID, market.Title)
		if err := p.upsertMarket(ctx, market); err != nil {
			p.log.WithError(err).WithField("market_id", market.MarketID).Warn("Market upsert failed")
		}
	}

	p.log.WithField("count", len(raws)).Debug("Kalshi markets synced")
	return nil
}

func (p *Processor) syncKalshiTrades(ctx context.Context) error {
	start := time.Now()
	raws, err := p.kalshi.GetAllTrades(ctx, p.cfg.KalshiMaxTrades)
	metrics.RecordAPIRequest("kalshi", "/markets/trades", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fetch trades: %w", err)
	}

	for i := range raws {
		trade := kalshi.ParseTrade(&raws[i])
		if trade == nil {
			metrics.RecordTradeIngested(storage.PlatformKalshi, "skipped")
			continue
		}
		if err := p.processTrade(ctx, trade); err != nil {
			p.log.WithError(err).WithField("trade_id", trade.TradeID).Warn("Trade processing failed")
		}
	}
	return nil
}

func (p *Processor) syncPolymarketMarkets(ctx context.Context) error {
	start := time.Now()
	raws, err := p.poly.GetTopVolumeMarkets(ctx, p.cfg.PolymarketMarketLimit)
	metrics.RecordAPIRequest("gamma", "/markets", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	for i := range raws {
		market := polymarket.ParseMarket(&raws[i])
		if market == nil {
			continue
		}
		p.cacheTitle(market.Platform, market.MarketID, market.Title)
		if err := p.upsertMarket(ctx, market); err != nil {
			p.log.WithError(err).WithField("market_id", market.MarketID).Warn("Market upsert failed")
		}
	}

	p.log.WithField("count", len(raws)).Debug("Polymarket markets synced")
	return nil
}

func (p *Processor) syncPolymarketTrades(ctx context.Context) error {
	start := time.Now()
	raws, err := p.poly.GetTrades(ctx, p.cfg.PolymarketTradeLimit)
	metrics.RecordAPIRequest("data", "/trades", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fetch trades: %w", err)
	}

	for i := range raws {
		trade := polymarket.ParseTrade(&raws[i])
		if trade == nil {
			metrics.RecordTradeIngested(storage.PlatformPolymarket, "skipped")
			continue
		}
		if err := p.processTrade(ctx, trade); err != nil {
			p.log.WithError(err).WithField("trade_id", trade.TradeID).Warn("Trade processing failed")
		}
	}
	return nil
}

// processTrade classifies, scores, and persists one normalized trade. The
// insert and its whale alert row share a transaction; the outbound alert is
// only sent after the commit succeeds.
func (p *Processor) processTrade(ctx context.Context, trade *storage.Trade) error {
	title, volume24h := p.marketContext(ctx, trade)
	if trade.MarketTitle == "" {
		trade.MarketTitle = title
	}
	trade.Category = string(category.Categorize(trade.MarketID, trade.MarketTitle))

	threshold := p.cfg.Threshold(trade.Platform)
	trade.IsWhale = trade.USDValue >= threshold

	var breakdown *insider.Breakdown
	if trade.IsWhale {
		var err error
		breakdown, err = p.scorer.Score(ctx, insider.Input{
			Platform:    trade.Platform,
			USDValue:    trade.USDValue,
			Threshold:   threshold,
			Price:       trade.Price,
			Side:        trade.Side,
			MarketTitle: trade.MarketTitle,
			MarketID:    trade.MarketID,
			TradeID:     trade.TradeID,
			Timestamp:   trade.TimestampSec,
			Volume24h:   volume24h,
		})
		if err != nil {
			return fmt.Errorf("score trade: %w", err)
		}
		trade.InsiderScore = breakdown.InsiderScore
	}

	var inserted bool
	var alertRow *storage.Alert
	err := p.db.Transaction(ctx, func(tx *storage.DB) error {
		var err error
		inserted, err = tx.InsertTrade(ctx, trade)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
		if !inserted || !trade.IsWhale {
			return nil
		}

		alertRow = p.buildWhaleAlert(trade)
		if err := tx.InsertAlert(ctx, alertRow); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordTradeIngested(trade.Platform, "error")
		return err
	}

	if !inserted {
		metrics.RecordTradeIngested(trade.Platform, "duplicate")
		return nil
	}
	metrics.RecordTradeIngested(trade.Platform, "inserted")

	if trade.IsWhale {
		metrics.RecordWhale(trade.Platform, trade.Category, trade.InsiderScore)
		p.sendAlert(ctx, alertRow.AlertType, trade, breakdown)
	}
	return nil
}

// marketContext resolves the market title and 24h volume for a trade, trying
// the per-cycle cache, then the local store, then the venue API (Kalshi only;
// Polymarket trades already carry a title).
func (p *Processor) marketContext(ctx context.Context, trade *storage.Trade) (string, float64) {
	market, err := p.db.GetMarket(ctx, trade.Platform, trade.MarketID)
	if err != nil {
		p.log.WithError(err).WithField("market_id", trade.MarketID).Warn("Market lookup failed")
	}

	var volume24h float64
	if market != nil {
		volume24h = market.Volume24h
	}

	if trade.MarketTitle != "" {
		return trade.MarketTitle, volume24h
	}
	if title, ok := p.titleCache[cacheKey(trade.Platform, trade.MarketID)]; ok {
		return title, volume24h
	}
	if market != nil && market.Title != "" {
		p.cacheTitle(trade.Platform, trade.MarketID, market.Title)
		return market.Title, volume24h
	}

	if trade.Platform == storage.PlatformKalshi {
		raw, err := p.kalshi.GetMarket(ctx, trade.MarketID)
		if err != nil {
			p.log.WithError(err).WithField("ticker", trade.MarketID).Debug("Market title lookup failed")
			return "", volume24h
		}
		p.cacheTitle(trade.Platform, trade.MarketID, raw.Title)
		return raw.Title, raw.Volume24h
	}
	return "", volume24h
}

func (p *Processor) cacheTitle(platform, marketID, title string) {
	if title == "" || len(p.titleCache) >= titleCacheLimit {
		return
	}
	p.titleCache[cacheKey(platform, marketID)] = title
}

func cacheKey(platform, marketID string) string {
	return platform + ":" + marketID
}

// buildWhaleAlert creates the persisted alert row for a whale trade. Sports
// markets get their own alert type so consumers can filter them out.
func (p *Processor) buildWhaleAlert(trade *storage.Trade) *storage.Alert {
	alertType := alerts.TypeWhale
	if trade.Category == string(category.Sports) {
		alertType = alerts.TypeSportsWhale
	}

	return &storage.Alert{
		Platform:  trade.Platform,
		AlertType: alertType,
		MarketID:  trade.MarketID,
		Title:     trade.MarketTitle,
		Message: fmt.Sprintf("$%.0f %s %s @ %.2f (insider %.1f)",
			trade.USDValue, trade.Side, trade.Outcome, trade.Price, trade.InsiderScore),
		TradeSize: trade.USDValue,
		Timestamp: trade.TimestampSec,
	}
}

// upsertMarket stores a market snapshot, emitting a volume-spike alert when
// the fresh 24h volume exceeds the prior rolling average by the configured
// multiplier. The spike check reads the prior row before the upsert smooths
// the average.
func (p *Processor) upsertMarket(ctx context.Context, market *storage.Market) error {
	market.Category = string(category.Categorize(market.MarketID, market.Title))

	prev, err := p.db.GetMarket(ctx, market.Platform, market.MarketID)
	if err != nil {
		return fmt.Errorf("read prior market: %w", err)
	}

	spiked := prev != nil && prev.VolumeAvg > 0 &&
		market.Volume24h > prev.VolumeAvg*p.cfg.VolumeSpikeMultiplier

	if err := p.db.UpsertMarket(ctx, market); err != nil {
		return fmt.Errorf("upsert market: %w", err)
	}

	if spiked {
		p.emitVolumeSpike(ctx, market, prev.VolumeAvg)
	}
	return nil
}

func (p *Processor) emitVolumeSpike(ctx context.Context, market *storage.Market, prevAvg float64) {
	row := &storage.Alert{
		Platform:  market.Platform,
		AlertType: alerts.TypeVolumeSpike,
		MarketID:  market.MarketID,
		Title:     market.Title,
		Message: fmt.Sprintf("24h volume $%.0f is %.1fx the rolling average $%.0f",
			market.Volume24h, market.Volume24h/prevAvg, prevAvg),
		Timestamp: time.Now().Unix(),
	}
	if err := p.db.InsertAlert(ctx, row); err != nil {
		p.log.WithError(err).WithField("market_id", market.MarketID).Warn("Volume spike alert insert failed")
		return
	}

	payload := &alerts.AlertPayload{
		Type:        alerts.TypeVolumeSpike,
		Platform:    market.Platform,
		MarketID:    market.MarketID,
		MarketTitle: market.Title,
		Category:    market.Category,
		Message:     row.Message,
		Timestamp:   time.Now().UTC(),
		Environment: p.cfg.Environment,
	}
	err := p.sender.Send(ctx, payload)
	metrics.RecordAlert(alerts.TypeVolumeSpike, err)
	if err != nil {
		p.log.WithError(err).Warn("Volume spike alert send failed")
	}
}

func (p *Processor) sendAlert(ctx context.Context, alertType string, trade *storage.Trade, breakdown *insider.Breakdown) {
	payload := &alerts.AlertPayload{
		Type:         alertType,
		Platform:     trade.Platform,
		MarketID:     trade.MarketID,
		MarketTitle:  trade.MarketTitle,
		Side:         trade.Side,
		Outcome:      trade.Outcome,
		Size:         trade.Size,
		Price:        trade.Price,
		USDValue:     trade.USDValue,
		InsiderScore: trade.InsiderScore,
		ScoreLabel:   insider.Label(trade.InsiderScore),
		Breakdown:    breakdown,
		Category:     trade.Category,
		Timestamp:    time.Unix(trade.TimestampSec, 0).UTC(),
		Environment:  p.cfg.Environment,
	}

	err := p.sender.Send(ctx, payload)
	metrics.RecordAlert(alertType, err)
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"trade_id": trade.TradeID,
			"platform": trade.Platform,
		}).Warn("Alert send failed")
	}
}
