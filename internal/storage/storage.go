package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"whaletracker/internal/config"
)

// DB wraps the GORM database connection
type DB struct {
	conn *gorm.DB
	log  *logrus.Logger
}

// New creates a new database connection with GORM
func New(cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := Open(mysql.Open(cfg.DatabaseDSN), log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DatabaseMaxConns)
	sqlDB.SetMaxIdleConns(cfg.DatabaseMaxConns / 2)
	sqlDB.SetConnMaxIdleTime(cfg.DatabaseMaxIdleTime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("Database connection established")

	return db, nil
}

// Open creates a DB on top of an arbitrary GORM dialector. Production uses
// MySQL via New; tests pass an in-memory SQLite dialector.
func Open(dialector gorm.Dialector, log *logrus.Logger) (*DB, error) {
	gormLogger := logger.New(
		&gormLogAdapter{log: log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &DB{conn: conn, log: log}, nil
}

// Ping verifies the underlying connection is alive
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs GORM auto-migration
func (db *DB) AutoMigrate() error {
	return db.conn.AutoMigrate(
		&Trade{},
		&Market{},
		&Alert{},
	)
}

// Transaction runs fn inside a single database transaction. The DB passed to
// fn shares the transaction handle, so a cycle's trade inserts and their
// whale alerts commit or roll back together.
func (db *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{conn: tx, log: db.log})
	})
}

// InsertTrade inserts a trade if its (platform, id) is not present. Returns
// true if the row was inserted; false means the trade was already stored and
// nothing was written (fields are never updated on conflict).
func (db *DB) InsertTrade(ctx context.Context, trade *Trade) (bool, error) {
	var count int64
	result := db.conn.WithContext(ctx).
		Model(&Trade{}).
		Where("platform = ? AND trade_id = ?", trade.Platform, trade.TradeID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	if count > 0 {
		return false, nil
	}

	if err := db.conn.WithContext(ctx).Create(trade).Error; err != nil {
		return false, err
	}
	return true, nil
}

// GetTrade retrieves a trade by platform and id
func (db *DB) GetTrade(ctx context.Context, platform, tradeID string) (*Trade, error) {
	var trade Trade
	result := db.conn.WithContext(ctx).
		Where("platform = ? AND trade_id = ?", platform, tradeID).
		First(&trade)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &trade, nil
}

// GetMarket retrieves a market by platform and id
func (db *DB) GetMarket(ctx context.Context, platform, marketID string) (*Market, error) {
	var market Market
	result := db.conn.WithContext(ctx).
		Where("platform = ? AND market_id = ?", platform, marketID).
		First(&market)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &market, nil
}

// UpsertMarket replaces or inserts a market row, smoothing the rolling volume
// average first: new_avg = (volume_24h + prev_avg) / 2 when the market was
// seen before, else new_avg = volume_24h. The read-then-write is only safe because
// fetch cycles never overlap (job-level in-flight guard).
func (db *DB) UpsertMarket(ctx context.Context, market *Market) error {
	prev, err := db.GetMarket(ctx, market.Platform, market.MarketID)
	if err != nil {
		return fmt.Errorf("read prior market: %w", err)
	}

	if prev != nil {
		market.VolumeAvg = (market.Volume24h + prev.VolumeAvg) / 2
	} else {
		market.VolumeAvg = market.Volume24h
	}

	// Never clobber a settled result
	if prev != nil && prev.Result != "" {
		market.Result = prev.Result
		market.SettlementTS = prev.SettlementTS
		market.Status = prev.Status
	}

	market.LastUpdatedTS = time.Now().Unix()
	return db.conn.WithContext(ctx).Save(market).Error
}

// CountOtherWhaleTrades counts whale trades on the same market within the
// window around ts, excluding the trade identified by excludeTradeID.
func (db *DB) CountOtherWhaleTrades(ctx context.Context, platform, marketID, excludeTradeID string, ts int64, window time.Duration) (int64, error) {
	windowSec := int64(window.Seconds())
	var count int64
	result := db.conn.WithContext(ctx).
		Model(&Trade{}).
		Where("platform = ? AND market_id = ? AND is_whale = ?", platform, marketID, true).
		Where("timestamp_sec BETWEEN ? AND ?", ts-windowSec, ts+windowSec).
		Where("trade_id <> ?", excludeTradeID).
		Count(&count)
	return count, result.Error
}

// WhaleTradeQuery holds parameters for ListWhaleTrades
type WhaleTradeQuery struct {
	Platform     string
	Limit        int
	InsiderOnly  bool
	MinThreshold float64
	Hours        int
	Sort         string
	HideSettled  bool
}

var sortClauses = map[string]string{
	"newest":    "timestamp_sec DESC",
	"oldest":    "timestamp_sec ASC",
	"size_desc": "usd_value DESC",
	"size_asc":  "usd_value ASC",
}

// ListWhaleTrades returns trades at or above the threshold within the recent
// window, optionally filtered to high insider scores and unsettled markets.
func (db *DB) ListWhaleTrades(ctx context.Context, q WhaleTradeQuery) ([]Trade, error) {
	orderBy, ok := sortClauses[q.Sort]
	if !ok {
		orderBy = sortClauses["newest"]
	}

	minTS := time.Now().Unix() - int64(q.Hours)*3600

	query := db.conn.WithContext(ctx).
		Where("platform = ? AND usd_value >= ? AND timestamp_sec >= ?", q.Platform, q.MinThreshold, minTS)

	if q.InsiderOnly {
		query = query.Where("insider_score >= ?", 50.0)
	}
	if q.HideSettled {
		query = query.Where(
			"market_id NOT IN (?)",
			db.conn.Model(&Market{}).Select("market_id").
				Where("platform = ? AND result <> ''", q.Platform),
		)
	}

	var trades []Trade
	result := query.Order(orderBy).Limit(q.Limit).Find(&trades)
	return trades, result.Error
}

// TopMarkets returns markets ordered by 24h volume
func (db *DB) TopMarkets(ctx context.Context, platform string, limit int, includeSettled bool) ([]Market, error) {
	query := db.conn.WithContext(ctx).Where("platform = ?", platform)
	if !includeSettled {
		query = query.Where("result = ''")
	}

	var markets []Market
	result := query.Order("volume_24h DESC").Limit(limit).Find(&markets)
	return markets, result.Error
}

// Stats summarizes stored activity for one platform
type Stats struct {
	TotalTrades    int64   `json:"total_trades"`
	WhaleTrades    int64   `json:"whale_trades"`
	MarketsTracked int64   `json:"markets_tracked"`
	WhaleVolume    float64 `json:"whale_volume"`
	Threshold      float64 `json:"threshold"`
}

// GetStats computes platform counters for the read API
func (db *DB) GetStats(ctx context.Context, platform string) (*Stats, error) {
	stats := &Stats{}
	conn := db.conn.WithContext(ctx)

	if err := conn.Model(&Trade{}).Where("platform = ?", platform).Count(&stats.TotalTrades).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&Trade{}).Where("platform = ? AND is_whale = ?", platform, true).Count(&stats.WhaleTrades).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&Market{}).Where("platform = ?", platform).Count(&stats.MarketsTracked).Error; err != nil {
		return nil, err
	}

	var volume *float64
	if err := conn.Model(&Trade{}).
		Where("platform = ? AND is_whale = ?", platform, true).
		Select("SUM(usd_value)").
		Scan(&volume).Error; err != nil {
		return nil, err
	}
	if volume != nil {
		stats.WhaleVolume = *volume
	}

	return stats, nil
}

// InsertAlert appends a new alert record
func (db *DB) InsertAlert(ctx context.Context, alert *Alert) error {
	return db.conn.WithContext(ctx).Create(alert).Error
}

// ListAlerts returns the most recent alerts for a platform
func (db *DB) ListAlerts(ctx context.Context, platform string, limit int) ([]Alert, error) {
	var alerts []Alert
	result := db.conn.WithContext(ctx).
		Where("platform = ?", platform).
		Order("timestamp DESC").
		Limit(limit).
		Find(&alerts)
	return alerts, result.Error
}

// MarketsAwaitingSettlement selects markets without a result that have at
// least one whale trade recorded, bounded to limit rows per call.
func (db *DB) MarketsAwaitingSettlement(ctx context.Context, platform string, limit int) ([]Market, error) {
	var markets []Market
	result := db.conn.WithContext(ctx).
		Where("platform = ? AND result = ''", platform).
		Where(
			"market_id IN (?)",
			db.conn.Model(&Trade{}).Distinct("market_id").
				Where("platform = ? AND is_whale = ?", platform, true),
		).
		Limit(limit).
		Find(&markets)
	return markets, result.Error
}

// SetMarketResult records a settlement outcome exactly once. The guard in the
// WHERE clause means a second call with a different result is a no-op.
func (db *DB) SetMarketResult(ctx context.Context, platform, marketID, status, outcome string, settledTS int64) error {
	return db.conn.WithContext(ctx).
		Model(&Market{}).
		Where("platform = ? AND market_id = ? AND result = ''", platform, marketID).
		Updates(map[string]interface{}{
			"status":        status,
			"result":        outcome,
			"settlement_ts": settledTS,
		}).Error
}

// SettledWhaleTrade pairs a whale trade with its market's realized outcome
type SettledWhaleTrade struct {
	Trade
	Result string `json:"result"`
}

// SettledWhaleTrades inner-joins whale trades against settled markets
func (db *DB) SettledWhaleTrades(ctx context.Context) ([]SettledWhaleTrade, error) {
	var rows []SettledWhaleTrade
	result := db.conn.WithContext(ctx).
		Model(&Trade{}).
		Select("trades.*, markets.result AS result").
		Joins("JOIN markets ON markets.platform = trades.platform AND markets.market_id = trades.market_id").
		Where("trades.is_whale = ? AND markets.result <> ''", true).
		Scan(&rows)
	return rows, result.Error
}

// gormLogAdapter adapts logrus to GORM's logger interface
type gormLogAdapter struct {
	log *logrus.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}
