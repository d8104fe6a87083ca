package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Trade ingestion metrics
	TradesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_trades_ingested_total",
			Help: "Total number of trades ingested",
		},
		[]string{"platform", "status"}, // kalshi/polymarket, inserted/duplicate/skipped
	)

	WhalesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_whales_detected_total",
			Help: "Total number of whale trades detected",
		},
		[]string{"platform", "category"},
	)

	FetchCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "whaletracker_fetch_cycle_duration_seconds",
			Help:    "Duration of a full fetch cycle across venues",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Alert metrics
	AlertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_alerts_triggered_total",
			Help: "Total number of alerts triggered",
		},
		[]string{"alert_type"}, // whale, sports_whale, volume_spike
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_alerts_sent_total",
			Help: "Total number of alerts sent",
		},
		[]string{"status"}, // success/error
	)

	// API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_api_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"api", "endpoint", "status"}, // kalshi/gamma/data, /trades, success/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whaletracker_api_request_duration_seconds",
			Help:    "Duration of upstream API requests",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"api", "endpoint"},
	)

	// Database metrics
	DatabaseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"}, // get/insert/update, success/error
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whaletracker_database_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Settlement metrics
	SettlementRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whaletracker_settlement_runs_total",
			Help: "Total number of settlement check runs",
		},
	)

	MarketsSettled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whaletracker_markets_settled_total",
			Help: "Total number of markets marked settled",
		},
	)

	SettlementRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "whaletracker_settlement_run_duration_seconds",
			Help:    "Duration of a settlement check run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Insider score distribution (0-100) to verify calibration
	InsiderScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "whaletracker_insider_scores",
			Help:    "Distribution of composite insider scores (0-100 scale)",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 85, 90, 95, 100},
		},
	)

	// System health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whaletracker_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"}, // healthy/unhealthy
	)
)

// RecordTradeIngested records one trade ingestion outcome
func RecordTradeIngested(platform, status string) {
	TradesIngested.WithLabelValues(platform, status).Inc()
}

// RecordWhale records a detected whale trade and its insider score
func RecordWhale(platform, category string, insiderScore float64) {
	WhalesDetected.WithLabelValues(platform, category).Inc()
	InsiderScores.Observe(insiderScore)
}

// RecordAlert records alert metrics
func RecordAlert(alertType string, sendErr error) {
	AlertsTriggered.WithLabelValues(alertType).Inc()
	status := "success"
	if sendErr != nil {
		status = "error"
	}
	AlertsSent.WithLabelValues(status).Inc()
}

// RecordAPIRequest records upstream API request metrics
func RecordAPIRequest(api, endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	APIRequests.WithLabelValues(api, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(api, endpoint).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueries.WithLabelValues(operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSettlementRun records one settlement check run
func RecordSettlementRun(duration time.Duration, marketsSettled int) {
	SettlementRuns.Inc()
	MarketsSettled.Add(float64(marketsSettled))
	SettlementRunDuration.Observe(duration.Seconds())
}

// RecordFetchCycle records the duration of one full fetch cycle
func RecordFetchCycle(duration time.Duration) {
	FetchCycleDuration.Observe(duration.Seconds())
}

// RecordHealthCheck records health check status
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}
