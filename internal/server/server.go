// Package server exposes the read API, health check, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"whaletracker/internal/backtest"
	"whaletracker/internal/config"
	"whaletracker/internal/metrics"
	"whaletracker/internal/storage"
)

// Windows accepted by the whale-trades endpoint, in hours
var allowedHours = map[int]bool{1: true, 6: true, 24: true, 168: true}

// Trigger starts a named background job on demand
type Trigger interface {
	TriggerNow(ctx context.Context, name string) error
}

// Server is the HTTP read API
type Server struct {
	cfg        *config.Config
	db         *storage.DB
	backtester *backtest.Aggregator
	trigger    Trigger
	log        *logrus.Logger
	httpServer *http.Server
}

// New creates the HTTP server and wires all routes
func New(cfg *config.Config, db *storage.DB, backtester *backtest.Aggregator, trigger Trigger, log *logrus.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		db:         db,
		backtester: backtester,
		trigger:    trigger,
		log:        log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/whale-trades", s.handleWhaleTrades)
	mux.HandleFunc("/api/markets", s.handleMarkets)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/performance", s.handlePerformance)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown or a listener error
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWhaleTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	hours := queryInt(r, "hours", 24)
	if !allowedHours[hours] {
		s.badRequest(w, "hours must be one of 1, 6, 24, 168")
		return
	}

	threshold := queryFloat(r, "threshold", s.cfg.Threshold(platform))
	if threshold <= 0 {
		s.badRequest(w, "threshold must be positive")
		return
	}

	q := storage.WhaleTradeQuery{
		Platform:     platform,
		Limit:        clampLimit(queryInt(r, "limit", 50)),
		InsiderOnly:  queryBool(r, "insider"),
		MinThreshold: threshold,
		Hours:        hours,
		Sort:         r.URL.Query().Get("sort"),
		HideSettled:  queryBool(r, "hide_settled"),
	}

	trades, err := s.db.ListWhaleTrades(r.Context(), q)
	if err != nil {
		s.internalError(w, err, "list whale trades")
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"platform":  platform,
		"threshold": threshold,
		"hours":     hours,
		"count":     len(trades),
		"trades":    trades,
	})
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	markets, err := s.db.TopMarkets(r.Context(), platform, clampLimit(queryInt(r, "limit", 50)), queryBool(r, "include_settled"))
	if err != nil {
		s.internalError(w, err, "list markets")
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"platform": platform,
		"count":    len(markets),
		"markets":  markets,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	stats, err := s.db.GetStats(r.Context(), platform)
	if err != nil {
		s.internalError(w, err, "get stats")
		return
	}
	stats.Threshold = s.cfg.Threshold(platform)

	s.writeJSON(w, map[string]interface{}{
		"platform": platform,
		"stats":    stats,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	alerts, err := s.db.ListAlerts(r.Context(), platform, clampLimit(queryInt(r, "limit", 50)))
	if err != nil {
		s.internalError(w, err, "list alerts")
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"platform": platform,
		"count":    len(alerts),
		"alerts":   alerts,
	})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	report, err := s.backtester.Performance(r.Context())
	if err != nil {
		s.internalError(w, err, "backtest performance")
		return
	}
	s.writeJSON(w, report)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	// The triggered run outlives this request, so don't tie it to r.Context()
	if err := s.trigger.TriggerNow(context.Background(), "fetch"); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "refresh started"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		metrics.RecordHealthCheck(false)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}

	metrics.RecordHealthCheck(true)
	s.writeJSON(w, map[string]string{"status": "healthy"})
}

// platformParam validates the platform query parameter, defaulting to kalshi
func (s *Server) platformParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = storage.PlatformKalshi
	}
	if platform != storage.PlatformKalshi && platform != storage.PlatformPolymarket {
		s.badRequest(w, "platform must be kalshi or polymarket")
		return "", false
	}
	return platform, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("Response encode failed")
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
}

func (s *Server) internalError(w http.ResponseWriter, err error, op string) {
	s.log.WithError(err).WithField("op", op).Error("Request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func queryBool(r *http.Request, key string) bool {
	v := r.URL.Query().Get(key)
	return v == "true" || v == "1"
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
