package alerts

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender sends alerts to the logger
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the alert
func (s *LogSender) Send(ctx context.Context, payload *AlertPayload) error {
	s.log.WithFields(logrus.Fields{
		"alert_type":    payload.Type,
		"platform":      payload.Platform,
		"market":        payload.MarketTitle,
		"side":          payload.Side,
		"usd_value":     payload.USDValue,
		"insider_score": payload.InsiderScore,
		"category":      payload.Category,
	}).Info("Alert generated")
	return nil
}
