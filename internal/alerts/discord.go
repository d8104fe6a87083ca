package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"whaletracker/internal/insider"
)

// DiscordSender sends alerts to Discord via webhook
type DiscordSender struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordSender creates a new Discord sender
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send sends the alert to Discord
func (s *DiscordSender) Send(ctx context.Context, payload *AlertPayload) error {
	embed := s.buildEmbed(payload)

	webhookPayload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	body, err := json.Marshal(webhookPayload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (s *DiscordSender) buildEmbed(payload *AlertPayload) map[string]interface{} {
	var title string
	var color int
	switch payload.Type {
	case TypeSportsWhale:
		title = "🏈 Sports whale trade"
		color = 0x00CC66 // Green
	case TypeVolumeSpike:
		title = "📈 Volume spike"
		color = 0xFFA500 // Orange
	default:
		if payload.InsiderScore >= 70 {
			title = "🚨 Whale trade (high insider score)"
			color = 0xFF0000 // Red
		} else {
			title = "🐋 Whale trade detected"
			color = 0x0099FF // Blue
		}
	}

	description := payload.Message
	if description == "" {
		description = fmt.Sprintf("**$%.2f** %s **%s** @ **%.2f**",
			payload.USDValue,
			strings.ToUpper(payload.Side),
			payload.Outcome,
			payload.Price,
		)
	}

	fields := []map[string]interface{}{
		{
			"name":   "Platform",
			"value":  payload.Platform,
			"inline": true,
		},
		{
			"name":   "Market",
			"value":  truncate(payload.MarketTitle, 100),
			"inline": true,
		},
		{
			"name":   "Category",
			"value":  payload.Category,
			"inline": true,
		},
	}

	if payload.Type != TypeVolumeSpike {
		fields = append(fields,
			map[string]interface{}{
				"name":   "Side",
				"value":  fmt.Sprintf("%s %s", payload.Side, payload.Outcome),
				"inline": true,
			},
			map[string]interface{}{
				"name":   "Trade Size",
				"value":  fmt.Sprintf("$%.2f", payload.USDValue),
				"inline": true,
			},
			map[string]interface{}{
				"name":   "Price",
				"value":  fmt.Sprintf("%.2f", payload.Price),
				"inline": true,
			},
			map[string]interface{}{
				"name":   "Insider Score",
				"value":  fmt.Sprintf("**%.1f/100** (%s)", payload.InsiderScore, payload.ScoreLabel),
				"inline": true,
			},
		)
	}

	if payload.Breakdown != nil {
		fields = append(fields, map[string]interface{}{
			"name":   "📊 Score Breakdown",
			"value":  s.formatBreakdown(payload.Breakdown),
			"inline": false,
		})
	}

	footer := map[string]interface{}{
		"text": fmt.Sprintf("Whale Tracker • %s • %s", payload.Environment, payload.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")),
	}

	embed := map[string]interface{}{
		"title":       title,
		"description": description,
		"color":       color,
		"fields":      fields,
		"footer":      footer,
		"timestamp":   payload.Timestamp.Format(time.RFC3339),
	}

	return embed
}

func (s *DiscordSender) formatBreakdown(b *insider.Breakdown) string {
	var parts []string

	if b.SizeScore > 0 {
		parts = append(parts, fmt.Sprintf("📏 Size vs threshold: **%.1f**", b.SizeScore))
	}
	if b.ContrarianScore > 0 {
		parts = append(parts, fmt.Sprintf("🔄 Contrarian bet: **%.1f**", b.ContrarianScore))
	}
	if b.EventScore > 0 {
		parts = append(parts, fmt.Sprintf("📰 Event-driven market: **%.1f**", b.EventScore))
	}
	if b.LiquidityScore > 0 {
		parts = append(parts, fmt.Sprintf("💧 Thin liquidity: **%.1f**", b.LiquidityScore))
	}
	if b.TimingScore > 0 {
		parts = append(parts, fmt.Sprintf("⏰ Whale cluster: **%.1f**", b.TimingScore))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Composite: **%.1f/100**", b.InsiderScore)
	}
	parts = append(parts, fmt.Sprintf("\n🎯 Composite: **%.1f/100**", b.InsiderScore))

	return truncate(joinParts(parts), 1000)
}

func joinParts(parts []string) string {
	result := ""
	for i, p := range parts {
		if i > 0 {
			result += "\n"
		}
		result += p
	}
	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
