package alerts

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"whaletracker/internal/insider"
)

// SMTPSender sends alerts via email
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       []string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, user, password, from string, to []string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		to:       to,
	}
}

// Send sends the alert via email
func (s *SMTPSender) Send(ctx context.Context, payload *AlertPayload) error {
	subject := fmt.Sprintf("[%s] %s: $%.2f on %s", payload.Platform, payload.Type, payload.USDValue, payload.MarketTitle)
	body := s.buildEmailBody(payload)

	message := fmt.Sprintf("From: %s\r\n", s.from)
	message += fmt.Sprintf("To: %s\r\n", s.to[0])
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, s.to, []byte(message))
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func (s *SMTPSender) buildEmailBody(payload *AlertPayload) string {
	body := fmt.Sprintf("WHALE TRACKER ALERT - %s\n", payload.Type)
	body += fmt.Sprintf("═══════════════════════════════════════\n\n")
	body += fmt.Sprintf("TRADE DETAILS\n")
	body += fmt.Sprintf("─────────────────────────────────────\n")
	body += fmt.Sprintf("Platform:       %s\n", payload.Platform)
	body += fmt.Sprintf("Market:         %s\n", payload.MarketTitle)
	body += fmt.Sprintf("Category:       %s\n", payload.Category)
	body += fmt.Sprintf("Side:           %s %s\n", payload.Side, payload.Outcome)
	body += fmt.Sprintf("Price:          %.2f\n", payload.Price)
	body += fmt.Sprintf("Trade Size:     $%.2f\n", payload.USDValue)
	body += fmt.Sprintf("Insider Score:  %.1f (%s)\n\n", payload.InsiderScore, payload.ScoreLabel)

	if payload.Breakdown != nil {
		body += s.formatBreakdown(payload.Breakdown)
	}

	if payload.Message != "" {
		body += fmt.Sprintf("NOTE\n")
		body += fmt.Sprintf("─────────────────────────────────────\n")
		body += fmt.Sprintf("%s\n\n", payload.Message)
	}

	body += fmt.Sprintf("═══════════════════════════════════════\n")
	body += fmt.Sprintf("Environment: %s\n", payload.Environment)
	body += fmt.Sprintf("Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	body += fmt.Sprintf("\nNote: This system surfaces unusual trading behavior;\n")
	body += fmt.Sprintf("it does NOT prove insider trading.\n")

	return body
}

func (s *SMTPSender) formatBreakdown(b *insider.Breakdown) string {
	breakdown := fmt.Sprintf("SCORE BREAKDOWN\n")
	breakdown += fmt.Sprintf("─────────────────────────────────────\n")
	breakdown += fmt.Sprintf("Size:           %.1f\n", b.SizeScore)
	breakdown += fmt.Sprintf("Contrarian:     %.1f\n", b.ContrarianScore)
	breakdown += fmt.Sprintf("Event:          %.1f\n", b.EventScore)
	breakdown += fmt.Sprintf("Liquidity:      %.1f\n", b.LiquidityScore)
	breakdown += fmt.Sprintf("Timing:         %.1f\n", b.TimingScore)
	breakdown += fmt.Sprintf("\nComposite:      %.1f\n\n", b.InsiderScore)

	return breakdown
}
