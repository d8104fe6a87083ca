package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"whaletracker/internal/config"
)

// Client handles communication with the Kalshi trade API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pageDelay  time.Duration
}

// NewClient creates a new Kalshi API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.KalshiAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.KalshiRPS), 1),
		pageDelay:  cfg.PageDelay,
	}
}

// GetTrades fetches one page of recent trades, optionally scoped to a ticker
func (c *Client) GetTrades(ctx context.Context, limit int, cursor, ticker string) (*TradesResponse, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if ticker != "" {
		q.Set("ticker", ticker)
	}

	var resp TradesResponse
	if err := c.get(ctx, "/markets/trades", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAllTrades follows the trade cursor until exhausted or maxTrades is reached
func (c *Client) GetAllTrades(ctx context.Context, maxTrades int) ([]RawTrade, error) {
	var all []RawTrade
	cursor := ""

	for len(all) < maxTrades {
		resp, err := c.GetTrades(ctx, 1000, cursor, "")
		if err != nil {
			return all, err
		}
		if len(resp.Trades) == 0 {
			break
		}
		all = append(all, resp.Trades...)
		cursor = resp.Cursor
		if cursor == "" {
			break
		}

		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	if len(all) > maxTrades {
		all = all[:maxTrades]
	}
	return all, nil
}

// GetMarkets fetches one page of markets filtered by status
func (c *Client) GetMarkets(ctx context.Context, limit int, cursor, status string) (*MarketsResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("status", status)
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAllMarkets follows the market cursor until exhausted or maxMarkets is reached
func (c *Client) GetAllMarkets(ctx context.Context, maxMarkets int) ([]RawMarket, error) {
	var all []RawMarket
	cursor := ""

	for {
		resp, err := c.GetMarkets(ctx, 200, cursor, "open")
		if err != nil {
			return all, err
		}
		if len(resp.Markets) == 0 {
			break
		}
		all = append(all, resp.Markets...)
		cursor = resp.Cursor
		if cursor == "" || len(all) >= maxMarkets {
			break
		}

		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	if len(all) > maxMarkets {
		all = all[:maxMarkets]
	}
	return all, nil
}

// GetMarket fetches a single market by ticker
func (c *Client) GetMarket(ctx context.Context, ticker string) (*RawMarket, error) {
	var resp MarketResponse
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Market == nil {
		return nil, fmt.Errorf("no market found for ticker %s", ticker)
	}
	return resp.Market, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
