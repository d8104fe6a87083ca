package polymarket

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

// Client handles communication with the Polymarket Gamma and Data APIs.
// Markets come from Gamma (offset-paginated); recent trades come from the
// flat Data API endpoint.
type Client struct {
	gammaURL    string
	dataURL     string
	httpClient  *http.Client
	gammaLimit  *rate.Limiter
	dataLimit   *rate.Limiter
	pageDelay   time.Duration
}

// NewClient creates a new Polymarket client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		gammaURL:   cfg.PolymarketGammaAPI,
		dataURL:    cfg.PolymarketDataAPI,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		gammaLimit: rate.NewLimiter(rate.Limit(cfg.GammaRPS), 1),
		dataLimit:  rate.NewLimiter(rate.Limit(cfg.DataRPS), 1),
		pageDelay:  cfg.PageDelay,
	}
}

// GetTrades fetches recent trades from the Data API
func (c *Client) GetTrades(ctx context.Context, limit int) ([]RawTrade, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var trades []RawTrade
	if err := c.get(ctx, c.dataLimit, c.dataURL+"/trades", q, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// GetMarkets fetches one offset page of active markets from the Gamma API
func (c *Client) GetMarkets(ctx context.Context, limit, offset int) ([]RawMarket, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("active", "true")
	q.Set("closed", "false")

	var markets []RawMarket
	if err := c.get(ctx, c.gammaLimit, c.gammaURL+"/markets", q, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// GetAllMarkets walks offset pages until a short page or maxOffset is reached
func (c *Client) GetAllMarkets(ctx context.Context, maxOffset int) ([]RawMarket, error) {
	var all []RawMarket
	offset := 0

	for {
		markets, err := c.GetMarkets(ctx, 100, offset)
		if err != nil {
			return all, err
		}
		if len(markets) == 0 {
			break
		}
		all = append(all, markets...)
		if len(markets) < 100 || offset > maxOffset {
			break
		}
		offset += 100

		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	return all, nil
}

// GetTopVolumeMarkets fetches the highest 24h-volume active markets
func (c *Client) GetTopVolumeMarkets(ctx context.Context, limit int) ([]RawMarket, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order", "volume24hr")
	q.Set("ascending", "false")
	q.Set("active", "true")

	var markets []RawMarket
	if err := c.get(ctx, c.gammaLimit, c.gammaURL+"/markets", q, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// GetMarketByConditionID fetches a single market by its condition id
func (c *Client) GetMarketByConditionID(ctx context.Context, conditionID string) (*RawMarket, error) {
	q := url.Values{}
	q.Set("condition_ids", conditionID)

	var markets []RawMarket
	if err := c.get(ctx, c.gammaLimit, c.gammaURL+"/markets", q, &markets); err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("no market found for condition_id %s", conditionID)
	}
	return &markets[0], nil
}

func (c *Client) get(ctx context.Context, limiter *rate.Limiter, rawURL string, q url.Values, out interface{}) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(rawURL)
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
