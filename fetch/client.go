// Package fetch retrieves daily OHLCV history from a Polygon-style
// aggregates API and converts it into detector price frames.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Stockmasterflex/legend-ai-scanner/vcp"
)

// Client fetches daily bars over HTTP. Safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	period  time.Duration
	client  *http.Client
}

// NewClient creates a market-data client against the given base URL.
// Lookback controls how much history each fetch requests; zero means
// one year.
func NewClient(baseURL, apiKey string, lookback time.Duration) *Client {
	if lookback <= 0 {
		lookback = 365 * 24 * time.Hour
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		period:  lookback,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// aggsResponse mirrors the vendor's aggregates payload.
type aggsResponse struct {
	Results []struct {
		T int64   `json:"t"` // timestamp (milliseconds)
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"` // volume arrives as float64
	} `json:"results"`
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// Fetch retrieves the symbol's daily history and returns it as a
// validated, date-ascending frame. An empty result set is an error so
// the scan driver can log and skip the symbol.
func (c *Client) Fetch(ctx context.Context, symbol string) (*vcp.PriceFrame, error) {
	now := time.Now().UTC()
	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		c.baseURL, symbol, formatDate(now.Add(-c.period)), formatDate(now))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Add("apiKey", c.apiKey)
	q.Add("adjusted", "true")
	q.Add("sort", "asc")
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result aggsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Status != "OK" && result.Status != "DELAYED" {
		return nil, fmt.Errorf("API returned non-OK status: %s", result.Status)
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	bars := make([]vcp.Bar, 0, len(result.Results))
	for _, r := range result.Results {
		bars = append(bars, vcp.Bar{
			Date:   time.Unix(0, r.T*int64(time.Millisecond)).UTC(),
			Open:   r.O,
			High:   r.H,
			Low:    r.L,
			Close:  r.C,
			Volume: int64(r.V),
		})
	}

	frame, err := vcp.NewPriceFrame(bars)
	if err != nil {
		return nil, fmt.Errorf("malformed price data for %s: %w", symbol, err)
	}
	return frame, nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
