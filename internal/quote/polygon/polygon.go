// Package polygon is a client for the Polygon.io option snapshot API.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
)

// DefaultBaseURL is the public Polygon.io API endpoint.
const DefaultBaseURL = "https://api.polygon.io"

// Client fetches option snapshots from Polygon.io.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        zerolog.Logger
}

// NewClient creates a Polygon client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		log:        log,
	}
}

func (c *Client) Name() string { return "polygon" }

// Snapshot fetches the raw snapshot of one option contract. A 404 or a
// response without results is reported as quote.ErrNoData.
func (c *Client) Snapshot(ctx context.Context, ref quote.OptionRef) (SnapshotResult, error) {
	if err := ref.Validate(); err != nil {
		return SnapshotResult{}, err
	}

	ticker := quote.BuildOptionTicker(ref)
	endpoint := fmt.Sprintf("%s/v3/snapshot/options/%s/%s?apiKey=%s",
		c.baseURL,
		url.PathEscape(strings.ToUpper(ref.Underlying)),
		url.PathEscape(ticker),
		url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SnapshotResult{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("polygon request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return SnapshotResult{}, quote.ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return SnapshotResult{}, fmt.Errorf("polygon returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return SnapshotResult{}, err
	}

	var body SnapshotResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return SnapshotResult{}, fmt.Errorf("failed to decode polygon response: %w", err)
	}
	if body.Status != "OK" || body.Results == nil {
		c.log.Debug().Str("ticker", ticker).Str("status", body.Status).Str("message", body.Message).Msg("No snapshot data")
		return SnapshotResult{}, quote.ErrNoData
	}

	return *body.Results, nil
}

// ContractPremium returns the last quoted price, falling back to the quote
// midpoint and then the day's close.
func (c *Client) ContractPremium(ctx context.Context, ref quote.OptionRef) (quote.Quote, error) {
	snap, err := c.Snapshot(ctx, ref)
	if err != nil {
		return quote.Quote{}, err
	}

	premium := snap.premium()
	if premium <= 0 {
		return quote.Quote{}, quote.ErrNoData
	}

	q := quote.Quote{
		Premium:      premium,
		OpenInterest: snap.OpenInterest,
		Source:       c.Name(),
	}
	if snap.LastQuote != nil {
		q.Bid = snap.LastQuote.Bid
		q.Ask = snap.LastQuote.Ask
	}
	if snap.Day != nil {
		q.Volume = snap.Day.Volume
	}
	if snap.Greeks != nil || snap.ImpliedVolatility != nil {
		q.Greeks = &model.Greeks{ImpliedVolatility: snap.ImpliedVolatility}
		if g := snap.Greeks; g != nil {
			q.Greeks.Delta = g.Delta
			q.Greeks.Gamma = g.Gamma
			q.Greeks.Theta = g.Theta
			q.Greeks.Vega = g.Vega
			q.Greeks.Rho = g.Rho
		}
	}
	return q, nil
}

func (r SnapshotResult) premium() float64 {
	if r.LastQuote != nil {
		if r.LastQuote.LastPrice > 0 {
			return r.LastQuote.LastPrice
		}
		if r.LastQuote.Midpoint > 0 {
			return r.LastQuote.Midpoint
		}
	}
	if r.Day != nil {
		return r.Day.Close
	}
	return 0
}
