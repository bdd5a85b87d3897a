// Package yahoo is a client for the Yahoo Finance chart API. It serves both
// underlying stock quotes and option premiums (via OCC option symbols).
package yahoo

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
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// FinanceClient provides methods for fetching price data from Yahoo Finance.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewFinanceClient creates a new Yahoo Finance client. An empty baseURL uses DefaultBaseURL.
func NewFinanceClient(baseURL string, timeout time.Duration, log zerolog.Logger) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

func (c *FinanceClient) Name() string { return "yahoo" }

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp and close price data is present
//   - Data arrays have matching lengths
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, quote.ErrNoData
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned: %w", quote.ErrNoData)
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned: %w", quote.ErrNoData)
	}

	series := result.Indicators.Quote[0]
	if len(series.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if series.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(ts, 0).UTC(),
			PriceOpen:  valueAt(series.Open, i),
			PriceClose: *series.Close[i],
			PriceHigh:  valueAt(series.High, i),
			PriceLow:   valueAt(series.Low, i),
			Volume:     valueAt(series.Volume, i),
		})
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}

	return PriceChart{
		Symbol:             result.Meta.Symbol,
		Name:               name,
		Currency:           result.Meta.Currency,
		RegularMarketPrice: result.Meta.RegularMarketPrice,
		Indicators:         indicators,
	}, nil
}

// QueryChart fetches daily price data for symbol over the given range ("5d", "1y").
func (c *FinanceClient) QueryChart(ctx context.Context, symbol, rng string) (Response, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))
	return c.queryYahoo(ctx, endpoint)
}

// StockQuote returns the latest price of symbol, its change against the
// previous close and statistics over the last year of daily closes.
func (c *FinanceClient) StockQuote(ctx context.Context, symbol string) (quote.StockQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	resp, err := c.QueryChart(ctx, symbol, "1y")
	if err != nil {
		return quote.StockQuote{}, err
	}
	chart, err := ParseChart(resp)
	if err != nil {
		return quote.StockQuote{}, err
	}

	closes := chart.Closes()
	if len(closes) == 0 {
		return quote.StockQuote{}, quote.ErrNoData
	}

	price := chart.RegularMarketPrice
	if price <= 0 {
		price = closes[len(closes)-1]
	}

	sq := quote.StockQuote{
		Symbol: symbol,
		Name:   chart.Name,
		Price:  price,
		Stats:  stats(closes),
	}

	// The previous close is the last daily close before today's price.
	if prev := previousClose(closes, price); prev > 0 {
		change := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(prev))
		sq.Change = change.InexactFloat64()
		sq.ChangePercent = change.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromFloat(prev)).InexactFloat64()
	}
	return sq, nil
}

// ContractPremium returns the latest price of the option's OCC symbol.
func (c *FinanceClient) ContractPremium(ctx context.Context, ref quote.OptionRef) (quote.Quote, error) {
	if err := ref.Validate(); err != nil {
		return quote.Quote{}, err
	}

	resp, err := c.QueryChart(ctx, quote.OCCSymbol(ref), "5d")
	if err != nil {
		return quote.Quote{}, err
	}
	chart, err := ParseChart(resp)
	if err != nil {
		return quote.Quote{}, err
	}

	premium := chart.RegularMarketPrice
	if premium <= 0 && len(chart.Indicators) > 0 {
		premium = chart.Indicators[len(chart.Indicators)-1].PriceClose
	}
	if premium <= 0 {
		return quote.Quote{}, quote.ErrNoData
	}
	return quote.Quote{Premium: premium, Source: c.Name()}, nil
}

// queryYahoo executes a request against the Yahoo Finance API and checks
// the response for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, fmt.Errorf("failed to decode yahoo response: %w", err)
	}

	if e := response.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return response, quote.ErrNoData
		}
		return response, fmt.Errorf("yahoo error: %s: %s", e.Code, e.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}

func stats(closes []float64) *quote.StockStats {
	five := closes[max(0, len(closes)-5):]
	yearAvg, yearLow, _ := summarize(closes)
	fiveAvg, fiveLow, fiveHigh := summarize(five)
	return &quote.StockStats{
		FiveDayAvg:      fiveAvg,
		FiveDayLow:      fiveLow,
		FiveDayHigh:     fiveHigh,
		FiftyTwoWeekAvg: yearAvg,
		FiftyTwoWeekLow: yearLow,
	}
}

func summarize(values []float64) (avg, low, high float64) {
	sum := decimal.Zero
	low, high = values[0], values[0]
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
		low = min(low, v)
		high = max(high, v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).InexactFloat64(), low, high
}

// previousClose returns the close before the latest one when the latest close
// equals price (market closed), otherwise the latest close itself.
func previousClose(closes []float64, price float64) float64 {
	last := closes[len(closes)-1]
	if last != price {
		return last
	}
	if len(closes) > 1 {
		return closes[len(closes)-2]
	}
	return 0
}

func valueAt[T float64 | int64](values []*T, i int) T {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}
