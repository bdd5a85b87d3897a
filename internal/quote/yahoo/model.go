package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata and the latest market price
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays; entries are null on days without trades
//   - Chart.Error: Optional error object from the Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []Result   `json:"result"`
	Error  *ChartError `json:"error"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type Result struct {
	Meta       Meta    `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []QuoteSeries `json:"quote"`
	} `json:"indicators"`
}

type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	InstrumentType     string  `json:"instrumentType"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
}

type QuoteSeries struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Volume []*int64   `json:"volume"`
}

// PriceChart represents a parsed price chart.
// Days on which Yahoo reported no close are dropped.
type PriceChart struct {
	Symbol             string
	Name               string
	Currency           string
	RegularMarketPrice float64
	Indicators         []Indicators
}

// Indicators represents a single day's price data for an instrument.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	PriceHigh  float64
	PriceLow   float64
	Volume     int64
}

// Closes returns the daily closing prices, oldest first.
func (c PriceChart) Closes() []float64 {
	closes := make([]float64, len(c.Indicators))
	for i, ind := range c.Indicators {
		closes[i] = ind.PriceClose
	}
	return closes
}
