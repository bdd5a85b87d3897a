package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
)

const stockChart = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL","longName":"Apple Inc.","regularMarketPrice":104},
  "timestamp":[1700000000,1700086400,1700172800,1700259200,1700345600,1700432000],
  "indicators":{"quote":[{
    "open":[90,95,null,100,101,102],
    "close":[90,96,null,100,100,104],
    "high":[91,97,null,101,102,105],
    "low":[89,94,null,99,99,101],
    "volume":[10,20,null,30,40,50]
  }]}
}],"error":null}}`

const optionChart = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL250117C00150000","regularMarketPrice":0},
  "timestamp":[1700000000,1700086400],
  "indicators":{"quote":[{"close":[3.1,3.35]}]}
}],"error":null}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *FinanceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFinanceClient(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestParseChart(t *testing.T) {
	t.Run("skips days without a close", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(stockChart)) })
		resp, err := c.QueryChart(context.Background(), "AAPL", "1y")
		require.NoError(t, err)

		chart, err := ParseChart(resp)
		require.NoError(t, err)
		assert.Equal(t, "Apple Inc.", chart.Name)
		assert.Len(t, chart.Indicators, 5)
		assert.Equal(t, []float64{90, 96, 100, 100, 104}, chart.Closes())
		assert.Equal(t, int64(20), chart.Indicators[1].Volume)
	})

	t.Run("empty result is no data", func(t *testing.T) {
		_, err := ParseChart(Response{})
		assert.ErrorIs(t, err, quote.ErrNoData)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{Timestamp: []int64{1, 2}}}}}
		one := 1.0
		resp.Chart.Result[0].Indicators.Quote = []QuoteSeries{{Close: []*float64{&one}}}

		_, err := ParseChart(resp)
		assert.Error(t, err)
	})
}

func TestStockQuote(t *testing.T) {
	var gotPath, gotRange, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(stockChart))
	})

	sq, err := c.StockQuote(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "1y", gotRange)
	assert.NotEmpty(t, gotUA)

	assert.Equal(t, "AAPL", sq.Symbol)
	assert.Equal(t, 104.0, sq.Price)
	assert.Equal(t, 4.0, sq.Change)
	assert.Equal(t, 4.0, sq.ChangePercent)
	require.NotNil(t, sq.Stats)
	assert.Equal(t, 98.0, sq.Stats.FiveDayAvg)
	assert.Equal(t, 90.0, sq.Stats.FiveDayLow)
	assert.Equal(t, 104.0, sq.Stats.FiveDayHigh)
	assert.Equal(t, 90.0, sq.Stats.FiftyTwoWeekLow)
}

func TestContractPremium(t *testing.T) {
	expiry, err := model.ParseDate("2025-01-17")
	require.NoError(t, err)
	ref := quote.OptionRef{Underlying: "AAPL", Expiration: expiry, OptionType: model.OptionCall, Strike: 150}

	t.Run("latest close of the OCC symbol", func(t *testing.T) {
		var gotPath string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(optionChart))
		})

		q, err := c.ContractPremium(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, "/v8/finance/chart/AAPL250117C00150000", gotPath)
		assert.Equal(t, 3.35, q.Premium)
		assert.Equal(t, "yahoo", q.Source)
	})

	t.Run("unknown symbol is no data", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		})

		_, err := c.ContractPremium(context.Background(), ref)
		assert.ErrorIs(t, err, quote.ErrNoData)
	})

	t.Run("api error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"invalid range"}}}`))
		})

		_, err := c.ContractPremium(context.Background(), ref)
		require.Error(t, err)
		assert.NotErrorIs(t, err, quote.ErrNoData)
	})

	t.Run("non-JSON failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too Many Requests"))
		})

		_, err := c.ContractPremium(context.Background(), ref)
		assert.Error(t, err)
	})
}
