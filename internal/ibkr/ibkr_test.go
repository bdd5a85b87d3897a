package ibkr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `<FlexQueryResponse queryName="options" type="AF">
<FlexStatements count="1">
<FlexStatement accountId="U1234567" fromDate="20240301" toDate="20240331" whenGenerated="20240401;120000">
<Trades>
<Trade assetCategory="OPT" currency="USD" symbol="AAPL  241220C00180000" underlyingSymbol="AAPL" strike="180" expiry="20241220" putCall="C" multiplier="100" quantity="5" tradePrice="3.45" transactionID="1001" tradeDate="20240301" buySell="BUY" openCloseIndicator="O"/>
<Trade assetCategory="STK" currency="USD" symbol="AAPL" quantity="10" tradePrice="170" transactionID="1002" tradeDate="20240302" buySell="BUY" openCloseIndicator="O"/>
</Trades>
</FlexStatement>
</FlexStatements>
</FlexQueryResponse>`

func notReady(code int) string {
	return fmt.Sprintf(`<FlexStatementResponse timestamp="01 April, 2024 12:00 PM EDT">
<Status>Warn</Status><ErrorCode>%d</ErrorCode><ErrorMessage>Statement generation in progress.</ErrorMessage>
</FlexStatementResponse>`, code)
}

func newTestClient(t *testing.T, getStatement http.HandlerFunc) *FinanceClient {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/SendRequest", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "secret" {
			fmt.Fprint(w, `<FlexStatementResponse><Status>Fail</Status><ErrorCode>1012</ErrorCode><ErrorMessage>Token has expired.</ErrorMessage></FlexStatementResponse>`)
			return
		}
		fmt.Fprintf(w, `<FlexStatementResponse><Status>Success</Status><ReferenceCode>42</ReferenceCode><Url>%s/GetStatement</Url></FlexStatementResponse>`, srv.URL)
	})
	mux.HandleFunc("/GetStatement", getStatement)

	c := NewFinanceClient(srv.URL, 5*time.Second, zerolog.Nop())
	c.backoff = time.Millisecond
	c.maxBackoff = time.Millisecond
	return c
}

func TestFinanceClient_RequestFlexReport(t *testing.T) {
	ctx := context.Background()

	t.Run("polls until statement is ready", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				fmt.Fprint(w, notReady(1019))
				return
			}
			assert.Equal(t, "42", r.URL.Query().Get("q"))
			fmt.Fprint(w, statement)
		})

		report, err := c.RequestFlexReport(ctx, "secret", 7)
		require.NoError(t, err)

		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, 42, report.QueryID)
		require.Len(t, report.Trades(), 2)

		opt := report.Trades()[0]
		assert.True(t, opt.IsOption())
		assert.Equal(t, "AAPL", opt.UnderlyingSymbol)
		assert.Equal(t, 180.0, opt.Strike)
		assert.Equal(t, "C", opt.PutCall)
		assert.Equal(t, int64(1001), opt.TransactionID)
		assert.False(t, report.Trades()[1].IsOption())
	})

	t.Run("request error is returned", func(t *testing.T) {
		c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
			t.Error("statement must not be fetched")
		})

		_, err := c.RequestFlexReport(ctx, "expired", 7)
		assert.ErrorContains(t, err, "ibkr error 1012")
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, notReady(1019))
		})
		c.maxAttempts = 3

		_, err := c.RequestFlexReport(ctx, "secret", 7)
		assert.ErrorContains(t, err, "not ready after 3 attempts")
	})

	t.Run("missing credentials", func(t *testing.T) {
		c := NewFinanceClient("", time.Second, zerolog.Nop())

		_, err := c.RequestFlexReport(ctx, "", 0)
		assert.Error(t, err)
	})
}

func TestTrade_IsCancellation(t *testing.T) {
	assert.True(t, Trade{BuySell: "SELL (Ca.)"}.IsCancellation())
	assert.False(t, Trade{BuySell: "SELL"}.IsCancellation())
}
