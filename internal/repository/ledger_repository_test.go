package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

type brokenStore struct{ err error }

func (s brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s brokenStore) Set(context.Context, string, string) error         { return s.err }

// Written by the mobile app before the backend existed.
const legacyLedger = `[
  {
    "id": "1702300000000",
    "symbol": "AAPL 12/15/23 180.00 CALL",
    "expiration": "2023-12-15",
    "strike": 180,
    "type": "call",
    "averagePrice": 3.2,
    "quantity": 5,
    "currentValue": 16,
    "pnl": 0,
    "pnlPercent": 0,
    "tradeRecords": [
      {"id": "trade-1", "date": "2023-11-01", "type": "buy", "premium": 3.2, "quantity": 5, "totalValue": 16, "isClosing": false, "profit": 0},
      {"id": "trade-2", "date": "2023-11-20T00:00:00.000Z", "type": "sell", "premium": 4.1, "quantity": 2, "totalValue": 8.2, "isClosing": true, "profit": 1.8}
    ]
  }
]`

func TestLedgerRepository_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("legacy app format", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, LedgerKey, legacyLedger))

		groups, err := NewLedgerRepository(store, zerolog.Nop()).Load(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		g := groups[0]
		assert.Equal(t, "1702300000000", g.ID)
		assert.Equal(t, 180.0, g.StrikePrice)
		assert.Equal(t, "2023-12-15", g.ExpirationDate.String())
		assert.Equal(t, model.OptionCall, g.OptionType)
		require.Len(t, g.TradeRecords, 2)
		assert.Equal(t, model.SideBuy, g.TradeRecords[0].Side)
		assert.Equal(t, model.SideSell, g.TradeRecords[1].Side)
		assert.Equal(t, time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC), g.TradeRecords[1].Date.Time)
		assert.True(t, g.TradeRecords[1].IsClosing)
	})

	t.Run("absent key is an empty ledger", func(t *testing.T) {
		groups, err := NewLedgerRepository(NewMemoryStore(), zerolog.Nop()).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
		assert.NotNil(t, groups)
	})

	t.Run("malformed JSON is an empty ledger", func(t *testing.T) {
		for _, raw := range []string{"{not json", `{"id":"object-not-array"}`, `[{"tradeRecords":"nope"}]`, "null"} {
			store := NewMemoryStore()
			require.NoError(t, store.Set(ctx, LedgerKey, raw))

			groups, err := NewLedgerRepository(store, zerolog.Nop()).Load(ctx)
			require.NoError(t, err, raw)
			assert.Empty(t, groups, raw)
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		boom := errors.New("disk gone")
		_, err := NewLedgerRepository(brokenStore{err: boom}, zerolog.Nop()).Load(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("corrupt encrypted value is an empty ledger", func(t *testing.T) {
		groups, err := NewLedgerRepository(brokenStore{err: ErrCorruptValue}, zerolog.Nop()).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestLedgerRepository_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewLedgerRepository(store, zerolog.Nop())

	expiry, err := model.ParseDate("2025-01-17")
	require.NoError(t, err)

	groups := []model.ContractGroup{{
		ID: "c1",
		ContractDescriptor: model.ContractDescriptor{
			UnderlyingSymbol: "AAPL",
			Symbol:           "AAPL 01/17/25 150.00 CALL",
			StrikePrice:      150,
			ExpirationDate:   expiry,
			OptionType:       model.OptionCall,
		},
		TradeRecords: []model.TradeRecord{{ID: "t1", Date: expiry, Side: model.SideBuy, Premium: 2.5, Quantity: 1}},
	}}

	require.NoError(t, repo.Save(ctx, groups))

	raw, _, _ := store.Get(ctx, LedgerKey)
	assert.Contains(t, raw, `"tradeRecords":[`)
	assert.Contains(t, raw, `"expirationDate":"2025-01-17"`)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, groups, loaded)
}

func TestLedgerRepository_SaveEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, NewLedgerRepository(store, zerolog.Nop()).Save(ctx, nil))

	raw, ok, _ := store.Get(ctx, LedgerKey)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestWatchlistRepository(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewWatchlistRepository(store, zerolog.Nop())

	// Shape persisted by the app's follow list.
	require.NoError(t, store.Set(ctx, WatchlistKey, `[{"id":"1","symbol":"AAPL","name":"Apple Inc.","currentPrice":"$175.43","change":"+2.10","changePercent":"+1.21%","isUp":true,"contracts":[{"id":"c1","symbol":"AAPL","strikePrice":"$180.00","expirationDate":"2024-01-19","premium":"$3.45","type":"call"}]}]`))

	stocks, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	require.Len(t, stocks[0].Contracts, 1)
	assert.Equal(t, "$3.45", stocks[0].Contracts[0].Premium)
	assert.Equal(t, model.OptionCall, stocks[0].Contracts[0].OptionType)

	stocks[0].Contracts[0].Premium = "$3.60"
	require.NoError(t, repo.Save(ctx, stocks))

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$3.60", reloaded[0].Contracts[0].Premium)
}
