package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
	"github.com/ndewijer/Option-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

// Services bundles the services of one test application sharing a store.
type Services struct {
	Store     repository.KeyValueStore
	Ledger    *service.LedgerService
	Watchlist *service.WatchlistService
	Analytics *service.AnalyticsService
	Marks     *service.MarkService
}

// NewTestServices wires the ledger, watchlist, analytics and mark services onto
// store and loads them. A nil store means a fresh in-memory store.
func NewTestServices(t *testing.T, store repository.KeyValueStore) *Services {
	t.Helper()

	if store == nil {
		store = repository.NewMemoryStore()
	}
	log := zerolog.Nop()

	ledger := service.NewLedgerService(repository.NewLedgerRepository(store, log), log)
	watchlist := service.NewWatchlistService(repository.NewWatchlistRepository(store, log), log)

	ctx := context.Background()
	if err := ledger.Load(ctx); err != nil {
		t.Fatalf("Failed to load ledger: %v", err)
	}
	if err := watchlist.Load(ctx); err != nil {
		t.Fatalf("Failed to load watchlist: %v", err)
	}

	return &Services{
		Store:     store,
		Ledger:    ledger,
		Watchlist: watchlist,
		Analytics: service.NewAnalyticsService(ledger),
		Marks:     service.NewMarkService(ledger, watchlist),
	}
}

// NewTestRefreshService creates a RefreshService over s using the given sources.
func (s *Services) NewTestRefreshService(premiums quote.PremiumSource, stocks quote.StockSource) *service.RefreshService {
	return service.NewRefreshService(s.Ledger, s.Watchlist, premiums, stocks, 4, zerolog.Nop())
}

// MakeID generates a unique ID for testing.
func MakeID() string {
	return uuid.New().String()
}

// Day returns the calendar date y-m-d.
func Day(y int, m time.Month, d int) model.Date {
	return model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DaysAgo returns the calendar date n days before now.
func DaysAgo(n int) model.Date {
	return model.NewDate(time.Now().AddDate(0, 0, -n))
}
