package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// WatchlistRepository reads and writes the watchlist as a JSON array of
// stocks under WatchlistKey.
type WatchlistRepository struct {
	store KeyValueStore
	log   zerolog.Logger
}

// NewWatchlistRepository creates a new WatchlistRepository on the given store.
func NewWatchlistRepository(store KeyValueStore, log zerolog.Logger) *WatchlistRepository {
	return &WatchlistRepository{store: store, log: log}
}

// Load returns the persisted watchlist.
func (r *WatchlistRepository) Load(ctx context.Context) ([]model.Stock, error) {
	return loadArray[model.Stock](ctx, r.store, WatchlistKey, r.log)
}

// Save replaces the persisted watchlist with stocks.
func (r *WatchlistRepository) Save(ctx context.Context, stocks []model.Stock) error {
	return saveArray(ctx, r.store, WatchlistKey, stocks)
}
