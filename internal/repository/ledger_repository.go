package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
)

// LedgerRepository reads and writes the trade ledger as a JSON array of
// contract groups under LedgerKey.
type LedgerRepository struct {
	store KeyValueStore
	log   zerolog.Logger
}

// NewLedgerRepository creates a new LedgerRepository on the given store.
func NewLedgerRepository(store KeyValueStore, log zerolog.Logger) *LedgerRepository {
	return &LedgerRepository{store: store, log: log}
}

// Load returns the persisted contract groups. Derived fields in the result
// are whatever was stored and must be recomputed by the caller.
func (r *LedgerRepository) Load(ctx context.Context) ([]model.ContractGroup, error) {
	return loadArray[model.ContractGroup](ctx, r.store, LedgerKey, r.log)
}

// Save replaces the persisted ledger with groups.
func (r *LedgerRepository) Save(ctx context.Context, groups []model.ContractGroup) error {
	return saveArray(ctx, r.store, LedgerKey, groups)
}
