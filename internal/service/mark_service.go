package service

import (
	"context"
)

// MarkService keeps the ledger valued at the premiums the watchlist holds.
// Watchlist changes go through the watchlist service; callers re-mark the
// ledger afterwards with Remark.
type MarkService struct {
	ledger    *LedgerService
	watchlist *WatchlistService
}

// NewMarkService creates a MarkService over ledger and watchlist.
func NewMarkService(ledger *LedgerService, watchlist *WatchlistService) *MarkService {
	return &MarkService{
		ledger:    ledger,
		watchlist: watchlist,
	}
}

// Remark recomputes every contract against the current watchlist premiums.
// A contract no longer watched, or watched without a usable premium, falls
// back to its average price.
func (s *MarkService) Remark(ctx context.Context) error {
	return s.ledger.RecomputeFrom(ctx, s.watchlist.Premiums)
}
