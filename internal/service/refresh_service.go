package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
)

// RefreshResult summarizes one quote refresh.
type RefreshResult struct {
	Contracts    int           `json:"contracts"`
	Priced       int           `json:"priced"`
	Failed       int           `json:"failed"`
	Stocks       int           `json:"stocks"`
	StocksFailed int           `json:"stocksFailed"`
	Superseded   bool          `json:"superseded"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"durationMs"`
}

// RefreshService pulls fresh quotes for the watchlist and re-marks the ledger.
type RefreshService struct {
	ledger      *LedgerService
	watchlist   *WatchlistService
	premiums    quote.PremiumSource
	stocks      quote.StockSource
	concurrency int
	log         zerolog.Logger
}

// NewRefreshService creates a RefreshService. stocks may be nil, in which case
// only contract premiums are refreshed.
func NewRefreshService(ledger *LedgerService, watchlist *WatchlistService, premiums quote.PremiumSource, stocks quote.StockSource, concurrency int, log zerolog.Logger) *RefreshService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RefreshService{
		ledger:      ledger,
		watchlist:   watchlist,
		premiums:    premiums,
		stocks:      stocks,
		concurrency: concurrency,
		log:         log,
	}
}

// Refresh fetches the premium of every watched contract and the quote of
// every followed stock, then commits them to the watchlist and the ledger.
//
// A contract whose quote cannot be fetched keeps its previous premium. When a
// newer refresh starts before this one finishes, this one writes nothing and
// reports Superseded. A persist failure is returned wrapped in
// apperrors.ErrPersistFailed after both writes were attempted.
func (s *RefreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	seq := s.ledger.BeginRefresh()
	targets, symbols := s.watchlist.Targets()

	result := RefreshResult{Contracts: len(targets), Stocks: len(symbols)}

	var (
		mu             sync.Mutex
		contractQuotes = make(map[string]quote.Quote, len(targets))
		stockQuotes    = make(map[string]quote.StockQuote, len(symbols))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, t := range targets {
		g.Go(func() error {
			q, err := s.premiums.ContractPremium(gctx, t.Ref)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				if !errors.Is(err, quote.ErrNoData) {
					s.log.Warn().Err(err).Str("contract", t.ContractID).Msg("Premium fetch failed")
				}
				return nil
			}
			result.Priced++
			contractQuotes[t.ContractID] = q
			return nil
		})
	}

	if s.stocks != nil {
		for _, symbol := range symbols {
			g.Go(func() error {
				q, err := s.stocks.StockQuote(gctx, symbol)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.StocksFailed++
					s.log.Debug().Err(err).Str("symbol", symbol).Msg("Stock quote fetch failed")
					return nil
				}
				stockQuotes[symbol] = q
				return nil
			})
		}
	}

	// Workers never return an error; fetch failures are counted instead.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.Refreshes.WithLabelValues("failed").Inc()
		return result, fmt.Errorf("refresh cancelled: %w", err)
	}

	if !s.ledger.IsCurrent(seq) {
		return s.superseded(result, start), nil
	}

	// A watchlist persist failure still commits the premiums to the ledger.
	var watchlistErr error
	committed, err := s.ledger.CommitRefreshWith(ctx, seq, func() (map[string]string, error) {
		if err := s.watchlist.ApplyQuotes(ctx, contractQuotes, stockQuotes); err != nil {
			if !errors.Is(err, apperrors.ErrPersistFailed) {
				return nil, err
			}
			watchlistErr = err
		}
		return s.watchlist.Premiums(), nil
	})
	if err != nil && !errors.Is(err, apperrors.ErrPersistFailed) {
		metrics.Refreshes.WithLabelValues("failed").Inc()
		return result, err
	}
	if !committed {
		return s.superseded(result, start), nil
	}
	persistErr := errors.Join(watchlistErr, err)

	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()
	if persistErr != nil {
		metrics.Refreshes.WithLabelValues("failed").Inc()
		return result, persistErr
	}

	metrics.Refreshes.WithLabelValues("committed").Inc()
	s.log.Info().
		Int("contracts", result.Contracts).
		Int("priced", result.Priced).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Quotes refreshed")
	return result, nil
}

func (s *RefreshService) superseded(result RefreshResult, start time.Time) RefreshResult {
	metrics.Refreshes.WithLabelValues("superseded").Inc()
	s.log.Info().Msg("Refresh superseded by a newer one, discarding results")
	result.Superseded = true
	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()
	return result
}
