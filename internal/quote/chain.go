package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/metrics"
)

// Chain asks each source in order and returns the first quote found.
type Chain struct {
	sources []PremiumSource
	log     zerolog.Logger
}

// NewChain creates a Chain over sources. Nil sources are skipped.
func NewChain(log zerolog.Logger, sources ...PremiumSource) *Chain {
	c := &Chain{log: log}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

func (c *Chain) Name() string { return "chain" }

// ContractPremium returns the first successful quote. When every source
// fails or has no data the result wraps ErrNoData.
func (c *Chain) ContractPremium(ctx context.Context, ref OptionRef) (Quote, error) {
	var errs []error
	for _, s := range c.sources {
		if err := ctx.Err(); err != nil {
			return Quote{}, err
		}

		q, err := s.ContractPremium(ctx, ref)
		switch {
		case err == nil:
			metrics.QuoteFetches.WithLabelValues(s.Name(), "ok").Inc()
			if q.Source == "" {
				q.Source = s.Name()
			}
			return q, nil
		case errors.Is(err, ErrNoData):
			metrics.QuoteFetches.WithLabelValues(s.Name(), "no_data").Inc()
		default:
			metrics.QuoteFetches.WithLabelValues(s.Name(), "error").Inc()
			c.log.Debug().Err(err).Str("source", s.Name()).Str("ticker", OCCSymbol(ref)).Msg("Quote source failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return Quote{}, fmt.Errorf("%w: %w", ErrNoData, errors.Join(errs...))
	}
	return Quote{}, ErrNoData
}
