package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

// Refresher runs one quote refresh.
type Refresher interface {
	Refresh(ctx context.Context) (service.RefreshResult, error)
}

// RefreshJob refreshes watchlist quotes and re-marks the ledger.
type RefreshJob struct {
	refresher Refresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshJob creates a refresh job. Each run is bounded by timeout.
func NewRefreshJob(refresher Refresher, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		timeout:   timeout,
		log:       log.With().Str("job", "quote_refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "quote_refresh"
}

// Run executes the refresh
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.refresher.Refresh(ctx)
	if err != nil {
		return err
	}
	if result.Superseded {
		j.log.Info().Msg("Scheduled refresh superseded by a manual one")
		return nil
	}

	j.log.Debug().
		Int("priced", result.Priced).
		Int("failed", result.Failed).
		Int64("duration_ms", result.DurationMS).
		Msg("Scheduled refresh committed")
	return nil
}
