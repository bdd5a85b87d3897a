package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api"
	"github.com/ndewijer/Option-Ledger-Backend/internal/config"
	"github.com/ndewijer/Option-Ledger-Backend/internal/database"
	"github.com/ndewijer/Option-Ledger-Backend/internal/ibkr"
	"github.com/ndewijer/Option-Ledger-Backend/internal/logger"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote/polygon"
	"github.com/ndewijer/Option-Ledger-Backend/internal/quote/yahoo"
	"github.com/ndewijer/Option-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Option-Ledger-Backend/internal/scheduler"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
	"github.com/ndewijer/Option-Ledger-Backend/internal/version"
)

const refreshTimeout = 2 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		l := logger.New(logger.Config{})
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", version.Version).Str("storage", cfg.Storage.Driver).Msg("Starting option ledger")

	ctx := context.Background()

	store, db, closeStore, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer closeStore()

	// Create repositories
	ledgerRepo := repository.NewLedgerRepository(store, logger.Component(log, "ledger_repository"))
	watchlistRepo := repository.NewWatchlistRepository(store, logger.Component(log, "watchlist_repository"))

	// Create services
	ledgerService := service.NewLedgerService(ledgerRepo, logger.Component(log, "ledger"))
	watchlistService := service.NewWatchlistService(watchlistRepo, logger.Component(log, "watchlist"))

	// An unreadable store leaves the service empty; it keeps running so the
	// user can still see the error on the health endpoint.
	if err := ledgerService.Load(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to load ledger")
	}
	if err := watchlistService.Load(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to load watchlist")
	}
	markService := service.NewMarkService(ledgerService, watchlistService)
	if err := markService.Remark(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to persist recomputed ledger")
	}

	// Quote sources: Polygon first when a key is configured, Yahoo as fallback.
	yahooClient := yahoo.NewFinanceClient(cfg.Quote.YahooBaseURL, cfg.Quote.Timeout, logger.Component(log, "yahoo"))
	sources := []quote.PremiumSource{}
	if cfg.Quote.PolygonAPIKey != "" {
		sources = append(sources, polygon.NewClient(cfg.Quote.PolygonBaseURL, cfg.Quote.PolygonAPIKey, cfg.Quote.Timeout, logger.Component(log, "polygon")))
	}
	sources = append(sources, yahooClient)
	premiums := quote.NewChain(logger.Component(log, "quotes"), sources...)

	refreshService := service.NewRefreshService(
		ledgerService,
		watchlistService,
		premiums,
		yahooClient,
		cfg.Quote.Concurrency,
		logger.Component(log, "refresh"),
	)
	analyticsService := service.NewAnalyticsService(ledgerService)

	// IBKR Flex import; unconfigured without a token and query id.
	importService := service.NewImportService(
		ledgerService,
		ibkr.NewFinanceClient(cfg.IBKR.BaseURL, cfg.Quote.Timeout, logger.Component(log, "ibkr")),
		cfg.IBKR.FlexToken,
		cfg.IBKR.FlexQueryID,
		logger.Component(log, "import"),
	)

	features := map[string]bool{
		"polygon_quotes":    cfg.Quote.PolygonAPIKey != "",
		"scheduled_refresh": cfg.Refresh.Frequency != scheduler.FrequencyManual,
		"encryption":        cfg.Storage.EncryptionKey != "",
		"ibkr_import":       importService.Configured(),
	}
	systemService := service.NewSystemService(store, db, cfg.Storage.Driver, features)

	// Scheduled refresh
	sched := scheduler.New(logger.Component(log, "scheduler"))
	scheduled, err := sched.AddJobAtFrequency(cfg.Refresh.Frequency, scheduler.NewRefreshJob(refreshService, refreshTimeout, logger.Component(log, "refresh_job")))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule quote refresh")
	}
	if scheduled {
		sched.Start()
		defer sched.Stop()
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Ledger:    ledgerService,
		Watchlist: watchlistService,
		Refresh:   refreshService,
		Analytics: analyticsService,
		Import:    importService,
		Marks:     markService,
	}, cfg, logger.Component(log, "http"))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore opens the configured key-value store, wrapped in encryption when a
// key is set. db is only non-nil for SQLite.
func openStore(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (repository.KeyValueStore, *sql.DB, func(), error) {
	var (
		store     repository.KeyValueStore
		db        *sql.DB
		closeFunc = func() {}
	)

	switch cfg.Driver {
	case config.StorageSQLite:
		var err error
		db, err = database.Open(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("path", cfg.Path).Msg("Connected to database")
		store = repository.NewSQLiteStore(db)
		closeFunc = func() { db.Close() }
	case config.StorageRedis:
		rs, err := repository.OpenRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("prefix", cfg.KeyPrefix).Msg("Connected to redis")
		store = rs
		closeFunc = func() { rs.Close() }
	default:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		store = repository.NewMemoryStore()
	}

	if cfg.EncryptionKey != "" {
		enc, err := repository.NewEncryptedStore(store, cfg.EncryptionKey)
		if err != nil {
			closeFunc()
			return nil, nil, nil, err
		}
		store = enc
	}

	return store, db, closeFunc, nil
}
