package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Option-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Option-Ledger-Backend/internal/config"
	"github.com/ndewijer/Option-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Option-Ledger-Backend/internal/service"
)

// Services holds the services the router exposes. Refresh, Import and Marks
// may be nil.
type Services struct {
	System    *service.SystemService
	Ledger    *service.LedgerService
	Watchlist *service.WatchlistService
	Refresh   *service.RefreshService
	Analytics *service.AnalyticsService
	Import    *service.ImportService
	Marks     *service.MarkService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/ledger", func(r chi.Router) {
			ledgerHandler := handlers.NewLedgerHandler(svc.Ledger, svc.Refresh, svc.Marks)
			r.Get("/contracts", ledgerHandler.Contracts)
			r.Get("/totals", ledgerHandler.Totals)
			r.Post("/trades", ledgerHandler.CreateTrade)
			r.Post("/refresh", ledgerHandler.Refresh)
			r.Post("/recompute", ledgerHandler.Recompute)

			importHandler := handlers.NewImportHandler(svc.Import)
			r.Post("/import", importHandler.Import)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.ValidateIDMiddleware)
				r.Get("/contracts/{id}", ledgerHandler.Contract)
				r.Post("/contracts/{id}/close", ledgerHandler.ClosePosition)
				r.Put("/trades/{id}", ledgerHandler.UpdateTrade)
				r.Delete("/trades/{id}", ledgerHandler.DeleteTrade)
			})
		})

		r.Route("/watchlist", func(r chi.Router) {
			watchlistHandler := handlers.NewWatchlistHandler(svc.Watchlist, svc.Marks)
			r.Get("/", watchlistHandler.Watchlist)
			r.Post("/stocks", watchlistHandler.AddStock)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.ValidateIDMiddleware)
				r.Delete("/stocks/{id}", watchlistHandler.RemoveStock)
				r.Post("/stocks/{id}/contracts", watchlistHandler.AddContract)
				r.Put("/contracts/{id}", watchlistHandler.UpdateContract)
				r.Delete("/contracts/{id}", watchlistHandler.RemoveContract)
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics)
			r.Get("/", analyticsHandler.Analyze)
		})
	})

	return r
}
