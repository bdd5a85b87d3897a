package middleware

import (
	"github.com/go-chi/cors"

	"github.com/ndewijer/Option-Ledger-Backend/internal/config"
)

// NewCORS creates the CORS middleware from the configured origins, methods
// and headers.
func NewCORS(cfg config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
