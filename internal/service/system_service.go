package service

import (
	"context"
	"database/sql"

	"github.com/ndewijer/Option-Ledger-Backend/internal/database"
	"github.com/ndewijer/Option-Ledger-Backend/internal/model"
	"github.com/ndewijer/Option-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Option-Ledger-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	store    repository.KeyValueStore
	db       *sql.DB
	driver   string
	features map[string]bool
}

// NewSystemService creates a new SystemService. db is only set for the
// SQLite driver and may be nil.
func NewSystemService(store repository.KeyValueStore, db *sql.DB, driver string, features map[string]bool) *SystemService {
	return &SystemService{
		store:    store,
		db:       db,
		driver:   driver,
		features: features,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	if s.db != nil {
		if err := database.HealthCheck(s.db); err != nil {
			return err
		}
	}
	if p, ok := s.store.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}

// VersionInfo reports the application version, the storage driver and, for
// SQLite, the applied schema migration.
func (s *SystemService) VersionInfo() model.VersionInfo {
	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  "n/a",
		Storage:    s.driver,
		Features:   s.features,
	}
	if s.db != nil {
		if v, err := database.SchemaVersion(s.db); err == nil {
			info.DbVersion = v
		}
	}
	if info.Features == nil {
		info.Features = map[string]bool{}
	}
	return info
}
