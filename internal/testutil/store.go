package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/ndewijer/Option-Ledger-Backend/internal/database"
	"github.com/ndewijer/Option-Ledger-Backend/internal/repository"
)

// SetupTestDB creates an in-memory SQLite database with the kv_store schema
// migrated. The database is closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    store := repository.NewSQLiteStore(db)
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// FailingStore is a KeyValueStore that can be switched into failure mode.
// Reads and writes go to an in-memory map while their error is nil.
type FailingStore struct {
	mu     sync.Mutex
	inner  *repository.MemoryStore
	GetErr error
	SetErr error
	Sets   int
}

// NewFailingStore creates a FailingStore that succeeds until told otherwise.
func NewFailingStore() *FailingStore {
	return &FailingStore{inner: repository.NewMemoryStore()}
}

func (s *FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	err := s.GetErr
	s.mu.Unlock()

	if err != nil {
		return "", false, err
	}
	return s.inner.Get(ctx, key)
}

func (s *FailingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	err := s.SetErr
	if err == nil {
		s.Sets++
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, value)
}

func (s *FailingStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.GetErr
}

// FailWrites makes every following Set return err. Pass nil to recover.
func (s *FailingStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetErr = err
}
