package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Option-Ledger-Backend/internal/database"
)

// exerciseStore runs the contract every KeyValueStore must satisfy.
func exerciseStore(t *testing.T, s KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "absent key must report ok=false")

	require.NoError(t, s.Set(ctx, LedgerKey, `[{"id":"a"}]`))
	v, ok, err := s.Get(ctx, LedgerKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, s.Set(ctx, LedgerKey, `[]`))
	v, _, err = s.Get(ctx, LedgerKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, v, "last write wins")

	_, ok, err = s.Get(ctx, WatchlistKey)
	require.NoError(t, err)
	assert.False(t, ok, "keys are independent")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewSQLiteStore(db)
	exerciseStore(t, s)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestRedisStore(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		_, err := OpenRedisStore(context.Background(), "redis://127.0.0.1:1/0", "test:")
		assert.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := OpenRedisStore(context.Background(), "not-a-url", "test:")
		assert.Error(t, err)
	})

	t.Run("live server", func(t *testing.T) {
		url := os.Getenv("TEST_REDIS_URL")
		if url == "" {
			t.Skip("TEST_REDIS_URL not set")
		}
		s, err := OpenRedisStore(context.Background(), url, "option-ledger-test:"+t.Name()+":")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })

		exerciseStore(t, s)
	})
}

func TestEncryptedStore(t *testing.T) {
	ctx := context.Background()
	key, err := GenerateKey()
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		exerciseStore(t, mustEncrypted(t, NewMemoryStore(), key))
	})

	t.Run("values are not stored in the clear", func(t *testing.T) {
		inner := NewMemoryStore()
		s := mustEncrypted(t, inner, key)

		require.NoError(t, s.Set(ctx, LedgerKey, `[{"id":"secret"}]`))

		raw, _, _ := inner.Get(ctx, LedgerKey)
		assert.NotContains(t, raw, "secret")
	})

	t.Run("plain JSON written before encryption is readable", func(t *testing.T) {
		inner := NewMemoryStore()
		require.NoError(t, inner.Set(ctx, WatchlistKey, `[{"id":"s1"}]`))

		v, ok, err := mustEncrypted(t, inner, key).Get(ctx, WatchlistKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"s1"}]`, v)
	})

	t.Run("wrong key reports corrupt value", func(t *testing.T) {
		inner := NewMemoryStore()
		require.NoError(t, mustEncrypted(t, inner, key).Set(ctx, LedgerKey, `[]`))

		other, err := GenerateKey()
		require.NoError(t, err)

		_, _, err = mustEncrypted(t, inner, other).Get(ctx, LedgerKey)
		assert.True(t, errors.Is(err, ErrCorruptValue))
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := NewEncryptedStore(NewMemoryStore(), "too-short")
		assert.Error(t, err)
	})
}

func mustEncrypted(t *testing.T, inner KeyValueStore, key string) *EncryptedStore {
	t.Helper()
	s, err := NewEncryptedStore(inner, key)
	require.NoError(t, err)
	return s
}
