package repository

import (
	"context"
	"errors"
)

// Logical keys, as the mobile app named them.
const (
	LedgerKey    = "tradeBookkeepingData"
	WatchlistKey = "followList"
)

// ErrCorruptValue indicates that a stored value exists but cannot be decoded.
var ErrCorruptValue = errors.New("stored value is corrupt")

// KeyValueStore is the persistence port: an opaque get/set-by-key store.
// Writes are last-write-wins.
type KeyValueStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by stores backed by a remote or file resource.
type Pinger interface {
	Ping(ctx context.Context) error
}
