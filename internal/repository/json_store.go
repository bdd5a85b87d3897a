package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// loadArray reads key and decodes it as a JSON array. An absent key, a value
// that fails to decrypt or one that does not parse all yield an empty slice;
// the last two are logged. Only store failures are returned.
func loadArray[T any](ctx context.Context, store KeyValueStore, key string, log zerolog.Logger) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if errors.Is(err, ErrCorruptValue) {
		log.Warn().Err(err).Str("key", key).Msg("Stored value is corrupt, starting empty")
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Stored value is not valid JSON, starting empty")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// saveArray encodes items as a JSON array and writes it under key.
func saveArray[T any](ctx context.Context, store KeyValueStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, string(data))
}
