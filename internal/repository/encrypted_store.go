package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"
)

// EncryptedStore wraps a KeyValueStore and encrypts values at rest with a
// fernet key. Values that were written before encryption was enabled (plain
// JSON) are still readable and get encrypted on the next write.
type EncryptedStore struct {
	inner KeyValueStore
	keys  []*fernet.Key
}

// NewEncryptedStore decodes the base64 fernet key and wraps inner.
func NewEncryptedStore(inner KeyValueStore, encodedKey string) (*EncryptedStore, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	return &EncryptedStore{inner: inner, keys: []*fernet.Key{key}}, nil
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	if isPlainJSON(value) {
		return value, true, nil
	}

	// ttl 0 disables the token age check.
	msg := fernet.VerifyAndDecrypt([]byte(value), 0, s.keys)
	if msg == nil {
		return "", true, fmt.Errorf("failed to decrypt key %s: %w", key, ErrCorruptValue)
	}
	return string(msg), true, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	token, err := fernet.EncryptAndSign([]byte(value), s.keys[0])
	if err != nil {
		return fmt.Errorf("failed to encrypt key %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, string(token))
}

func (s *EncryptedStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func isPlainJSON(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}

// GenerateKey returns a new random base64-encoded fernet key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return k.Encode(), nil
}
