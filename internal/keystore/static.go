package keystore

import (
	"context"
	"fmt"
)

// StaticStore serves a key inlined in the configuration. Read-only.
type StaticStore struct {
	key string
}

// Compile-time check to ensure StaticStore implements KeyStore
var _ KeyStore = (*StaticStore)(nil)

// NewStaticStore wraps an inline key value.
func NewStaticStore(key string) (*StaticStore, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}
	return &StaticStore{key: key}, nil
}

// Read returns the inline key.
func (s *StaticStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.key, nil
}

// Write is not supported for inline configuration values.
func (s *StaticStore) Write(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("inline key storage is read-only")
}
