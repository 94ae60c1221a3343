package keystore

import "context"

// KeyStore reads and writes the upstream API key.
type KeyStore interface {
	// Read returns the stored key. Returns error if the key is missing or
	// empty.
	Read(ctx context.Context) (string, error)

	// Write persists the key. Returns error if the backend is read-only or
	// the write fails.
	Write(ctx context.Context, key string) error
}
