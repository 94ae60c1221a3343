package keystore

import (
	"context"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore provides OS-native secure credential storage for keys.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
type KeyringStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringStore implements KeyStore
var _ KeyStore = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore for the OS-native credential
// storage using the given service and user identifiers.
func NewKeyringStore(service, user string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringStore{
		service: service,
		user:    user,
	}, nil
}

// Read returns the key from the system keyring. Returns error if not found
// or empty.
func (k *KeyringStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := keyring.Get(k.service, k.user)
	if err != nil {
		return "", err
	}

	if key == "" {
		return "", fmt.Errorf("empty key in keyring for service %s, user %s", k.service, k.user)
	}

	return key, nil
}

// Write persists the key to the system keyring, overwriting any existing
// value.
func (k *KeyringStore) Write(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return keyring.Set(k.service, k.user, key)
}
