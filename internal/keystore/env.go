package keystore

import (
	"context"
	"fmt"
	"os"
)

// EnvStore provides read-only access to a key stored in an environment
// variable. Suitable when an external secret manager injects the key.
type EnvStore struct {
	envKey string
}

// Compile-time check to ensure EnvStore implements KeyStore
var _ KeyStore = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given environment variable.
// Returns error if the variable name is empty or not set in the environment.
func NewEnvStore(envKey string) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}

	if _, exists := os.LookupEnv(envKey); !exists {
		return nil, fmt.Errorf("environment variable %s not set", envKey)
	}

	return &EnvStore{
		envKey: envKey,
	}, nil
}

// Read returns the key from the environment variable. Returns error if empty.
func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := os.Getenv(e.envKey)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is empty", e.envKey)
	}
	return key, nil
}

// Write is not supported for environment variables (they are read-only).
func (e *EnvStore) Write(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("environment variable storage is read-only")
}
