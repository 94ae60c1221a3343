package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/florianilch/claude-adapter/internal/keystore"
)

// StoredKeySource exposes a stored API key as an oauth2.TokenSource so the
// upstream client can authenticate through oauth2.Transport. The key is
// read once, on first use, keeping I/O out of application startup.
type StoredKeySource struct {
	token func() (*oauth2.Token, error)
}

// Compile-time check to ensure StoredKeySource implements oauth2.TokenSource
var _ oauth2.TokenSource = (*StoredKeySource)(nil)

// NewStoredKeySource creates a StoredKeySource over a key store.
// No I/O is performed until the first Token call.
func NewStoredKeySource(store keystore.KeyStore) (*StoredKeySource, error) {
	if store == nil {
		return nil, fmt.Errorf("missing key store")
	}

	s := &StoredKeySource{}
	s.token = sync.OnceValues(func() (*oauth2.Token, error) {
		// oauth2.TokenSource.Token() has no context parameter (legacy
		// interface limitation), so the read uses a background context.
		key, err := store.Read(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to read API key: %w", err)
		}
		// Zero expiry marks the token permanently valid.
		return &oauth2.Token{AccessToken: key, TokenType: "Bearer"}, nil
	})

	return s, nil
}

// Token returns the stored key as a bearer token.
func (s *StoredKeySource) Token() (*oauth2.Token, error) {
	return s.token()
}
