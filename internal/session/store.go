// Package session holds the console's bearer token and decides whether it
// still grants access.
package session

import (
	"errors"
	"fmt"

	"github.com/umardevX/ems-console/internal/keychain"
)

// ErrNoToken is returned when no token has been stored
var ErrNoToken = errors.New("no session token stored")

// Store is the session context shared by the HTTP client and the
// validator. It owns exactly one token under a fixed key.
type Store struct {
	kc  keychain.Keychain
	key string
}

// NewStore creates a session store on top of kc
func NewStore(kc keychain.Keychain) *Store {
	return &Store{kc: kc, key: keychain.KeyAccessToken}
}

// Token returns the stored token or ErrNoToken
func (s *Store) Token() (string, error) {
	token, err := s.kc.Get(s.key)
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Set replaces the stored token
func (s *Store) Set(token string) error {
	if token == "" {
		return errors.New("refusing to store an empty session token")
	}
	if err := s.kc.Set(s.key, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := s.kc.Delete(s.key); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
