package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazybrowse"

// ErrTokenNotFound is returned when no token is stored for a server
var ErrTokenNotFound = errors.New("no token stored for server")

// TokenSaveError wraps a keyring failure while storing a token
type TokenSaveError struct {
	Server string
	Err    error
}

func (e *TokenSaveError) Error() string {
	return fmt.Sprintf("failed to save token for %s to keyring: %v", e.Server, e.Err)
}

func (e *TokenSaveError) Unwrap() error {
	return e.Err
}

// TokenStore keeps API tokens in the OS keyring, one per server URL
type TokenStore struct{}

// NewTokenStore creates a token store backed by the OS keyring
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Save stores token for server
func (s *TokenStore) Save(server, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(serviceName, makeKey(server), token); err != nil {
		return &TokenSaveError{Server: server, Err: err}
	}
	return nil
}

// Get returns the token stored for server
func (s *TokenStore) Get(server string) (string, error) {
	token, err := keyring.Get(serviceName, makeKey(server))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes the token stored for server. A missing token is not an error.
func (s *TokenStore) Delete(server string) error {
	err := keyring.Delete(serviceName, makeKey(server))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// Resolve picks the token to use for server: an explicit token wins,
// then the keyring. No token at all is not an error.
func (s *TokenStore) Resolve(server, explicit string) string {
	if explicit != "" {
		return explicit
	}
	token, err := s.Get(server)
	if err != nil {
		return ""
	}
	return token
}

// makeKey normalises the server URL so trailing slashes do not split entries
func makeKey(server string) string {
	return strings.TrimRight(strings.TrimSpace(server), "/")
}
