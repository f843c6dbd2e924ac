package vault

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const keyringService = "template-vault"

// TokenCache persists userpass client tokens in the OS keyring, keyed by
// vault address, so repeated renders against the same endpoint skip the
// interactive login. Tokens are validated against the server before reuse;
// stale entries are cleared.
type TokenCache struct {
	service string
}

// NewTokenCache creates a cache scoped to the template-vault keyring service.
func NewTokenCache() *TokenCache {
	return &TokenCache{service: keyringService}
}

// Get returns the cached token for an address, or "" if none is stored.
func (t *TokenCache) Get(address string) (string, error) {
	token, err := keyring.Get(t.service, address)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Set stores a token for an address.
func (t *TokenCache) Set(address, token string) error {
	return keyring.Set(t.service, address, token)
}

// Clear removes the cached token for an address. Missing entries are not an
// error.
func (t *TokenCache) Clear(address string) error {
	err := keyring.Delete(t.service, address)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
