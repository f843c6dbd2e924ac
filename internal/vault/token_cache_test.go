package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/bungeemonkee/template-vault/internal/vault"
)

func TestTokenCache_RoundTrip(t *testing.T) {
	keyring.MockInit()

	cache := vault.NewTokenCache()
	const address = "https://vault.example.com:8200"

	token, err := cache.Get(address)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, cache.Set(address, "issued-token"))

	token, err = cache.Get(address)
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)

	require.NoError(t, cache.Clear(address))

	token, err = cache.Get(address)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenCache_ClearMissingEntry(t *testing.T) {
	keyring.MockInit()

	cache := vault.NewTokenCache()
	assert.NoError(t, cache.Clear("https://never-stored.example"))
}

func TestTokenCache_KeyedByAddress(t *testing.T) {
	keyring.MockInit()

	cache := vault.NewTokenCache()
	require.NoError(t, cache.Set("https://a.example", "token-a"))
	require.NoError(t, cache.Set("https://b.example", "token-b"))

	token, err := cache.Get("https://a.example")
	require.NoError(t, err)
	assert.Equal(t, "token-a", token)
}
