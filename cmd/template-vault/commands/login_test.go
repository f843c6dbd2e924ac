package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLogin_CachesTokenInKeyring(t *testing.T) {
	keyring.MockInit()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/userpass/login/alice", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"auth": map[string]interface{}{"client_token": "issued-token"},
		})
	}))
	defer server.Close()

	t.Setenv("VAULT_TOKEN", "")
	t.Setenv("TEMPLATE_VAULT_PASSWORD", "hunter2")

	cfg, _ := testConfig(t)
	cmd := NewLoginCommand(cfg)
	cmd.SetArgs([]string{"--address", server.URL, "--username", "alice"})
	require.NoError(t, cmd.Execute())

	token, err := keyring.Get("template-vault", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestLogin_RejectsRelativeAddress(t *testing.T) {
	cfg, _ := testConfig(t)
	cmd := NewLoginCommand(cfg)
	cmd.SetArgs([]string{"--address", "vault.example.com"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute URL")
}

func TestLogin_BadCredentials(t *testing.T) {
	keyring.MockInit()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	t.Setenv("VAULT_TOKEN", "")
	t.Setenv("TEMPLATE_VAULT_PASSWORD", "wrong")

	cfg, _ := testConfig(t)
	cmd := NewLoginCommand(cfg)
	cmd.SetArgs([]string{"--address", server.URL, "--username", "alice"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}
