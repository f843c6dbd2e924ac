package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bungeemonkee/template-vault/internal/resolve"
)

func TestParseRoot_Success(t *testing.T) {
	t.Parallel()

	root, remaining, err := resolve.ParseRoot([]string{
		"VAULTROOT: https://vault.example.com/",
		"kv/config/name",
		"secret/data/app/db-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "https", root.Scheme)
	assert.Equal(t, "vault.example.com", root.Host)
	assert.Equal(t, []string{"kv/config/name", "secret/data/app/db-password"}, remaining)
}

func TestParseRoot_TagIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, first := range []string{
		"vaultroot:HTTPS://X",
		"VaultRoot: https://x",
		"VAULTROOT:https://x",
	} {
		root, _, err := resolve.ParseRoot([]string{first})
		require.NoError(t, err, "directive %q", first)
		assert.NotEmpty(t, root.Host)
	}
}

func TestParseRoot_EmptyList(t *testing.T) {
	t.Parallel()

	_, _, err := resolve.ParseRoot(nil)
	assert.ErrorIs(t, err, resolve.ErrNoRootDirective)
}

func TestParseRoot_FirstPlaceholderNotADirective(t *testing.T) {
	t.Parallel()

	_, _, err := resolve.ParseRoot([]string{"NOTROOT: https://x", "kv/a/b"})
	assert.ErrorIs(t, err, resolve.ErrNoRootDirective)
}

func TestParseRoot_DirectiveNotFirst(t *testing.T) {
	t.Parallel()

	// Only element 0 is inspected; a directive later in the list does not count.
	_, _, err := resolve.ParseRoot([]string{"kv/a/b", "VAULTROOT: https://x"})
	assert.ErrorIs(t, err, resolve.ErrNoRootDirective)
}

func TestParseRoot_InvalidLocation(t *testing.T) {
	t.Parallel()

	for _, first := range []string{
		"VAULTROOT:",
		"VAULTROOT: not a url",
		"VAULTROOT: /relative/path",
		"VAULTROOT: vault.example.com", // no scheme
	} {
		_, _, err := resolve.ParseRoot([]string{first})
		require.Error(t, err, "directive %q", first)
		// Distinct from the missing-directive case.
		assert.NotErrorIs(t, err, resolve.ErrNoRootDirective, "directive %q", first)
	}
}

func TestParseRoot_LocationKeepsPathAndPort(t *testing.T) {
	t.Parallel()

	root, _, err := resolve.ParseRoot([]string{"VAULTROOT: https://vault.example.com:8200/extra/"})
	require.NoError(t, err)
	assert.Equal(t, "vault.example.com:8200", root.Host)
	assert.Equal(t, "/extra/", root.Path)
}
