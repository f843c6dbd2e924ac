package resolve_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bungeemonkee/template-vault/internal/logging"
	"github.com/bungeemonkee/template-vault/internal/resolve"
	"github.com/bungeemonkee/template-vault/internal/vault"
)

// MockClient implements vault.Client for testing
type MockClient struct {
	ReadSecretFunc func(ctx context.Context, mount, path string) (vault.FieldMap, error)
	ReadCalls      int
}

func (m *MockClient) Authenticate(ctx context.Context) error {
	return nil
}

func (m *MockClient) ReadSecret(ctx context.Context, mount, path string) (vault.FieldMap, error) {
	m.ReadCalls++
	if m.ReadSecretFunc != nil {
		return m.ReadSecretFunc(ctx, mount, path)
	}
	return nil, nil
}

func (m *MockClient) Close() error {
	return nil
}

func newTestFetcher(client vault.Client) (*resolve.Fetcher, *bytes.Buffer) {
	var diag bytes.Buffer
	logger := logging.NewWithWriter(&diag, false, true)
	return resolve.NewFetcher(client, logger), &diag
}

func TestFetchAll_Success(t *testing.T) {
	t.Parallel()

	client := &MockClient{
		ReadSecretFunc: func(ctx context.Context, mount, path string) (vault.FieldMap, error) {
			assert.Equal(t, "kv", mount)
			assert.Equal(t, "config", path)
			return vault.FieldMap{"name": vault.StringValue("World")}, nil
		},
	}
	fetcher, _ := newTestFetcher(client)

	values, err := fetcher.FetchAll(context.Background(), mustURL(t, "https://v.example"), []string{"kv/config/name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kv/config/name": "World"}, values)
}

func TestFetchAll_AbortsOnFirstFetchFailure(t *testing.T) {
	t.Parallel()

	client := &MockClient{
		ReadSecretFunc: func(ctx context.Context, mount, path string) (vault.FieldMap, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	fetcher, diag := newTestFetcher(client)

	_, err := fetcher.FetchAll(context.Background(), mustURL(t, "https://v.example"),
		[]string{"kv/config/first", "kv/config/second"})
	require.Error(t, err)

	// The second reference is never fetched.
	assert.Equal(t, 1, client.ReadCalls)
	assert.Contains(t, diag.String(), "kv/config/first")
	assert.NotContains(t, diag.String(), "kv/config/second")
}

func TestFetchAll_AbortsOnMissingField(t *testing.T) {
	t.Parallel()

	client := &MockClient{
		ReadSecretFunc: func(ctx context.Context, mount, path string) (vault.FieldMap, error) {
			return vault.FieldMap{"other": vault.StringValue("x")}, nil
		},
	}
	fetcher, diag := newTestFetcher(client)

	_, err := fetcher.FetchAll(context.Background(), mustURL(t, "https://v.example"),
		[]string{"kv/config/name", "kv/config/second"})
	require.ErrorIs(t, err, vault.ErrFieldNotFound)
	assert.Equal(t, 1, client.ReadCalls)
	assert.Contains(t, diag.String(), `Field "name" not found`)
}

func TestFetchAll_MalformedIsReportedButDoesNotAbort(t *testing.T) {
	t.Parallel()

	client := &MockClient{
		ReadSecretFunc: func(ctx context.Context, mount, path string) (vault.FieldMap, error) {
			return vault.FieldMap{"name": vault.StringValue("ok")}, nil
		},
	}
	fetcher, diag := newTestFetcher(client)

	values, err := fetcher.FetchAll(context.Background(), mustURL(t, "https://v.example"),
		[]string{"a/b", "kv/config/name"})

	// The well-formed reference after the malformed one is still fetched,
	// but the run as a whole fails.
	require.ErrorIs(t, err, resolve.ErrMalformedReference)
	assert.Equal(t, 1, client.ReadCalls)
	assert.Equal(t, "ok", values["kv/config/name"])
	assert.Contains(t, diag.String(), "path=null")
}

func TestFetchAll_ValueStringification(t *testing.T) {
	t.Parallel()

	client := &MockClient{
		ReadSecretFunc: func(ctx context.Context, mount, path string) (vault.FieldMap, error) {
			return vault.FieldMap{
				"port":    vault.NumberValue(json.Number("5432")),
				"enabled": vault.BoolValue(true),
				"empty":   vault.NullValue(),
			}, nil
		},
	}
	fetcher, _ := newTestFetcher(client)

	values, err := fetcher.FetchAll(context.Background(), mustURL(t, "https://v.example"),
		[]string{"kv/db/port", "kv/db/enabled", "kv/db/empty"})
	require.NoError(t, err)
	assert.Equal(t, "5432", values["kv/db/port"])
	assert.Equal(t, "true", values["kv/db/enabled"])
	assert.Equal(t, "null", values["kv/db/empty"])
}

func TestFetchAll_SecretNotFoundAborts(t *testing.T) {
	t.Parallel()

	client := &MockClient{
		ReadSecretFunc: func(ctx context.Context, mount, path string) (vault.FieldMap, error) {
			return nil, fmt.Errorf("%w at %s/%s", vault.ErrSecretNotFound, mount, path)
		},
	}
	fetcher, _ := newTestFetcher(client)

	_, err := fetcher.FetchAll(context.Background(), mustURL(t, "https://v.example"), []string{"kv/a/b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, vault.ErrSecretNotFound))
}
