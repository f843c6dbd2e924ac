package vault

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tverrors "github.com/bungeemonkee/template-vault/internal/errors"
	"github.com/bungeemonkee/template-vault/internal/logging"
	"github.com/bungeemonkee/template-vault/internal/secure"
)

const DefaultTimeout = 30 * time.Second

// Config holds everything needed to reach and authenticate against a Vault
// endpoint. Address comes from the template's root directive, the rest from
// the config file, environment, or interactive prompting.
type Config struct {
	Address    string // Vault base URL, scheme + host + optional path prefix
	AuthMethod string // token or userpass
	Token      string
	Username   string
	CACert     string // path to a PEM CA bundle
	TLSSkip    bool   // skip TLS verification (not recommended)
	Timeout    time.Duration
	UseKeyring bool // cache userpass tokens in the OS keyring

	// PasswordFunc captures the userpass credential on demand, so a valid
	// cached token never triggers a prompt. Nil means no credential source.
	PasswordFunc func() (*secure.SecureBuffer, error)
}

// HTTPClient implements Client against the Vault HTTP API.
type HTTPClient struct {
	config Config
	token  string
	cache  *TokenCache
	logger *logging.Logger
	http   *http.Client // built on first use, shared across the fetch loop
}

// NewHTTPClient creates a client for the given endpoint. Token and TLS
// settings fall back to the standard VAULT_* environment variables.
func NewHTTPClient(config Config, logger *logging.Logger) *HTTPClient {
	if config.AuthMethod == "" {
		config.AuthMethod = "token"
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Token == "" {
		config.Token = os.Getenv("VAULT_TOKEN")
	}
	if config.CACert == "" {
		config.CACert = os.Getenv("VAULT_CACERT")
	}
	if skip := os.Getenv("VAULT_SKIP_VERIFY"); skip == "1" || strings.ToLower(skip) == "true" {
		config.TLSSkip = true
	}

	return &HTTPClient{
		config: config,
		cache:  NewTokenCache(),
		logger: logger,
	}
}

// Authenticate obtains a client token for subsequent reads. Token auth uses
// the configured or VAULT_TOKEN value as-is. Userpass auth first tries a
// keyring-cached token, validating it against the server, and only then
// performs a fresh login with the captured password.
func (c *HTTPClient) Authenticate(ctx context.Context) error {
	if c.token != "" {
		if err := c.validateToken(ctx); err == nil {
			return nil
		}
		c.token = ""
	}

	switch c.config.AuthMethod {
	case "token":
		return c.authenticateToken()
	case "userpass":
		return c.authenticateUserpass(ctx)
	default:
		return tverrors.ConfigError{
			Field:      "auth_method",
			Value:      c.config.AuthMethod,
			Message:    "unsupported authentication method",
			Suggestion: "Supported methods: token, userpass",
		}
	}
}

// ReadSecret fetches one KV v2 secret version and returns its data fields.
func (c *HTTPClient) ReadSecret(ctx context.Context, mount, path string) (FieldMap, error) {
	if c.token == "" {
		return nil, fmt.Errorf("not authenticated")
	}

	url := c.apiURL(mount + "/data/" + path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Vault-Token", c.token)

	client, err := c.httpClient()
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, tverrors.UserError{
			Message:    fmt.Sprintf("Failed to reach vault reading %s/%s", mount, path),
			Details:    err.Error(),
			Suggestion: tverrors.VaultSuggestion(c.config.Address, err),
			Err:        err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w at %s/%s", ErrSecretNotFound, mount, path)
	case http.StatusForbidden:
		err := fmt.Errorf("permission denied reading %s/%s", mount, path)
		return nil, tverrors.UserError{
			Message:    err.Error(),
			Suggestion: tverrors.VaultSuggestion(c.config.Address, err),
			Err:        err,
		}
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vault returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Data struct {
			Data     FieldMap               `json:"data"`
			Metadata map[string]interface{} `json:"metadata"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode secret response: %w", err)
	}
	if response.Data.Data == nil {
		return nil, fmt.Errorf("%w at %s/%s", ErrSecretNotFound, mount, path)
	}

	return response.Data.Data, nil
}

// Close clears authentication state. Cached keyring tokens survive so the
// next run can reuse them.
func (c *HTTPClient) Close() error {
	c.token = ""
	return nil
}

func (c *HTTPClient) authenticateToken() error {
	if c.config.Token == "" {
		return tverrors.UserError{
			Message:    "No vault token available",
			Suggestion: "Set VAULT_TOKEN, or use auth_method: userpass",
		}
	}
	c.token = c.config.Token
	return nil
}

func (c *HTTPClient) authenticateUserpass(ctx context.Context) error {
	if c.config.Username == "" {
		return tverrors.ConfigError{
			Field:      "username",
			Message:    "username is required for userpass auth",
			Suggestion: "Set 'username' in the config file or TEMPLATE_VAULT_USERNAME",
		}
	}

	// A previously cached token avoids prompting for the password again.
	if c.config.UseKeyring {
		if token, err := c.cache.Get(c.config.Address); err == nil && token != "" {
			c.token = token
			if err := c.validateToken(ctx); err == nil {
				c.logger.Debug("Using cached vault token from keyring")
				return nil
			}
			c.token = ""
			_ = c.cache.Clear(c.config.Address)
		}
	}

	if c.config.PasswordFunc == nil {
		return tverrors.UserError{
			Message:    "No password available for userpass auth",
			Suggestion: "Run interactively, or set TEMPLATE_VAULT_PASSWORD",
		}
	}

	password, err := c.config.PasswordFunc()
	if err != nil {
		return fmt.Errorf("failed to capture password: %w", err)
	}
	defer password.Destroy()

	locked, err := password.Open()
	if err != nil {
		return fmt.Errorf("failed to open password buffer: %w", err)
	}
	defer locked.Destroy()

	authData := map[string]interface{}{
		"password": string(locked.Bytes()),
	}
	if err := c.performLogin(ctx, "auth/userpass/login/"+c.config.Username, authData); err != nil {
		return err
	}

	if c.config.UseKeyring {
		if err := c.cache.Set(c.config.Address, c.token); err != nil {
			c.logger.Warn("Could not cache vault token in keyring: %v", err)
		}
	}
	return nil
}

func (c *HTTPClient) performLogin(ctx context.Context, authPath string, authData map[string]interface{}) error {
	jsonData, err := json.Marshal(authData)
	if err != nil {
		return fmt.Errorf("failed to marshal auth data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL(authPath), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client, err := c.httpClient()
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return tverrors.UserError{
			Message:    "Failed to reach vault for authentication",
			Details:    err.Error(),
			Suggestion: tverrors.VaultSuggestion(c.config.Address, err),
			Err:        err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("authentication failed with status %d: %s", resp.StatusCode, string(body))
		return tverrors.UserError{
			Message:    "Failed to authenticate with vault",
			Details:    err.Error(),
			Suggestion: tverrors.VaultSuggestion(c.config.Address, err),
			Err:        err,
		}
	}

	var authResp struct {
		Auth struct {
			ClientToken string `json:"client_token"`
		} `json:"auth"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if authResp.Auth.ClientToken == "" {
		return fmt.Errorf("no token received from vault")
	}

	c.token = authResp.Auth.ClientToken
	c.logger.Debug("Vault issued client token %s", logging.Secret(c.token))
	return nil
}

func (c *HTTPClient) validateToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL("auth/token/lookup-self"), nil)
	if err != nil {
		return fmt.Errorf("failed to create token validation request: %w", err)
	}
	req.Header.Set("X-Vault-Token", c.token)

	client, err := c.httpClient()
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to validate token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token validation failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) apiURL(path string) string {
	return strings.TrimSuffix(c.config.Address, "/") + "/v1/" + strings.TrimPrefix(path, "/")
}

// httpClient builds the underlying HTTP client once so keep-alive
// connections are reused across the sequential fetch loop. Building lazily
// keeps CA bundle read failures on the error path of the first request
// instead of in the constructor.
func (c *HTTPClient) httpClient() (*http.Client, error) {
	if c.http != nil {
		return c.http, nil
	}

	client := &http.Client{
		Timeout: c.config.Timeout,
	}

	if c.config.TLSSkip || c.config.CACert != "" {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: c.config.TLSSkip,
		}
		if c.config.CACert != "" {
			pem, err := os.ReadFile(c.config.CACert)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates found in %s", c.config.CACert)
			}
			tlsConfig.RootCAs = pool
		}
		client.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
	}

	c.http = client
	return client, nil
}
