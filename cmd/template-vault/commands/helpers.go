package commands

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bungeemonkee/template-vault/internal/config"
	tverrors "github.com/bungeemonkee/template-vault/internal/errors"
	"github.com/bungeemonkee/template-vault/internal/prompt"
	"github.com/bungeemonkee/template-vault/internal/secure"
	"github.com/bungeemonkee/template-vault/internal/vault"
)

// vaultAddress turns the root directive's location into the client base URL.
// The directive's path, if any, becomes a path prefix for the API endpoint;
// it plays no part in reference resolution.
func vaultAddress(root *url.URL) string {
	return root.Scheme + "://" + root.Host + strings.TrimSuffix(root.Path, "/")
}

// newVaultClient assembles a client from the config file, environment, and
// (when interactive) the prompter. Username precedence: environment, config
// file, prompt. The password is only captured if authentication actually
// needs it.
func newVaultClient(cfg *config.Config, address string, prompter prompt.Prompter) (*vault.HTTPClient, error) {
	def := cfg.Definition

	username := def.Username
	if env := os.Getenv("TEMPLATE_VAULT_USERNAME"); env != "" {
		username = env
	}
	if username == "" && def.AuthMethod == "userpass" {
		if cfg.NonInteractive {
			return nil, tverrors.UserError{
				Message:    "No username available for userpass auth",
				Suggestion: "Set 'username' in the config file or TEMPLATE_VAULT_USERNAME",
			}
		}
		var err error
		username, err = prompter.ReadLine("Vault username")
		if err != nil {
			return nil, err
		}
	}

	clientConfig := vault.Config{
		Address:      address,
		AuthMethod:   def.AuthMethod,
		Username:     username,
		CACert:       def.CACert,
		TLSSkip:      def.TLSSkip,
		UseKeyring:   def.UseKeyring,
		PasswordFunc: passwordSource(cfg, prompter),
	}
	if def.TimeoutMs > 0 {
		clientConfig.Timeout = time.Duration(def.TimeoutMs) * time.Millisecond
	}

	return vault.NewHTTPClient(clientConfig, cfg.Logger), nil
}

// passwordSource prefers TEMPLATE_VAULT_PASSWORD, then the masked prompt.
// In non-interactive mode a missing environment password is an error.
func passwordSource(cfg *config.Config, prompter prompt.Prompter) func() (*secure.SecureBuffer, error) {
	return func() (*secure.SecureBuffer, error) {
		if env := os.Getenv("TEMPLATE_VAULT_PASSWORD"); env != "" {
			return secure.NewSecureBuffer([]byte(env)), nil
		}
		if cfg.NonInteractive {
			return nil, tverrors.UserError{
				Message:    "No password available for userpass auth",
				Suggestion: "Set TEMPLATE_VAULT_PASSWORD, or drop --non-interactive",
			}
		}
		return prompter.ReadPassword("Vault password")
	}
}
