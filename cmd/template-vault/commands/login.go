package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bungeemonkee/template-vault/internal/config"
	tverrors "github.com/bungeemonkee/template-vault/internal/errors"
	"github.com/bungeemonkee/template-vault/internal/prompt"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var (
		address  string
		username string
	)

	cmd := &cobra.Command{
		Use:   "login --address <url>",
		Short: "Authenticate with vault and cache the token",
		Long: `Perform a userpass login against a vault endpoint and store the client
token in the OS keyring, so later renders against the same endpoint run
without prompting.

Examples:
  template-vault login --address https://vault.example.com:8200
  template-vault login --address https://vault.example.com --username alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cfg, address, username)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Vault endpoint URL (required)")
	cmd.Flags().StringVar(&username, "username", "", "Vault username (prompted if omitted)")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func runLogin(cfg *config.Config, address, username string) error {
	if err := cfg.Load(); err != nil {
		return err
	}

	if !strings.Contains(address, "://") {
		return tverrors.ConfigError{
			Field:      "address",
			Value:      address,
			Message:    "address must be an absolute URL",
			Suggestion: "Use a location like https://vault.example.com:8200",
		}
	}
	address = strings.TrimSuffix(address, "/")

	// login always authenticates userpass; caching a static token would
	// add nothing over VAULT_TOKEN.
	cfg.Definition.AuthMethod = "userpass"
	if username != "" {
		cfg.Definition.Username = username
	}
	cfg.Definition.UseKeyring = true

	client, err := newVaultClient(cfg, address, prompt.NewTerminal())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Authenticate(context.Background()); err != nil {
		return err
	}

	cfg.Logger.Info("Authenticated with %s; token cached in keyring", address)
	return nil
}
