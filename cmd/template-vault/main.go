package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bungeemonkee/template-vault/cmd/template-vault/commands"
	"github.com/bungeemonkee/template-vault/internal/config"
	"github.com/bungeemonkee/template-vault/internal/logging"
	"github.com/bungeemonkee/template-vault/internal/resolve"
	"github.com/bungeemonkee/template-vault/internal/vault"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the two failure categories to distinct codes: malformed
// references and missing fields exit 2, everything else exits 1.
func exitCode(err error) int {
	if errors.Is(err, resolve.ErrMalformedReference) || errors.Is(err, vault.ErrFieldNotFound) {
		return 2
	}
	return 1
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "template-vault",
		Short: "Render templates with secrets from HashiCorp Vault",
		Long: `template-vault substitutes {{mount/path/field}} placeholders in a text
template with secret values from Vault. The template's first placeholder
must be a {{VAULTROOT: https://vault.example.com/}} directive naming the
endpoint; every other placeholder is resolved against it.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: template-vault.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt for credentials")

	rootCmd.AddCommand(
		commands.NewRenderCommand(cfg),
		commands.NewLoginCommand(cfg),
	)

	return rootCmd.Execute()
}
