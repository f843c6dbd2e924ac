package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bungeemonkee/template-vault/internal/config"
	tverrors "github.com/bungeemonkee/template-vault/internal/errors"
	"github.com/bungeemonkee/template-vault/internal/prompt"
	"github.com/bungeemonkee/template-vault/internal/resolve"
	"github.com/bungeemonkee/template-vault/internal/template"
)

func NewRenderCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "render <template> [output]",
		Short: "Render a template by substituting vault secrets",
		Long: `Read a template file, fetch every referenced secret from the vault named
by its VAULTROOT directive, and write the substituted result.

The output path defaults to the input path with a .tmpl or .tpl suffix
stripped; without such a suffix, .out is appended.

Examples:
  template-vault render app.conf.tmpl
  template-vault render app.conf.tmpl /etc/app/app.conf
  template-vault render --dry-run app.conf.tmpl`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cfg, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve references and print the fetch plan without contacting vault")

	return cmd
}

func runRender(cfg *config.Config, args []string, dryRun bool) error {
	if err := cfg.Load(); err != nil {
		return err
	}

	inputPath := args[0]
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return tverrors.UserError{
			Message:    fmt.Sprintf("Cannot read template file %s", inputPath),
			Details:    err.Error(),
			Suggestion: "Verify the path exists and is readable",
			Err:        err,
		}
	}
	text := string(content)

	bodies := template.Extract(text)
	root, references, err := resolve.ParseRoot(bodies)
	if err != nil {
		return err
	}
	cfg.Logger.Debug("Vault root: %s, %d secret reference(s)", root, len(references))

	if dryRun {
		return printPlan(cfg, root, references)
	}

	client, err := newVaultClient(cfg, vaultAddress(root), prompt.NewTerminal())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := client.Authenticate(ctx); err != nil {
		return err
	}

	values, err := resolve.NewFetcher(client, cfg.Logger).FetchAll(ctx, root, references)
	if err != nil {
		return err
	}

	// The directive placeholder renders to nothing; every occurrence of its
	// exact body disappears from the output.
	values[bodies[0]] = ""

	rendered := template.Render(text, values)

	outputPath := deriveOutputPath(inputPath, args)
	if err := os.WriteFile(outputPath, []byte(rendered), 0600); err != nil {
		return tverrors.UserError{
			Message:    fmt.Sprintf("Cannot write output file %s", outputPath),
			Details:    err.Error(),
			Suggestion: "Check directory permissions and free space",
			Err:        err,
		}
	}

	cfg.Logger.Info("Rendered %s -> %s (%d secret(s))", inputPath, outputPath, len(values))
	cfg.Logger.Warn("File contains secrets - ensure it's added to .gitignore")
	return nil
}

// printPlan resolves each reference and reports the mount/path/field triple
// that a real run would fetch. Malformed references still fail the run.
func printPlan(cfg *config.Config, root *url.URL, references []string) error {
	malformed := false
	for _, body := range references {
		ref, err := resolve.Resolve(root, body)
		if err != nil {
			cfg.Logger.Error("Malformed placeholder %q: %v", body, err)
			malformed = true
			continue
		}
		cfg.Logger.Info("%q -> mount=%s path=%s field=%s", body, ref.Mount, ref.Path, ref.Name)
	}
	if malformed {
		return fmt.Errorf("dry run found unresolvable placeholders: %w", resolve.ErrMalformedReference)
	}
	return nil
}

// deriveOutputPath implements the output naming contract: explicit second
// argument wins, else strip a template suffix, else append .out so the
// input is never overwritten in place.
func deriveOutputPath(inputPath string, args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	for _, ext := range []string{".tmpl", ".tpl"} {
		if strings.HasSuffix(inputPath, ext) && len(inputPath) > len(ext) {
			return strings.TrimSuffix(inputPath, ext)
		}
	}
	return inputPath + ".out"
}
