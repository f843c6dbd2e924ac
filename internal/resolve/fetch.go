package resolve

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bungeemonkee/template-vault/internal/logging"
	"github.com/bungeemonkee/template-vault/internal/vault"
)

// Fetcher performs the sequential fetch pass over resolved references. One
// store call at a time, in placeholder order: malformed references are
// reported and skipped (the run still fails), any store or missing-field
// error aborts the remaining fetches immediately.
type Fetcher struct {
	client vault.Client
	logger *logging.Logger
}

// NewFetcher creates a fetcher around an authenticated store client.
func NewFetcher(client vault.Client, logger *logging.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger,
	}
}

// FetchAll resolves each body against root and fetches its secret value,
// returning the placeholder-body to value map. The map is complete only when
// the returned error is nil; on failure it holds whatever was fetched before
// the abort and must not be rendered.
func (f *Fetcher) FetchAll(ctx context.Context, root *url.URL, bodies []string) (map[string]string, error) {
	values := make(map[string]string, len(bodies))
	malformed := false

	for _, body := range bodies {
		ref, err := Resolve(root, body)
		if err != nil {
			f.logger.Error("Malformed placeholder %q: mount=%s path=%s field=%s: %v",
				body, orNull(ref.Mount), orNull(ref.Path), orNull(ref.Name), err)
			malformed = true
			continue
		}

		f.logger.Debug("Fetching secret: mount=%s path=%s field=%s", ref.Mount, ref.Path, ref.Name)

		fields, err := f.client.ReadSecret(ctx, ref.Mount, ref.Path)
		if err != nil {
			f.logger.Error("Failed to fetch secret for placeholder %q (mount=%s path=%s field=%s): %v",
				body, ref.Mount, ref.Path, ref.Name, err)
			return values, fmt.Errorf("fetching %q: %w", body, err)
		}

		value, ok := fields[ref.Name]
		if !ok {
			f.logger.Error("Field %q not found in secret at mount=%s path=%s (placeholder %q)",
				ref.Name, ref.Mount, ref.Path, body)
			return values, fmt.Errorf("placeholder %q: %w: %q", body, vault.ErrFieldNotFound, ref.Name)
		}

		values[body] = value.String()
	}

	if malformed {
		return values, fmt.Errorf("one or more placeholders could not be resolved: %w", ErrMalformedReference)
	}
	return values, nil
}

// orNull fills in the literal "null" for reference fields that could not be
// extracted from a malformed body.
func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}
