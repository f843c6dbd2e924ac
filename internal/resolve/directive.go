// Package resolve turns extracted placeholder bodies into fetchable secret
// references: it consumes the leading VAULTROOT directive, decomposes each
// remaining body into a (mount, path, field) triple against the directive's
// origin, and drives the sequential fetch pass.
package resolve

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	tverrors "github.com/bungeemonkee/template-vault/internal/errors"
)

// RootTag is the case-insensitive prefix marking the root directive
// placeholder. Everything after it, trimmed, must parse as an absolute URL.
const RootTag = "VAULTROOT:"

// ErrNoRootDirective indicates the template either has no placeholders at
// all or its first placeholder does not carry the VAULTROOT tag.
var ErrNoRootDirective = errors.New("no root directive found")

// ParseRoot inspects the first extracted placeholder. On success it returns
// the parsed root location and the remaining bodies with the directive
// removed, order preserved. Only element 0 is ever considered a directive.
func ParseRoot(bodies []string) (*url.URL, []string, error) {
	if len(bodies) == 0 {
		return nil, nil, tverrors.UserError{
			Message:    "No root directive found",
			Details:    "the template contains no placeholders",
			Suggestion: "Add a {{" + RootTag + " https://vault.example.com/}} placeholder before any secret references",
			Err:        ErrNoRootDirective,
		}
	}

	first := bodies[0]
	if len(first) < len(RootTag) || !strings.EqualFold(first[:len(RootTag)], RootTag) {
		return nil, nil, tverrors.UserError{
			Message:    "No root directive found",
			Details:    "the first placeholder is " + strconv.Quote(first),
			Suggestion: "The first placeholder must start with " + RootTag,
			Err:        ErrNoRootDirective,
		}
	}

	location := strings.TrimSpace(first[len(RootTag):])
	root, err := url.Parse(location)
	if err != nil || !root.IsAbs() || root.Host == "" {
		return nil, nil, tverrors.UserError{
			Message:    "Invalid root directive",
			Details:    strconv.Quote(location) + " is not an absolute URL",
			Suggestion: "Use an absolute location like https://vault.example.com:8200/",
			Err:        err,
		}
	}

	remaining := bodies[1:]
	return root, remaining, nil
}
