package resolve

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedReference indicates a placeholder body resolved to fewer than
// the three path segments (mount, path, field) a secret reference needs.
var ErrMalformedReference = errors.New("malformed secret reference")

// Reference is the store addressing triple derived from one placeholder
// body. Body is kept so diagnostics and the value map key back to the
// template text, not the resolved location.
type Reference struct {
	Body  string
	Mount string
	Path  string
	Name  string
}

// Resolve decomposes a placeholder body against the root location. The body
// is resolved as a URL reference against the root's origin only (scheme and
// host; the root's own path never shifts the base), then the resulting
// absolute path is split on "/" discarding empty segments:
//
//	segments[0]         mount
//	segments[1:last]    path, joined with "/"
//	segments[last]      field name
//
// Fewer than three segments is a malformed reference. The returned Reference
// carries whatever fields were extractable so the caller can report them.
func Resolve(root *url.URL, body string) (Reference, error) {
	ref := Reference{Body: body}

	parsed, err := url.Parse(body)
	if err != nil {
		return ref, fmt.Errorf("%w: %v", ErrMalformedReference, err)
	}

	origin := &url.URL{Scheme: root.Scheme, Host: root.Host}
	resolved := origin.ResolveReference(parsed)

	var segments []string
	for _, s := range strings.Split(resolved.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) > 0 {
		ref.Mount = segments[0]
	}
	if len(segments) > 1 {
		ref.Name = segments[len(segments)-1]
	}
	if len(segments) < 3 {
		return ref, fmt.Errorf("%w: %q has %d path segment(s), need at least 3 (mount/path/field)",
			ErrMalformedReference, body, len(segments))
	}

	ref.Path = strings.Join(segments[1:len(segments)-1], "/")
	return ref, nil
}
