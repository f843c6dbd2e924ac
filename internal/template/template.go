// Package template implements placeholder extraction from raw template text
// and the final substitution pass that produces rendered output.
package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches a {{...}} span. The body is captured lazily so
// adjacent placeholders on one line stay separate, and (?s) lets a body span
// multiple lines.
var placeholderPattern = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)

// Extract scans template text and returns the distinct placeholder bodies in
// first-occurrence order. The same body appearing N times yields one entry.
// An empty result means the template carries no placeholders at all.
func Extract(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)

	seen := make(map[string]struct{}, len(matches))
	var bodies []string
	for _, m := range matches {
		body := m[1]
		if _, ok := seen[body]; ok {
			continue
		}
		seen[body] = struct{}{}
		bodies = append(bodies, body)
	}
	return bodies
}

// Render replaces every literal occurrence of {{body}} with its value, for
// each body present in values. Substitution is plain text, single pass per
// body: a value that itself contains {{...}}-shaped text is never re-parsed,
// so rendering the same output again with the same map can change it further.
// Bodies absent from the map are left in place untouched.
func Render(text string, values map[string]string) string {
	out := text
	for body, value := range values {
		out = strings.ReplaceAll(out, "{{"+body+"}}", value)
	}
	return out
}
