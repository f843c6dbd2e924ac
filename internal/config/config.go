// Package config loads the optional template-vault.yaml file holding
// authentication and transport settings. The vault endpoint itself always
// comes from the template's root directive, never from configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	tverrors "github.com/bungeemonkee/template-vault/internal/errors"
	"github.com/bungeemonkee/template-vault/internal/logging"
)

// DefaultPath is the config file looked up when --config is not given.
// A missing file at the default path is not an error; defaults apply.
const DefaultPath = "template-vault.yaml"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the template-vault.yaml structure.
type Definition struct {
	Version    int    `yaml:"version"`
	AuthMethod string `yaml:"auth_method"` // token or userpass
	Username   string `yaml:"username"`    // for userpass auth
	CACert     string `yaml:"ca_cert"`     // path to a PEM CA bundle
	TLSSkip    bool   `yaml:"tls_skip"`    // skip TLS verification (not recommended)
	TimeoutMs  int    `yaml:"timeout_ms"`  // per-request timeout
	UseKeyring bool   `yaml:"use_keyring"` // cache userpass tokens in the OS keyring
}

// Load reads and validates the config file. The file is validated against
// the embedded JSON schema before unmarshalling so typos surface as config
// errors with field context instead of silently defaulted values.
func (c *Config) Load() error {
	c.Definition = &Definition{
		AuthMethod: "token",
		UseKeyring: true,
	}

	path := c.Path
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && c.Path == "" {
			// No explicit config requested and none present: defaults apply.
			return nil
		}
		return tverrors.UserError{
			Message:    fmt.Sprintf("Cannot read config file %s", path),
			Details:    err.Error(),
			Suggestion: "Check the path passed to --config",
			Err:        err,
		}
	}

	if err := validateSchema(data); err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c.Definition); err != nil {
		return tverrors.ConfigError{
			Message:    "Invalid YAML in config file",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	switch c.Definition.AuthMethod {
	case "", "token", "userpass":
	default:
		return tverrors.ConfigError{
			Field:      "auth_method",
			Value:      c.Definition.AuthMethod,
			Message:    "unsupported authentication method",
			Suggestion: "Supported methods: token, userpass",
		}
	}
	if c.Definition.AuthMethod == "" {
		c.Definition.AuthMethod = "token"
	}

	return nil
}

// validateSchema checks the YAML document against the embedded JSON schema.
func validateSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return tverrors.ConfigError{
			Message:    "Invalid YAML in config file",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config to JSON for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}

	if !result.Valid() {
		var details []string
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return tverrors.ConfigError{
			Message:    "Config file does not match the expected schema",
			Suggestion: strings.Join(details, "; "),
		}
	}
	return nil
}
