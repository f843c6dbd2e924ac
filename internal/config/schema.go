package config

// configSchema is the JSON schema for template-vault.yaml. Unknown top-level
// keys are rejected so misspelled settings fail loudly.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "version": {
      "type": "integer",
      "minimum": 0
    },
    "auth_method": {
      "type": "string",
      "enum": ["token", "userpass"]
    },
    "username": {
      "type": "string"
    },
    "ca_cert": {
      "type": "string"
    },
    "tls_skip": {
      "type": "boolean"
    },
    "timeout_ms": {
      "type": "integer",
      "minimum": 1
    },
    "use_keyring": {
      "type": "boolean"
    }
  }
}`
