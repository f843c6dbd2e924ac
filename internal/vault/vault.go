// Package vault implements a minimal HashiCorp Vault KV v2 client over the
// HTTP API. The Client interface exists so the fetch pipeline can be tested
// against a stub without a running Vault.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrSecretNotFound indicates the store has no secret at the requested
	// mount and path.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrFieldNotFound indicates the secret exists but does not carry the
	// requested field.
	ErrFieldNotFound = errors.New("field not found in secret")
)

// Client is the narrow contract the render pipeline consumes. The returned
// FieldMap holds the secret's data fields keyed by field name.
type Client interface {
	Authenticate(ctx context.Context) error
	ReadSecret(ctx context.Context, mount, path string) (FieldMap, error)
	Close() error
}

// FieldMap is the field-name to value mapping of one secret version.
type FieldMap map[string]FieldValue

// Kind enumerates the value shapes a secret field may take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// FieldValue is a closed variant over the JSON scalar types Vault stores in
// KV data: string, number, boolean, or null. Structured values (objects,
// arrays) are rejected at decode time rather than stringified ambiguously.
type FieldValue struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
}

// StringValue constructs a string field value.
func StringValue(s string) FieldValue {
	return FieldValue{kind: KindString, str: s}
}

// NumberValue constructs a numeric field value from its JSON literal.
func NumberValue(n json.Number) FieldValue {
	return FieldValue{kind: KindNumber, num: n}
}

// BoolValue constructs a boolean field value.
func BoolValue(b bool) FieldValue {
	return FieldValue{kind: KindBool, b: b}
}

// NullValue constructs a null field value.
func NullValue() FieldValue {
	return FieldValue{kind: KindNull}
}

// Kind reports which variant the value holds.
func (v FieldValue) Kind() Kind {
	return v.kind
}

// String renders the value as template substitution text. The conversion is
// total: numbers keep their JSON literal form, booleans become true/false,
// and null becomes the literal "null".
func (v FieldValue) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// UnmarshalJSON decodes a scalar JSON value into the variant.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case nil:
		*v = NullValue()
	case string:
		*v = StringValue(val)
	case json.Number:
		*v = NumberValue(val)
	case bool:
		*v = BoolValue(val)
	default:
		return fmt.Errorf("unsupported secret field type %T (expected string, number, boolean, or null)", raw)
	}
	return nil
}
