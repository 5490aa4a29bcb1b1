package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mj1618/uiarec/internal/script"
	"gopkg.in/yaml.v3"
)

// ValueKind is the dynamic type of a property value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindString
	KindInt
	KindBool
)

// Value is a property value: absent, string, integer or boolean.
// The zero Value is absent.
type Value struct {
	kind ValueKind
	s    string
	i    int
	b    bool
}

func NoneValue() Value { return Value{} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string payload ("" for other kinds).
func (v Value) Str() string { return v.s }

// Int returns the integer payload (0 for other kinds).
func (v Value) Int() int { return v.i }

// Bool returns the boolean payload (false for other kinds).
func (v Value) Bool() bool { return v.b }

// IsEmpty reports whether the value is absent or an empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNone || (v.kind == KindString && v.s == "")
}

// Literal renders the value in the script syntax used by both text forms.
func (v Value) Literal() string {
	switch v.kind {
	case KindString:
		return script.Quote(v.s)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		return script.Bool(v.b)
	default:
		return "None"
	}
}

func (v Value) String() string { return v.Literal() }

// parseLiteral coerces one value from enumeration text.
func parseLiteral(raw string) (Value, error) {
	switch raw {
	case "None":
		return NoneValue(), nil
	case "True":
		return BoolValue(true), nil
	case "False":
		return BoolValue(false), nil
	}
	if raw == "" {
		return StringValue(""), nil
	}
	if isIntLiteral(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer %q", raw)
		}
		return IntValue(n), nil
	}
	if raw[0] == '\'' || raw[0] == '"' {
		s, err := script.Unquote(raw)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	}
	return StringValue(raw), nil
}

func isIntLiteral(raw string) bool {
	if raw[0] >= '0' && raw[0] <= '9' {
		return true
	}
	return len(raw) > 1 && raw[0] == '-' && raw[1] >= '0' && raw[1] <= '9'
}

// MarshalJSON encodes the value as a native JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.i)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a native JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = NoneValue()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("property value %s: %w", data, err)
		}
		*v = IntValue(n)
	}
	return nil
}

// MarshalYAML encodes the value as a native YAML scalar.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return v.i, nil
	case KindBool:
		return v.b, nil
	default:
		return nil, nil
	}
}

// UnmarshalYAML decodes a native YAML scalar.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: property value must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*v = NoneValue()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case "!!int":
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		*v = IntValue(n)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}
