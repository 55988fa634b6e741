// Package format converts an evaluated value.Value into JSON, YAML, TOML,
// or XML bytes. Conversion mirrors the original backend's to_json_value: a
// value reachable only through Unknown cannot be serialized at all, rather
// than silently dropping the unknown parts.
package format

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nabla-lang/nabla/internal/lang/value"
)

// Target names a supported serialization format.
type Target string

const (
	JSON Target = "json"
	YAML Target = "yaml"
	TOML Target = "toml"
	XML  Target = "xml"
)

// ParseTarget validates a CLI/LSP-supplied target name.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case JSON, YAML, TOML, XML:
		return Target(s), nil
	default:
		return "", fmt.Errorf("format: unknown target %q (want json, yaml, toml, or xml)", s)
	}
}

// Marshal converts v to generic Go data and encodes it in target's wire
// format.
func Marshal(target Target, v value.Value) ([]byte, error) {
	generic, err := ToGeneric(v)
	if err != nil {
		return nil, err
	}
	switch target {
	case JSON:
		return json.MarshalIndent(generic, "", "  ")
	case YAML:
		return yaml.Marshal(generic)
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(generic); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case XML:
		return marshalXML(generic)
	default:
		return nil, fmt.Errorf("format: unknown target %q", target)
	}
}

// ToGeneric converts a value.Value tree into the plain Go types (map, slice,
// string, bool, int64/float64, nil) every encoder below understands. Any
// Unknown reached while walking the tree fails the whole conversion: a
// partially-known struct or list is not a value a format can represent.
func ToGeneric(v value.Value) (interface{}, error) {
	switch v.Kind {
	case value.Unknown:
		return nil, fmt.Errorf("format: value is not known")
	case value.Null:
		return nil, nil
	case value.Bool:
		return v.BoolVal, nil
	case value.Number:
		return parseNumber(v.NumberRaw)
	case value.String:
		return v.StringVal, nil
	case value.List:
		out := make([]interface{}, len(v.ListVal))
		for i, e := range v.ListVal {
			g, err := ToGeneric(e)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case value.Struct:
		out := make(map[string]interface{}, len(v.StructVal))
		for k, f := range v.StructVal {
			g, err := ToGeneric(f)
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	default:
		return nil, fmt.Errorf("format: unhandled value kind %v", v.Kind)
	}
}

func parseNumber(raw string) (interface{}, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("format: invalid number literal %q", raw)
	}
	return f, nil
}

// marshalXML walks the generic tree with the stdlib's token-level Encoder;
// encoding/xml cannot marshal a bare map[string]interface{} directly, so
// struct fields become elements named after the map key (or "item" inside a
// list) by hand.
func marshalXML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeXMLElement(enc, "value", v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXMLElement(enc *xml.Encoder, name string, v interface{}) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	switch val := v.(type) {
	case map[string]interface{}:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for k, child := range val {
			if err := encodeXMLElement(enc, k, child); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case []interface{}:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, child := range val {
			if err := encodeXMLElement(enc, "item", child); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case nil:
		return enc.EncodeElement("", start)
	default:
		return enc.EncodeElement(fmt.Sprintf("%v", val), start)
	}
}
