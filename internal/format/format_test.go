package format

import (
	"strings"
	"testing"

	"github.com/nabla-lang/nabla/internal/lang/value"
)

func person() value.Value {
	return value.Value{Kind: value.Struct, StructVal: map[string]value.Value{
		"name": {Kind: value.String, StringVal: "Test"},
		"age":  {Kind: value.Number, NumberRaw: "0"},
	}}
}

func TestMarshalJSON(t *testing.T) {
	out, err := Marshal(JSON, person())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `"name": "Test"`) {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestMarshalYAML(t *testing.T) {
	out, err := Marshal(YAML, person())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "name: Test") {
		t.Fatalf("unexpected yaml: %s", out)
	}
}

func TestMarshalUnknownFails(t *testing.T) {
	_, err := Marshal(JSON, value.Value{Kind: value.Unknown})
	if err == nil {
		t.Fatalf("expected error for unknown value")
	}
}

func TestParseTargetRejectsGarbage(t *testing.T) {
	if _, err := ParseTarget("ini"); err == nil {
		t.Fatalf("expected error for unsupported target")
	}
}
