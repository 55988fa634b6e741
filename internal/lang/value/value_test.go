package value

import (
	"testing"

	"github.com/nabla-lang/nabla/internal/lang/lexer"
	"github.com/nabla-lang/nabla/internal/lang/parser"
)

func checkSrc(t *testing.T, src string) Result {
	t.Helper()
	tokens, lexErrs := lexer.Lex(src)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	info := Build(prog)
	return Check(info)
}

func TestConfigDefaultApplied(t *testing.T) {
	result := checkSrc(t, "def Config = { x: Number = 0 }\nConfig { x = 1 }")
	cfg, ok := result.Symbols["Config"]
	if !ok || cfg.Kind != Struct {
		t.Fatalf("expected Config struct, got %v", cfg)
	}
	x, ok := cfg.StructVal["x"]
	if !ok || x.Kind != Number || x.NumberRaw != "0" {
		t.Fatalf("expected Config.x = 0, got %v", x)
	}
}

func TestComposedOverridesOwnField(t *testing.T) {
	result := checkSrc(t, "def Base = { a: Number = 1  b: Number = 2 }\nlet r = Base { a = 9 }")
	r, ok := result.Symbols["r"]
	if !ok || r.Kind != Struct {
		t.Fatalf("expected struct, got %v", r)
	}
	if a := r.StructVal["a"]; a.NumberRaw != "9" {
		t.Fatalf("expected a=9 (own wins), got %v", a)
	}
	if b := r.StructVal["b"]; b.NumberRaw != "2" {
		t.Fatalf("expected b=2 (inherited from super), got %v", b)
	}
}

func TestCycleResolvesToUnknown(t *testing.T) {
	result := checkSrc(t, "let rec = { r = rec }")
	rec, ok := result.Symbols["rec"]
	if !ok || rec.Kind != Struct {
		t.Fatalf("expected struct, got %v", rec)
	}
	if rec.StructVal["r"].Kind != Unknown {
		t.Fatalf("expected cyclic field to be Unknown, got %v", rec.StructVal["r"])
	}
	if !hasErrorUninitializedLet(result) {
		t.Fatalf("expected UninitializedLet, got %v", result.Errors)
	}
}

func TestMultipleInitsOnlyFirstReturned(t *testing.T) {
	result := checkSrc(t, "\"a\"\n\"b\"\n\"c\"")
	if len(result.Inits) != 1 {
		t.Fatalf("expected exactly one init, got %d", len(result.Inits))
	}
	if result.Inits[0].StringVal != "a" {
		t.Fatalf("expected first init kept, got %v", result.Inits[0])
	}
	count := 0
	for _, e := range result.Errors {
		if e.Message.Kind.String() == "MultipleInits" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 MultipleInits errors, got %d", count)
	}
}

func hasErrorUninitializedLet(r Result) bool {
	for _, e := range r.Errors {
		if e.Message.Kind.String() == "UninitializedLet" {
			return true
		}
	}
	return false
}
