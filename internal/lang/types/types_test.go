package types

import (
	"testing"

	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/lexer"
	"github.com/nabla-lang/nabla/internal/lang/namespace"
	"github.com/nabla-lang/nabla/internal/lang/parser"
	"github.com/nabla-lang/nabla/internal/lang/use"
)

func analyzeSrc(t *testing.T, src string) *Info {
	t.Helper()
	tokens, lexErrs := lexer.Lex(src)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	table, useErrs := use.Resolve(prog)
	if len(useErrs) != 0 {
		t.Fatalf("unexpected use errors: %v", useErrs)
	}
	ns, nsErrs := namespace.Build(table, prog)
	if len(nsErrs) != 0 {
		t.Fatalf("unexpected namespace errors: %v", nsErrs)
	}
	return Analyze(prog, ns)
}

func hasKind(errs []errors.Error, kind errors.ErrorKind) bool {
	for _, e := range errs {
		if e.Message.Kind == kind {
			return true
		}
	}
	return false
}

func TestStructApplicationNoErrors(t *testing.T) {
	info := analyzeSrc(t, "def Person = { name: String  age: Number }\nPerson { name = \"Test\"  age = 0 }")
	if len(info.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", info.Errors)
	}
}

func TestSelfReference(t *testing.T) {
	info := analyzeSrc(t, "def Type = Type {}")
	if !hasKind(info.Errors, errors.SelfReference) {
		t.Fatalf("expected SelfReference, got %v", info.Errors)
	}
}

func TestUnionMismatch(t *testing.T) {
	info := analyzeSrc(t, `def A = { a: String | null }
A { a: String | Number | null = null }`)
	if !hasKind(info.Errors, errors.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", info.Errors)
	}
}

func TestUninitializedLetOnUnion(t *testing.T) {
	info := analyzeSrc(t, `let a: String = "A" | "a"`)
	if !hasKind(info.Errors, errors.UninitializedLet) {
		t.Fatalf("expected UninitializedLet, got %v", info.Errors)
	}
}

func TestDuplicateFieldDetected(t *testing.T) {
	info := analyzeSrc(t, `def A = { x: Number  x: String }`)
	if !hasKind(info.Errors, errors.DuplicateField) {
		t.Fatalf("expected DuplicateField, got %v", info.Errors)
	}
}

func TestDefWithoutValueOk(t *testing.T) {
	info := analyzeSrc(t, `def ok = "yes" | true`)
	if len(info.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", info.Errors)
	}
}
