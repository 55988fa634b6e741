package use

import (
	"testing"

	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/lexer"
	"github.com/nabla-lang/nabla/internal/lang/parser"
)

func resolveSrc(t *testing.T, src string) (*Table, []errors.Error) {
	t.Helper()
	tokens, lexErrs := lexer.Lex(src)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	program, parseErrs := parser.Parse(tokens)
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	return Resolve(program)
}

func hasKind(errs []errors.Error, kind errors.ErrorKind) bool {
	for _, e := range errs {
		if e.Message.Kind == kind {
			return true
		}
	}
	return false
}

func TestSingleUseBindsLocalName(t *testing.T) {
	table, errs := resolveSrc(t, "use a::b")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	path, ok := table.Entries["b"]
	if !ok {
		t.Fatalf("expected local name b, got %v", table.Entries)
	}
	if len(path) != 2 || path[0] != "a" || path[1] != "b" {
		t.Fatalf("unexpected path: %v", path)
	}
}

func TestAliasBindsAliasName(t *testing.T) {
	table, errs := resolveSrc(t, "use a::b as c")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := table.Entries["c"]; !ok {
		t.Fatalf("expected alias c, got %v", table.Entries)
	}
	if _, ok := table.Entries["b"]; ok {
		t.Fatalf("unaliased name b should not be bound")
	}
}

func TestDuplicateUseKeepsFirstDefinition(t *testing.T) {
	table, errs := resolveSrc(t, "use a::b\nuse c::b")
	if !hasKind(errs, errors.DuplicateUse) {
		t.Fatalf("expected DuplicateUse, got %v", errs)
	}
	path := table.Entries["b"]
	if len(path) != 2 || path[0] != "a" {
		t.Fatalf("expected first definition to win, got %v", path)
	}
}

func TestGlobImportIsUnsupported(t *testing.T) {
	_, errs := resolveSrc(t, "use a::*")
	if !hasKind(errs, errors.Unsupported) {
		t.Fatalf("expected Unsupported, got %v", errs)
	}
}

func TestAliasOnNonSingleIsRejected(t *testing.T) {
	_, errs := resolveSrc(t, "use a::b::{c d} as e")
	if !hasKind(errs, errors.AliasingNonSingle) {
		t.Fatalf("expected AliasingNonSingle, got %v", errs)
	}
}
