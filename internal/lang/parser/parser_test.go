package parser

import (
	"testing"

	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Program, []errors.Error) {
	t.Helper()
	tokens, lexErrs := lexer.Lex(src)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors for %q: %v", src, lexErrs)
	}
	return Parse(tokens)
}

func TestParseEmptyProgram(t *testing.T) {
	prog, errs := parseSrc(t, "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(prog.Globals) != 0 {
		t.Fatalf("expected zero globals, got %d", len(prog.Globals))
	}
}

func TestParseDefWithUnion(t *testing.T) {
	prog, errs := parseSrc(t, `def ok = "yes" | true`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(prog.Globals) != 1 {
		t.Fatalf("expected one global, got %d", len(prog.Globals))
	}
	def, ok := prog.Globals[0].(*ast.Def)
	if !ok {
		t.Fatalf("expected *ast.Def, got %T", prog.Globals[0])
	}
	if def.Name.Name != "ok" {
		t.Fatalf("expected name 'ok', got %q", def.Name.Name)
	}
	union, ok := def.Expr.(*ast.Union)
	if !ok {
		t.Fatalf("expected *ast.Union, got %T", def.Expr)
	}
	if len(union.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(union.Alternatives))
	}
}

func TestParseStructAndApplication(t *testing.T) {
	src := "def Person = { name: String  age: Number }\nPerson { name = \"Test\"  age = 0 }"
	prog, errs := parseSrc(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(prog.Globals) != 2 {
		t.Fatalf("expected 2 globals, got %d", len(prog.Globals))
	}
	def, ok := prog.Globals[0].(*ast.Def)
	if !ok {
		t.Fatalf("expected *ast.Def, got %T", prog.Globals[0])
	}
	st, ok := def.Expr.(*ast.Struct)
	if !ok {
		t.Fatalf("expected *ast.Struct, got %T", def.Expr)
	}
	if len(st.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(st.Fields))
	}
	init, ok := prog.Globals[1].(*ast.Init)
	if !ok {
		t.Fatalf("expected *ast.Init, got %T", prog.Globals[1])
	}
	named, ok := init.Expr.(*ast.Named)
	if !ok {
		t.Fatalf("expected *ast.Named, got %T", init.Expr)
	}
	if named.Name.Name != "Person" {
		t.Fatalf("expected name 'Person', got %q", named.Name.Name)
	}
	if named.Applied == nil {
		t.Fatalf("expected Named to be applied")
	}
}

func TestParseUseDuplicateNesting(t *testing.T) {
	prog, errs := parseSrc(t, "use a::b\nuse c::b")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(prog.Globals) != 2 {
		t.Fatalf("expected 2 globals, got %d", len(prog.Globals))
	}
	for _, g := range prog.Globals {
		if _, ok := g.(*ast.Use); !ok {
			t.Fatalf("expected *ast.Use, got %T", g)
		}
	}
}

func TestParseUseGlobAndBraces(t *testing.T) {
	prog, errs := parseSrc(t, "use a::*\nuse b::{ c d as e }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	first := prog.Globals[0].(*ast.Use)
	if _, ok := first.Body.Kind.(ast.Glob); !ok {
		t.Fatalf("expected Glob use-kind, got %T", first.Body.Kind)
	}
	second := prog.Globals[1].(*ast.Use)
	items, ok := second.Body.Kind.(ast.UseItems)
	if !ok {
		t.Fatalf("expected UseItems, got %T", second.Body.Kind)
	}
	if len(items.Items) != 2 {
		t.Fatalf("expected 2 use items, got %d", len(items.Items))
	}
	if items.Items[1].Alias == nil || items.Items[1].Alias.Name() != "e" {
		t.Fatalf("expected alias 'e' on second item, got %+v", items.Items[1].Alias)
	}
}

func TestParseUnexpectedTokenRecovers(t *testing.T) {
	// "@" is itself a lex error, so lex directly instead of via parseSrc.
	tokens, _ := lexer.Lex("def x = @")
	prog, errs := Parse(tokens)
	if len(errs) == 0 {
		t.Fatalf("expected at least one error")
	}
	foundUnexpected := false
	for _, e := range errs {
		if e.Message.Kind == errors.UnexpectedTokens || e.Message.Kind == errors.ExpectedSingle {
			foundUnexpected = true
		}
	}
	if !foundUnexpected {
		t.Fatalf("expected an UnexpectedTokens/ExpectedSingle error, got %v", errs)
	}
	if len(prog.Globals) != 1 {
		t.Fatalf("expected parser to still produce one global, got %d", len(prog.Globals))
	}
}

func TestParseListOfExprs(t *testing.T) {
	prog, errs := parseSrc(t, `let xs = [1 2 3]`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	let := prog.Globals[0].(*ast.Let)
	list, ok := let.Expr.(*ast.List)
	if !ok {
		t.Fatalf("expected *ast.List, got %T", let.Expr)
	}
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(list.Elements))
	}
}

func TestParseMissingClosingCurly(t *testing.T) {
	_, errs := parseSrc(t, "def x = { a = 1")
	found := false
	for _, e := range errs {
		if e.Message.Kind == errors.MissingClosingCurly {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MissingClosingCurly, got %v", errs)
	}
}
