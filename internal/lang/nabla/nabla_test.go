package nabla

import "testing"

func TestEmptyProgram(t *testing.T) {
	r := Analyze("")
	if !r.Ok() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Program.Globals) != 0 {
		t.Fatalf("expected empty program, got %d globals", len(r.Program.Globals))
	}
	if len(r.Inits) != 0 {
		t.Fatalf("expected no inits, got %v", r.Inits)
	}
}

func TestPersonScenario(t *testing.T) {
	r := Analyze("def Person = { name: String  age: Number }\nPerson { name = \"Test\"  age = 0 }")
	if !r.Ok() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Inits) != 1 {
		t.Fatalf("expected one init, got %d", len(r.Inits))
	}
	name := r.Inits[0].StructVal["name"]
	if name.StringVal != "Test" {
		t.Fatalf("expected name=Test, got %v", name)
	}
}

func TestUnknownCharLexError(t *testing.T) {
	r := Analyze("def x = @")
	if r.Ok() {
		t.Fatalf("expected errors")
	}
}

func TestConvertTextRangeCountsLines(t *testing.T) {
	src := "abc\ndef\nghi"
	pos := convertOffset(src, 5)
	if pos.Line != 1 || pos.Char != 1 {
		t.Fatalf("expected line 1 char 1, got %+v", pos)
	}
}
