package lexer

import (
	"testing"

	"github.com/nabla-lang/nabla/internal/lang/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func nonTrivial(tokens []token.Token) []token.Token {
	var out []token.Token
	for _, t := range tokens {
		if t.Kind == token.Whitespace || t.Kind == token.Comment {
			continue
		}
		out = append(out, t)
	}
	return out
}

func TestLexPunctuation(t *testing.T) {
	tokens, errs := Lex("[]{}::*|=:")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := kinds(nonTrivial(tokens))
	want := []token.Kind{
		token.LBracket, token.RBracket, token.LCurly, token.RCurly,
		token.DoubleColon, token.Star, token.Pipe, token.Eq, token.Colon, token.Eof,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexKeywordsVsIdent(t *testing.T) {
	tokens, errs := Lex("use def let as true false null foo")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := kinds(nonTrivial(tokens))
	want := []token.Kind{
		token.Use, token.Def, token.Let, token.As, token.True, token.False, token.Null, token.Ident, token.Eof,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexNumber(t *testing.T) {
	tokens, errs := Lex("42 3.14")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	nt := nonTrivial(tokens)
	if nt[0].Kind != token.Number || nt[0].Text != "42" {
		t.Fatalf("got %+v", nt[0])
	}
	if nt[1].Kind != token.Number || nt[1].Text != "3.14" {
		t.Fatalf("got %+v", nt[1])
	}
}

func TestLexNumberMissingDecimals(t *testing.T) {
	tokens, errs := Lex("1.")
	if len(errs) != 1 || errs[0].Message != token.MissingDecimals {
		t.Fatalf("expected MissingDecimals error, got %v", errs)
	}
	nt := nonTrivial(tokens)
	if nt[0].Kind != token.Number || nt[0].Text != "1." {
		t.Fatalf("got %+v", nt[0])
	}
}

func TestLexString(t *testing.T) {
	tokens, errs := Lex(`"hello world"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	nt := nonTrivial(tokens)
	if nt[0].Kind != token.String || nt[0].Text != `"hello world"` {
		t.Fatalf("got %+v", nt[0])
	}
}

func TestLexChar(t *testing.T) {
	tokens, errs := Lex(`'a' '\n'`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	nt := nonTrivial(tokens)
	if nt[0].Kind != token.Char || nt[0].Text != `'a'` {
		t.Fatalf("got %+v", nt[0])
	}
	if nt[1].Kind != token.Char || nt[1].Text != `'\n'` {
		t.Fatalf("got %+v", nt[1])
	}
}

func TestLexCharMissingClosingQuote(t *testing.T) {
	tokens, errs := Lex(`'a`)
	if len(errs) != 1 || errs[0].Message != token.MissingClosingSingleQuote {
		t.Fatalf("expected MissingClosingSingleQuote error, got %v", errs)
	}
	nt := nonTrivial(tokens)
	if nt[0].Kind != token.Char {
		t.Fatalf("got %+v", nt[0])
	}
}

func TestLexComment(t *testing.T) {
	tokens, _ := Lex("// a comment\nfoo")
	var sawComment, sawIdent bool
	for _, tok := range tokens {
		if tok.Kind == token.Comment {
			sawComment = true
		}
		if tok.Kind == token.Ident && tok.Text == "foo" {
			sawIdent = true
		}
	}
	if !sawComment || !sawIdent {
		t.Fatalf("expected comment and ident tokens, got %v", tokens)
	}
}

func TestLexUnknown(t *testing.T) {
	tokens, errs := Lex("@")
	if len(errs) != 1 || errs[0].Message != token.UnknownChar {
		t.Fatalf("expected UnknownChar error, got %v", errs)
	}
	nt := nonTrivial(tokens)
	if nt[0].Kind != token.Unknown || nt[0].Text != "@" {
		t.Fatalf("got %+v", nt[0])
	}
}

func TestLexEndsInEof(t *testing.T) {
	tokens, _ := Lex("")
	if len(tokens) != 1 || tokens[0].Kind != token.Eof {
		t.Fatalf("expected a single Eof token for empty input, got %v", tokens)
	}
}

func TestLexRangesCoverInput(t *testing.T) {
	src := "use foo::bar as baz"
	tokens, _ := Lex(src)
	for i, tok := range tokens {
		if tok.Kind == token.Eof {
			continue
		}
		if src[tok.Range.Start:tok.Range.End] != tok.Text {
			t.Fatalf("token %d range %v does not match text %q", i, tok.Range, tok.Text)
		}
	}
}
