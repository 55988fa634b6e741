// Package nabla wires the lexer, parser, use resolver, namespace,
// type checker, and value evaluator into the entry points consumed by the
// CLI and the LSP server: Analyze (the whole pipeline over a source file),
// EvaluateExpr (a single expression), and the range conversion helpers.
package nabla

import (
	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/lexer"
	"github.com/nabla-lang/nabla/internal/lang/namespace"
	"github.com/nabla-lang/nabla/internal/lang/parser"
	"github.com/nabla-lang/nabla/internal/lang/token"
	"github.com/nabla-lang/nabla/internal/lang/types"
	"github.com/nabla-lang/nabla/internal/lang/use"
	"github.com/nabla-lang/nabla/internal/lang/value"
)

// Result is the full output of running the pipeline over one source file.
type Result struct {
	Tokens  []token.Token
	Program *ast.Program
	Inits   []value.Value
	Symbols map[string]value.Value
	Errors  []errors.Error
}

// Ok reports whether the run produced no error of any kind.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

// Analyze runs the complete pipeline over source: lex, parse, resolve uses,
// build the namespace, type-check, and evaluate. Every phase runs
// regardless of earlier errors; all diagnostics accumulate into one list in
// pipeline order.
func Analyze(source string) Result {
	tokens, lexErrs := lexer.Lex(source)

	var errs []errors.Error
	for _, le := range lexErrs {
		errs = append(errs, errors.NewLexical(lexErrorKind(le.Message), le.Range))
	}

	program, parseErrs := parser.Parse(tokens)
	errs = append(errs, parseErrs...)

	useTable, useErrs := use.Resolve(program)
	errs = append(errs, useErrs...)

	ns, nsErrs := namespace.Build(useTable, program)
	errs = append(errs, nsErrs...)

	typeInfo := types.Analyze(program, ns)
	errs = append(errs, typeInfo.Errors...)

	valueInfo := value.Build(program)
	valueResult := value.Check(valueInfo)
	errs = append(errs, valueResult.Errors...)

	return Result{
		Tokens:  tokens,
		Program: program,
		Inits:   valueResult.Inits,
		Symbols: valueResult.Symbols,
		Errors:  errs,
	}
}

func lexErrorKind(m token.ErrorMessage) errors.ErrorKind {
	switch m {
	case token.MissingClosingSingleQuote:
		return errors.MissingClosingSingleQuote
	case token.MissingDecimals:
		return errors.MissingDecimals
	default:
		return errors.UnknownChar
	}
}

// EvaluateExpr evaluates a single expression outside of any program
// context, with no bindings available to resolve References against, for
// callers that want a value for an isolated expression rather than a whole
// file's init. The CLI and the LSP server do not call it.
func EvaluateExpr(e ast.Expr) value.Value {
	info, idx := value.BuildExpr(e)
	values := value.Evaluate(info)
	if v, ok := values[idx]; ok {
		return v
	}
	return value.Value{Kind: value.Unknown}
}

// Pos is a 0-indexed line/char position, used for human-facing diagnostics.
type Pos struct {
	Line int
	Char int
}

// Span is a converted, human-facing text range.
type Span struct {
	Start Pos
	End   Pos
}

// ConvertTextRange turns a byte-offset TextRange into a line/char Span by
// counting newlines in source[:offset], as specified for CLI/LSP
// consumers.
func ConvertTextRange(source string, r token.TextRange) Span {
	return Span{Start: convertOffset(source, r.Start), End: convertOffset(source, r.End)}
}

// ConvertTokenRange turns a TokenRange into a line/char Span by mapping its
// first and last token back to their text ranges.
func ConvertTokenRange(source string, tokens []token.Token, r token.TokenRange) Span {
	if len(tokens) == 0 {
		return Span{}
	}
	startIdx := clamp(r.Start, 0, len(tokens)-1)
	endIdx := clamp(r.End-1, 0, len(tokens)-1)
	if endIdx < startIdx {
		endIdx = startIdx
	}
	return ConvertTextRange(source, token.TextRange{
		Start: tokens[startIdx].Range.Start,
		End:   tokens[endIdx].Range.End,
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func convertOffset(source string, offset int) Pos {
	offset = clamp(offset, 0, len(source))
	line, lastNewline := 0, -1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	return Pos{Line: line, Char: offset - lastNewline - 1}
}

// RangeOf converts an errors.Error's range (text range for lexical errors,
// token range for everything else) to a human-facing Span.
func RangeOf(source string, tokens []token.Token, e errors.Error) Span {
	if e.HasText {
		return ConvertTextRange(source, e.TextRange)
	}
	return ConvertTokenRange(source, tokens, e.Range)
}
