// Package parser builds a Program from a token vector by recursive descent.
// It never panics: any production that fails to match consumes tokens up to
// a look-ahead sync set, wraps the skipped span in an Error node, and keeps
// going, so the result is always a well-formed tree plus a flat error list.
package parser

import (
	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/token"
)

// Parser holds the full token vector (including whitespace and comments,
// which it skips transparently) and an append-only error list.
type Parser struct {
	tokens []token.Token
	pos    int
	errs   errors.List
}

// New creates a Parser over a full token vector, as produced by the lexer.
func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	p.skipTrivia()
	return p
}

// Parse lexes nothing itself: it consumes an already-lexed token vector and
// returns the Program plus every syntactic error collected while building it.
func Parse(tokens []token.Token) (*ast.Program, []errors.Error) {
	p := New(tokens)
	prog := p.parseProgram()
	return prog, p.errs.Errors
}

func isTrivia(k token.Kind) bool { return k == token.Whitespace || k == token.Comment }

func (p *Parser) skipTrivia() {
	for p.pos < len(p.tokens) && isTrivia(p.tokens[p.pos].Kind) {
		p.pos++
	}
}

// cur returns the current non-trivia token, or the trailing Eof if pos ran
// past the vector (defensive only; Eof always stops the main loop first).
func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) curIndex() int {
	if p.pos >= len(p.tokens) {
		return len(p.tokens) - 1
	}
	return p.pos
}

func (p *Parser) atEof() bool { return p.cur().Kind == token.Eof }

// advance consumes the current token and skips trivia up to the next real
// token, returning what was consumed.
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.skipTrivia()
	return t
}

func rng(start, end int) token.TokenRange { return token.TokenRange{Start: start, End: end} }

// ignoreUntil consumes tokens until cur satisfies sync (or Eof is reached),
// returning the index where it stopped.
func (p *Parser) ignoreUntil(sync func(token.Kind) bool) int {
	for !sync(p.cur().Kind) && !p.atEof() {
		p.advance()
	}
	return p.curIndex()
}

// --- look-ahead sets ----------------------------------------------------

func isGlobalSync(k token.Kind) bool {
	switch k {
	case token.Use, token.Def, token.Let, token.LCurly, token.LBracket, token.Ident, token.Eof:
		return true
	}
	return false
}

func isUseKindSync(k token.Kind) bool {
	switch k {
	case token.Star, token.As, token.RCurly:
		return true
	}
	return isGlobalSync(k)
}

func isExprSync(k token.Kind) bool {
	switch k {
	case token.Eq, token.RCurly, token.RBracket, token.As:
		return true
	}
	return isGlobalSync(k)
}

func isStructFieldSync(k token.Kind) bool {
	if k == token.Pipe {
		return true
	}
	return isExprSync(k)
}

// isExprStart reports whether k can begin a Single (and hence an Expr).
func isExprStart(k token.Kind) bool {
	switch k {
	case token.LCurly, token.LBracket, token.Ident,
		token.String, token.Char, token.Number, token.True, token.False, token.Null:
		return true
	}
	return false
}

// --- Program / Global -----------------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	start := p.curIndex()
	var globals []ast.Global
	for !p.atEof() {
		globals = append(globals, p.parseGlobal())
	}
	eofIdx := p.curIndex()
	if p.pos < len(p.tokens)-1 {
		p.errs.Add(errors.New(errors.TokensAfterEof, rng(p.pos+1, len(p.tokens))))
	}
	return ast.NewProgram(globals, ast.Info{Range: rng(start, eofIdx+1)})
}

func (p *Parser) parseGlobal() ast.Global {
	start := p.curIndex()
	switch p.cur().Kind {
	case token.Use:
		return p.parseUse()
	case token.Def:
		return p.parseDef()
	case token.Let:
		return p.parseLet()
	default:
		if isExprStart(p.cur().Kind) {
			return p.parseInit()
		}
		end := p.ignoreUntil(isGlobalSync)
		r := rng(start, end)
		p.errs.Add(errors.New(errors.UnexpectedTokens, r))
		return ast.NewErrorGlobal(ast.Info{Range: r})
	}
}

// --- Use --------------------------------------------------------------

func (p *Parser) parseUse() *ast.Use {
	start := p.curIndex()
	p.advance() // 'use'
	name := p.expectIdent()
	var body *ast.UseBody
	if p.cur().Kind == token.DoubleColon {
		body = p.parseUseBody()
	}
	end := p.curIndex()
	return ast.NewUse(name, body, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseUseBody() *ast.UseBody {
	start := p.curIndex()
	p.advance() // '::'
	kind := p.parseUseKind()
	end := p.curIndex()
	return ast.NewUseBody(kind, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseUseKind() ast.UseKind {
	start := p.curIndex()
	switch p.cur().Kind {
	case token.Star:
		idx := p.curIndex()
		p.advance()
		return ast.NewGlob(ast.Info{Range: rng(idx, idx+1)})
	case token.LCurly:
		p.advance()
		var items []*ast.UseItem
		for p.cur().Kind != token.RCurly && !p.atEof() {
			before := p.pos
			items = append(items, p.parseUseItem())
			if p.pos == before {
				break
			}
		}
		if p.cur().Kind == token.RCurly {
			p.advance()
		} else {
			idx := p.curIndex()
			p.errs.Add(errors.New(errors.MissingClosingCurly, rng(idx, idx)))
		}
		end := p.curIndex()
		return ast.NewUseItems(items, ast.Info{Range: rng(start, end)})
	case token.Ident:
		return p.parseUseItem()
	default:
		end := p.ignoreUntil(isUseKindSync)
		r := rng(start, end)
		p.errs.Add(errors.New(errors.ExpectedUseKind, r))
		return ast.NewUseError(ast.Info{Range: r})
	}
}

func (p *Parser) parseUseItem() *ast.UseItem {
	start := p.curIndex()
	name := p.expectIdent()
	var body *ast.UseBody
	if p.cur().Kind == token.DoubleColon {
		body = p.parseUseBody()
	}
	var alias *ast.Alias
	if p.cur().Kind == token.As {
		alias = p.parseAlias()
	}
	end := p.curIndex()
	return ast.NewUseItem(name, body, alias, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseAlias() *ast.Alias {
	start := p.curIndex()
	p.advance() // 'as'
	switch p.cur().Kind {
	case token.Ident:
		idx := p.curIndex()
		t := p.advance()
		id := ast.NewIdent(t.Text, ast.Info{Range: rng(idx, idx+1)})
		return ast.NewIdentAlias(id, ast.Info{Range: rng(start, idx+1)})
	case token.String:
		idx := p.curIndex()
		t := p.advance()
		return ast.NewStringAlias(t.Text, ast.Info{Range: rng(start, idx+1)})
	default:
		idx := p.curIndex()
		p.errs.Add(errors.New(errors.ExpectedIdent, rng(idx, idx)))
		return ast.NewIdentAlias(ast.NewIdent("", ast.Info{Range: rng(idx, idx)}), ast.Info{Range: rng(start, idx)})
	}
}

// --- Def / Let / Init ---------------------------------------------------

func (p *Parser) parseDef() *ast.Def {
	start := p.curIndex()
	p.advance() // 'def'
	name := p.expectIdent()
	typ := p.parseOptionalTypeAnnotation()
	p.expectEq()
	expr := p.parseExpr()
	end := p.curIndex()
	return ast.NewDef(&name, typ, expr, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseLet() *ast.Let {
	start := p.curIndex()
	p.advance() // 'let'
	name := p.expectIdent()
	typ := p.parseOptionalTypeAnnotation()
	p.expectEq()
	expr := p.parseExpr()
	end := p.curIndex()
	return ast.NewLet(&name, typ, expr, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseOptionalTypeAnnotation() ast.Expr {
	if p.cur().Kind != token.Colon {
		return nil
	}
	p.advance() // ':'
	return p.parseExpr()
}

func (p *Parser) expectEq() {
	if p.cur().Kind == token.Eq {
		p.advance()
		return
	}
	idx := p.curIndex()
	p.errs.Add(errors.New(errors.ExpectedEQ, rng(idx, idx)))
}

func (p *Parser) parseInit() *ast.Init {
	start := p.curIndex()
	expr := p.parseExpr()
	end := p.curIndex()
	return ast.NewInit(expr, ast.Info{Range: rng(start, end)})
}

func (p *Parser) expectIdent() ast.Ident {
	if p.cur().Kind == token.Ident {
		idx := p.curIndex()
		t := p.advance()
		return ast.NewIdent(t.Text, ast.Info{Range: rng(idx, idx+1)})
	}
	idx := p.curIndex()
	p.errs.Add(errors.New(errors.ExpectedIdent, rng(idx, idx)))
	return ast.NewIdent("", ast.Info{Range: rng(idx, idx)})
}

// --- Expr / Single -------------------------------------------------------

func (p *Parser) parseExpr() ast.Expr {
	start := p.curIndex()
	first := p.parseSingle()
	if p.cur().Kind != token.Pipe {
		return first
	}
	alts := []ast.Single{first}
	for p.cur().Kind == token.Pipe {
		p.advance()
		alts = append(alts, p.parseSingle())
	}
	end := p.curIndex()
	return ast.NewUnion(alts, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseSingle() ast.Single {
	start := p.curIndex()
	switch p.cur().Kind {
	case token.LCurly:
		return p.parseStruct()
	case token.LBracket:
		return p.parseList()
	case token.Ident:
		return p.parseNamed()
	case token.String:
		t := p.advance()
		return ast.NewPrimitive(ast.PrimitiveString, t.Text, ast.Info{Range: rng(start, start+1)})
	case token.Char:
		t := p.advance()
		return ast.NewPrimitive(ast.PrimitiveChar, t.Text, ast.Info{Range: rng(start, start+1)})
	case token.Number:
		t := p.advance()
		return ast.NewPrimitive(ast.PrimitiveNumber, t.Text, ast.Info{Range: rng(start, start+1)})
	case token.True, token.False:
		t := p.advance()
		return ast.NewPrimitive(ast.PrimitiveBool, t.Text, ast.Info{Range: rng(start, start+1)})
	case token.Null:
		t := p.advance()
		return ast.NewPrimitive(ast.PrimitiveNull, t.Text, ast.Info{Range: rng(start, start+1)})
	default:
		end := p.ignoreUntil(isExprSync)
		r := rng(start, end)
		if end > start {
			p.errs.Add(errors.New(errors.UnexpectedTokens, r))
		} else {
			p.errs.Add(errors.New(errors.ExpectedSingle, r))
		}
		return ast.NewErrorExpr(ast.Info{Range: r})
	}
}

func (p *Parser) parseStruct() *ast.Struct {
	start := p.curIndex()
	p.advance() // '{'
	var fields []*ast.StructField
	for p.cur().Kind != token.RCurly && !p.atEof() {
		before := p.pos
		fields = append(fields, p.parseStructField())
		if p.pos == before {
			break
		}
	}
	if p.cur().Kind == token.RCurly {
		p.advance()
	} else {
		idx := p.curIndex()
		p.errs.Add(errors.New(errors.MissingClosingCurly, rng(idx, idx)))
	}
	end := p.curIndex()
	return ast.NewStruct(fields, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseStructField() *ast.StructField {
	start := p.curIndex()
	if p.cur().Kind != token.Ident {
		end := p.ignoreUntil(isStructFieldSync)
		r := rng(start, end)
		p.errs.Add(errors.New(errors.ExpectedIdent, r))
		return ast.NewStructField(nil, nil, nil, nil, ast.Info{Range: r})
	}
	name := p.expectIdent()
	var typ ast.Expr
	if p.cur().Kind == token.Colon {
		p.advance()
		typ = p.parseExpr()
	}
	var value ast.Expr
	if p.cur().Kind == token.Eq {
		p.advance()
		value = p.parseExpr()
	}
	var alias *ast.Alias
	if p.cur().Kind == token.As {
		alias = p.parseAlias()
	}
	end := p.curIndex()
	return ast.NewStructField(&name, typ, value, alias, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseList() *ast.List {
	start := p.curIndex()
	p.advance() // '['
	var elems []ast.Expr
	for p.cur().Kind != token.RBracket && !p.atEof() {
		before := p.pos
		elems = append(elems, p.parseExpr())
		if p.pos == before {
			break
		}
	}
	if p.cur().Kind == token.RBracket {
		p.advance()
	} else {
		idx := p.curIndex()
		p.errs.Add(errors.New(errors.MissingClosingBracket, rng(idx, idx)))
	}
	end := p.curIndex()
	return ast.NewList(elems, ast.Info{Range: rng(start, end)})
}

func (p *Parser) parseNamed() *ast.Named {
	start := p.curIndex()
	name := p.expectIdent()
	var inner []ast.Ident
	for p.cur().Kind == token.DoubleColon {
		p.advance()
		inner = append(inner, p.expectIdent())
	}
	var applied ast.Single
	switch p.cur().Kind {
	case token.LCurly:
		applied = p.parseStruct()
	case token.LBracket:
		applied = p.parseList()
	}
	end := p.curIndex()
	return ast.NewNamed(name, inner, applied, ast.Info{Range: rng(start, end)})
}
