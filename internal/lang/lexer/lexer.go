// Package lexer turns Nabla source text into a token vector. Lexing never
// fails: every byte of input is covered by exactly one token, and per-token
// problems (an unterminated char literal, a stray byte) are attached to the
// offending token instead of aborting the scan.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/nabla-lang/nabla/internal/lang/token"
)

// Lexer scans UTF-8 source into tokens, one NextToken call at a time.
type Lexer struct {
	input        string
	position     int // byte offset of current rune
	readPosition int // byte offset of next rune
	ch           rune
}

// New creates a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Lex tokenizes src in full, returning the token vector (terminated by Eof)
// and any lexical errors collected along the way.
func Lex(src string) ([]token.Token, []token.Error) {
	l := New(src)
	var tokens []token.Token
	var errs []token.Error
	for {
		tok := l.NextToken()
		errs = append(errs, tok.Errors...)
		tokens = append(tokens, tok)
		if tok.Kind == token.Eof {
			break
		}
	}
	return tokens, errs
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// NextToken produces the single next token, greedily and with longest match.
func (l *Lexer) NextToken() token.Token {
	if l.atEnd() {
		return token.New(token.Eof, "", token.TextRange{Start: len(l.input), End: len(l.input)})
	}

	start := l.position

	switch {
	case isWhitespace(l.ch):
		return l.lexWhitespace(start)
	case l.ch == '/' && l.peekChar() == '/':
		return l.lexComment(start)
	case l.ch == '[':
		return l.lexSymbol(token.LBracket, start)
	case l.ch == ']':
		return l.lexSymbol(token.RBracket, start)
	case l.ch == '{':
		return l.lexSymbol(token.LCurly, start)
	case l.ch == '}':
		return l.lexSymbol(token.RCurly, start)
	case l.ch == ':' && l.peekChar() == ':':
		l.readChar()
		return l.lexSymbol(token.DoubleColon, start)
	case l.ch == ':':
		return l.lexSymbol(token.Colon, start)
	case l.ch == '*':
		return l.lexSymbol(token.Star, start)
	case l.ch == '|':
		return l.lexSymbol(token.Pipe, start)
	case l.ch == '=':
		return l.lexSymbol(token.Eq, start)
	case l.ch == '"':
		return l.lexString(start)
	case l.ch == '\'':
		return l.lexChar(start)
	case isDigit(l.ch):
		return l.lexNumber(start)
	case isIdentStart(l.ch):
		return l.lexIdent(start)
	default:
		return l.lexUnknown(start)
	}
}

func (l *Lexer) lexSymbol(kind token.Kind, start int) token.Token {
	end := l.position + utf8.RuneLen(l.ch)
	tok := token.New(kind, l.input[start:end], token.TextRange{Start: start, End: end})
	l.readChar()
	return tok
}

func (l *Lexer) lexWhitespace(start int) token.Token {
	for !l.atEnd() && isWhitespace(l.ch) {
		l.readChar()
	}
	end := l.position
	return token.New(token.Whitespace, l.input[start:end], token.TextRange{Start: start, End: end})
}

// lexComment consumes `// ... \n` inclusive of the trailing newline, or runs
// to EOF if no newline follows.
func (l *Lexer) lexComment(start int) token.Token {
	l.readChar() // consume first /
	l.readChar() // consume second /
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
	if !l.atEnd() && l.ch == '\n' {
		l.readChar() // consume the newline
	}
	end := l.position
	return token.New(token.Comment, l.input[start:end], token.TextRange{Start: start, End: end})
}

func (l *Lexer) lexString(start int) token.Token {
	l.readChar() // consume opening "
	for !l.atEnd() && l.ch != '"' {
		l.readChar()
	}
	if !l.atEnd() && l.ch == '"' {
		l.readChar() // consume closing "
	}
	end := l.position
	return token.New(token.String, l.input[start:end], token.TextRange{Start: start, End: end})
}

// lexChar scans `'x'` or `'\x'`. A missing closing quote attaches
// MissingClosingSingleQuote to the token but the token is still produced.
func (l *Lexer) lexChar(start int) token.Token {
	l.readChar() // consume opening '
	if !l.atEnd() && l.ch == '\\' {
		l.readChar()
	}
	if !l.atEnd() {
		l.readChar()
	}
	if !l.atEnd() && l.ch == '\'' {
		l.readChar()
		end := l.position
		return token.New(token.Char, l.input[start:end], token.TextRange{Start: start, End: end})
	}
	end := l.position
	tok := token.New(token.Char, l.input[start:end], token.TextRange{Start: start, End: end})
	return tok.AppendError(token.Error{Message: token.MissingClosingSingleQuote, Range: token.TextRange{Start: start, End: end}})
}

// lexNumber scans `digit+ (. digit+)?`. A trailing dot without decimals
// attaches MissingDecimals but the number token is still produced.
func (l *Lexer) lexNumber(start int) token.Token {
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	if !l.atEnd() && l.ch == '.' {
		dotPos := l.position
		l.readChar() // consume .
		if !l.atEnd() && isDigit(l.ch) {
			for !l.atEnd() && isDigit(l.ch) {
				l.readChar()
			}
		} else {
			end := l.position
			tok := token.New(token.Number, l.input[start:end], token.TextRange{Start: start, End: end})
			return tok.AppendError(token.Error{Message: token.MissingDecimals, Range: token.TextRange{Start: dotPos, End: end}})
		}
	}
	end := l.position
	return token.New(token.Number, l.input[start:end], token.TextRange{Start: start, End: end})
}

// lexIdent scans `[A-Za-z0-9_]+`, then classifies as a keyword or Ident.
// The caller only reaches here when the first character is not a digit, so
// numbers never get shadowed.
func (l *Lexer) lexIdent(start int) token.Token {
	for !l.atEnd() && isIdentPart(l.ch) {
		l.readChar()
	}
	end := l.position
	text := l.input[start:end]
	return token.New(token.Lookup(text), text, token.TextRange{Start: start, End: end})
}

func (l *Lexer) lexUnknown(start int) token.Token {
	end := start + utf8.RuneLen(l.ch)
	text := l.input[start:end]
	tok := token.New(token.Unknown, text, token.TextRange{Start: start, End: end})
	l.readChar()
	return tok.AppendError(token.Error{Message: token.UnknownChar, Range: token.TextRange{Start: start, End: end}})
}

func isWhitespace(ch rune) bool { return unicode.IsSpace(ch) }

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}
