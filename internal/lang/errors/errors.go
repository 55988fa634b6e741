// Package errors defines the single error taxonomy shared by the parser and
// the semantic passes, plus the flat accumulator they all append to.
package errors

import (
	"fmt"

	"github.com/nabla-lang/nabla/internal/lang/token"
)

// Message is a member of the finite error taxonomy. Each value carries its
// own payload fields; zero value fields are simply unused for variants that
// need none.
type Message struct {
	Kind ErrorKind

	// payload, used by the kinds that name it in their doc comment below
	Name     string
	Expected string
	Actual   string
	Feature  string
}

// ErrorKind enumerates every diagnostic Nabla can emit, across all three
// phases (lexical, syntactic, semantic).
type ErrorKind int

const (
	// lexical
	MissingClosingSingleQuote ErrorKind = iota
	MissingDecimals
	UnknownChar

	// syntactic
	ExpectedIdent
	ExpectedUseKind
	ExpectedEQ
	ExpectedExpr
	ExpectedSingle
	MissingClosingCurly
	MissingClosingBracket
	TokensAfterEof
	UnexpectedTokens

	// semantic
	AliasMustBeString
	AliasMustBeIdent
	AliasingNonSingle
	DuplicateField   // Name
	DuplicateUse     // Name
	MissingField     // Name
	MultipleListTypes
	MultipleInits
	RecursiveInit
	Redeclaration    // Name
	SelfReference    // Name
	TypeMismatch
	UndefinedIdent   // Name
	UnexpectedField  // Name
	UnexpectedListElement
	UninitializedDefault
	UnassignedField
	UntypedField
	UninitializedLet
	UninitializedInit
	UnknownType
	Unsupported // Feature
	ValueMismatch // Expected, Actual
	ImmutableLet  // Name
)

func (k ErrorKind) String() string {
	switch k {
	case MissingClosingSingleQuote:
		return "MissingClosingSingleQuote"
	case MissingDecimals:
		return "MissingDecimals"
	case UnknownChar:
		return "Unknown"
	case ExpectedIdent:
		return "ExpectedIdent"
	case ExpectedUseKind:
		return "ExpectedUseKind"
	case ExpectedEQ:
		return "ExpectedEQ"
	case ExpectedExpr:
		return "ExpectedExpr"
	case ExpectedSingle:
		return "ExpectedSingle"
	case MissingClosingCurly:
		return "MissingClosingCurly"
	case MissingClosingBracket:
		return "MissingClosingBracket"
	case TokensAfterEof:
		return "TokensAfterEof"
	case UnexpectedTokens:
		return "UnexpectedTokens"
	case AliasMustBeString:
		return "AliasMustBeString"
	case AliasMustBeIdent:
		return "AliasMustBeIdent"
	case AliasingNonSingle:
		return "AliasingNonSingle"
	case DuplicateField:
		return "DuplicateField"
	case DuplicateUse:
		return "DuplicateUse"
	case MissingField:
		return "MissingField"
	case MultipleListTypes:
		return "MultipleListTypes"
	case MultipleInits:
		return "MultipleInits"
	case RecursiveInit:
		return "RecursiveInit"
	case Redeclaration:
		return "Redeclaration"
	case SelfReference:
		return "SelfReference"
	case TypeMismatch:
		return "TypeMismatch"
	case UndefinedIdent:
		return "UndefinedIdent"
	case UnexpectedField:
		return "UnexpectedField"
	case UnexpectedListElement:
		return "UnexpectedListElement"
	case UninitializedDefault:
		return "UninitializedDefault"
	case UnassignedField:
		return "UnassignedField"
	case UntypedField:
		return "UntypedField"
	case UninitializedLet:
		return "UninitializedLet"
	case UninitializedInit:
		return "UninitializedInit"
	case UnknownType:
		return "UnknownType"
	case Unsupported:
		return "Unsupported"
	case ValueMismatch:
		return "ValueMismatch"
	case ImmutableLet:
		return "ImmutableLet"
	default:
		return "?"
	}
}

// Error is the single error object surfaced at every phase boundary: a
// message from the taxonomy plus the token range it refers to. Lexical
// errors additionally carry a text range (see TextRange).
type Error struct {
	Message   Message
	Range     token.TokenRange
	TextRange token.TextRange
	HasText   bool
}

func (e Error) Error() string {
	switch e.Message.Kind {
	case DuplicateField, DuplicateUse, MissingField, Redeclaration, SelfReference,
		UndefinedIdent, UnexpectedField, ImmutableLet:
		return fmt.Sprintf("%s(%s)", e.Message.Kind, e.Message.Name)
	case Unsupported:
		return fmt.Sprintf("%s(%s)", e.Message.Kind, e.Message.Feature)
	case ValueMismatch:
		return fmt.Sprintf("%s(expected %s, actual %s)", e.Message.Kind, e.Message.Expected, e.Message.Actual)
	default:
		return e.Message.Kind.String()
	}
}

// New builds a plain Error with no payload, pinned to a token range.
func New(kind ErrorKind, r token.TokenRange) Error {
	return Error{Message: Message{Kind: kind}, Range: r}
}

// NewNamed builds an Error whose payload is a Name (DuplicateField, DuplicateUse, ...).
func NewNamed(kind ErrorKind, name string, r token.TokenRange) Error {
	return Error{Message: Message{Kind: kind, Name: name}, Range: r}
}

// NewFeature builds an Unsupported error.
func NewFeature(feature string, r token.TokenRange) Error {
	return Error{Message: Message{Kind: Unsupported, Feature: feature}, Range: r}
}

// NewMismatch builds a ValueMismatch error.
func NewMismatch(expected, actual string, r token.TokenRange) Error {
	return Error{Message: Message{Kind: ValueMismatch, Expected: expected, Actual: actual}, Range: r}
}

// NewLexical builds a lexical error carrying a text range instead of a token range.
func NewLexical(kind ErrorKind, r token.TextRange) Error {
	return Error{Message: Message{Kind: kind}, TextRange: r, HasText: true}
}

// List is a flat, append-only error accumulator shared across a phase. No
// phase aborts on errors; it keeps appending to its own List and returns it
// alongside its result.
type List struct {
	Errors []Error
}

// Add appends err to the list.
func (l *List) Add(err Error) {
	l.Errors = append(l.Errors, err)
}

// HasErrors reports whether any error has been recorded.
func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}
