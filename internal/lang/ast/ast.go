// Package ast defines the Nabla syntax tree: a Program is an ordered sequence
// of Globals, each an Use, Def, Let, Init, or a skipped Error span. Every node
// carries an Info with the token range it spans, used for error reporting.
package ast

import "github.com/nabla-lang/nabla/internal/lang/token"

// Info is carried by every AST node: the token range it spans.
type Info struct {
	Range token.TokenRange
}

// Node is implemented by every AST node.
type Node interface {
	Info() Info
}

// Program is the root node: an ordered sequence of Globals.
type Program struct {
	Globals []Global
	info    Info
}

func NewProgram(globals []Global, info Info) *Program {
	return &Program{Globals: globals, info: info}
}

func (p *Program) Info() Info { return p.info }

// Global is one of Use, Def, Let, Init, Error.
type Global interface {
	Node
	globalNode()
}

// Ident is a bare identifier. Equality and hashing are by Name only; the
// Range is carried solely for diagnostics and must never affect lookups.
type Ident struct {
	Name string
	info Info
}

func NewIdent(name string, info Info) Ident {
	return Ident{Name: name, info: info}
}

func (i Ident) Info() Info { return i.info }

// --- Use -------------------------------------------------------------------

// Use is `use <ident>(::<body>)?`.
type Use struct {
	Name Ident
	Body *UseBody // nil if absent
	info Info
}

func (u *Use) Info() Info  { return u.info }
func (*Use) globalNode()   {}

func NewUse(name Ident, body *UseBody, info Info) *Use {
	return &Use{Name: name, Body: body, info: info}
}

// UseBody is the `::` right-hand side of a Use or UseItem.
type UseBody struct {
	Kind UseKind
	info Info
}

func (b *UseBody) Info() Info { return b.info }

func NewUseBody(kind UseKind, info Info) *UseBody {
	return &UseBody{Kind: kind, info: info}
}

// UseKind is one of Glob, a single UseItem, braces enclosing UseItems, or an
// Error span.
type UseKind interface {
	Node
	useKindNode()
}

// Glob is the `*` use-kind.
type Glob struct {
	info Info
}

func (g Glob) Info() Info { return g.info }
func (Glob) useKindNode()  {}

func NewGlob(info Info) Glob { return Glob{info: info} }

// UseError is a use-kind span skipped by recovery.
type UseError struct {
	info Info
}

func (u UseError) Info() Info { return u.info }
func (UseError) useKindNode()  {}

func NewUseError(info Info) UseError { return UseError{info: info} }

// UseItems is `{ UseItem* }`.
type UseItems struct {
	Items []*UseItem
	info  Info
}

func (u UseItems) Info() Info  { return u.info }
func (UseItems) useKindNode()  {}

func NewUseItems(items []*UseItem, info Info) UseItems {
	return UseItems{Items: items, info: info}
}

// UseItem is a single `Ident UseBody? Alias?` inside a use tree.
type UseItem struct {
	Name  Ident
	Body  *UseBody
	Alias *Alias
	info  Info
}

func (u *UseItem) Info() Info  { return u.info }
func (*UseItem) useKindNode()  {}

func NewUseItem(name Ident, body *UseBody, alias *Alias, info Info) *UseItem {
	return &UseItem{Name: name, Body: body, Alias: alias, info: info}
}

// Alias is `as ident` or `as "string"`.
type Alias struct {
	Ident *Ident  // set when the alias is an identifier
	Str   *string // set when the alias is a string literal (raw lexeme, quotes included)
	info  Info
}

func (a *Alias) Info() Info { return a.info }

func NewIdentAlias(ident Ident, info Info) *Alias {
	return &Alias{Ident: &ident, info: info}
}

func NewStringAlias(raw string, info Info) *Alias {
	return &Alias{Str: &raw, info: info}
}

// Name returns the alias's textual local name, stripping quotes from a
// string alias.
func (a *Alias) Name() string {
	if a.Ident != nil {
		return a.Ident.Name
	}
	if a.Str != nil {
		return unquote(*a.Str)
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// --- Def / Let / Init / Error Global -----------------------------------

// Def is `def name (: type_expr)? = expr`.
type Def struct {
	Name *Ident
	Type Expr // nil if absent
	Expr Expr
	info Info
}

func (d *Def) Info() Info { return d.info }
func (*Def) globalNode()  {}

func NewDef(name *Ident, typ Expr, expr Expr, info Info) *Def {
	return &Def{Name: name, Type: typ, Expr: expr, info: info}
}

// Let is `let name (: type_expr)? = expr`.
type Let struct {
	Name *Ident
	Type Expr
	Expr Expr
	info Info
}

func (l *Let) Info() Info { return l.info }
func (*Let) globalNode()  {}

func NewLet(name *Ident, typ Expr, expr Expr, info Info) *Let {
	return &Let{Name: name, Type: typ, Expr: expr, info: info}
}

// Init is a bare top-level expression.
type Init struct {
	Expr Expr
	info Info
}

func (i *Init) Info() Info { return i.info }
func (*Init) globalNode()  {}

func NewInit(expr Expr, info Info) *Init {
	return &Init{Expr: expr, info: info}
}

// ErrorGlobal is a span skipped by recovery at the Global level.
type ErrorGlobal struct {
	info Info
}

func (e *ErrorGlobal) Info() Info { return e.info }
func (*ErrorGlobal) globalNode()  {}

func NewErrorGlobal(info Info) *ErrorGlobal {
	return &ErrorGlobal{info: info}
}

// --- Expr --------------------------------------------------------------

// Expr is either a Union (one or more Singles joined by `|`) or directly a
// Single, or an error span.
type Expr interface {
	Node
	exprNode()
}

// Union is `Single ("|" Single)*` with at least one alternative beyond the
// first; a bare Single is represented directly (not wrapped) when there is
// no `|`.
type Union struct {
	Alternatives []Single
	info         Info
}

func (u *Union) Info() Info { return u.info }
func (*Union) exprNode()   {}

func NewUnion(alts []Single, info Info) *Union {
	return &Union{Alternatives: alts, info: info}
}

// ErrorExpr is a span skipped by recovery at the Expr level.
type ErrorExpr struct {
	info Info
}

func (e *ErrorExpr) Info() Info { return e.info }
func (*ErrorExpr) exprNode()   {}
func (*ErrorExpr) singleNode() {}

func NewErrorExpr(info Info) *ErrorExpr {
	return &ErrorExpr{info: info}
}

// Single is Struct | List | Named | Primitive, or an ErrorExpr standing in
// for a Single that failed to parse.
type Single interface {
	Expr
	singleNode()
}

// Struct is `{ StructField* }`.
type Struct struct {
	Fields []*StructField
	info   Info
}

func (s *Struct) Info() Info  { return s.info }
func (*Struct) exprNode()    {}
func (*Struct) singleNode()  {}

func NewStruct(fields []*StructField, info Info) *Struct {
	return &Struct{Fields: fields, info: info}
}

// StructField is `name (: type_expr)? (= expr)? (as alias)?`.
type StructField struct {
	Name  *Ident
	Type  Expr // nil if absent
	Value Expr // nil if absent
	Alias *Alias
	info  Info
}

func (f *StructField) Info() Info { return f.info }

func NewStructField(name *Ident, typ, value Expr, alias *Alias, info Info) *StructField {
	return &StructField{Name: name, Type: typ, Value: value, Alias: alias, info: info}
}

// List is `[ expr* ]`.
type List struct {
	Elements []Expr
	info     Info
}

func (l *List) Info() Info { return l.info }
func (*List) exprNode()   {}
func (*List) singleNode() {}

func NewList(elements []Expr, info Info) *List {
	return &List{Elements: elements, info: info}
}

// Named is `ident ("::" ident)* (Struct | List)?`: a nominal reference,
// optionally applied as a struct or list literal.
type Named struct {
	Name       Ident
	InnerNames []Ident
	Applied    Single // nil if not applied; a *Struct or *List
	info       Info
}

func (n *Named) Info() Info { return n.info }
func (*Named) exprNode()   {}
func (*Named) singleNode() {}

func NewNamed(name Ident, innerNames []Ident, applied Single, info Info) *Named {
	return &Named{Name: name, InnerNames: innerNames, Applied: applied, info: info}
}

// FlattenedName joins Name and InnerNames with "::", matching how the type
// checker stores a Named reference for cheap equality.
func (n *Named) FlattenedName() string {
	out := n.Name.Name
	for _, in := range n.InnerNames {
		out += "::" + in.Name
	}
	return out
}

// PrimitiveKind enumerates the literal-singleton primitive kinds.
type PrimitiveKind int

const (
	PrimitiveString PrimitiveKind = iota
	PrimitiveChar
	PrimitiveNumber
	PrimitiveBool
	PrimitiveNull
)

// Primitive is a literal carrying its raw lexeme: string / char / number /
// bool / null.
type Primitive struct {
	Kind PrimitiveKind
	Raw  string
	info Info
}

func (p *Primitive) Info() Info { return p.info }
func (*Primitive) exprNode()   {}
func (*Primitive) singleNode() {}

func NewPrimitive(kind PrimitiveKind, raw string, info Info) *Primitive {
	return &Primitive{Kind: kind, Raw: raw, info: info}
}
