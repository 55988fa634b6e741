// Package value builds the value-rule graph (same arena shape as package
// types, but describing values instead of types) and evaluates it to a
// rule_idx -> Value map via an iterative, cycle-safe DFS.
package value

import (
	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/token"
)

// Kind enumerates the possible shapes of a known Value.
type Kind int

const (
	Unknown Kind = iota
	Null
	Bool
	Number
	String
	List
	Struct
)

// Value is the evaluator's result lattice, with Unknown as bottom.
type Value struct {
	Kind       Kind
	BoolVal    bool
	NumberRaw  string
	StringVal  string
	ListVal    []Value
	StructVal  map[string]Value
}

// IsKnown reports whether v contains no Unknown, transitively.
func (v Value) IsKnown() bool {
	switch v.Kind {
	case Unknown:
		return false
	case List:
		for _, e := range v.ListVal {
			if !e.IsKnown() {
				return false
			}
		}
		return true
	case Struct:
		for _, f := range v.StructVal {
			if !f.IsKnown() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func primitiveToValue(p *ast.Primitive) Value {
	switch p.Kind {
	case ast.PrimitiveString:
		return Value{Kind: String, StringVal: unquoteString(p.Raw)}
	case ast.PrimitiveChar:
		return Value{Kind: String, StringVal: unquoteChar(p.Raw)}
	case ast.PrimitiveNumber:
		return Value{Kind: Number, NumberRaw: p.Raw}
	case ast.PrimitiveBool:
		return Value{Kind: Bool, BoolVal: p.Raw == "true"}
	case ast.PrimitiveNull:
		return Value{Kind: Null}
	default:
		return Value{Kind: Unknown}
	}
}

func unquoteString(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' {
		if raw[len(raw)-1] == '"' {
			return raw[1 : len(raw)-1]
		}
		return raw[1:]
	}
	return raw
}

func unquoteChar(raw string) string {
	if len(raw) >= 2 && raw[0] == '\'' {
		if raw[len(raw)-1] == '\'' {
			return raw[1 : len(raw)-1]
		}
		return raw[1:]
	}
	return raw
}

// RuleIndex is an index into Info.Rules.
type RuleIndex int

// DescKind tags which field of Description is meaningful.
type DescKind int

const (
	DUnion DescKind = iota
	DStruct
	DList
	DPrimitive
	DComposed
	DRef
	DEmpty
	DUnknown
)

// Description is the tagged union a value Rule carries.
type Description struct {
	Kind DescKind

	Union []RuleIndex
	Struct map[string]RuleIndex
	List   []RuleIndex

	PrimitiveValue Value

	Own, Super RuleIndex // DComposed

	RefName string // DRef
}

// Rule is one node of the flat, append-only value-rule arena.
type Rule struct {
	Desc      Description
	Range     token.TokenRange
	IsDefault bool
}

// BindKind distinguishes a top-level binding's origin.
type BindKind int

const (
	BindDef BindKind = iota
	BindLet
)

// TopBinding records one top-level Def/Let's own rule, for the post-checks
// that need to tell lets from defs.
type TopBinding struct {
	Name  string
	Kind  BindKind
	Rule  RuleIndex
	Range token.TokenRange
}

// InitEntry records one top-level Init's own rule and span.
type InitEntry struct {
	Rule  RuleIndex
	Range token.TokenRange
}

// Info is the constructed value-rule graph, before evaluation.
type Info struct {
	Rules       []Rule
	Bindings    map[string]RuleIndex
	TopBindings []TopBinding
	Inits       []InitEntry
}

func (info *Info) push(desc Description, r token.TokenRange) RuleIndex {
	info.Rules = append(info.Rules, Rule{Desc: desc, Range: r})
	return RuleIndex(len(info.Rules) - 1)
}

// Build constructs the value-rule graph for program. Construction mirrors
// the type pass structurally but never fails and never itself emits errors;
// all value-phase diagnostics come from evaluating the graph (see
// Check).
func Build(program *ast.Program) *Info {
	info := &Info{Bindings: map[string]RuleIndex{}}
	for _, g := range program.Globals {
		switch global := g.(type) {
		case *ast.Def:
			if global.Name == nil || global.Expr == nil {
				continue
			}
			idx := analyzeExpr(info, global.Expr)
			info.Bindings[global.Name.Name] = idx
			info.TopBindings = append(info.TopBindings, TopBinding{
				Name: global.Name.Name, Kind: BindDef, Rule: idx, Range: global.Info().Range,
			})
		case *ast.Let:
			if global.Name == nil || global.Expr == nil {
				continue
			}
			idx := analyzeExpr(info, global.Expr)
			info.Bindings[global.Name.Name] = idx
			info.TopBindings = append(info.TopBindings, TopBinding{
				Name: global.Name.Name, Kind: BindLet, Rule: idx, Range: global.Info().Range,
			})
		case *ast.Init:
			if global.Expr == nil {
				continue
			}
			idx := analyzeExpr(info, global.Expr)
			info.Inits = append(info.Inits, InitEntry{Rule: idx, Range: global.Info().Range})
		}
	}
	return info
}

// BuildExpr constructs a standalone rule graph for a single expression, with
// no top-level bindings — used by nabla.EvaluateExpr rather than a full
// program analysis.
func BuildExpr(e ast.Expr) (*Info, RuleIndex) {
	info := &Info{Bindings: map[string]RuleIndex{}}
	idx := analyzeExpr(info, e)
	return info, idx
}

func analyzeExpr(info *Info, e ast.Expr) RuleIndex {
	switch expr := e.(type) {
	case *ast.Union:
		return analyzeUnion(info, expr)
	case *ast.ErrorExpr:
		return info.push(Description{Kind: DUnknown}, expr.Info().Range)
	case ast.Single:
		return analyzeSingle(info, expr)
	default:
		return info.push(Description{Kind: DUnknown}, token.TokenRange{})
	}
}

func analyzeUnion(info *Info, u *ast.Union) RuleIndex {
	indices := make([]RuleIndex, 0, len(u.Alternatives))
	for _, alt := range u.Alternatives {
		indices = append(indices, analyzeSingle(info, alt))
	}
	return info.push(Description{Kind: DUnion, Union: indices}, u.Info().Range)
}

func analyzeSingle(info *Info, s ast.Single) RuleIndex {
	switch single := s.(type) {
	case *ast.Struct:
		return analyzeStruct(info, single)
	case *ast.List:
		return analyzeList(info, single)
	case *ast.Named:
		return analyzeNamed(info, single)
	case *ast.Primitive:
		return info.push(Description{Kind: DPrimitive, PrimitiveValue: primitiveToValue(single)}, single.Info().Range)
	default:
		return info.push(Description{Kind: DUnknown}, token.TokenRange{})
	}
}

func analyzeStruct(info *Info, s *ast.Struct) RuleIndex {
	fields := map[string]RuleIndex{}
	for _, f := range s.Fields {
		if f.Name == nil {
			continue
		}
		fields[f.Name.Name] = analyzeStructField(info, f)
	}
	return info.push(Description{Kind: DStruct, Struct: fields}, s.Info().Range)
}

// analyzeStructField builds the field's own rule: Empty when the field has
// only a type annotation, or the value's rule flagged is_default otherwise.
func analyzeStructField(info *Info, f *ast.StructField) RuleIndex {
	if f.Value == nil {
		return info.push(Description{Kind: DEmpty}, f.Info().Range)
	}
	idx := analyzeExpr(info, f.Value)
	info.Rules[idx].IsDefault = true
	return idx
}

func analyzeList(info *Info, l *ast.List) RuleIndex {
	indices := make([]RuleIndex, 0, len(l.Elements))
	for _, e := range l.Elements {
		indices = append(indices, analyzeExpr(info, e))
	}
	return info.push(Description{Kind: DList, List: indices}, l.Info().Range)
}

func analyzeNamed(info *Info, n *ast.Named) RuleIndex {
	refIdx := info.push(Description{Kind: DRef, RefName: n.FlattenedName()}, n.Info().Range)
	if n.Applied == nil {
		return refIdx
	}
	ownIdx := analyzeSingle(info, n.Applied)
	return info.push(Description{Kind: DComposed, Own: ownIdx, Super: refIdx}, n.Info().Range)
}

// --- Evaluation ----------------------------------------------------------

// Evaluate runs the iterative, cycle-safe DFS over every rule in info and
// returns the rule_idx -> Value map.
func Evaluate(info *Info) map[RuleIndex]Value {
	e := &evaluator{info: info, values: make(map[RuleIndex]Value, len(info.Rules))}
	for i := range info.Rules {
		e.run(RuleIndex(i))
	}
	return e.values
}

type evaluator struct {
	info   *Info
	values map[RuleIndex]Value
}

// run evaluates start and everything it transitively depends on, using an
// explicit work stack. A rule is pushed back after its dependencies so it is
// revisited once they are ready; a dependency already on the active path
// (onStack) is a cycle and is bound to Unknown immediately instead of being
// pushed again.
func (e *evaluator) run(start RuleIndex) {
	if _, done := e.values[start]; done {
		return
	}
	stack := []RuleIndex{start}
	onStack := map[RuleIndex]bool{}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, done := e.values[idx]; done {
			continue
		}

		if onStack[idx] {
			e.values[idx] = e.compute(idx)
			delete(onStack, idx)
			continue
		}

		deps := e.dependencies(idx)
		var unresolved []RuleIndex
		for _, dep := range deps {
			if _, done := e.values[dep]; done {
				continue
			}
			if onStack[dep] {
				e.values[dep] = Value{Kind: Unknown}
				continue
			}
			unresolved = append(unresolved, dep)
		}

		if len(unresolved) == 0 {
			e.values[idx] = e.compute(idx)
			continue
		}

		onStack[idx] = true
		stack = append(stack, idx)
		stack = append(stack, unresolved...)
	}
}

func (e *evaluator) dependencies(idx RuleIndex) []RuleIndex {
	d := e.info.Rules[idx].Desc
	switch d.Kind {
	case DStruct:
		deps := make([]RuleIndex, 0, len(d.Struct))
		for _, fidx := range d.Struct {
			deps = append(deps, fidx)
		}
		return deps
	case DList:
		return d.List
	case DComposed:
		return []RuleIndex{d.Own, d.Super}
	case DRef:
		if bindingIdx, ok := e.info.Bindings[d.RefName]; ok {
			return []RuleIndex{bindingIdx}
		}
		return nil
	default:
		return nil
	}
}

func (e *evaluator) compute(idx RuleIndex) Value {
	d := e.info.Rules[idx].Desc
	switch d.Kind {
	case DPrimitive:
		return d.PrimitiveValue
	case DStruct:
		m := make(map[string]Value, len(d.Struct))
		for name, fidx := range d.Struct {
			m[name] = e.valueOf(fidx)
		}
		return Value{Kind: Struct, StructVal: m}
	case DList:
		xs := make([]Value, len(d.List))
		for i, eidx := range d.List {
			xs[i] = e.valueOf(eidx)
		}
		return Value{Kind: List, ListVal: xs}
	case DComposed:
		return mergeFields(e.valueOf(d.Own), e.valueOf(d.Super))
	case DRef:
		if bindingIdx, ok := e.info.Bindings[d.RefName]; ok {
			return e.valueOf(bindingIdx)
		}
		return Value{Kind: Unknown}
	default: // DUnion, DEmpty, DUnknown
		return Value{Kind: Unknown}
	}
}

func (e *evaluator) valueOf(idx RuleIndex) Value {
	if v, ok := e.values[idx]; ok {
		return v
	}
	return Value{Kind: Unknown}
}

// mergeFields implements Composed's field-merge: own wins on any key present
// in both unless both sides are structs (then they recurse); a key only in
// super is inserted as-is.
func mergeFields(own, super Value) Value {
	if own.Kind != Struct || super.Kind != Struct {
		return own
	}
	merged := make(map[string]Value, len(own.StructVal)+len(super.StructVal))
	for k, v := range own.StructVal {
		merged[k] = v
	}
	for k, sv := range super.StructVal {
		if ov, exists := merged[k]; exists {
			merged[k] = mergeFields(ov, sv)
		} else {
			merged[k] = sv
		}
	}
	return Value{Kind: Struct, StructVal: merged}
}

// --- Post-checks -----------------------------------------------------------

// Result is the final output of value evaluation: the inits in program
// order (truncated to at most one per TESTABLE PROPERTIES / MultipleInits),
// the qualified-name symbol table, and every post-check error.
type Result struct {
	Inits   []Value
	Symbols map[string]Value
	Errors  []errors.Error
}

// Check evaluates info and runs every post-check: an is_default rule that
// isn't fully known is UninitializedDefault; a let that isn't fully known is
// UninitializedLet; every init beyond the first is MultipleInits.
func Check(info *Info) Result {
	values := Evaluate(info)
	var errs []errors.Error

	for i, rule := range info.Rules {
		if rule.IsDefault && !values[RuleIndex(i)].IsKnown() {
			errs = append(errs, errors.New(errors.UninitializedDefault, rule.Range))
		}
	}

	symbols := make(map[string]Value, len(info.TopBindings))
	for _, b := range info.TopBindings {
		v := values[b.Rule]
		symbols[b.Name] = v
		if b.Kind == BindLet && !v.IsKnown() {
			errs = append(errs, errors.New(errors.UninitializedLet, b.Range))
		}
	}

	var inits []Value
	for i, init := range info.Inits {
		if i == 0 {
			inits = append(inits, values[init.Rule])
			continue
		}
		errs = append(errs, errors.New(errors.MultipleInits, init.Range))
	}

	return Result{Inits: inits, Symbols: symbols, Errors: errs}
}
