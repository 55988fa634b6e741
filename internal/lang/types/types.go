// Package types builds the structural type-rule graph and checks it for
// assignability. It runs in three passes over a Program: build the rule
// graph by structural recursion, validate every bare identifier reference
// against the namespace, then check every assertion the first pass queued.
package types

import (
	"strings"

	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/namespace"
	"github.com/nabla-lang/nabla/internal/lang/token"
)

// RuleIndex is an index into Info.Rules. Rules are never removed, only
// appended, so an index is valid for the lifetime of the Info it came from.
type RuleIndex int

// Kind tags which field of Description is meaningful.
type Kind int

const (
	KindUnion Kind = iota
	KindStruct
	KindList
	KindIdent      // pass-1 only: a bare reference by name, not yet validated
	KindValidIdent // pass-2: Ref names the binding's own rule
	KindPrimitive
	KindRule // transparent alias: Ref is the aliased rule
	KindBuiltIn
	KindUnknown
)

// BuiltIn enumerates the built-in type identifiers.
type BuiltIn int

const (
	BuiltInString BuiltIn = iota
	BuiltInNumber
	BuiltInBool
)

func (b BuiltIn) String() string {
	switch b {
	case BuiltInString:
		return "String"
	case BuiltInNumber:
		return "Number"
	case BuiltInBool:
		return "Bool"
	default:
		return "?"
	}
}

func builtInFromName(name string) (BuiltIn, bool) {
	switch name {
	case "String":
		return BuiltInString, true
	case "Number":
		return BuiltInNumber, true
	case "Bool":
		return BuiltInBool, true
	}
	return 0, false
}

func builtInMatchesPrimitive(b BuiltIn, p ast.PrimitiveKind) bool {
	switch b {
	case BuiltInString:
		return p == ast.PrimitiveString
	case BuiltInNumber:
		return p == ast.PrimitiveNumber
	case BuiltInBool:
		return p == ast.PrimitiveBool
	}
	return false
}

// StructFieldType is one field's entry inside a Struct description.
type StructFieldType struct {
	Index      RuleIndex
	HasDefault bool
}

// Description is the tagged union a Rule carries; see Kind for which fields
// apply.
type Description struct {
	Kind Kind

	Union []RuleIndex
	Struct map[string]StructFieldType
	List   []RuleIndex

	Name string // KindIdent

	Ref RuleIndex // KindValidIdent, KindRule

	PrimitiveKind ast.PrimitiveKind
	PrimitiveRaw  string

	BuiltIn BuiltIn
}

// Rule is one node of the flat, append-only rule arena.
type Rule struct {
	Desc  Description
	Range token.TokenRange
}

// Assertion is a queued assignability check: actual must be assignable to
// expected.
type Assertion struct {
	Expected RuleIndex
	Actual   RuleIndex
}

// Info is the complete output of the type-checking passes.
type Info struct {
	Rules      []Rule
	Assertions []Assertion
	Errors     []errors.Error

	// Bindings maps a top-level Def/Let name to the rule index that
	// represents its binding (the type expression's rule if present,
	// otherwise the value expression's rule).
	Bindings map[string]RuleIndex
}

func (info *Info) push(desc Description, r token.TokenRange) RuleIndex {
	info.Rules = append(info.Rules, Rule{Desc: desc, Range: r})
	return RuleIndex(len(info.Rules) - 1)
}

func (info *Info) addErr(err errors.Error) {
	info.Errors = append(info.Errors, err)
}

type context int

const (
	ctxExpr context = iota
	ctxTypeExpr
)

// Analyze builds the rule graph for program, validates identifiers against
// ns, and checks every queued assertion.
func Analyze(program *ast.Program, ns *namespace.Namespace) *Info {
	info := &Info{Bindings: map[string]RuleIndex{}}

	for _, g := range program.Globals {
		switch global := g.(type) {
		case *ast.Def:
			if idx, ok := analyzeBinding(info, global.Name, global.Type, global.Expr, ctxTypeExpr, global.Info().Range, ns); ok && global.Name != nil {
				info.Bindings[global.Name.Name] = idx
			}
		case *ast.Let:
			if idx, ok := analyzeBinding(info, global.Name, global.Type, global.Expr, ctxExpr, global.Info().Range, ns); ok && global.Name != nil {
				info.Bindings[global.Name.Name] = idx
			}
		case *ast.Init:
			if global.Expr != nil {
				analyzeExpr(info, global.Expr, ctxExpr, ns)
			}
		}
	}

	validateIdents(info, ns)
	checkAssertions(info)
	return info
}

func isSelfReference(name ast.Ident, expr ast.Expr) bool {
	named, ok := expr.(*ast.Named)
	if !ok {
		return false
	}
	return len(named.InnerNames) == 0 && named.Name.Name == name.Name
}

func analyzeBinding(info *Info, name *ast.Ident, typeExpr, expr ast.Expr, ctx context, bindingRange token.TokenRange, ns *namespace.Namespace) (RuleIndex, bool) {
	if name != nil {
		if isSelfReference(*name, typeExpr) || isSelfReference(*name, expr) {
			info.addErr(errors.NewNamed(errors.SelfReference, name.Name, name.Info().Range))
			return 0, false
		}
	}

	var typeIdx, exprIdx RuleIndex
	hasType, hasExpr := typeExpr != nil, expr != nil
	if hasType {
		typeIdx = analyzeExpr(info, typeExpr, ctxTypeExpr, ns)
	}
	if hasExpr {
		exprIdx = analyzeExpr(info, expr, ctx, ns)
	}

	switch {
	case hasType && hasExpr:
		if ctx == ctxExpr && isUnion(info, exprIdx) {
			info.addErr(errors.New(errors.UninitializedLet, bindingRange))
		} else {
			info.Assertions = append(info.Assertions, Assertion{Expected: typeIdx, Actual: exprIdx})
		}
		return typeIdx, true
	case hasType:
		return typeIdx, true
	case hasExpr:
		if ctx == ctxExpr && isUnion(info, exprIdx) {
			info.addErr(errors.New(errors.UninitializedLet, bindingRange))
		}
		return exprIdx, true
	default:
		return 0, false
	}
}

func isUnion(info *Info, idx RuleIndex) bool {
	d := info.Rules[idx].Desc
	for d.Kind == KindRule {
		d = info.Rules[d.Ref].Desc
	}
	return d.Kind == KindUnion
}

func analyzeExpr(info *Info, e ast.Expr, ctx context, ns *namespace.Namespace) RuleIndex {
	switch expr := e.(type) {
	case *ast.Union:
		return analyzeUnion(info, expr, ctx, ns)
	case *ast.ErrorExpr:
		return info.push(Description{Kind: KindUnknown}, expr.Info().Range)
	case ast.Single:
		return analyzeSingle(info, expr, ctx, ns)
	default:
		return info.push(Description{Kind: KindUnknown}, token.TokenRange{})
	}
}

func analyzeUnion(info *Info, u *ast.Union, ctx context, ns *namespace.Namespace) RuleIndex {
	indices := make([]RuleIndex, 0, len(u.Alternatives))
	for _, alt := range u.Alternatives {
		indices = append(indices, analyzeSingle(info, alt, ctx, ns))
	}
	return info.push(Description{Kind: KindUnion, Union: indices}, u.Info().Range)
}

func analyzeSingle(info *Info, s ast.Single, ctx context, ns *namespace.Namespace) RuleIndex {
	switch single := s.(type) {
	case *ast.Struct:
		return analyzeStruct(info, single, ctx, ns)
	case *ast.List:
		return analyzeList(info, single, ctx, ns)
	case *ast.Named:
		return analyzeNamed(info, single, ctx, ns)
	case *ast.Primitive:
		return info.push(Description{Kind: KindPrimitive, PrimitiveKind: single.Kind, PrimitiveRaw: single.Raw}, single.Info().Range)
	default:
		return info.push(Description{Kind: KindUnknown}, token.TokenRange{})
	}
}

func analyzeStruct(info *Info, s *ast.Struct, ctx context, ns *namespace.Namespace) RuleIndex {
	fields := map[string]StructFieldType{}
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if f.Name == nil {
			continue
		}
		name := f.Name.Name
		idx, hasDefault := analyzeStructField(info, f, ctx, ns)
		if seen[name] {
			info.addErr(errors.NewNamed(errors.DuplicateField, name, f.Info().Range))
		}
		seen[name] = true
		fields[name] = StructFieldType{Index: idx, HasDefault: hasDefault}
	}
	return info.push(Description{Kind: KindStruct, Struct: fields}, s.Info().Range)
}

func analyzeStructField(info *Info, f *ast.StructField, ctx context, ns *namespace.Namespace) (RuleIndex, bool) {
	hasType, hasValue := f.Type != nil, f.Value != nil
	var typeIdx, valueIdx RuleIndex
	if hasType {
		typeIdx = analyzeExpr(info, f.Type, ctxTypeExpr, ns)
	}
	if hasValue {
		valueIdx = analyzeExpr(info, f.Value, ctx, ns)
	}

	var desc Description
	switch {
	case hasType && hasValue:
		if ctx == ctxExpr && isUnion(info, valueIdx) {
			info.addErr(errors.New(errors.UninitializedDefault, f.Info().Range))
		} else {
			info.Assertions = append(info.Assertions, Assertion{Expected: typeIdx, Actual: valueIdx})
		}
		desc = Description{Kind: KindRule, Ref: typeIdx}
	case hasType:
		if ctx == ctxExpr {
			info.addErr(errors.New(errors.UnassignedField, f.Info().Range))
		}
		desc = Description{Kind: KindRule, Ref: typeIdx}
	case hasValue:
		if ctx == ctxExpr && isUnion(info, valueIdx) {
			info.addErr(errors.New(errors.UninitializedDefault, f.Info().Range))
		}
		desc = Description{Kind: KindRule, Ref: valueIdx}
	default:
		if ctx == ctxExpr {
			info.addErr(errors.New(errors.UnassignedField, f.Info().Range))
		} else {
			info.addErr(errors.New(errors.UntypedField, f.Info().Range))
		}
		desc = Description{Kind: KindUnknown}
	}
	idx := info.push(desc, f.Info().Range)
	return idx, hasValue
}

func analyzeList(info *Info, l *ast.List, ctx context, ns *namespace.Namespace) RuleIndex {
	indices := make([]RuleIndex, 0, len(l.Elements))
	for _, e := range l.Elements {
		indices = append(indices, analyzeExpr(info, e, ctx, ns))
	}
	return info.push(Description{Kind: KindList, List: indices}, l.Info().Range)
}

func analyzeNamed(info *Info, n *ast.Named, ctx context, ns *namespace.Namespace) RuleIndex {
	var desc Description
	if len(n.InnerNames) == 0 {
		if b, ok := builtInFromName(n.Name.Name); ok {
			desc = Description{Kind: KindBuiltIn, BuiltIn: b}
		}
	}
	if desc.Kind != KindBuiltIn {
		desc = Description{Kind: KindIdent, Name: n.FlattenedName()}
	}

	namedIdx := info.push(desc, n.Info().Range)
	if n.Applied != nil {
		if binding, ok := ns.Lookup(n.Name.Name); ok && binding.Kind == namespace.FromLet {
			info.addErr(errors.NewNamed(errors.ImmutableLet, n.Name.Name, n.Info().Range))
		}
		appliedIdx := analyzeSingle(info, n.Applied, ctx, ns)
		info.Assertions = append(info.Assertions, Assertion{Expected: namedIdx, Actual: appliedIdx})
	}
	return namedIdx
}

// validateIdents is the second pass: every bare KindIdent rule is rewritten
// to KindValidIdent (bound to a Def/Let in this program), KindUnknown (bound
// to a use import, which this implementation cannot resolve further, or an
// `a::b::c` path whose head `a` is bound; the members are not checked), or
// KindUnknown with an UndefinedIdent error (not bound at all).
func validateIdents(info *Info, ns *namespace.Namespace) {
	for i := range info.Rules {
		rule := &info.Rules[i]
		if rule.Desc.Kind != KindIdent {
			continue
		}
		name := rule.Desc.Name
		if binding, ok := info.Bindings[name]; ok {
			rule.Desc = Description{Kind: KindValidIdent, Ref: binding}
			continue
		}
		head, _, _ := strings.Cut(name, "::")
		if _, ok := ns.Lookup(head); ok {
			rule.Desc = Description{Kind: KindUnknown}
			continue
		}
		info.addErr(errors.NewNamed(errors.UndefinedIdent, name, rule.Range))
		rule.Desc = Description{Kind: KindUnknown}
	}
}

// resolve chases transparent KindRule/KindValidIdent aliasing down to the
// description that actually carries structure.
func resolve(info *Info, idx RuleIndex) Description {
	d := info.Rules[idx].Desc
	for d.Kind == KindRule || d.Kind == KindValidIdent {
		d = info.Rules[d.Ref].Desc
	}
	return d
}

func checkAssertions(info *Info) {
	for _, a := range info.Assertions {
		check(info, a.Expected, a.Actual)
	}
}

// check implements the ten assignability rules, emitting errors as it
// recurses into nested structure.
func check(info *Info, expectedIdx, actualIdx RuleIndex) {
	expected := resolve(info, expectedIdx)
	actual := resolve(info, actualIdx)
	r := info.Rules[actualIdx].Range

	switch {
	case expected.Kind == KindUnknown:
		info.addErr(errors.New(errors.UnknownType, r))
	case expected.Kind == KindUnion && actual.Kind == KindUnion:
		for _, a := range actual.Union {
			if !isAssignable(info, expected.Union, a) {
				info.addErr(errors.New(errors.TypeMismatch, info.Rules[a].Range))
			}
		}
	case expected.Kind == KindUnion:
		if !isAssignable(info, expected.Union, actualIdx) {
			info.addErr(errors.New(errors.TypeMismatch, r))
		}
	case actual.Kind == KindUnion:
		for _, a := range actual.Union {
			check(info, expectedIdx, a)
		}
	case expected.Kind == KindBuiltIn && actual.Kind == KindPrimitive:
		if !builtInMatchesPrimitive(expected.BuiltIn, actual.PrimitiveKind) {
			info.addErr(errors.New(errors.TypeMismatch, r))
		}
	case expected.Kind == KindBuiltIn && actual.Kind == KindBuiltIn:
		if expected.BuiltIn != actual.BuiltIn {
			info.addErr(errors.New(errors.TypeMismatch, r))
		}
	case expected.Kind == KindStruct && actual.Kind == KindStruct:
		checkStruct(info, expected.Struct, actual.Struct, r)
	case expected.Kind == KindList && actual.Kind == KindList:
		checkList(info, expected.List, actual.List, r)
	case expected.Kind == KindPrimitive && actual.Kind == KindPrimitive:
		if expected.PrimitiveKind != actual.PrimitiveKind || expected.PrimitiveRaw != actual.PrimitiveRaw {
			info.addErr(errors.NewMismatch(expected.PrimitiveRaw, actual.PrimitiveRaw, r))
		}
	default:
		info.addErr(errors.New(errors.TypeMismatch, r))
	}
}

func checkStruct(info *Info, expected, actual map[string]StructFieldType, r token.TokenRange) {
	for name, ef := range expected {
		af, ok := actual[name]
		if !ok {
			if ef.HasDefault {
				continue
			}
			info.addErr(errors.NewNamed(errors.MissingField, name, r))
			continue
		}
		check(info, ef.Index, af.Index)
	}
	for name := range actual {
		if _, ok := expected[name]; !ok {
			info.addErr(errors.NewNamed(errors.UnexpectedField, name, r))
		}
	}
}

func checkList(info *Info, expected, actual []RuleIndex, r token.TokenRange) {
	switch len(expected) {
	case 0:
		if len(actual) != 0 {
			info.addErr(errors.New(errors.UnexpectedListElement, r))
		}
	case 1:
		for _, a := range actual {
			check(info, expected[0], a)
		}
	default:
		info.addErr(errors.New(errors.MultipleListTypes, r))
	}
}

// isAssignable is the non-erroring trial form of check, used when testing
// whether some value matches any one of several union alternatives.
func isAssignable(info *Info, expectedCandidates []RuleIndex, actualIdx RuleIndex) bool {
	for _, e := range expectedCandidates {
		if isAssignableOne(info, e, actualIdx) {
			return true
		}
	}
	return false
}

func isAssignableOne(info *Info, expectedIdx, actualIdx RuleIndex) bool {
	expected := resolve(info, expectedIdx)
	actual := resolve(info, actualIdx)
	switch {
	case expected.Kind == KindUnknown:
		return false
	case expected.Kind == KindUnion:
		return isAssignable(info, expected.Union, actualIdx)
	case actual.Kind == KindUnion:
		for _, a := range actual.Union {
			if !isAssignableOne(info, expectedIdx, a) {
				return false
			}
		}
		return true
	case expected.Kind == KindBuiltIn && actual.Kind == KindPrimitive:
		return builtInMatchesPrimitive(expected.BuiltIn, actual.PrimitiveKind)
	case expected.Kind == KindBuiltIn && actual.Kind == KindBuiltIn:
		return expected.BuiltIn == actual.BuiltIn
	case expected.Kind == KindStruct && actual.Kind == KindStruct:
		for name, ef := range expected.Struct {
			af, ok := actual.Struct[name]
			if !ok {
				if ef.HasDefault {
					continue
				}
				return false
			}
			if !isAssignableOne(info, ef.Index, af.Index) {
				return false
			}
		}
		return true
	case expected.Kind == KindList && actual.Kind == KindList:
		switch len(expected.List) {
		case 0:
			return len(actual.List) == 0
		case 1:
			for _, a := range actual.List {
				if !isAssignableOne(info, expected.List[0], a) {
					return false
				}
			}
			return true
		default:
			return false
		}
	case expected.Kind == KindPrimitive && actual.Kind == KindPrimitive:
		return expected.PrimitiveKind == actual.PrimitiveKind && expected.PrimitiveRaw == actual.PrimitiveRaw
	default:
		return false
	}
}
