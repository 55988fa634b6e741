// Package namespace folds the use table and every top-level def/let name
// into a single registry of accepted identifiers, detecting redeclarations.
// It is a pure existence registry: whether a name carries a concrete rule
// (def/let) or only an external path (use) is recorded, but resolving that
// rule is the type checker and value evaluator's job.
package namespace

import (
	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/token"
	"github.com/nabla-lang/nabla/internal/lang/use"
)

// Kind classifies how a name entered the namespace.
type Kind int

const (
	FromUse Kind = iota
	FromDef
	FromLet
)

// Binding is what the namespace knows about one accepted name.
type Binding struct {
	Kind Kind
	Path []string // populated only for FromUse
}

// Namespace maps every accepted top-level name to how it was introduced.
type Namespace struct {
	Entries map[string]Binding
}

// Lookup reports the binding for name, if any.
func (n *Namespace) Lookup(name string) (Binding, bool) {
	b, ok := n.Entries[name]
	return b, ok
}

var builtIns = map[string]bool{"String": true, "Number": true, "Bool": true}

// IsBuiltIn reports whether name is one of the built-in type identifiers.
func IsBuiltIn(name string) bool { return builtIns[name] }

// Build starts from the use table and folds in every top-level def/let
// name, in program order. A name that collides with a prior entry emits
// Redeclaration pinned to the second binder; the first entry wins.
func Build(table *use.Table, program *ast.Program) (*Namespace, []errors.Error) {
	ns := &Namespace{Entries: make(map[string]Binding, len(table.Entries))}
	var errs errors.List

	for name, path := range table.Entries {
		ns.Entries[name] = Binding{Kind: FromUse, Path: path}
	}

	for _, g := range program.Globals {
		switch global := g.(type) {
		case *ast.Def:
			if global.Name == nil {
				continue
			}
			insert(ns, &errs, global.Name.Name, Binding{Kind: FromDef}, global.Name.Info().Range)
		case *ast.Let:
			if global.Name == nil {
				continue
			}
			insert(ns, &errs, global.Name.Name, Binding{Kind: FromLet}, global.Name.Info().Range)
		}
	}

	return ns, errs.Errors
}

func insert(ns *Namespace, errs *errors.List, name string, binding Binding, span token.TokenRange) {
	if _, exists := ns.Entries[name]; exists {
		errs.Add(errors.NewNamed(errors.Redeclaration, name, span))
		return
	}
	ns.Entries[name] = binding
}
