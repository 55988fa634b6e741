// Package use resolves `use` declarations into a flat table mapping each
// local name introduced by a use tree to the fully-qualified path it refers
// to. It does not load or validate that the path exists anywhere — this
// program has no cross-file module loader, so a resolved path may point to
// nothing; that is a later phase's concern (it resolves to Unknown).
package use

import (
	"github.com/nabla-lang/nabla/internal/lang/ast"
	"github.com/nabla-lang/nabla/internal/lang/errors"
	"github.com/nabla-lang/nabla/internal/lang/token"
)

// Table maps a local name to the global path (root segment plus nested
// segments) it was bound to by a use declaration.
type Table struct {
	Entries map[string][]string
}

// Resolve walks every top-level Use in program and builds the use table.
func Resolve(program *ast.Program) (*Table, []errors.Error) {
	r := &resolver{table: &Table{Entries: map[string][]string{}}}
	for _, g := range program.Globals {
		if u, ok := g.(*ast.Use); ok {
			r.walk(u.Name, u.Body, nil, u.Info().Range, nil)
		}
	}
	return r.table, r.errs.Errors
}

type resolver struct {
	table *Table
	errs  errors.List
}

// walk resolves one node of a use tree. name is this node's own identifier;
// body is its optional `::` continuation; alias is an alias attached to this
// node (nil for the top-level Use, which carries no alias of its own); span
// is the token range to pin a DuplicateUse/AliasingNonSingle error about
// this node to; path is the sequence of names from the use root down to
// (but not including) name.
func (r *resolver) walk(name ast.Ident, body *ast.UseBody, alias *ast.Alias, span token.TokenRange, path []string) {
	fullPath := append(append([]string(nil), path...), name.Name)

	if body == nil {
		localName := name.Name
		if alias != nil {
			localName = alias.Name()
		}
		r.insert(localName, fullPath, span)
		return
	}

	switch kind := body.Kind.(type) {
	case ast.Glob:
		r.errs.Add(errors.NewFeature("glob import", kind.Info().Range))
	case *ast.UseItem:
		if alias != nil {
			r.errs.Add(errors.New(errors.AliasingNonSingle, alias.Info().Range))
		}
		r.walk(kind.Name, kind.Body, kind.Alias, kind.Info().Range, fullPath)
	case ast.UseItems:
		if alias != nil {
			r.errs.Add(errors.New(errors.AliasingNonSingle, alias.Info().Range))
		}
		for _, item := range kind.Items {
			r.walk(item.Name, item.Body, item.Alias, item.Info().Range, fullPath)
		}
	case ast.UseError:
		// already reported by the parser
	}
}

// insert records localName -> path, unless localName is already bound; in
// that case the first definition wins and DuplicateUse is pinned to span
// (the range of the node that repeats the name: the use item inside the
// second use, or the second use itself when it has no `::` body).
func (r *resolver) insert(localName string, path []string, span token.TokenRange) {
	if _, exists := r.table.Entries[localName]; exists {
		r.errs.Add(errors.NewNamed(errors.DuplicateUse, localName, span))
		return
	}
	r.table.Entries[localName] = path
}
