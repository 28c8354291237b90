package spec

import (
	"github.com/Restioson/blair-mountain/internal/common"
	"github.com/Restioson/blair-mountain/internal/diagnostic"
)

// File is one parsed union spec file.
type File struct {
	// Path is the spec file path as handed to the parser. It is echoed in
	// every diagnostic position.
	Path string
	// Package is the Go package name generated files will declare.
	Package string
	// Doc holds comment lines above the package header.
	Doc []string
	// Imports are the packages member types may reference.
	Imports []Import
	// Unions are the declarations in source order.
	Unions []Union
}

// Import is a single import line from a spec file.
type Import struct {
	// Alias is the explicit import alias, or empty when the path's base
	// name is used.
	Alias string
	// Path is the package import path.
	Path string
	Pos  diagnostic.Pos
}

// LocalName is the identifier member types use to reference this import.
func (im Import) LocalName() string {
	if im.Alias != "" {
		return im.Alias
	}

	return common.PkgAlias(im.Path)
}

// Union is one union declaration: a name, optional type parameters, and
// an ordered member list.
type Union struct {
	Name string
	// Pub marks the union as exported. The declared name must agree: pub
	// unions use an exported Go identifier, non-pub unions an unexported
	// one.
	Pub bool
	Doc []string
	// TypeParams are the generic parameters, empty for monomorphic unions.
	TypeParams []TypeParam
	// Wheres are trailing constraint clauses. Validation folds them into
	// the matching parameter; BoundsFor reads the merged view.
	Wheres  []Where
	Members []Member
	Pos     diagnostic.Pos
}

// TypeParam is one generic parameter with its inline bounds.
type TypeParam struct {
	Name   string
	Bounds []string
	Pos    diagnostic.Pos
}

// Where is one `where Param: bound + bound` clause.
type Where struct {
	Param  string
	Bounds []string
	Pos    diagnostic.Pos
}

// Member is one union member: a logical name and a Go type expression.
type Member struct {
	Name string
	// Pub controls whether the synthesized accessors are exported.
	Pub  bool
	Doc  []string
	Type string
	Pos  diagnostic.Pos
}

// IsGeneric reports whether the union declares type parameters.
func (u *Union) IsGeneric() bool {
	return len(u.TypeParams) > 0
}

// BoundsFor returns the merged constraint list for the named parameter:
// inline bounds first, then where-clause bounds, duplicates dropped.
func (u *Union) BoundsFor(param string) []string {
	var merged []string
	seen := map[string]bool{}

	add := func(bounds []string) {
		for _, b := range bounds {
			if b == "" || seen[b] {
				continue
			}

			seen[b] = true
			merged = append(merged, b)
		}
	}

	for _, tp := range u.TypeParams {
		if tp.Name == param {
			add(tp.Bounds)
		}
	}

	for _, w := range u.Wheres {
		if w.Param == param {
			add(w.Bounds)
		}
	}

	return merged
}

// ParamNames returns the type parameter names in declaration order.
func (u *Union) ParamNames() []string {
	names := make([]string, len(u.TypeParams))
	for i, tp := range u.TypeParams {
		names[i] = tp.Name
	}

	return names
}
