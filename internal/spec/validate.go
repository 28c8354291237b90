package spec

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/Restioson/blair-mountain/internal/diagnostic"
	"github.com/Restioson/blair-mountain/internal/ident"
)

// Validate checks a parsed file for semantic problems: identifier and
// visibility rules, duplicate or colliding names (including the names the
// generator will synthesize), unparseable type expressions, and unused
// imports. Generation must not run on a file whose diagnostics contain
// errors.
func Validate(file *File) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	if file == nil {
		diags.AddError("nil_file", "spec file is nil", "", "")
		return diags
	}

	// A headerless file takes its package name from configuration.
	if file.Package != "" && !token.IsIdentifier(file.Package) {
		diags.AddError("bad_package", fmt.Sprintf("package name %q is not a valid Go identifier", file.Package), "", "")
	}

	validateImports(file, &diags)

	// Names that will live side by side in the generated package. Two
	// unions, or a union and a synthesized helper, must never claim the
	// same one.
	pkgScope := map[string]string{}

	for i := range file.Unions {
		validateUnion(file, &file.Unions[i], pkgScope, &diags)
	}

	markUnusedImports(file, &diags)
	return diags
}

func errorAt(diags *diagnostic.Diagnostics, pos diagnostic.Pos, code, union, member, format string, args ...any) {
	diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Union:    union,
		Member:   member,
		Pos:      pos,
	})
}

func validateImports(file *File, diags *diagnostic.Diagnostics) {
	seen := map[string]diagnostic.Pos{}

	for _, im := range file.Imports {
		if im.Path == "" {
			errorAt(diags, im.Pos, "bad_import", "", "", "import path is empty")
			continue
		}

		if im.Alias != "" && !token.IsIdentifier(im.Alias) {
			errorAt(diags, im.Pos, "bad_import", "", "", "import alias %q is not a valid Go identifier", im.Alias)
			continue
		}

		local := im.LocalName()
		if prev, ok := seen[local]; ok {
			errorAt(diags, im.Pos, "duplicate_import", "", "", "import name %q already used at %s", local, prev)
			continue
		}

		seen[local] = im.Pos
	}
}

func validateUnion(file *File, u *Union, pkgScope map[string]string, diags *diagnostic.Diagnostics) {
	if !token.IsIdentifier(u.Name) {
		errorAt(diags, u.Pos, "bad_union", u.Name, "", "union name %q is not a valid Go identifier", u.Name)
		return
	}

	if u.Pub != token.IsExported(u.Name) {
		if u.Pub {
			errorAt(diags, u.Pos, "visibility_mismatch", u.Name, "", "pub union %q must use an exported (capitalized) name", u.Name)
		} else {
			errorAt(diags, u.Pos, "visibility_mismatch", u.Name, "", "union %q uses an exported name but is not declared pub", u.Name)
		}
	}

	if len(u.Members) == 0 {
		errorAt(diags, u.Pos, "no_members", u.Name, "", "union %q has no members", u.Name)
		return
	}

	validateTypeParams(u, diags)

	// Claim every package-scope name this union will generate.
	claim := func(name, what string, pos diagnostic.Pos) {
		if prev, ok := pkgScope[name]; ok {
			errorAt(diags, pos, "name_collision", u.Name, "", "%s collides with %s over the generated name %q", what, prev, name)
			return
		}

		pkgScope[name] = what
	}

	claim(u.Name, fmt.Sprintf("union %q", u.Name), u.Pos)
	claim(ident.Join(u.Name, "inner"), fmt.Sprintf("the storage type of union %q", u.Name), u.Pos)
	claim(ident.Join(u.Name, "tag"), fmt.Sprintf("the tag type of union %q", u.Name), u.Pos)

	if !u.IsGeneric() {
		claim(ident.Join(u.Name, "layout"), fmt.Sprintf("the layout type of union %q", u.Name), u.Pos)
		claim(ident.Join(u.Name, "size"), fmt.Sprintf("the size constant of union %q", u.Name), u.Pos)
	}

	// Accessors and storage fields live in narrower scopes, one per union.
	methodScope := map[string]string{}
	fieldScope := map[string]string{}

	for i := range u.Members {
		validateMember(file, u, &u.Members[i], claim, methodScope, fieldScope, diags)
	}
}

func validateTypeParams(u *Union, diags *diagnostic.Diagnostics) {
	params := map[string]bool{}

	for _, tp := range u.TypeParams {
		if !token.IsIdentifier(tp.Name) {
			errorAt(diags, tp.Pos, "bad_type_params", u.Name, "", "type parameter %q is not a valid Go identifier", tp.Name)
			continue
		}

		// Generated method bodies use lowercase locals; an uppercase
		// parameter can never shadow them.
		if !token.IsExported(tp.Name) {
			errorAt(diags, tp.Pos, "bad_type_params", u.Name, "", "type parameter %q must start with an uppercase letter", tp.Name)
			continue
		}

		if params[tp.Name] {
			errorAt(diags, tp.Pos, "bad_type_params", u.Name, "", "duplicate type parameter %q", tp.Name)
			continue
		}

		params[tp.Name] = true

		for _, b := range tp.Bounds {
			validateBound(u, tp.Name, b, tp.Pos, diags)
		}
	}

	for _, w := range u.Wheres {
		if !params[w.Param] {
			errorAt(diags, w.Pos, "unknown_where_param", u.Name, "", "where clause names %q, which is not a type parameter of union %q", w.Param, u.Name)
			continue
		}

		if len(w.Bounds) == 0 {
			errorAt(diags, w.Pos, "bad_where", u.Name, "", "where clause for %q has no bounds", w.Param)
		}

		for _, b := range w.Bounds {
			validateBound(u, w.Param, b, w.Pos, diags)
		}
	}
}

func validateBound(u *Union, param, bound string, pos diagnostic.Pos, diags *diagnostic.Diagnostics) {
	if _, err := parser.ParseExpr(bound); err == nil {
		return
	}

	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     "bad_bound",
		Message:  fmt.Sprintf("bound %q on %q is not a valid Go constraint expression", bound, param),
		Union:    u.Name,
		Pos:      pos,
	}

	// Bare type elements like ~int or int | string only parse inside an
	// interface body.
	if strings.ContainsAny(bound, "~|") {
		d.Suggestions = append(d.Suggestions, fmt.Sprintf("wrap type elements in an interface: interface{ %s }", bound))
	}

	diags.Add(d)
}

func validateMember(file *File, u *Union, m *Member, claim func(string, string, diagnostic.Pos), methodScope, fieldScope map[string]string, diags *diagnostic.Diagnostics) {
	if !token.IsIdentifier(m.Name) {
		errorAt(diags, m.Pos, "bad_member", u.Name, m.Name, "member name %q is not a valid Go identifier", m.Name)
		return
	}

	field := ident.Join(m.Name)
	if field == "tag" || field == "mustHold" {
		errorAt(diags, m.Pos, "reserved_member", u.Name, m.Name, "member %q stores in field %q, which the generated code reserves", m.Name, field)
		return
	}

	if prev, ok := fieldScope[field]; ok {
		errorAt(diags, m.Pos, "duplicate_member", u.Name, m.Name, "member %q collides with member %q: both store in field %q", m.Name, prev, field)
		return
	}

	fieldScope[field] = m.Name

	accessors := []string{
		ident.JoinVisible(m.Pub, "get", m.Name),
		ident.JoinVisible(m.Pub, "get", m.Name, "mut"),
		ident.JoinVisible(m.Pub, "set", m.Name),
		ident.JoinVisible(m.Pub, "into", m.Name),
	}

	for _, name := range accessors {
		if prev, ok := methodScope[name]; ok {
			errorAt(diags, m.Pos, "name_collision", u.Name, m.Name, "accessor %q of member %q collides with member %q", name, m.Name, prev)
			continue
		}

		methodScope[name] = m.Name
	}

	ctor := ident.JoinVisible(m.Pub, "new", u.Name, m.Name)
	claim(ctor, fmt.Sprintf("the constructor of member %q of union %q", m.Name, u.Name), m.Pos)

	// Tag constants exist in the checked profile for every union.
	claim(ident.Join(u.Name, "tag", m.Name), fmt.Sprintf("the tag constant of member %q of union %q", m.Name, u.Name), m.Pos)

	validateMemberType(file, u, m, diags)
}

func validateMemberType(file *File, u *Union, m *Member, diags *diagnostic.Diagnostics) {
	expr, err := parser.ParseExpr(m.Type)
	if err != nil {
		errorAt(diags, m.Pos, "bad_type", u.Name, m.Name, "type of member %q does not parse as a Go type expression: %s", m.Name, m.Type)
		return
	}

	imports := map[string]bool{}
	for _, im := range file.Imports {
		imports[im.LocalName()] = true
	}

	for _, root := range selectorRoots(expr) {
		if !imports[root] {
			errorAt(diags, m.Pos, "unknown_package", u.Name, m.Name, "type of member %q references package %q, which is not imported", m.Name, root)
		}
	}
}

// TypeRoots returns the package qualifiers a type expression references,
// e.g. "wire" for *wire.Header. Unparseable expressions yield none.
func TypeRoots(typeExpr string) []string {
	expr, err := parser.ParseExpr(typeExpr)
	if err != nil {
		return nil
	}

	return selectorRoots(expr)
}

// selectorRoots returns the package qualifiers referenced by a type
// expression, e.g. "wire" for wire.Header.
func selectorRoots(expr ast.Expr) []string {
	var roots []string

	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				roots = append(roots, id.Name)
			}
		}

		return true
	})

	return roots
}

// markUnusedImports warns about imports no member type or bound ever
// references.
func markUnusedImports(file *File, diags *diagnostic.Diagnostics) {
	used := map[string]bool{}

	note := func(typeExpr string) {
		for _, root := range TypeRoots(typeExpr) {
			used[root] = true
		}
	}

	for i := range file.Unions {
		u := &file.Unions[i]

		for _, m := range u.Members {
			note(m.Type)
		}

		for _, tp := range u.TypeParams {
			for _, b := range tp.Bounds {
				note(b)
			}
		}

		for _, w := range u.Wheres {
			for _, b := range w.Bounds {
				note(b)
			}
		}
	}

	for _, im := range file.Imports {
		if !used[im.LocalName()] {
			diags.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticWarning,
				Code:     "unused_import",
				Message:  fmt.Sprintf("import %q is never referenced by a member type or bound", im.Path),
				Pos:      im.Pos,
			})
		}
	}
}
