package analyze

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"

	"go.uber.org/zap"

	"github.com/Restioson/blair-mountain/internal/diagnostic"
	"github.com/Restioson/blair-mountain/internal/spec"
)

// basicValue lists the predeclared types whose values carry no pointers.
var basicValue = map[string]bool{
	"bool": true, "byte": true, "complex64": true, "complex128": true,
	"float32": true, "float64": true, "int": true, "int8": true,
	"int16": true, "int32": true, "int64": true, "rune": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true,
	"uint64": true, "uintptr": true,
}

// CheckFile classifies every member of every union in the file and
// returns copyability diagnostics: pointer-bearing members warn (raw
// storage hides them from the garbage collector), unresolved and generic
// members add informational notes. The resolver may be nil, in which
// case imported named types stay unresolved.
func CheckFile(file *spec.File, res *Resolver) ([]Report, diagnostic.Diagnostics) {
	var (
		reports []Report
		diags   diagnostic.Diagnostics
	)

	imports := map[string]string{}
	for _, im := range file.Imports {
		imports[im.LocalName()] = im.Path
	}

	for ui := range file.Unions {
		u := &file.Unions[ui]

		params := map[string]bool{}
		for _, tp := range u.TypeParams {
			params[tp.Name] = true
		}

		unionClass := ClassValue

		for _, m := range u.Members {
			expr, err := parser.ParseExpr(m.Type)
			if err != nil {
				// Validation reports unparseable types; nothing to add.
				continue
			}

			class, reason := classifyExpr(expr, params, imports, res)
			unionClass = unionClass.Combine(class)

			reports = append(reports, Report{
				Union:  u.Name,
				Member: m.Name,
				Type:   m.Type,
				Class:  class,
				Reason: reason,
			})

			logger.Debug("classified member",
				zap.String("union", u.Name),
				zap.String("member", m.Name),
				zap.String("class", class.String()),
				zap.String("reason", reason))

			switch class {
			case ClassPointerBearing:
				diags.Add(diagnostic.Diagnostic{
					Severity: diagnostic.DiagnosticWarning,
					Code:     "not_copyable",
					Message: fmt.Sprintf("member %q is not copyable (%s): under the raw build tag its bytes are reused without the garbage collector tracking them",
						m.Name, reason),
					Union:  u.Name,
					Member: m.Name,
					Pos:    m.Pos,
				})
			case ClassUnresolved:
				diags.Add(diagnostic.Diagnostic{
					Severity: diagnostic.DiagnosticInfo,
					Code:     "unresolved_type",
					Message:  fmt.Sprintf("member %q could not be classified: %s", m.Name, reason),
					Union:    u.Name,
					Member:   m.Name,
					Pos:      m.Pos,
				})
			case ClassGeneric:
				diags.Add(diagnostic.Diagnostic{
					Severity: diagnostic.DiagnosticInfo,
					Code:     "generic_member",
					Message:  fmt.Sprintf("member %q depends on a type parameter and is classified at instantiation", m.Name),
					Union:    u.Name,
					Member:   m.Name,
					Pos:      m.Pos,
				})
			}
		}

		logger.Debug("classified union",
			zap.String("union", u.Name),
			zap.String("class", unionClass.String()))
	}

	return reports, diags
}

// classifyExpr walks a member type expression syntactically. Reference
// shapes (slices, maps, channels, funcs, pointers, interfaces, strings)
// classify on sight; named imports go through the resolver.
func classifyExpr(expr ast.Expr, params map[string]bool, imports map[string]string, res *Resolver) (Class, string) {
	switch e := expr.(type) {
	case *ast.Ident:
		switch {
		case params[e.Name]:
			return ClassGeneric, fmt.Sprintf("type parameter %s", e.Name)
		case e.Name == "string":
			return ClassPointerBearing, "string header"
		case e.Name == "error", e.Name == "any":
			return ClassPointerBearing, "interface value"
		case basicValue[e.Name]:
			return ClassValue, ""
		default:
			return ClassUnresolved, fmt.Sprintf("type %s is declared in the target package", e.Name)
		}

	case *ast.SelectorExpr:
		return classifySelector(e, imports, res)

	case *ast.StarExpr:
		return ClassPointerBearing, "pointer"

	case *ast.ArrayType:
		if e.Len == nil {
			return ClassPointerBearing, "slice header"
		}

		return classifyExpr(e.Elt, params, imports, res)

	case *ast.MapType:
		return ClassPointerBearing, "map"

	case *ast.ChanType:
		return ClassPointerBearing, "channel"

	case *ast.FuncType:
		return ClassPointerBearing, "func value"

	case *ast.InterfaceType:
		return ClassPointerBearing, "interface value"

	case *ast.StructType:
		class, reason := ClassValue, ""

		if e.Fields != nil {
			for _, f := range e.Fields.List {
				fc, fr := classifyExpr(f.Type, params, imports, res)
				if fc.rank() > class.rank() {
					class, reason = fc, fieldReason(f, fr)
				}
			}
		}

		return class, reason

	case *ast.ParenExpr:
		return classifyExpr(e.X, params, imports, res)

	case *ast.IndexExpr, *ast.IndexListExpr:
		return ClassUnresolved, "generic instantiation"

	default:
		return ClassUnresolved, fmt.Sprintf("unsupported type shape %T", expr)
	}
}

func fieldReason(f *ast.Field, reason string) string {
	if len(f.Names) > 0 {
		return fmt.Sprintf("field %s: %s", f.Names[0].Name, reason)
	}

	return reason
}

func classifySelector(e *ast.SelectorExpr, imports map[string]string, res *Resolver) (Class, string) {
	pkg, ok := e.X.(*ast.Ident)
	if !ok {
		return ClassUnresolved, "unsupported qualified type"
	}

	path, ok := imports[pkg.Name]
	if !ok {
		return ClassUnresolved, fmt.Sprintf("package %s is not imported", pkg.Name)
	}

	id := TypeID{PkgPath: path, Name: e.Sel.Name}

	if res == nil {
		return ClassUnresolved, fmt.Sprintf("named type %s not resolved (enable resolve)", id)
	}

	t, ok := res.Lookup(path, e.Sel.Name)
	if !ok {
		return ClassUnresolved, fmt.Sprintf("named type %s not found in loaded packages", id)
	}

	class, reason := classifyGoType(t, map[types.Type]bool{})
	if reason != "" {
		reason = fmt.Sprintf("%s: %s", id, reason)
	}

	return class, reason
}

// classifyGoType walks a resolved go/types.Type. The seen set breaks
// cycles through self-referential named types.
func classifyGoType(t types.Type, seen map[types.Type]bool) (Class, string) {
	t = types.Unalias(t)

	if seen[t] {
		return ClassValue, ""
	}

	seen[t] = true

	switch tt := t.(type) {
	case *types.Basic:
		switch {
		case tt.Kind() == types.String, tt.Kind() == types.UnsafePointer:
			return ClassPointerBearing, tt.Name()
		case tt.Kind() == types.Invalid:
			return ClassUnresolved, "invalid type"
		default:
			return ClassValue, ""
		}

	case *types.Pointer:
		return ClassPointerBearing, "pointer"

	case *types.Slice:
		return ClassPointerBearing, "slice header"

	case *types.Map:
		return ClassPointerBearing, "map"

	case *types.Chan:
		return ClassPointerBearing, "channel"

	case *types.Signature:
		return ClassPointerBearing, "func value"

	case *types.Interface:
		return ClassPointerBearing, "interface value"

	case *types.Array:
		return classifyGoType(tt.Elem(), seen)

	case *types.Struct:
		class, reason := ClassValue, ""

		for i := 0; i < tt.NumFields(); i++ {
			fc, fr := classifyGoType(tt.Field(i).Type(), seen)
			if fc.rank() > class.rank() {
				class = fc
				reason = fmt.Sprintf("field %s: %s", tt.Field(i).Name(), fr)
			}
		}

		return class, reason

	case *types.Named:
		return classifyGoType(tt.Underlying(), seen)

	case *types.TypeParam:
		return ClassGeneric, "type parameter"

	default:
		return ClassUnresolved, fmt.Sprintf("unsupported type %T", t)
	}
}
