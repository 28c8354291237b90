package gen

import (
	"strings"

	"github.com/Restioson/blair-mountain/internal/common"
	"github.com/Restioson/blair-mountain/internal/ident"
	"github.com/Restioson/blair-mountain/internal/spec"
)

// unionData holds everything the templates need to render one union.
type unionData struct {
	Package  string
	Tag      string
	Comments bool
	// Union is the wrapper type name as declared.
	Union string
	// Inner, TagType, Layout and SizeConst are the synthesized helper
	// names. Layout and SizeConst stay empty of meaning for generic
	// unions, which have no overlapped storage.
	Inner     string
	TagType   string
	Layout    string
	SizeConst string
	// TypeParams renders as "[T fmt.Stringer, U any]", ParamRefs as
	// "[T, U]". Both are empty for monomorphic unions.
	TypeParams string
	ParamRefs  string
	// MemberList is the comma-joined member names for doc comments.
	MemberList string
	Generic    bool
	UnionDoc   []string
	Members    []memberData
}

// fileData is the execution payload for one generated file.
type fileData struct {
	unionData
	Filename string
	Imports  []importSpec
}

// memberData holds the synthesized names of one member.
type memberData struct {
	// Name is the member name as declared, used in comments and panic
	// messages.
	Name string
	Doc  []string
	// Type is the Go type expression as written in the spec.
	Type string
	// Field is the storage field name.
	Field    string
	TagConst string
	Ctor     string
	Get      string
	GetMut   string
	Set      string
	Into     string
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// buildUnionData constructs the template data for a union.
func (g *Generator) buildUnionData(u *spec.Union, pkg string) unionData {
	data := unionData{
		Package:    pkg,
		Tag:        g.config.Tag,
		Comments:   g.config.Comments,
		Union:      u.Name,
		Inner:      ident.Join(u.Name, "inner"),
		TagType:    ident.Join(u.Name, "tag"),
		Layout:     ident.Join(u.Name, "layout"),
		SizeConst:  ident.Join(u.Name, "size"),
		TypeParams: typeParamList(u),
		ParamRefs:  typeParamRefs(u),
		Generic:    u.IsGeneric(),
		UnionDoc:   u.Doc,
	}

	names := make([]string, 0, len(u.Members))

	for i := range u.Members {
		m := &u.Members[i]
		names = append(names, m.Name)
		data.Members = append(data.Members, buildMemberData(u, m))
	}

	data.MemberList = strings.Join(names, ", ")

	return data
}

// buildMemberData synthesizes the names of one member. Validation claims
// these same names, so a clean file cannot produce colliding ones here.
func buildMemberData(u *spec.Union, m *spec.Member) memberData {
	return memberData{
		Name:     m.Name,
		Doc:      m.Doc,
		Type:     m.Type,
		Field:    ident.Join(m.Name),
		TagConst: ident.Join(u.Name, "tag", m.Name),
		Ctor:     ident.JoinVisible(m.Pub, "new", u.Name, m.Name),
		Get:      ident.JoinVisible(m.Pub, "get", m.Name),
		GetMut:   ident.JoinVisible(m.Pub, "get", m.Name, "mut"),
		Set:      ident.JoinVisible(m.Pub, "set", m.Name),
		Into:     ident.JoinVisible(m.Pub, "into", m.Name),
	}
}

// typeParamList renders the declaration form of the type parameters.
func typeParamList(u *spec.Union) string {
	if !u.IsGeneric() {
		return ""
	}

	parts := make([]string, 0, len(u.TypeParams))
	for _, tp := range u.TypeParams {
		parts = append(parts, tp.Name+" "+constraint(u.BoundsFor(tp.Name)))
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// typeParamRefs renders the reference form of the type parameters.
func typeParamRefs(u *spec.Union) string {
	if !u.IsGeneric() {
		return ""
	}

	return "[" + strings.Join(u.ParamNames(), ", ") + "]"
}

// constraint renders a merged bound list as a Go constraint. A single
// bound passes through as written; multiple bounds embed in an interface,
// where "any" adds nothing and is dropped.
func constraint(bounds []string) string {
	kept := make([]string, 0, len(bounds))

	for _, b := range bounds {
		if b == "any" {
			continue
		}

		kept = append(kept, b)
	}

	switch {
	case common.IsEmpty(kept):
		return "any"
	case common.IsSingle(kept):
		return kept[0]
	default:
		return "interface{ " + strings.Join(kept, "; ") + " }"
	}
}

// collectImports gathers the imports one generated file needs: always the
// ones bounds reference, member type imports when the file declares
// member storage or accessors, and unsafe for overlapped storage.
func collectImports(file *spec.File, u *spec.Union, wantMembers, wantUnsafe bool) []importSpec {
	byLocal := map[string]spec.Import{}
	for _, im := range file.Imports {
		byLocal[im.LocalName()] = im
	}

	used := map[string]importSpec{}

	note := func(typeExpr string) {
		for _, root := range spec.TypeRoots(typeExpr) {
			im, ok := byLocal[root]
			if !ok {
				continue
			}

			used[im.Path] = importSpec{Alias: im.Alias, Path: im.Path}
		}
	}

	for _, tp := range u.TypeParams {
		for _, b := range u.BoundsFor(tp.Name) {
			note(b)
		}
	}

	if wantMembers {
		for _, m := range u.Members {
			note(m.Type)
		}
	}

	if wantUnsafe {
		used["unsafe"] = importSpec{Path: "unsafe"}
	}

	specs := make([]importSpec, 0, len(used))
	for _, path := range common.SortedKeys(used) {
		specs = append(specs, used[path])
	}

	return specs
}
