package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	"go.uber.org/zap"

	"github.com/Restioson/blair-mountain/internal/ident"
	"github.com/Restioson/blair-mountain/internal/manifest"
	"github.com/Restioson/blair-mountain/internal/spec"
)

// Config holds configuration for code generation.
type Config struct {
	// PackageName overrides the package declared in the spec files. When
	// empty, every spec file must declare the same package and that name
	// is used.
	PackageName string
	// OutDir is the directory generated files are written to.
	OutDir string
	// Tag is the build tag that selects the raw profile. Builds without
	// it get the checked profile.
	Tag string
	// Comments enables doc comments on the generated declarations.
	Comments bool
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() Config {
	return Config{
		OutDir:   ".",
		Tag:      manifest.DefaultTag,
		Comments: true,
	}
}

// Generator renders validated union spec files into Go source.
type Generator struct {
	config Config
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config Config) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the bare file name (e.g. "envelope_union_raw.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate renders every union in the given spec files. Each union
// becomes three files: the wrapper type, the checked profile, and the
// raw profile. The input must already have passed validation.
func (g *Generator) Generate(files []*spec.File) ([]GeneratedFile, error) {
	pkg, err := g.packageName(files)
	if err != nil {
		return nil, err
	}

	// Unions from different spec files land in one directory, so their
	// file names must not collide.
	owners := map[string]string{}

	var out []GeneratedFile

	for _, file := range files {
		for i := range file.Unions {
			u := &file.Unions[i]

			generated, err := g.generateUnion(file, u, pkg)
			if err != nil {
				return nil, fmt.Errorf("generating union %s: %w", u.Name, err)
			}

			for _, gf := range generated {
				if prev, ok := owners[gf.Filename]; ok {
					return nil, fmt.Errorf("unions %s and %s both generate %s", prev, u.Name, gf.Filename)
				}

				owners[gf.Filename] = u.Name
			}

			out = append(out, generated...)
		}
	}

	return out, nil
}

// packageName decides the package generated files declare.
func (g *Generator) packageName(files []*spec.File) (string, error) {
	if g.config.PackageName != "" {
		return g.config.PackageName, nil
	}

	if len(files) == 0 {
		return "", fmt.Errorf("no spec files to generate from")
	}

	pkg := ""

	for _, file := range files {
		if file.Package == "" {
			continue
		}

		if pkg == "" {
			pkg = file.Package
			continue
		}

		if file.Package != pkg {
			return "", fmt.Errorf("spec files disagree on the package name: %q vs %q in %s", pkg, file.Package, file.Path)
		}
	}

	if pkg == "" {
		return "", fmt.Errorf("no package name: the spec files declare none and no override is set")
	}

	return pkg, nil
}

// generateUnion renders the three files of a single union.
func (g *Generator) generateUnion(file *spec.File, u *spec.Union, pkg string) ([]GeneratedFile, error) {
	data := g.buildUnionData(u, pkg)

	rawTmpl := rawTemplate
	if u.IsGeneric() {
		// A byte array cannot take its length from a type parameter, so
		// generic unions fall back to one field per member.
		rawTmpl = rawGenericTemplate
	}

	jobs := []struct {
		tmpl *template.Template
		data fileData
	}{
		{sharedTemplate, fileData{
			unionData: data,
			Filename:  ident.File(u.Name, "union") + ".go",
			Imports:   collectImports(file, u, false, false),
		}},
		{checkedTemplate, fileData{
			unionData: data,
			Filename:  ident.File(u.Name, "union", "checked") + ".go",
			Imports:   collectImports(file, u, true, false),
		}},
		{rawTmpl, fileData{
			unionData: data,
			Filename:  ident.File(u.Name, "union", "raw") + ".go",
			Imports:   collectImports(file, u, true, !u.IsGeneric()),
		}},
	}

	files := make([]GeneratedFile, 0, len(jobs))

	for _, job := range jobs {
		rendered, err := g.render(job.tmpl, job.data)
		if err != nil {
			return nil, err
		}

		files = append(files, *rendered)
	}

	logger.Debug("generated union",
		zap.String("union", u.Name),
		zap.Int("members", len(u.Members)),
		zap.Bool("generic", u.IsGeneric()))

	return files, nil
}

// render executes a template and formats the result.
func (g *Generator) render(tmpl *template.Template, data fileData) (*GeneratedFile, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", tmpl.Name(), err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Best-effort: write unformatted code to a sidecar file to aid
		// debugging. This is intentionally non-fatal for the write
		// attempt.
		if g.config.OutDir != "" {
			_ = writeDebugUnformatted(g.config.OutDir, data.Filename, buf.Bytes())
		}

		return nil, fmt.Errorf("formatting %s: %w", data.Filename, err)
	}

	return &GeneratedFile{
		Filename: data.Filename,
		Content:  formatted,
	}, nil
}

// Templates for the three files of a union. The raw profile has a second
// template for generic unions, whose storage cannot overlap.

var sharedTemplate = template.Must(template.New("shared").Parse(`// Code generated by blair-mountain. DO NOT EDIT.

package {{.Package}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{if .Comments}}// {{.Union}} holds exactly one of its members: {{.MemberList}}.
// Storage is shared, so setting one member invalidates the others.
{{if .UnionDoc}}//
{{range .UnionDoc}}// {{.}}
{{end}}{{end}}{{end}}type {{.Union}}{{.TypeParams}} struct {
	inner {{.Inner}}{{.ParamRefs}}
}
`))

var checkedTemplate = template.Must(template.New("checked").Parse(`// Code generated by blair-mountain. DO NOT EDIT.

//go:build !{{.Tag}}

package {{.Package}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{if .Comments}}// {{.TagType}} names the member held inside {{.Union}}.
{{end}}type {{.TagType}} uint8

const (
{{range $i, $m := .Members}}	{{$m.TagConst}}{{if not $i}} {{$.TagType}} = iota{{end}}
{{end}})

func (t {{.TagType}}) String() string {
	switch t {
{{range .Members}}	case {{.TagConst}}:
		return "{{.Name}}"
{{end}}	default:
		return "unknown"
	}
}

type {{.Inner}}{{.TypeParams}} struct {
	tag {{.TagType}}
{{range .Members}}	{{.Field}} {{.Type}}
{{end}}}

func (n *{{.Inner}}{{.ParamRefs}}) mustHold(want {{.TagType}}) {
	if n.tag != want {
		panic("unexpected union member: {{.Union}} holds " + n.tag.String() + ", not " + want.String())
	}
}
{{range .Members}}
{{if $.Comments}}// {{.Ctor}} returns a new {{$.Union}} holding {{.Name}}.
{{if .Doc}}//
{{range .Doc}}// {{.}}
{{end}}{{end}}{{end}}func {{.Ctor}}{{$.TypeParams}}(value {{.Type}}) {{$.Union}}{{$.ParamRefs}} {
	return {{$.Union}}{{$.ParamRefs}}{inner: {{$.Inner}}{{$.ParamRefs}}{tag: {{.TagConst}}, {{.Field}}: value}}
}

{{if $.Comments}}// {{.Get}} returns the {{.Name}} member.
// It panics if the union holds a different member.
{{end}}func (u *{{$.Union}}{{$.ParamRefs}}) {{.Get}}() {{.Type}} {
	u.inner.mustHold({{.TagConst}})
	return u.inner.{{.Field}}
}

{{if $.Comments}}// {{.GetMut}} returns a pointer to the {{.Name}} member for in-place
// mutation. It panics if the union holds a different member.
{{end}}func (u *{{$.Union}}{{$.ParamRefs}}) {{.GetMut}}() *{{.Type}} {
	u.inner.mustHold({{.TagConst}})
	return &u.inner.{{.Field}}
}

{{if $.Comments}}// {{.Set}} makes the union hold {{.Name}}, discarding the previous member.
{{end}}func (u *{{$.Union}}{{$.ParamRefs}}) {{.Set}}(value {{.Type}}) {
	u.inner = {{$.Inner}}{{$.ParamRefs}}{tag: {{.TagConst}}, {{.Field}}: value}
}

{{if $.Comments}}// {{.Into}} consumes the union and returns the {{.Name}} member. The
// union value must not be used afterwards.
// It panics if the union holds a different member.
{{end}}func (u {{$.Union}}{{$.ParamRefs}}) {{.Into}}() {{.Type}} {
	u.inner.mustHold({{.TagConst}})
	return u.inner.{{.Field}}
}
{{end}}`))

var rawTemplate = template.Must(template.New("raw").Parse(`// Code generated by blair-mountain. DO NOT EDIT.

//go:build {{.Tag}}

package {{.Package}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{if .Comments}}// {{.Layout}} only measures member sizes and alignment. It is never
// instantiated.
{{end}}type {{.Layout}} struct {
{{range .Members}}	{{.Field}} {{.Type}}
{{end}}}

const {{.SizeConst}} = max(
{{range .Members}}	unsafe.Sizeof({{$.Layout}}{}.{{.Field}}),
{{end}})

{{if .Comments}}// {{.Inner}} overlays every member on the same bytes. The zero-length
// array forces the alignment of the strictest member. The bytes are
// opaque to the garbage collector: pointers stored here keep nothing
// alive.
{{end}}type {{.Inner}} struct {
	_    [0]{{.Layout}}
	data [{{.SizeConst}}]byte
}
{{range .Members}}
{{if $.Comments}}// {{.Ctor}} returns a new {{$.Union}} holding {{.Name}}.
{{if .Doc}}//
{{range .Doc}}// {{.}}
{{end}}{{end}}{{end}}func {{.Ctor}}(value {{.Type}}) {{$.Union}} {
	var u {{$.Union}}
	*(*{{.Type}})(unsafe.Pointer(&u.inner.data)) = value
	return u
}

{{if $.Comments}}// {{.Get}} returns the {{.Name}} member. The union must currently hold
// {{.Name}}; no check enforces it.
{{end}}func (u *{{$.Union}}) {{.Get}}() {{.Type}} {
	return *(*{{.Type}})(unsafe.Pointer(&u.inner.data))
}

{{if $.Comments}}// {{.GetMut}} returns a pointer to the {{.Name}} member. The union must
// currently hold {{.Name}}; no check enforces it.
{{end}}func (u *{{$.Union}}) {{.GetMut}}() *{{.Type}} {
	return (*{{.Type}})(unsafe.Pointer(&u.inner.data))
}

{{if $.Comments}}// {{.Set}} makes the union hold {{.Name}}, discarding the previous member.
{{end}}func (u *{{$.Union}}) {{.Set}}(value {{.Type}}) {
	*(*{{.Type}})(unsafe.Pointer(&u.inner.data)) = value
}

{{if $.Comments}}// {{.Into}} consumes the union and returns the {{.Name}} member. The
// union value must not be used afterwards, and must currently hold
// {{.Name}}; no check enforces either.
{{end}}func (u {{$.Union}}) {{.Into}}() {{.Type}} {
	return *(*{{.Type}})(unsafe.Pointer(&u.inner.data))
}
{{end}}`))

var rawGenericTemplate = template.Must(template.New("raw_generic").Parse(`// Code generated by blair-mountain. DO NOT EDIT.

//go:build {{.Tag}}

package {{.Package}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{if .Comments}}// {{.Inner}} keeps one field per member: a byte array cannot take its
// length from a type parameter, so the members of a generic union do not
// overlap. Accessors still behave as if they did, minus the tag.
{{end}}type {{.Inner}}{{.TypeParams}} struct {
{{range .Members}}	{{.Field}} {{.Type}}
{{end}}}
{{range .Members}}
{{if $.Comments}}// {{.Ctor}} returns a new {{$.Union}} holding {{.Name}}.
{{if .Doc}}//
{{range .Doc}}// {{.}}
{{end}}{{end}}{{end}}func {{.Ctor}}{{$.TypeParams}}(value {{.Type}}) {{$.Union}}{{$.ParamRefs}} {
	return {{$.Union}}{{$.ParamRefs}}{inner: {{$.Inner}}{{$.ParamRefs}}{{"{"}}{{.Field}}: value}}
}

{{if $.Comments}}// {{.Get}} returns the {{.Name}} member. The union must currently hold
// {{.Name}}; no check enforces it.
{{end}}func (u *{{$.Union}}{{$.ParamRefs}}) {{.Get}}() {{.Type}} {
	return u.inner.{{.Field}}
}

{{if $.Comments}}// {{.GetMut}} returns a pointer to the {{.Name}} member. The union must
// currently hold {{.Name}}; no check enforces it.
{{end}}func (u *{{$.Union}}{{$.ParamRefs}}) {{.GetMut}}() *{{.Type}} {
	return &u.inner.{{.Field}}
}

{{if $.Comments}}// {{.Set}} makes the union hold {{.Name}}.
{{end}}func (u *{{$.Union}}{{$.ParamRefs}}) {{.Set}}(value {{.Type}}) {
	u.inner.{{.Field}} = value
}

{{if $.Comments}}// {{.Into}} consumes the union and returns the {{.Name}} member. The
// union value must not be used afterwards, and must currently hold
// {{.Name}}; no check enforces either.
{{end}}func (u {{$.Union}}{{$.ParamRefs}}) {{.Into}}() {{.Type}} {
	return u.inner.{{.Field}}
}
{{end}}`))
