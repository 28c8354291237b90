// Package main provides the CLI entrypoint for blair-mountain.
//
// blair-mountain translates union spec files into Go source with two
// build profiles:
//   - checked (the default build): tagged storage, accessors panic on
//     wrong-member access
//   - raw (behind a build tag): members overlap in one allocation and
//     nothing is checked
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Restioson/blair-mountain/internal/analyze"
	"github.com/Restioson/blair-mountain/internal/diagnostic"
	"github.com/Restioson/blair-mountain/internal/gen"
	"github.com/Restioson/blair-mountain/internal/manifest"
	"github.com/Restioson/blair-mountain/internal/spec"
)

const defaultManifest = "unions.yaml"

// errDiagnostics marks a failure already reported through rendered
// diagnostics, so main does not print it a second time.
var errDiagnostics = errors.New("spec has errors")

var logger = zap.NewNop()

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "gen":
		err = runGen(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		}

		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("blair-mountain"), "- checked/raw union codegen for Go")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  blair-mountain gen     [flags] [files]  generate union source from the manifest or the given spec files")
	fmt.Fprintln(w, "  blair-mountain check   [flags] [files]  validate and lint without writing")
	fmt.Fprintln(w, "  blair-mountain inspect [flags] <files>  dump parsed spec files")
	fmt.Fprintln(w, "  blair-mountain init    [flags]          scaffold a manifest and example spec")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run any command with -h for its flags.")
}

// commonFlags are shared by gen and check.
type commonFlags struct {
	manifest string
	out      string
	pkg      string
	tag      string
	strict   bool
	resolve  bool
	verbose  bool
}

func bindCommon(fs *flag.FlagSet) *commonFlags {
	f := &commonFlags{}
	fs.StringVar(&f.manifest, "manifest", defaultManifest, "manifest file to load")
	fs.StringVar(&f.out, "o", "", "output directory (overrides the manifest)")
	fs.StringVar(&f.pkg, "pkg", "", "package name for generated files (overrides the manifest)")
	fs.StringVar(&f.tag, "tag", "", "build tag selecting the raw profile (overrides the manifest)")
	fs.BoolVar(&f.strict, "strict", false, "treat warnings as errors")
	fs.BoolVar(&f.resolve, "resolve", false, "load imported packages to classify member types")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")

	return f
}

// apply folds command line overrides into the loaded manifest.
func (f *commonFlags) apply(m *manifest.Manifest) {
	if f.pkg != "" {
		m.Package = f.pkg
	}

	if f.tag != "" {
		m.Tag = f.tag
	}

	if f.strict {
		m.Strict = true
	}

	if f.resolve {
		m.Resolve = true
	}
}

// outDir resolves the output directory: a -o flag counts from the
// working directory, the manifest's out field from the manifest's.
func (f *commonFlags) outDir(m *manifest.Manifest, dir string) string {
	if f.out != "" {
		return f.out
	}

	return m.OutDir(dir)
}

func setupLogging(verbose bool) {
	if !verbose {
		return
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging setup failed:", err)
		return
	}

	logger = l
	analyze.SetLogger(l)
	gen.SetLogger(l)
}

func runGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	f := bindCommon(fs)
	_ = fs.Parse(args)

	setupLogging(f.verbose)

	m, dir, err := loadRunManifest(f.manifest, fs.NArg() > 0)
	if err != nil {
		return err
	}

	f.apply(m)
	out := f.outDir(m, dir)

	files, diags := loadSpecs(m, specPaths(fs, m, dir), out)
	if m.Strict {
		diags.PromoteWarnings()
	}

	renderDiagnostics(os.Stderr, &diags)

	if diags.HasErrors() {
		return errDiagnostics
	}

	config := gen.Config{
		PackageName: m.Package,
		OutDir:      out,
		Tag:         m.Tag,
		Comments:    m.CommentsEnabled(),
	}

	generated, err := gen.NewGenerator(config).Generate(files)
	if err != nil {
		return err
	}

	if err := gen.WriteFiles(generated, out); err != nil {
		return err
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("wrote %d files to %s", len(generated), out)))

	return nil
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	f := bindCommon(fs)
	_ = fs.Parse(args)

	setupLogging(f.verbose)

	m, dir, err := loadRunManifest(f.manifest, fs.NArg() > 0)
	if err != nil {
		return err
	}

	f.apply(m)
	out := f.outDir(m, dir)

	files, diags := loadSpecs(m, specPaths(fs, m, dir), out)
	if m.Strict {
		diags.PromoteWarnings()
	}

	renderDiagnostics(os.Stderr, &diags)

	if diags.HasErrors() {
		return errDiagnostics
	}

	config := gen.Config{
		PackageName: m.Package,
		OutDir:      out,
		Tag:         m.Tag,
		Comments:    m.CommentsEnabled(),
	}

	// Render everything without writing, so check catches what gen would
	// trip over.
	generated, err := gen.NewGenerator(config).Generate(files)
	if err != nil {
		return err
	}

	unions := 0
	for _, file := range files {
		unions += len(file.Unions)
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("ok: %d unions in %d spec files (%d generated files)",
		unions, len(files), len(generated))))

	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("manifest", defaultManifest, "manifest path to create")
	force := fs.Bool("force", false, "overwrite an existing manifest")
	_ = fs.Parse(args)

	if !*force {
		if _, err := os.Stat(*path); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", *path)
		}
	}

	if err := manifest.WriteFile(manifest.Default(), *path); err != nil {
		return err
	}

	wrote := *path

	specPath := filepath.Join(filepath.Dir(*path), "example.union")
	if _, err := os.Stat(specPath); err != nil {
		if err := os.WriteFile(specPath, []byte(exampleSpec), 0o644); err != nil {
			return err
		}

		wrote += " and " + specPath
	}

	fmt.Println(okStyle.Render("wrote " + wrote))

	return nil
}

const exampleSpec = `package unions

// Envelope carries either a human readable note or a bare counter.
pub union Envelope {
	pub note: string,
	pub count: uint32,
}
`

// loadRunManifest loads the manifest for gen and check. When the
// default manifest is absent and spec files were given on the command
// line, it falls back to built-in defaults so a bare file list works.
func loadRunManifest(path string, haveArgs bool) (*manifest.Manifest, string, error) {
	m, dir, err := loadManifest(path)
	if err == nil {
		return m, dir, nil
	}

	if path == defaultManifest && haveArgs && errors.Is(err, os.ErrNotExist) {
		return manifest.Default(), ".", nil
	}

	return nil, "", err
}

// loadManifest loads and validates the manifest, returning it with its
// directory, which relative paths inside it count from.
func loadManifest(path string) (*manifest.Manifest, string, error) {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, "", err
	}

	if err := m.Validate(); err != nil {
		return nil, "", fmt.Errorf("manifest %s: %w", path, err)
	}

	return m, filepath.Dir(path), nil
}

// specPaths resolves which spec files a run covers: positional
// arguments (counted from the working directory) beat the manifest's
// list (counted from the manifest's directory).
func specPaths(fs *flag.FlagSet, m *manifest.Manifest, dir string) []string {
	if fs.NArg() > 0 {
		return fs.Args()
	}

	return m.SpecPaths(dir)
}

// loadSpecs parses, validates and lints every given spec file. Linting
// is skipped while validation errors stand.
func loadSpecs(m *manifest.Manifest, paths []string, out string) ([]*spec.File, diagnostic.Diagnostics) {
	var (
		diags diagnostic.Diagnostics
		files []*spec.File
	)

	for _, path := range paths {
		file, fileDiags := spec.ParseFile(path)
		diags.Merge(fileDiags)

		if file == nil || fileDiags.HasErrors() {
			continue
		}

		diags.Merge(spec.Validate(file))
		files = append(files, file)
	}

	if diags.HasErrors() {
		return files, diags
	}

	res, err := buildResolver(m, out, files)
	if err != nil {
		diags.AddError("resolve", err.Error(), "", "")
		return files, diags
	}

	for _, file := range files {
		_, lintDiags := analyze.CheckFile(file, res)
		diags.Merge(lintDiags)
	}

	return files, diags
}

// buildResolver loads the imported packages named across the spec files,
// skipping the ones inside the output's own module: they may not build
// until generation has run.
func buildResolver(m *manifest.Manifest, out string, files []*spec.File) (*analyze.Resolver, error) {
	if !m.Resolve {
		return nil, nil
	}

	seen := map[string]bool{}

	var paths []string

	for _, file := range files {
		for _, im := range file.Imports {
			if seen[im.Path] {
				continue
			}

			seen[im.Path] = true
			paths = append(paths, im.Path)
		}
	}

	foreign, local := analyze.SplitForeign(out, paths)
	if len(local) > 0 {
		logger.Debug("not loading module-local imports", zap.Strings("paths", local))
	}

	res := analyze.NewResolver()
	if err := res.Load(foreign...); err != nil {
		return nil, err
	}

	return res, nil
}
