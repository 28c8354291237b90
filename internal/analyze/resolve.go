package analyze

import (
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports |
	packages.NeedDeps

// Resolver loads imported packages so named member types can be
// classified from their go/types structure.
type Resolver struct {
	pkgs map[string]*packages.Package
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{pkgs: make(map[string]*packages.Package)}
}

// Load loads the given import paths into the resolver. Paths loaded
// earlier are kept; load errors on any requested package fail the call.
func (r *Resolver) Load(paths ...string) error {
	var missing []string
	for _, p := range paths {
		if _, ok := r.pkgs[p]; !ok {
			missing = append(missing, p)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	cfg := &packages.Config{Mode: LoadMode}

	pkgs, err := packages.Load(cfg, missing...)
	if err != nil {
		return fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		logger.Debug("loaded package",
			zap.String("path", pkg.PkgPath),
			zap.String("name", pkg.Name))

		r.pkgs[pkg.PkgPath] = pkg
	}

	return nil
}

// Lookup finds a named type in a loaded package.
func (r *Resolver) Lookup(pkgPath, name string) (types.Type, bool) {
	pkg, ok := r.pkgs[pkgPath]
	if !ok || pkg.Types == nil {
		return nil, false
	}

	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return nil, false
	}

	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, false
	}

	return tn.Type(), true
}

// OwnModule reports the module path governing dir, found by walking up
// to the nearest go.mod.
func OwnModule(dir string) (string, error) {
	start := dir

	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil {
			path := modfile.ModulePath(data)
			if path == "" {
				return "", fmt.Errorf("no module path in %s", filepath.Join(dir, "go.mod"))
			}

			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod found above %s", start)
		}

		dir = parent
	}
}

// SplitForeign separates import paths into those outside the module that
// owns outDir and those inside it. Packages inside the module may not
// build before generation runs, so the resolver only loads the foreign
// set.
func SplitForeign(outDir string, paths []string) (foreign, local []string) {
	mod, err := OwnModule(outDir)
	if err != nil {
		return paths, nil
	}

	for _, p := range paths {
		if p == mod || strings.HasPrefix(p, mod+"/") {
			local = append(local, p)
		} else {
			foreign = append(foreign, p)
		}
	}

	return foreign, local
}
