// Package manifest loads the unions.yaml file that configures a
// generation run: which spec files to translate, where output goes, and
// which build tag selects the raw profile.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"gopkg.in/yaml.v3"
)

// DefaultTag is the build tag selecting the raw profile when the
// manifest does not override it.
const DefaultTag = "unionraw"

// Manifest configures one generation run.
type Manifest struct {
	Version string `yaml:"version,omitempty"`
	// Specs are the union spec files to translate, relative to the
	// manifest's directory.
	Specs []string `yaml:"specs"`
	// Out is the directory generated files are written to, relative to
	// the manifest's directory.
	Out string `yaml:"out,omitempty"`
	// Package overrides the package name declared in the spec files.
	Package string `yaml:"package,omitempty"`
	// Tag is the build tag that selects the raw profile. The checked
	// profile is built whenever the tag is absent.
	Tag string `yaml:"tag,omitempty"`
	// Strict promotes warnings (the copyability lint included) to errors.
	Strict bool `yaml:"strict,omitempty"`
	// Comments controls the explanatory comments in generated code.
	// Defaults to true.
	Comments *bool `yaml:"comments,omitempty"`
	// Resolve loads imported packages with go/packages so the copy lint
	// can classify named member types.
	Resolve bool `yaml:"resolve,omitempty"`
}

// Default returns the manifest the init command scaffolds.
func Default() *Manifest {
	return &Manifest{
		Version: "1",
		Specs:   []string{"example.union"},
		Out:     ".",
		Tag:     DefaultTag,
	}
}

// LoadFile loads and parses a YAML manifest from the given path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	err := yaml.Unmarshal(data, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	applyDefaults(&m)

	return &m, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(m *Manifest) {
	if m.Version == "" {
		m.Version = "1"
	}

	if m.Out == "" {
		m.Out = "."
	}

	if m.Tag == "" {
		m.Tag = DefaultTag
	}

	if m.Comments == nil {
		enabled := true
		m.Comments = &enabled
	}
}

// Validate reports structural problems a run cannot proceed with.
func (m *Manifest) Validate() error {
	if m.Version != "1" {
		return fmt.Errorf("unsupported manifest version %q", m.Version)
	}

	if len(m.Specs) == 0 {
		return fmt.Errorf("manifest lists no spec files")
	}

	for _, s := range m.Specs {
		if s == "" {
			return fmt.Errorf("manifest lists an empty spec path")
		}
	}

	if !validTag(m.Tag) {
		return fmt.Errorf("build tag %q is not valid", m.Tag)
	}

	return nil
}

// validTag mirrors the characters the go command accepts in a build tag.
func validTag(tag string) bool {
	if tag == "" {
		return false
	}

	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}

	return true
}

// CommentsEnabled reports whether generated code should carry
// explanatory comments.
func (m *Manifest) CommentsEnabled() bool {
	return m.Comments == nil || *m.Comments
}

// SpecPaths returns the spec files resolved against the manifest's
// directory.
func (m *Manifest) SpecPaths(dir string) []string {
	paths := make([]string, len(m.Specs))
	for i, s := range m.Specs {
		paths[i] = joinIfRelative(dir, s)
	}

	return paths
}

// OutDir returns the output directory resolved against the manifest's
// directory.
func (m *Manifest) OutDir(dir string) string {
	return joinIfRelative(dir, m.Out)
}

func joinIfRelative(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// Marshal serializes a Manifest to YAML.
func Marshal(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// WriteFile writes a Manifest to the given path.
func WriteFile(m *Manifest, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	return nil
}
