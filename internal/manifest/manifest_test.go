package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1"
specs:
  - message.union
  - extra/slot.union
out: ./generated
package: message
tag: rawstorage
strict: true
comments: false
resolve: true
`

	m, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "1", m.Version)
	assert.Equal(t, []string{"message.union", "extra/slot.union"}, m.Specs)
	assert.Equal(t, "./generated", m.Out)
	assert.Equal(t, "message", m.Package)
	assert.Equal(t, "rawstorage", m.Tag)
	assert.True(t, m.Strict)
	assert.True(t, m.Resolve)
	assert.False(t, m.CommentsEnabled())
}

func TestParseDefaults(t *testing.T) {
	yaml := `
specs:
  - message.union
`

	m, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "1", m.Version)
	assert.Equal(t, ".", m.Out)
	assert.Equal(t, DefaultTag, m.Tag)
	assert.False(t, m.Strict)
	assert.False(t, m.Resolve)
	assert.True(t, m.CommentsEnabled())
	require.NoError(t, m.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr string
	}{
		{"no specs", func(m *Manifest) { m.Specs = nil }, "no spec files"},
		{"empty spec path", func(m *Manifest) { m.Specs = []string{""} }, "empty spec path"},
		{"bad version", func(m *Manifest) { m.Version = "7" }, "unsupported manifest version"},
		{"bad tag", func(m *Manifest) { m.Tag = "union raw" }, "not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default()
			applyDefaults(m)
			tt.mutate(m)

			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSpecPathsAndOutDir(t *testing.T) {
	m := &Manifest{Specs: []string{"a.union", "/abs/b.union"}, Out: "gen"}

	paths := m.SpecPaths(filepath.Join("proj", "unions"))
	assert.Equal(t, filepath.Join("proj", "unions", "a.union"), paths[0])
	assert.Equal(t, "/abs/b.union", paths[1])

	assert.Equal(t, filepath.Join("proj", "unions", "gen"), m.OutDir(filepath.Join("proj", "unions")))
}

func TestMarshalRoundTrip(t *testing.T) {
	m := Default()

	data, err := Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), "example.union")
	assert.Contains(t, string(data), DefaultTag)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, m.Specs, parsed.Specs)
	assert.Equal(t, m.Tag, parsed.Tag)
}
