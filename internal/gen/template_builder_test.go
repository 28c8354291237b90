package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraint(t *testing.T) {
	tests := []struct {
		name   string
		bounds []string
		want   string
	}{
		{"no bounds", nil, "any"},
		{"only any", []string{"any"}, "any"},
		{"single named", []string{"fmt.Stringer"}, "fmt.Stringer"},
		{"any drops next to others", []string{"any", "comparable"}, "comparable"},
		{"multiple embed", []string{"fmt.Stringer", "comparable"}, "interface{ fmt.Stringer; comparable }"},
		{"interface literal passes through", []string{"interface{ ~int | ~string }"}, "interface{ ~int | ~string }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, constraint(tt.bounds))
		})
	}
}

func TestCollectImports(t *testing.T) {
	file := parseSpec(t, `
package p

import "fmt"
import w "example.com/proto/wire"

pub union Frame[T fmt.Stringer] {
	pub header: w.Header,
	pub pretty: T,
}
`)

	u := &file.Unions[0]

	// The wrapper only references bounds.
	shared := collectImports(file, u, false, false)
	require.Len(t, shared, 1)
	assert.Equal(t, "fmt", shared[0].Path)
	assert.Empty(t, shared[0].Alias)

	// Member-bearing files add the aliased wire import, sorted by path.
	checked := collectImports(file, u, true, false)
	require.Len(t, checked, 2)
	assert.Equal(t, "example.com/proto/wire", checked[0].Path)
	assert.Equal(t, "w", checked[0].Alias)
	assert.Equal(t, "fmt", checked[1].Path)

	withUnsafe := collectImports(file, u, true, true)
	require.Len(t, withUnsafe, 3)
	assert.Equal(t, "unsafe", withUnsafe[2].Path)
}

func TestBuildMemberDataNames(t *testing.T) {
	file := parseSpec(t, `
package p

pub union Envelope {
	pub payload_len: uint16,
	raw: []byte,
}
`)

	u := &file.Unions[0]

	pub := buildMemberData(u, &u.Members[0])
	assert.Equal(t, "payloadLen", pub.Field)
	assert.Equal(t, "envelopeTagPayloadLen", pub.TagConst)
	assert.Equal(t, "NewEnvelopePayloadLen", pub.Ctor)
	assert.Equal(t, "GetPayloadLen", pub.Get)
	assert.Equal(t, "GetPayloadLenMut", pub.GetMut)
	assert.Equal(t, "SetPayloadLen", pub.Set)
	assert.Equal(t, "IntoPayloadLen", pub.Into)

	unexported := buildMemberData(u, &u.Members[1])
	assert.Equal(t, "newEnvelopeRaw", unexported.Ctor)
	assert.Equal(t, "getRawMut", unexported.GetMut)
}
