package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseValid(t *testing.T, src string) *File {
	t.Helper()

	file, diags := Parse("t.union", []byte(src))
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.Error())
	return file
}

func TestValidateOK(t *testing.T) {
	file := parseValid(t, `
package message

pub union Envelope {
	pub note: string,
	pub count: uint32,
}
`)

	diags := Validate(file)
	assert.False(t, diags.HasErrors(), "unexpected errors: %v", diags.Error())
	assert.Empty(t, diags.Warnings)
}

func TestValidateNoMembers(t *testing.T) {
	file := parseValid(t, `
package p

union empty {
}
`)

	diags := Validate(file)
	require.True(t, diags.HasErrors())
	assert.Equal(t, "no_members", diags.Errors[0].Code)
	assert.Equal(t, "empty", diags.Errors[0].Union)
}

func TestValidateVisibilityMismatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"pub with lowercase name", "package p\npub union envelope { one: int, }"},
		{"non-pub with exported name", "package p\nunion Envelope { one: int, }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Validate(parseValid(t, tt.src))
			require.True(t, diags.HasErrors())
			assert.Equal(t, "visibility_mismatch", diags.Errors[0].Code)
		})
	}
}

func TestValidateDuplicateMember(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u {
	one: string,
	one: int,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "duplicate_member", diags.Errors[0].Code)
}

func TestValidateMemberCaseCollision(t *testing.T) {
	// "two" and "Two" land in the same storage field once lowered.
	diags := Validate(parseValid(t, `
package p

union u {
	two: string,
	Two: int,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "duplicate_member", diags.Errors[0].Code)
	assert.Contains(t, diags.Errors[0].Message, `"two"`)
}

func TestValidateSynthesizedNameCollision(t *testing.T) {
	// Union "Envelope" generates the type envelopeInner; a second union
	// by that name must be rejected before both claim it.
	diags := Validate(parseValid(t, `
package p

pub union Envelope {
	pub one: string,
}

union envelopeInner {
	one: string,
}
`))

	require.True(t, diags.HasErrors())

	found := false
	for _, e := range diags.Errors {
		if e.Code == "name_collision" {
			found = true
			assert.Contains(t, e.Message, "envelopeInner")
		}
	}

	assert.True(t, found, "expected a name_collision error, got: %v", diags.Error())
}

func TestValidateReservedMember(t *testing.T) {
	// The checked storage struct already carries a tag field.
	diags := Validate(parseValid(t, `
package p

union u {
	tag: uint8,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "reserved_member", diags.Errors[0].Code)
	assert.Equal(t, "tag", diags.Errors[0].Member)
}

func TestValidateLowercaseTypeParam(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u[value any] {
	one: value,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "bad_type_params", diags.Errors[0].Code)
	assert.Contains(t, diags.Errors[0].Message, "uppercase")
}

func TestTypeRoots(t *testing.T) {
	assert.Equal(t, []string{"wire"}, TypeRoots("map[string]*wire.Header"))
	assert.Empty(t, TypeRoots("[]byte"))
	assert.Empty(t, TypeRoots("not a type"))
}

func TestValidateBadType(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u {
	one: not a type,
	two: int,
}
`))

	require.True(t, diags.HasErrors())

	codes := make([]string, 0, len(diags.Errors))
	for _, e := range diags.Errors {
		codes = append(codes, e.Code)
	}

	assert.Contains(t, codes, "bad_type")
}

func TestValidateUnknownPackage(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u {
	one: wire.Header,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "unknown_package", diags.Errors[0].Code)
	assert.Contains(t, diags.Errors[0].Message, `"wire"`)
}

func TestValidateUnusedImport(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

import "bytes"
import "time"

union u {
	at: time.Time,
}
`))

	assert.False(t, diags.HasErrors())
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "unused_import", diags.Warnings[0].Code)
	assert.Contains(t, diags.Warnings[0].Message, `"bytes"`)
}

func TestValidateDuplicateImportName(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

import "encoding/json"
import json "github.com/acme/json"

union u {
	one: json.RawMessage,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "duplicate_import", diags.Errors[0].Code)
}

func TestValidateWhereUnknownParam(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u[T any] where V: comparable {
	one: T,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "unknown_where_param", diags.Errors[0].Code)
	assert.Contains(t, diags.Errors[0].Message, `"V"`)
}

func TestValidateDuplicateTypeParam(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u[T any, T comparable] {
	one: T,
}
`))

	require.True(t, diags.HasErrors())
	assert.Equal(t, "bad_type_params", diags.Errors[0].Code)
}

func TestValidateBadBoundSuggestsInterface(t *testing.T) {
	diags := Validate(parseValid(t, `
package p

union u[T ~int] {
	one: T,
}
`))

	require.True(t, diags.HasErrors())
	require.Equal(t, "bad_bound", diags.Errors[0].Code)
	require.NotEmpty(t, diags.Errors[0].Suggestions)
	assert.Contains(t, diags.Errors[0].Suggestions[0], "interface{ ~int }")
}

func TestValidatePackageName(t *testing.T) {
	file := parseValid(t, `
package p

union u {
	one: int,
}
`)
	file.Package = "for"

	diags := Validate(file)
	require.True(t, diags.HasErrors())
	assert.Equal(t, "bad_package", diags.Errors[0].Code)
}
