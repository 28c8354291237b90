package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Restioson/blair-mountain/internal/spec"
)

func parseSpec(t *testing.T, src string) *spec.File {
	t.Helper()

	file, diags := spec.Parse("t.union", []byte(src))
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.Error())

	diags = spec.Validate(file)
	require.False(t, diags.HasErrors(), "validate errors: %v", diags.Error())

	return file
}

func generate(t *testing.T, config Config, srcs ...string) []GeneratedFile {
	t.Helper()

	files := make([]*spec.File, 0, len(srcs))
	for _, src := range srcs {
		files = append(files, parseSpec(t, src))
	}

	generated, err := NewGenerator(config).Generate(files)
	require.NoError(t, err)

	return generated
}

func findFile(t *testing.T, files []GeneratedFile, name string) string {
	t.Helper()

	for _, f := range files {
		if f.Filename == name {
			return string(f.Content)
		}
	}

	require.Failf(t, "file not generated", "no %s among %d generated files", name, len(files))

	return ""
}

const envelopeSrc = `
package message

// A message payload.
pub union Envelope {
	// The human readable note.
	pub note: string,
	pub count: uint32,
}
`

func TestGenerateEnvelopeShared(t *testing.T) {
	files := generate(t, DefaultConfig(), envelopeSrc)
	require.Len(t, files, 3)

	content := findFile(t, files, "envelope_union.go")

	assert.Contains(t, content, "// Code generated by blair-mountain. DO NOT EDIT.")
	assert.Contains(t, content, "package message")
	assert.Contains(t, content, "// Envelope holds exactly one of its members: note, count.")
	assert.Contains(t, content, "// A message payload.")
	assert.Contains(t, content, "type Envelope struct {")
	assert.Contains(t, content, "inner envelopeInner")

	// The wrapper compiles under both profiles.
	assert.NotContains(t, content, "//go:build")
}

func TestGenerateEnvelopeChecked(t *testing.T) {
	files := generate(t, DefaultConfig(), envelopeSrc)
	content := findFile(t, files, "envelope_union_checked.go")

	assert.Contains(t, content, "//go:build !unionraw")
	assert.Contains(t, content, "type envelopeTag uint8")
	assert.Contains(t, content, "envelopeTagNote envelopeTag = iota")
	assert.Contains(t, content, "envelopeTagCount")
	assert.Contains(t, content, `return "note"`)

	assert.Contains(t, content, "func NewEnvelopeNote(value string) Envelope {")
	assert.Contains(t, content, "func (u *Envelope) GetNote() string {")
	assert.Contains(t, content, "func (u *Envelope) GetNoteMut() *string {")
	assert.Contains(t, content, "func (u *Envelope) SetNote(value string) {")
	assert.Contains(t, content, "func (u Envelope) IntoNote() string {")
	assert.Contains(t, content, "func NewEnvelopeCount(value uint32) Envelope {")

	assert.Contains(t, content, "u.inner.mustHold(envelopeTagNote)")
	assert.Contains(t, content, `panic("unexpected union member: Envelope holds "`)

	// The member doc comment rides on the constructor.
	assert.Contains(t, content, "// The human readable note.")
}

func TestGenerateEnvelopeRaw(t *testing.T) {
	files := generate(t, DefaultConfig(), envelopeSrc)
	content := findFile(t, files, "envelope_union_raw.go")

	assert.Contains(t, content, "//go:build unionraw")
	assert.Contains(t, content, `"unsafe"`)

	assert.Contains(t, content, "type envelopeLayout struct {")
	assert.Contains(t, content, "const envelopeSize = max(")
	assert.Contains(t, content, "unsafe.Sizeof(envelopeLayout{}.note)")
	assert.Contains(t, content, "unsafe.Sizeof(envelopeLayout{}.count)")
	assert.Contains(t, content, "[0]envelopeLayout")
	assert.Contains(t, content, "data [envelopeSize]byte")

	assert.Contains(t, content, "*(*string)(unsafe.Pointer(&u.inner.data)) = value")
	assert.Contains(t, content, "return *(*uint32)(unsafe.Pointer(&u.inner.data))")
	assert.Contains(t, content, "func (u *Envelope) GetNoteMut() *string {")
	assert.Contains(t, content, "return (*string)(unsafe.Pointer(&u.inner.data))")

	// No tag exists in this profile.
	assert.NotContains(t, content, "envelopeTag ")
	assert.NotContains(t, content, "panic(")
}

func TestGenerateUnexportedNames(t *testing.T) {
	files := generate(t, DefaultConfig(), `
package p

union scratch {
	buf: []byte,
}
`)

	assert.Contains(t, findFile(t, files, "scratch_union.go"), "type scratch struct", "wrapper stays unexported")

	content := findFile(t, files, "scratch_union_checked.go")

	assert.Contains(t, content, "func newScratchBuf(value []byte) scratch {")
	assert.Contains(t, content, "func (u *scratch) getBuf() []byte {")
	assert.Contains(t, content, "func (u *scratch) getBufMut() *[]byte {")
	assert.Contains(t, content, "func (u *scratch) setBuf(value []byte) {")
	assert.Contains(t, content, "func (u scratch) intoBuf() []byte {")
}

func TestGenerateMultiWordMember(t *testing.T) {
	files := generate(t, DefaultConfig(), `
package p

pub union Packet {
	pub payload_len: uint16,
	pub body: []byte,
}
`)

	content := findFile(t, files, "packet_union_checked.go")

	assert.Contains(t, content, "func NewPacketPayloadLen(value uint16) Packet {")
	assert.Contains(t, content, "func (u *Packet) GetPayloadLenMut() *uint16 {")
	assert.Contains(t, content, "packetTagPayloadLen")
	assert.Contains(t, content, `return "payload_len"`, "tag String reports the declared spelling")
}

func TestGenerateGeneric(t *testing.T) {
	files := generate(t, DefaultConfig(), `
package p

import "fmt"

pub union Slot[T fmt.Stringer] {
	pub value: T,
	pub count: uint64,
}
`)

	require.Len(t, files, 3)

	shared := findFile(t, files, "slot_union.go")
	assert.Contains(t, shared, `"fmt"`)
	assert.Contains(t, shared, "type Slot[T fmt.Stringer] struct {")
	assert.Contains(t, shared, "inner slotInner[T]")

	checked := findFile(t, files, "slot_union_checked.go")
	assert.Contains(t, checked, "type slotTag uint8")
	assert.Contains(t, checked, "type slotInner[T fmt.Stringer] struct {")
	assert.Contains(t, checked, "func (n *slotInner[T]) mustHold(want slotTag) {")
	assert.Contains(t, checked, "func NewSlotValue[T fmt.Stringer](value T) Slot[T] {")
	assert.Contains(t, checked, "func (u *Slot[T]) GetValue() T {")
	assert.Contains(t, checked, "func (u Slot[T]) IntoCount() uint64 {")

	// Generic storage cannot overlap: flat fields, no unsafe, no sizing.
	raw := findFile(t, files, "slot_union_raw.go")
	assert.Contains(t, raw, "//go:build unionraw")
	assert.Contains(t, raw, "type slotInner[T fmt.Stringer] struct {")
	assert.Contains(t, raw, "func (u *Slot[T]) SetValue(value T) {")
	assert.Contains(t, raw, "u.inner.value = value")
	assert.NotContains(t, raw, "unsafe")
	assert.NotContains(t, raw, "slotLayout")
	assert.NotContains(t, raw, "slotSize")
}

func TestGenerateWhereBounds(t *testing.T) {
	files := generate(t, DefaultConfig(), `
package p

pub union Pair[K comparable] where K: fmt.Stringer {
	pub key: K,
}

import "fmt"
`)

	shared := findFile(t, files, "pair_union.go")
	assert.Contains(t, shared, "type Pair[K interface{ comparable; fmt.Stringer }] struct {")
}

func TestGenerateAliasedImport(t *testing.T) {
	files := generate(t, DefaultConfig(), `
package p

import w "example.com/proto/wire"

pub union Frame {
	pub header: w.Header,
	pub raw: []byte,
}
`)

	checked := findFile(t, files, "frame_union_checked.go")
	assert.Contains(t, checked, `w "example.com/proto/wire"`)
	assert.Contains(t, checked, "func NewFrameHeader(value w.Header) Frame {")

	// The wrapper never names member types, so it imports nothing.
	shared := findFile(t, files, "frame_union.go")
	assert.NotContains(t, shared, "import")
}

func TestGenerateCustomTag(t *testing.T) {
	config := DefaultConfig()
	config.Tag = "fastunion"

	files := generate(t, config, envelopeSrc)

	assert.Contains(t, findFile(t, files, "envelope_union_checked.go"), "//go:build !fastunion")
	assert.Contains(t, findFile(t, files, "envelope_union_raw.go"), "//go:build fastunion")
}

func TestGenerateCommentsOff(t *testing.T) {
	config := DefaultConfig()
	config.Comments = false

	files := generate(t, config, envelopeSrc)
	content := findFile(t, files, "envelope_union_checked.go")

	assert.Contains(t, content, "// Code generated by blair-mountain. DO NOT EDIT.")
	assert.NotContains(t, content, "// NewEnvelopeNote")
	assert.NotContains(t, content, "// A message payload.")
}

func TestGeneratePackageOverride(t *testing.T) {
	config := DefaultConfig()
	config.PackageName = "unions"

	files := generate(t, config, envelopeSrc)

	for _, f := range files {
		assert.Contains(t, string(f.Content), "package unions")
	}
}

func TestGeneratePackageMismatch(t *testing.T) {
	a := parseSpec(t, "package alpha\n\nunion u {\n\tone: int,\n}\n")
	b := parseSpec(t, "package beta\n\nunion v {\n\tone: int,\n}\n")

	_, err := NewGenerator(DefaultConfig()).Generate([]*spec.File{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disagree on the package name")
}

func TestGenerateFilenameCollision(t *testing.T) {
	a := parseSpec(t, "package p\n\nunion clash {\n\tone: int,\n}\n")
	b := parseSpec(t, "package p\n\nunion clash {\n\ttwo: int,\n}\n")

	_, err := NewGenerator(DefaultConfig()).Generate([]*spec.File{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clash_union.go")
}

func TestGenerateNoFiles(t *testing.T) {
	_, err := NewGenerator(DefaultConfig()).Generate(nil)
	require.Error(t, err)
}

func TestGenerateHeaderlessFile(t *testing.T) {
	headerless := parseSpec(t, "union u {\n\tone: int,\n}\n")
	named := parseSpec(t, "package p\n\nunion v {\n\tone: int,\n}\n")

	files, err := NewGenerator(DefaultConfig()).Generate([]*spec.File{headerless, named})
	require.NoError(t, err)

	for _, f := range files {
		assert.Contains(t, string(f.Content), "package p")
	}

	_, err = NewGenerator(DefaultConfig()).Generate([]*spec.File{headerless})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no package name")
}

func TestGenerateDeterministic(t *testing.T) {
	first := generate(t, DefaultConfig(), envelopeSrc)
	second := generate(t, DefaultConfig(), envelopeSrc)

	require.Len(t, second, len(first))

	for i := range first {
		assert.Equal(t, first[i].Filename, second[i].Filename)
		assert.Equal(t, string(first[i].Content), string(second[i].Content))
	}
}
