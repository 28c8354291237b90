package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureTypeStops(t *testing.T) {
	tests := []struct {
		name string
		src  string
		text string
		stop byte
	}{
		{"plain", "uint32, next", "uint32", ','},
		{"nested comma", "map[pair[int, string]]bool, x", "map[pair[int, string]]bool", ','},
		{"func params", "func(a, b int) error, x", "func(a, b int) error", ','},
		{"chan struct", "chan struct{}, x", "chan struct{}", ','},
		{"bracket stop", "comparable]", "comparable", ']'},
		{"brace stop after bound", "fmt.Stringer {", "fmt.Stringer", '{'},
		{"interface body before stop", "interface{ ~int | ~string } {", "interface{ ~int | ~string }", '{'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScanner("t.union", []byte(tt.src))

			text, stop, err := s.captureType(',', ']', '{')
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.stop, stop)
		})
	}
}

func TestCaptureTypeStructTag(t *testing.T) {
	s := newScanner("t.union", []byte("struct {\n\tA int `json:\"a,omitempty\"`\n}, x"))

	text, stop, err := s.captureType(',')
	require.NoError(t, err)
	assert.Equal(t, byte(','), stop)
	assert.Contains(t, text, "`json:\"a,omitempty\"`")
}

func TestCaptureTypeUnterminated(t *testing.T) {
	s := newScanner("t.union", []byte("uint32 }"))

	text, stop, err := s.captureType(',')
	require.Error(t, err)
	assert.Equal(t, "uint32", text)
	assert.Equal(t, byte('}'), stop)
}

func TestScannerTokens(t *testing.T) {
	s := newScanner("t.union", []byte("pub union Envelope { }"))

	var kinds []Kind
	var texts []string
	for {
		tok := s.next()
		if tok.kind == KindEOF {
			break
		}

		kinds = append(kinds, tok.kind)
		texts = append(texts, tok.text)
	}

	assert.Equal(t, []Kind{KindIdent, KindIdent, KindIdent, KindLBrace, KindRBrace}, kinds)
	assert.Equal(t, []string{"pub", "union", "Envelope", "{", "}"}, texts)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Ident", KindIdent.String())
	assert.Equal(t, "LBrace", KindLBrace.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
