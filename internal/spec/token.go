package spec

import (
	"github.com/Restioson/blair-mountain/internal/diagnostic"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=token_string.go

// Kind classifies a scanned token.
type Kind uint8

const (
	KindEOF Kind = iota
	KindComment
	KindIdent
	KindString
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindComma
	KindColon
	KindPlus
	KindIllegal
)

// token is one lexical unit of a spec file. Keywords (package, import,
// pub, union, where) come through as KindIdent and are recognized by the
// parser from their text.
type token struct {
	kind Kind
	// text is the identifier or comment body. For KindComment it is the
	// line with the leading slashes and one space stripped; for KindString
	// it is the unquoted value.
	text string
	pos  diagnostic.Pos
}
