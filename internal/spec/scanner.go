package spec

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Restioson/blair-mountain/internal/diagnostic"
)

var errUnterminatedType = errors.New("type expression runs past the end of the declaration")

// scanner walks the raw bytes of a spec file, tracking line and column.
// The parser drives it in two modes: next for structural tokens, and
// captureType for the embedded Go type expressions that follow a colon.
type scanner struct {
	file string
	src  []byte
	off  int
	line int
	col  int
}

func newScanner(file string, src []byte) *scanner {
	return &scanner{file: file, src: src, line: 1, col: 1}
}

func (s *scanner) pos() diagnostic.Pos {
	return diagnostic.Pos{File: s.file, Line: s.line, Col: s.col}
}

func (s *scanner) eof() bool {
	return s.off >= len(s.src)
}

// peek returns the current rune without consuming it.
func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(s.src[s.off:])
	return r
}

// byteAt returns the raw byte n positions ahead of the cursor, or 0 past
// the end.
func (s *scanner) byteAt(n int) byte {
	if s.off+n >= len(s.src) {
		return 0
	}

	return s.src[s.off+n]
}

// step consumes one rune, keeping the line and column counters current.
func (s *scanner) step() rune {
	r, size := utf8.DecodeRune(s.src[s.off:])
	s.off += size

	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	return r
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.src[s.off] {
		case ' ', '\t', '\r', '\n':
			s.step()
		default:
			return
		}
	}
}

// next returns the next structural token. Line comments come through as
// KindComment so the parser can attach them as doc lines; block comments
// are skipped like whitespace.
func (s *scanner) next() token {
	for {
		s.skipSpace()
		if s.eof() {
			return token{kind: KindEOF, pos: s.pos()}
		}

		start := s.pos()
		r := s.peek()

		switch {
		case r == '/' && s.byteAt(1) == '/':
			return token{kind: KindComment, text: s.scanLineComment(), pos: start}
		case r == '/' && s.byteAt(1) == '*':
			s.skipBlockComment()
			continue
		case r == '"':
			return s.scanString(start)
		case isIdentStart(r):
			return token{kind: KindIdent, text: s.scanIdent(), pos: start}
		}

		s.step()
		switch r {
		case '{':
			return token{kind: KindLBrace, text: "{", pos: start}
		case '}':
			return token{kind: KindRBrace, text: "}", pos: start}
		case '[':
			return token{kind: KindLBracket, text: "[", pos: start}
		case ']':
			return token{kind: KindRBracket, text: "]", pos: start}
		case ',':
			return token{kind: KindComma, text: ",", pos: start}
		case ':':
			return token{kind: KindColon, text: ":", pos: start}
		case '+':
			return token{kind: KindPlus, text: "+", pos: start}
		}

		return token{kind: KindIllegal, text: string(r), pos: start}
	}
}

func (s *scanner) scanLineComment() string {
	s.step()
	s.step()

	var b strings.Builder
	for !s.eof() && s.peek() != '\n' {
		b.WriteRune(s.step())
	}

	return strings.TrimPrefix(b.String(), " ")
}

func (s *scanner) skipBlockComment() {
	s.step()
	s.step()

	for !s.eof() {
		if s.peek() == '*' && s.byteAt(1) == '/' {
			s.step()
			s.step()
			return
		}

		s.step()
	}
}

func (s *scanner) scanString(start diagnostic.Pos) token {
	s.step()

	var b strings.Builder
	for !s.eof() {
		r := s.step()
		switch r {
		case '"':
			return token{kind: KindString, text: b.String(), pos: start}
		case '\\':
			if !s.eof() {
				b.WriteRune(s.step())
			}
		case '\n':
			return token{kind: KindIllegal, text: "unterminated string", pos: start}
		default:
			b.WriteRune(r)
		}
	}

	return token{kind: KindIllegal, text: "unterminated string", pos: start}
}

func (s *scanner) scanIdent() string {
	var b strings.Builder
	for !s.eof() && isIdentPart(s.peek()) {
		b.WriteRune(s.step())
	}

	return b.String()
}

// captureType consumes raw source until one of stops appears outside any
// bracket nesting, returning the trimmed text. The stop byte itself is
// not consumed, so the parser sees it as its next token. Comments inside
// the captured span are dropped. A brace that closes the enclosing
// declaration, or end of file, aborts the capture with the text read so
// far and errUnterminatedType.
func (s *scanner) captureType(stops ...byte) (string, byte, error) {
	var (
		b     strings.Builder
		depth int
	)

	isStop := func(c byte) bool {
		for _, st := range stops {
			if c == st {
				return true
			}
		}

		return false
	}

	for {
		if s.eof() {
			return strings.TrimSpace(b.String()), 0, errUnterminatedType
		}

		r := s.peek()

		if r == '/' && s.byteAt(1) == '/' {
			s.scanLineComment()
			b.WriteByte(' ')
			continue
		}

		if r == '/' && s.byteAt(1) == '*' {
			s.skipBlockComment()
			b.WriteByte(' ')
			continue
		}

		if r < utf8.RuneSelf {
			c := byte(r)

			if depth == 0 && isStop(c) && !opensLiteralBody(c, b.String()) {
				return strings.TrimSpace(b.String()), c, nil
			}

			switch c {
			case '(', '[':
				depth++
			case '{':
				// A brace only belongs to the type when it opens a
				// struct or interface body (or sits inside an already
				// open bracket, as in a composite-literal array length).
				if depth > 0 || opensLiteralBody(c, b.String()) {
					depth++
				} else {
					return strings.TrimSpace(b.String()), c, errUnterminatedType
				}
			case ')', ']', '}':
				if depth == 0 {
					return strings.TrimSpace(b.String()), c, errUnterminatedType
				}

				depth--
			case '"', '`':
				s.step()
				b.WriteByte(c)
				s.captureQuoted(&b, c)
				continue
			}
		}

		b.WriteRune(s.step())
	}
}

// captureQuoted copies a string literal (struct tag, array-length
// constant) through to b so its contents cannot confuse depth tracking.
func (s *scanner) captureQuoted(b *strings.Builder, quote byte) {
	for !s.eof() {
		r := s.step()
		b.WriteRune(r)

		if r < utf8.RuneSelf && byte(r) == quote {
			return
		}

		if quote == '"' && r == '\\' && !s.eof() {
			b.WriteRune(s.step())
		}
	}
}

// opensLiteralBody reports whether a brace at this point begins a struct
// or interface body rather than ending the surrounding declaration.
func opensLiteralBody(c byte, before string) bool {
	if c != '{' {
		return false
	}

	trimmed := strings.TrimRight(before, " \t\n")
	return endsWithWord(trimmed, "struct") || endsWithWord(trimmed, "interface")
}

func endsWithWord(s, word string) bool {
	if !strings.HasSuffix(s, word) {
		return false
	}

	rest := s[:len(s)-len(word)]
	if rest == "" {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(rest)
	return !isIdentPart(r)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
