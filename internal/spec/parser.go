package spec

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/Restioson/blair-mountain/internal/diagnostic"
)

// maxParseErrors caps syntax diagnostics per file before the parser
// stops reporting.
const maxParseErrors = 20

type parser struct {
	scan  *scanner
	diags *diagnostic.Diagnostics
	file  *File

	tok    token
	peeked bool
	// lastLine is the line of the last non-comment token consumed. A
	// comment starting on that line trails a declaration and is not a doc.
	lastLine int
}

// ParseFile reads and parses one union spec file.
func ParseFile(path string) (*File, diagnostic.Diagnostics) {
	src, err := os.ReadFile(path)
	if err != nil {
		var diags diagnostic.Diagnostics
		diags.AddError("read_spec", fmt.Sprintf("cannot read spec file: %v", err), "", "")
		return nil, diags
	}

	return Parse(path, src)
}

// Parse parses spec source into a File. The diagnostics carry every
// syntax problem found; when they contain errors the File holds only the
// declarations recovered around them.
func Parse(path string, src []byte) (*File, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	p := &parser{
		scan:  newScanner(path, bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))),
		diags: &diags,
		file:  &File{Path: path},
	}

	p.parse()
	return p.file, diags
}

func (p *parser) next() token {
	tok := p.tok
	if p.peeked {
		p.peeked = false
	} else {
		tok = p.scan.next()
	}

	if tok.kind != KindComment {
		p.lastLine = tok.pos.Line
	}

	return tok
}

// unread pushes tok back so the next call to next returns it again.
func (p *parser) unread(tok token) {
	p.tok = tok
	p.peeked = true
}

// capture pulls a raw type expression from the scanner. It must only be
// called straight after next, with no token buffered.
func (p *parser) capture(stops ...byte) (string, byte, error) {
	return p.scan.captureType(stops...)
}

func (p *parser) errorf(pos diagnostic.Pos, code, format string, args ...any) {
	if len(p.diags.Errors) >= maxParseErrors {
		return
	}

	p.diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

func describe(tok token) string {
	switch tok.kind {
	case KindEOF:
		return "end of file"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("%q", tok.text)
	}
}

// docBuf accumulates consecutive comment lines. A blank line between
// comments, or between the last comment and a declaration, detaches them.
type docBuf struct {
	lines   []string
	endLine int
}

func (d *docBuf) add(tok token) {
	if d.endLine != 0 && tok.pos.Line > d.endLine+1 {
		d.lines = nil
	}

	d.lines = append(d.lines, tok.text)
	d.endLine = tok.pos.Line
}

func (d *docBuf) take(declLine int) []string {
	lines := d.lines
	if d.endLine == 0 || declLine > d.endLine+1 {
		lines = nil
	}

	d.lines = nil
	d.endLine = 0
	return lines
}

func (p *parser) parse() {
	var docs docBuf

	for {
		tok := p.next()
		if tok.kind == KindComment {
			docs.add(tok)
			continue
		}

		// The package header is optional: a headerless file leans on
		// the manifest or -pkg for its package name.
		if tok.kind == KindIdent && tok.text == "package" {
			name := p.next()
			if name.kind != KindIdent {
				p.errorf(name.pos, "bad_package", "expected package name, found %s", describe(name))
				return
			}

			p.file.Package = name.text
			p.file.Doc = docs.take(tok.pos.Line)
		} else {
			p.unread(tok)
		}

		break
	}

	for {
		tok := p.next()

		switch {
		case tok.kind == KindEOF:
			return
		case tok.kind == KindComment:
			if tok.pos.Line > p.lastLine {
				docs.add(tok)
			}
		case tok.kind == KindIdent && tok.text == "import":
			docs.take(tok.pos.Line)
			p.parseImport(tok)
		case tok.kind == KindIdent && (tok.text == "pub" || tok.text == "union"):
			p.parseUnion(tok, docs.take(tok.pos.Line))
		default:
			p.errorf(tok.pos, "unexpected_token", "expected import or union declaration, found %s", describe(tok))
			if len(p.diags.Errors) >= maxParseErrors {
				return
			}
		}
	}
}

func (p *parser) parseImport(kw token) {
	alias := ""

	tok := p.next()
	if tok.kind == KindIdent {
		alias = tok.text
		tok = p.next()
	}

	if tok.kind != KindString {
		p.errorf(tok.pos, "bad_import", "expected import path string, found %s", describe(tok))
		return
	}

	p.file.Imports = append(p.file.Imports, Import{Alias: alias, Path: tok.text, Pos: kw.pos})
}

func (p *parser) parseUnion(first token, docs []string) {
	u := Union{Doc: docs, Pos: first.pos}

	tok := first
	if tok.text == "pub" {
		u.Pub = true

		tok = p.next()
		if tok.kind != KindIdent || tok.text != "union" {
			p.errorf(tok.pos, "bad_union", "expected %q after %q, found %s", "union", "pub", describe(tok))
			p.recoverDecl()
			return
		}
	}

	name := p.next()
	if name.kind != KindIdent {
		p.errorf(name.pos, "bad_union", "expected union name, found %s", describe(name))
		p.recoverDecl()
		return
	}

	u.Name = name.text
	u.Pos = name.pos

	tok = p.next()
	if tok.kind == KindLBracket {
		if !p.parseTypeParams(&u) {
			return
		}

		tok = p.next()
	}

	if tok.kind == KindIdent && tok.text == "where" {
		var ok bool
		tok, ok = p.parseWheres(&u)
		if !ok {
			return
		}
	}

	if tok.kind != KindLBrace {
		p.errorf(tok.pos, "bad_union", "expected %q to open the body of union %q, found %s", "{", u.Name, describe(tok))
		p.recoverDecl()
		return
	}

	if !p.parseMembers(&u) {
		return
	}

	p.file.Unions = append(p.file.Unions, u)
}

// parseTypeParams consumes `Name bounds, Name bounds]` with the opening
// bracket already read. Bounds are optional and plus-separated.
func (p *parser) parseTypeParams(u *Union) bool {
	for {
		name := p.next()
		if name.kind == KindRBracket {
			if len(u.TypeParams) == 0 {
				p.errorf(name.pos, "bad_type_params", "union %q has an empty type parameter list", u.Name)
			}

			return true
		}

		if name.kind != KindIdent {
			p.errorf(name.pos, "bad_type_params", "expected type parameter name, found %s", describe(name))
			p.recoverDecl()
			return false
		}

		tp := TypeParam{Name: name.text, Pos: name.pos}

		raw, stop, err := p.capture(',', ']')
		if err != nil {
			p.errorf(name.pos, "bad_type_params", "type parameter list of union %q is never closed", u.Name)
			p.recoverDecl()
			return false
		}

		tp.Bounds = splitBounds(raw)
		u.TypeParams = append(u.TypeParams, tp)

		tok := p.next()
		switch {
		case stop == ',' && tok.kind == KindComma:
		case stop == ']' && tok.kind == KindRBracket:
			return true
		default:
			p.errorf(tok.pos, "bad_type_params", "expected %q or %q in type parameter list, found %s", ",", "]", describe(tok))
			p.recoverDecl()
			return false
		}
	}
}

// parseWheres consumes `Param: bounds, Param: bounds {` with the where
// keyword already read, and returns the body-opening brace token.
func (p *parser) parseWheres(u *Union) (token, bool) {
	for {
		name := p.next()
		if name.kind != KindIdent {
			p.errorf(name.pos, "bad_where", "expected type parameter name in where clause, found %s", describe(name))
			p.recoverDecl()
			return token{}, false
		}

		colon := p.next()
		if colon.kind != KindColon {
			p.errorf(colon.pos, "bad_where", "expected %q after %q in where clause, found %s", ":", name.text, describe(colon))
			p.recoverDecl()
			return token{}, false
		}

		raw, stop, err := p.capture(',', '{')
		if err != nil {
			p.errorf(colon.pos, "bad_where", "where clause for %q is never closed", name.text)
			p.recoverDecl()
			return token{}, false
		}

		u.Wheres = append(u.Wheres, Where{Param: name.text, Bounds: splitBounds(raw), Pos: name.pos})

		tok := p.next()
		switch {
		case stop == ',' && tok.kind == KindComma:
		case stop == '{' && tok.kind == KindLBrace:
			return tok, true
		default:
			p.errorf(tok.pos, "bad_where", "expected %q or %q after where clause, found %s", ",", "{", describe(tok))
			p.recoverDecl()
			return token{}, false
		}
	}
}

// parseMembers consumes the union body with the opening brace already
// read. Every member requires a trailing comma, including the last.
func (p *parser) parseMembers(u *Union) bool {
	var docs docBuf

	for {
		tok := p.next()

		switch tok.kind {
		case KindEOF:
			p.errorf(tok.pos, "bad_union", "body of union %q is never closed", u.Name)
			return false
		case KindRBrace:
			return true
		case KindComment:
			if tok.pos.Line > p.lastLine {
				docs.add(tok)
			}
			continue
		case KindIdent:
		default:
			p.errorf(tok.pos, "bad_member", "expected member declaration or %q, found %s", "}", describe(tok))
			p.recoverDecl()
			return true
		}

		first := tok
		m := Member{}

		if tok.text == "pub" {
			m.Pub = true

			tok = p.next()
			if tok.kind != KindIdent {
				p.errorf(tok.pos, "bad_member", "expected member name after %q, found %s", "pub", describe(tok))
				p.recoverDecl()
				return true
			}
		}

		m.Name = tok.text
		m.Pos = tok.pos
		m.Doc = docs.take(first.pos.Line)

		colon := p.next()
		if colon.kind != KindColon {
			p.errorf(colon.pos, "bad_member", "expected %q after member name %q, found %s", ":", m.Name, describe(colon))
			p.recoverDecl()
			return true
		}

		raw, stop, err := p.capture(',')
		if err != nil {
			switch {
			case raw == "":
				p.errorf(colon.pos, "bad_member", "member %q of union %q has no type", m.Name, u.Name)
			default:
				p.errorf(colon.pos, "missing_trailing_comma", "member %q of union %q is missing its trailing comma", m.Name, u.Name)
			}

			m.Type = raw
			if stop == '}' {
				p.next()
				if m.Name != "" && m.Type != "" {
					u.Members = append(u.Members, m)
				}

				return true
			}

			return false
		}

		if raw == "" {
			p.errorf(colon.pos, "bad_member", "member %q of union %q has no type", m.Name, u.Name)
		} else {
			m.Type = raw
			u.Members = append(u.Members, m)
		}

		comma := p.next()
		if comma.kind != KindComma {
			p.errorf(comma.pos, "bad_member", "expected %q after member %q, found %s", ",", m.Name, describe(comma))
			p.recoverDecl()
			return true
		}
	}
}

// recoverDecl discards tokens through the end of the current declaration
// so one malformed union does not cascade into the next.
func (p *parser) recoverDecl() {
	depth := 0

	for {
		tok := p.next()
		switch tok.kind {
		case KindEOF:
			return
		case KindLBrace:
			depth++
		case KindRBrace:
			depth--
			if depth <= 0 {
				return
			}
		case KindIdent:
			if depth == 0 && (tok.text == "union" || tok.text == "pub" || tok.text == "import") {
				p.unread(tok)
				return
			}
		}
	}
}

// splitBounds breaks "fmt.Stringer + comparable" on plus signs outside
// bracket nesting.
func splitBounds(raw string) []string {
	if raw == "" {
		return nil
	}

	var (
		parts []string
		depth int
		start int
	)

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '+':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}

	parts = append(parts, strings.TrimSpace(raw[start:]))

	bounds := parts[:0]
	for _, b := range parts {
		if b != "" {
			bounds = append(bounds, b)
		}
	}

	return bounds
}
