// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package uritemplates implements the subset of the URI Templates language
// described in [RFC 6570] that is needed to build outbound request targets
// from server-authored templates.
//
// Only simple string expansion is supported, written as "{name}". For
// compatibility with path templates used by request routers, an expression
// may also carry a pattern after a colon, as in "{id: [0-9]+}". The pattern
// is only meaningful when matching incoming paths and so it is ignored during
// expansion.
//
// Templates are expanded in one of two modes. [Template.Expand] is RFC 6570
// level 1 expansion, which percent-encodes every character of a value that
// is not unreserved. [Template.ExpandEncoded] treats values as already
// encoded: existing percent-escapes are kept as-is, and otherwise only the
// characters that are legal in the URI component containing the expression
// are copied through. A value can therefore never end the component it is
// substituted into, so "?" and "#" are always encoded in a path.
//
// The API of this package is currently experimental and primarily intended for
// use by the webtarget package, rather than external consumption.
//
// [RFC 6570]: https://www.rfc-editor.org/rfc/rfc6570
package uritemplates

import (
	"fmt"
	"strings"
)

// Template is a parsed URI template. A Template is immutable and so it is
// safe to expand the same template concurrently from multiple goroutines.
type Template struct {
	raw   string
	parts []part
}

// part is either a literal run of template text or a variable expression,
// distinguished by whether varName is set.
type part struct {
	literal string
	varName string

	// component is where a variable expression sits in the URI.
	component component
}

// component is the part of a URI reference that an expression appears in.
type component int

const (
	componentPath component = iota
	componentAuthority
	componentQuery
	componentFragment
)

// componentAt returns the component that continues after the given literal
// text of a template. Expressions before it contribute nothing, since their
// values cannot change the structure of the URI.
func componentAt(prefix string) component {
	if strings.IndexByte(prefix, '#') >= 0 {
		return componentFragment
	}
	if strings.IndexByte(prefix, '?') >= 0 {
		return componentQuery
	}
	slashes := strings.Index(prefix, "//")
	if slashes < 0 || !isSchemePrefix(prefix[:slashes]) {
		return componentPath
	}
	if strings.IndexByte(prefix[slashes+2:], '/') >= 0 {
		return componentPath
	}
	return componentAuthority
}

// isSchemePrefix reports whether s can precede the "//" that introduces an
// authority: either nothing at all or the scheme and its colon. The scheme
// itself may be empty when it comes from an expression.
func isSchemePrefix(s string) bool {
	if s == "" {
		return true
	}
	if s[len(s)-1] != ':' {
		return false
	}
	for i := 0; i < len(s)-1; i++ {
		c := s[i]
		if !isAlnum(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// allows reports whether c may appear unencoded in a pre-encoded value
// substituted into the receiver component.
func (comp component) allows(c byte) bool {
	if isUnreserved(c) || isSubDelim(c) || c == ':' {
		return true
	}
	switch comp {
	case componentAuthority:
		return c == '[' || c == ']'
	case componentPath:
		return c == '@' || c == '/'
	case componentQuery, componentFragment:
		return c == '@' || c == '/' || c == '?'
	}
	return false
}

// ParseError is returned by [Parse] when the given string is not a valid
// template.
type ParseError struct {
	Template string
	Offset   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid URI template %q at offset %d: %s", e.Template, e.Offset, e.Message)
}

// UndefinedVariableError is returned when a template refers to a variable
// that has no value in the set of values given for expansion.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("no value for template variable %q", e.Name)
}

// Parse parses the given string as a URI template.
func Parse(s string) (*Template, error) {
	t := &Template{raw: s}
	var lit, structure strings.Builder
	for i := 0; i < len(s); {
		switch s[i] {
		case '{':
			end, err := closingBrace(s, i)
			if err != nil {
				return nil, err
			}
			name, err := exprName(s, i, end)
			if err != nil {
				return nil, err
			}
			if lit.Len() > 0 {
				t.parts = append(t.parts, part{literal: lit.String()})
				lit.Reset()
			}
			t.parts = append(t.parts, part{varName: name, component: componentAt(structure.String())})
			i = end + 1
		case '}':
			return nil, &ParseError{Template: s, Offset: i, Message: "unexpected closing brace"}
		default:
			lit.WriteByte(s[i])
			structure.WriteByte(s[i])
			i++
		}
	}
	if lit.Len() > 0 {
		t.parts = append(t.parts, part{literal: lit.String()})
	}
	return t, nil
}

// MustParse is like [Parse] but panics if the template is invalid. It is
// intended for templates that are constants in the calling program.
func MustParse(s string) *Template {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// closingBrace returns the offset of the brace that closes the expression
// opened at start. Braces nest so that patterns like "[0-9]{3}" can appear
// after the colon in an expression.
func closingBrace(s string, start int) (int, error) {
	depth := 0
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return -1, &ParseError{Template: s, Offset: start, Message: "unclosed template expression"}
}

func exprName(s string, start, end int) (string, error) {
	expr := s[start+1 : end]
	if colon := strings.IndexByte(expr, ':'); colon >= 0 {
		expr = expr[:colon]
	}
	name := strings.TrimSpace(expr)
	if name == "" {
		return "", &ParseError{Template: s, Offset: start, Message: "empty variable name"}
	}
	for i := 0; i < len(name); i++ {
		if !isVarChar(name[i]) {
			return "", &ParseError{
				Template: s,
				Offset:   start,
				Message:  fmt.Sprintf("invalid character %q in variable name", name[i]),
			}
		}
	}
	return name, nil
}

// String returns the template exactly as it was given to [Parse].
func (t *Template) String() string {
	return t.raw
}

// Variables returns the names of the variables the template refers to, in
// order of first appearance and without duplicates.
func (t *Template) Variables() []string {
	var ret []string
	seen := make(map[string]struct{})
	for _, p := range t.parts {
		if p.varName == "" {
			continue
		}
		if _, exists := seen[p.varName]; exists {
			continue
		}
		seen[p.varName] = struct{}{}
		ret = append(ret, p.varName)
	}
	return ret
}

// Expand substitutes the given values into the template using RFC 6570
// simple string expansion, percent-encoding every character of each value
// that is not in the unreserved set.
//
// Every variable in the template must have an entry in vals. An empty string
// is a value; a missing key is not, and causes an [UndefinedVariableError].
func (t *Template) Expand(vals map[string]string) (string, error) {
	return t.expand(vals, false)
}

// ExpandEncoded is like [Template.Expand] except that values are taken to
// be already percent-encoded. Existing escapes are copied through unchanged,
// as are the characters legal in the component each expression appears in.
// Everything else is encoded, including delimiters such as "?" and "#" that
// would otherwise start a new component.
func (t *Template) ExpandEncoded(vals map[string]string) (string, error) {
	return t.expand(vals, true)
}

func (t *Template) expand(vals map[string]string, encoded bool) (string, error) {
	var b strings.Builder
	b.Grow(len(t.raw))
	for _, p := range t.parts {
		if p.varName == "" {
			appendEscaped(&b, p.literal, isURIChar, true)
			continue
		}
		v, ok := vals[p.varName]
		if !ok {
			return "", &UndefinedVariableError{Name: p.varName}
		}
		if encoded {
			appendEscaped(&b, v, p.component.allows, true)
		} else {
			appendEscaped(&b, v, isUnreserved, false)
		}
	}
	return b.String(), nil
}

const upperhex = "0123456789ABCDEF"

// appendEscaped writes s to b, percent-encoding each byte that is not
// allowed. With keepEscapes, valid "%XX" sequences are copied as they are.
func appendEscaped(b *strings.Builder, s string, allowed func(byte) bool, keepEscapes bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case allowed(c):
		case keepEscapes && c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isUnreserved(c byte) bool {
	return isAlnum(c) || c == '-' || c == '.' || c == '_' || c == '~'
}

func isSubDelim(c byte) bool {
	return strings.IndexByte("!$&'()*+,;=", c) >= 0
}

func isReserved(c byte) bool {
	return isSubDelim(c) || strings.IndexByte(":/?#[]@", c) >= 0
}

// isURIChar reports whether c may appear unencoded somewhere in a URI.
func isURIChar(c byte) bool {
	return isUnreserved(c) || isReserved(c)
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func isVarChar(c byte) bool {
	return isUnreserved(c) && c != '~'
}
