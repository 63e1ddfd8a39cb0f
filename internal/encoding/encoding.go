// Package encoding renders keys as source-code literals for the code
// generator's output grammars.
//
// Go literals are valid Go string literals. Rust literals reproduce
// char::escape_default for text and ascii::escape_default for bytes, so
// generated tables diff cleanly against hand-written ones.
package encoding

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// QuoteGo returns s as a double-quoted Go string literal.
func QuoteGo(s string) string {
	return strconv.Quote(s)
}

// QuoteGoBytes returns b as a double-quoted Go string literal, escaping
// byte by byte. Printable ASCII is kept verbatim; everything else becomes
// \t, \r, \n or \xNN. Unlike QuoteGo, invalid UTF-8 round-trips exactly.
func QuoteGoBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 2)
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			writeASCII(&sb, c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteRust returns s as a Rust string literal, escaping each char the way
// char::escape_default does. Invalid UTF-8 sequences are replaced by
// U+FFFD, which Rust string literals can represent.
func QuoteRust(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		switch r {
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\n':
			sb.WriteString(`\n`)
		case '\'', '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			if r >= 0x20 && r < 0x7f {
				sb.WriteRune(r)
				continue
			}
			sb.WriteString(`\u{`)
			sb.WriteString(strconv.FormatInt(int64(r), 16))
			sb.WriteByte('}')
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteRustBytes returns b as a Rust byte-string literal coerced to a
// slice: b"..." as &[u8]. Bytes are escaped like ascii::escape_default.
func QuoteRustBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 12)
	sb.WriteString(`b"`)
	for _, c := range b {
		switch c {
		case '\'', '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			writeASCII(&sb, c)
		}
	}
	sb.WriteString(`" as &[u8]`)
	return sb.String()
}

// writeASCII writes c verbatim if printable, as \t, \r, \n, or as \xNN.
func writeASCII(sb *strings.Builder, c byte) {
	switch {
	case c == '\t':
		sb.WriteString(`\t`)
	case c == '\r':
		sb.WriteString(`\r`)
	case c == '\n':
		sb.WriteString(`\n`)
	case c >= 0x20 && c < 0x7f:
		sb.WriteByte(c)
	default:
		sb.WriteString(`\x`)
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
}
