package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tamirms/phf"
	phferrors "github.com/tamirms/phf/errors"
	"github.com/tamirms/phf/internal/encoding"
)

// Grammar renders a constructed table as source code.
type Grammar interface {
	// Name is the name GrammarByName resolves.
	Name() string

	// DefaultPath is the runtime type path used when WithPath is not set.
	DefaultPath() string

	// DefaultHash is the hash family used when WithHash is not set.
	DefaultHash() phf.HashFunc

	// Validate reports whether the grammar can express a table with the
	// given parameters. It runs before construction.
	Validate(p Params) error

	// Key renders a key literal. text is false for byte-slice keys.
	Key(key []byte, text bool) string

	// Write writes the literal to w.
	Write(w io.Writer, lit *Literal) error
}

// Params describes a table before it is constructed.
type Params struct {
	Hash     phf.HashFunc
	NumKeys  int
	Capacity int
}

// Literal is a constructed table ready to be rendered.
type Literal struct {
	Path      string
	ValueType string
	Set       bool

	Seed    uint64
	Hash    phf.HashFunc
	NumKeys int
	Disps   []phf.Disp

	// Entries are in slot order. Empty slots repeat another key's entry.
	Entries []LiteralEntry
}

// LiteralEntry is one slot: a rendered key and the caller's value text.
type LiteralEntry struct {
	Key   string
	Value string
}

var (
	// Go emits phf.Map and phf.Set composite literals.
	Go Grammar = goGrammar{}

	// Rust emits ::phf::Map and ::phf::Set expressions for the phf crate.
	Rust Grammar = rustGrammar{}
)

// GrammarByName returns the grammar called name ("go" or "rust").
func GrammarByName(name string) (Grammar, error) {
	switch strings.ToLower(name) {
	case "go":
		return Go, nil
	case "rust":
		return Rust, nil
	default:
		return nil, fmt.Errorf("%w: %q", phferrors.ErrUnknownGrammar, name)
	}
}

type goGrammar struct{}

func (goGrammar) Name() string        { return "go" }
func (goGrammar) DefaultPath() string { return "phf" }

func (goGrammar) DefaultHash() phf.HashFunc { return phf.SipHash }

func (goGrammar) Validate(Params) error { return nil }

func (goGrammar) Key(key []byte, text bool) string {
	if text {
		return encoding.QuoteGo(string(key))
	}
	return encoding.QuoteGoBytes(key)
}

var goHashNames = [...]string{
	phf.SipHash:   "SipHash",
	phf.XXH3:      "XXH3",
	phf.Murmur3:   "Murmur3",
	phf.SipHash64: "SipHash64",
}

func (goGrammar) Write(w io.Writer, lit *Literal) error {
	q := lit.Path
	if q != "" {
		q += "."
	}

	var buf bytes.Buffer
	if lit.Set {
		fmt.Fprintf(&buf, "%sSet{\n\tMap: ", q)
		writeGoMap(&buf, lit, q, "struct{}", "\t")
		buf.WriteString(",\n}")
	} else {
		writeGoMap(&buf, lit, q, lit.ValueType, "")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// writeGoMap writes a phf.Map literal whose closing brace is at indent.
func writeGoMap(buf *bytes.Buffer, lit *Literal, q, valueType, indent string) {
	fmt.Fprintf(buf, "%sMap[%s]{\n", q, valueType)

	// Single-line fields, value-aligned as gofmt does.
	fields := [][2]string{{"Key:", fmt.Sprintf("0x%016x", lit.Seed)}}
	if lit.Hash != phf.SipHash {
		fields = append(fields, [2]string{"Hash:", q + goHashNames[lit.Hash]})
	}
	if lit.NumKeys < len(lit.Entries) {
		fields = append(fields, [2]string{"NumKeys:", strconv.Itoa(lit.NumKeys)})
	}
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	for _, f := range fields {
		fmt.Fprintf(buf, "%s\t%-*s %s,\n", indent, width, f[0], f[1])
	}

	fmt.Fprintf(buf, "%s\tDisps: []%sDisp{\n", indent, q)
	for _, d := range lit.Disps {
		fmt.Fprintf(buf, "%s\t\t{%d, %d},\n", indent, d.D1, d.D2)
	}
	fmt.Fprintf(buf, "%s\t},\n", indent)

	fmt.Fprintf(buf, "%s\tEntries: []%sEntry[%s]{\n", indent, q, valueType)
	for _, e := range lit.Entries {
		if lit.Set {
			fmt.Fprintf(buf, "%s\t\t{Key: %s},\n", indent, e.Key)
		} else {
			fmt.Fprintf(buf, "%s\t\t{%s, %s},\n", indent, e.Key, e.Value)
		}
	}
	fmt.Fprintf(buf, "%s\t},\n%s}", indent, indent)
}

type rustGrammar struct{}

func (rustGrammar) Name() string        { return "rust" }
func (rustGrammar) DefaultPath() string { return "::phf" }

func (rustGrammar) DefaultHash() phf.HashFunc { return phf.SipHash64 }

// Validate accepts only minimal SipHash64 tables: the phf crate splits a
// 64-bit SipHash into 21-bit words and takes its length from the entry count.
func (rustGrammar) Validate(p Params) error {
	if p.Hash != phf.SipHash64 {
		return fmt.Errorf("%w: rust grammar supports only siphash64, got %s", phferrors.ErrInvalidConfig, p.Hash)
	}
	if p.Capacity != p.NumKeys {
		return fmt.Errorf("%w: rust grammar requires capacity == key count (%d != %d)",
			phferrors.ErrInvalidConfig, p.Capacity, p.NumKeys)
	}
	return nil
}

func (rustGrammar) Key(key []byte, text bool) string {
	if text {
		return encoding.QuoteRust(string(key))
	}
	return encoding.QuoteRustBytes(key)
}

func (rustGrammar) Write(w io.Writer, lit *Literal) error {
	var buf bytes.Buffer
	if lit.Set {
		fmt.Fprintf(&buf, "%s::Set { map: ", lit.Path)
	}

	fmt.Fprintf(&buf, "%s::Map {\n    key: %d,\n    disps: &[", lit.Path, lit.Seed)
	for _, d := range lit.Disps {
		fmt.Fprintf(&buf, "\n        (%d, %d),", d.D1, d.D2)
	}
	buf.WriteString("\n    ],\n    entries: &[")
	for _, e := range lit.Entries {
		value := e.Value
		if lit.Set {
			value = "()"
		}
		fmt.Fprintf(&buf, "\n        (%s, %s),", e.Key, value)
	}
	buf.WriteString("\n    ],\n}")

	if lit.Set {
		buf.WriteString(" }")
	}
	_, err := w.Write(buf.Bytes())
	return err
}
