package codegen

import (
	"bytes"
	"context"
	"io"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/internal/format"
	"github.com/tamirms/phf/internal/phfmap"
)

// Map builds a perfect hash map from keys to value literals.
//
// Values are opaque source text written verbatim into the output, so they
// must be valid expressions of the target grammar.
type Map[K Key] struct {
	b builder
}

// NewMap returns an empty map builder.
func NewMap[K Key](opts ...Option) *Map[K] {
	return &Map[K]{b: newBuilder[K](opts)}
}

// Entry adds a key and its value literal. Duplicates are reported by Build.
func (m *Map[K]) Entry(key K, value string) *Map[K] {
	m.b.add(bytes.Clone([]byte(key)), value)
	return m
}

// Len returns the number of entries added.
func (m *Map[K]) Len() int {
	return len(m.b.keys)
}

// Build constructs the table and writes it to w as a single expression.
//
// Returns an error wrapping ErrDuplicateKey (before any construction work),
// ErrInvalidConfig, ErrAttemptsExhausted, the context's error, or the
// writer's error.
func (m *Map[K]) Build(ctx context.Context, w io.Writer) error {
	return m.b.build(ctx, w, false)
}

// MustBuild is like Build but panics on error.
func (m *Map[K]) MustBuild(ctx context.Context, w io.Writer) {
	if err := m.Build(ctx, w); err != nil {
		panic("codegen: " + err.Error())
	}
}

// Table constructs the table in memory. Values are the value literals.
func (m *Map[K]) Table(ctx context.Context) (*phf.Map[string], error) {
	st, err := m.b.construct(ctx)
	if err != nil {
		return nil, err
	}
	t := phfmap.FromState(st, m.b.keys, func(i int) string { return m.b.values[i] })
	return &t, nil
}

// WriteFile constructs the table and writes it to path as a binary table
// file that phf.Open reads. Values are stored as raw bytes.
func (m *Map[K]) WriteFile(ctx context.Context, path string) error {
	return m.b.writeFile(ctx, path, format.KindMap)
}
