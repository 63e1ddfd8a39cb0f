package codegen

import (
	"bytes"
	"context"
	"io"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/internal/format"
	"github.com/tamirms/phf/internal/phfmap"
)

// Set builds a perfect hash set.
type Set[K Key] struct {
	b builder
}

// NewSet returns an empty set builder.
func NewSet[K Key](opts ...Option) *Set[K] {
	return &Set[K]{b: newBuilder[K](opts)}
}

// Entry adds a key.
func (s *Set[K]) Entry(key K) *Set[K] {
	s.b.add(bytes.Clone([]byte(key)), "")
	return s
}

// Len returns the number of entries added.
func (s *Set[K]) Len() int {
	return len(s.b.keys)
}

// Build constructs the set and writes it to w. Errors are those of Map.Build.
func (s *Set[K]) Build(ctx context.Context, w io.Writer) error {
	return s.b.build(ctx, w, true)
}

// MustBuild is like Build but panics on error.
func (s *Set[K]) MustBuild(ctx context.Context, w io.Writer) {
	if err := s.Build(ctx, w); err != nil {
		panic("codegen: " + err.Error())
	}
}

// Table constructs the set in memory.
func (s *Set[K]) Table(ctx context.Context) (*phf.Set, error) {
	st, err := s.b.construct(ctx)
	if err != nil {
		return nil, err
	}
	return &phf.Set{Map: phfmap.FromState(st, s.b.keys, func(int) struct{} { return struct{}{} })}, nil
}

// WriteFile constructs the set and writes it to path as a binary table file.
func (s *Set[K]) WriteFile(ctx context.Context, path string) error {
	return s.b.writeFile(ctx, path, format.KindSet)
}
