package codegen

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"reflect"

	phferrors "github.com/tamirms/phf/errors"
	"github.com/tamirms/phf/internal/chd"
	"github.com/tamirms/phf/internal/format"
	"github.com/tamirms/phf/internal/phfmap"
)

// Key is the set of key types the builders accept. String kinds render as
// text literals, byte slices as byte-string literals.
type Key interface {
	~string | ~[]byte
}

// generateFunc is the construction entry point. Tests replace it.
type generateFunc func(ctx context.Context, keys [][]byte, src rand.Source, cfg chd.Config) (*chd.State, error)

// builder holds the entries shared by Map and Set.
type builder struct {
	cfg      *config
	text     bool
	keys     [][]byte
	values   []string
	generate generateFunc
}

func newBuilder[K Key](opts []Option) builder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return builder{
		cfg:      cfg,
		text:     reflect.TypeFor[K]().Kind() == reflect.String,
		generate: chd.Generate,
	}
}

func (b *builder) add(key []byte, value string) {
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
}

// checkDuplicates reports the first key added twice.
func (b *builder) checkDuplicates() error {
	seen := make(map[string]struct{}, len(b.keys))
	for _, key := range b.keys {
		if _, dup := seen[string(key)]; dup {
			return fmt.Errorf("%w: %s", phferrors.ErrDuplicateKey, b.cfg.grammar.Key(key, b.text))
		}
		seen[string(key)] = struct{}{}
	}
	return nil
}

// construct validates the entries and runs the construction driver.
func (b *builder) construct(ctx context.Context) (*chd.State, error) {
	if b.cfg.grammar == nil {
		return nil, fmt.Errorf("%w: nil grammar", phferrors.ErrInvalidConfig)
	}
	if err := b.checkDuplicates(); err != nil {
		return nil, err
	}
	return b.generate(ctx, b.keys, b.cfg.source(), b.cfg.chdConfig())
}

// build constructs the table and writes it through the grammar.
func (b *builder) build(ctx context.Context, w io.Writer, set bool) error {
	if b.cfg.grammar == nil {
		return fmt.Errorf("%w: nil grammar", phferrors.ErrInvalidConfig)
	}
	if err := b.cfg.grammar.Validate(Params{
		Hash:     b.cfg.chdConfig().Hash,
		NumKeys:  len(b.keys),
		Capacity: b.cfg.capacity(len(b.keys)),
	}); err != nil {
		return err
	}

	st, err := b.construct(ctx)
	if err != nil {
		return err
	}
	return b.cfg.grammar.Write(w, b.literal(st, set))
}

// literal renders st into grammar-ready entries.
func (b *builder) literal(st *chd.State, set bool) *Literal {
	lit := &Literal{
		Path:      b.cfg.pathOrDefault(),
		ValueType: b.cfg.valueType,
		Set:       set,
		Seed:      st.Seed,
		Hash:      st.Hash,
		NumKeys:   len(b.keys),
		Disps:     st.Disps,
		Entries:   make([]LiteralEntry, len(st.Map)),
	}
	for slot := range st.Map {
		idx := phfmap.SlotKey(st, slot)
		lit.Entries[slot] = LiteralEntry{
			Key:   b.cfg.grammar.Key(b.keys[idx], b.text),
			Value: b.values[idx],
		}
	}
	return lit
}

// writeFile constructs the table and writes it as a binary table file.
func (b *builder) writeFile(ctx context.Context, path string, kind format.Kind) error {
	st, err := b.construct(ctx)
	if err != nil {
		return err
	}
	var values [][]byte
	if kind == format.KindMap {
		values = make([][]byte, len(b.values))
		for i, v := range b.values {
			values[i] = []byte(v)
		}
	}
	return writeTable(path, kind, st, b.keys, values)
}
