package codegen

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/internal/chd"
)

// Option is a functional option for configuring builders.
type Option func(*config)

type config struct {
	grammar   Grammar
	path      string // "" selects grammar.DefaultPath()
	valueType string // Go grammar only

	chd     chd.Config
	hashSet bool // false selects grammar.DefaultHash()

	src  rand.Source // shared across builds when set
	seed *uint64     // fresh PCG per build when set
}

func defaultConfig() *config {
	return &config{
		grammar:   Go,
		valueType: "string",
		chd:       chd.DefaultConfig(),
	}
}

// source returns the seed source for one build.
func (c *config) source() rand.Source {
	switch {
	case c.src != nil:
		return c.src
	case c.seed != nil:
		return rand.NewPCG(*c.seed, *c.seed^0x9E3779B97F4A7C15)
	default:
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
}

// pathOrDefault returns the configured type path or the grammar's default.
func (c *config) pathOrDefault() string {
	if c.path != "" {
		return c.path
	}
	return c.grammar.DefaultPath()
}

// chdConfig returns the construction config with the hash family resolved.
func (c *config) chdConfig() chd.Config {
	cfg := c.chd
	if !c.hashSet {
		cfg.Hash = c.grammar.DefaultHash()
	}
	return cfg
}

// capacity returns the slot count a build of numKeys keys will use.
func (c *config) capacity(numKeys int) int {
	if numKeys == 0 {
		return 0
	}
	if c.chd.Capacity > 0 {
		return c.chd.Capacity
	}
	return chd.ComputeCapacity(numKeys, c.chd.LoadFactor)
}

// WithGrammar selects the output grammar. Default is Go.
func WithGrammar(g Grammar) Option {
	return func(c *config) {
		c.grammar = g
	}
}

// WithPath sets the path used to name the runtime types: the package
// qualifier for Go ("phf" by default) or the crate path for Rust
// ("::phf" by default).
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithValueType sets V in the emitted phf.Map[V]. Default is "string".
// Ignored by the Rust grammar and by sets.
func WithValueType(typ string) Option {
	return func(c *config) {
		c.valueType = typ
	}
}

// WithLambda sets the average bucket size. Default is 5.
func WithLambda(lambda int) Option {
	return func(c *config) {
		c.chd.Lambda = lambda
	}
}

// WithLoadFactor sets keys/capacity in (0, 1]. Default is 1 (a minimal table).
// Lower values trade table size for fewer construction attempts.
func WithLoadFactor(alpha float64) Option {
	return func(c *config) {
		c.chd.LoadFactor = alpha
	}
}

// WithCapacity sets an explicit slot count, overriding the load factor.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.chd.Capacity = n
	}
}

// WithHash selects the hash family. Default is the grammar's: phf.SipHash
// for Go, phf.SipHash64 for Rust.
func WithHash(h phf.HashFunc) Option {
	return func(c *config) {
		c.chd.Hash = h
		c.hashSet = true
	}
}

// WithMaxAttempts bounds the number of construction attempts. Zero (the
// default) retries until an attempt succeeds or the context is done.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		c.chd.MaxAttempts = n
	}
}

// WithWorkers runs n construction attempts concurrently. The result does
// not depend on n.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.chd.Workers = n
	}
}

// WithRand sets the source that construction seeds are drawn from. The
// source is shared by every build of the builder.
func WithRand(src rand.Source) Option {
	return func(c *config) {
		c.src = src
		c.seed = nil
	}
}

// WithSeed makes every build draw its seeds from a fresh generator seeded
// with seed, so identical inputs produce identical output.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = &seed
		c.src = nil
	}
}

// WithLogger sets the logger for construction diagnostics. The default
// discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.chd.Logger = l
	}
}
