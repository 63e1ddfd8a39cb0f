// Package chd implements the hash-and-displace construction used by phf.
//
// Keys are split into buckets by a seeded primary hash. Buckets are placed
// largest first: for each one the solver scans displacement pairs (d1, d2)
// until every key of the bucket lands in a distinct empty slot. If some
// bucket cannot be placed the whole attempt is abandoned and the driver
// retries with a fresh seed.
package chd

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	phferrors "github.com/tamirms/phf/errors"
)

// Algorithm constants
const (
	// DefaultLambda is the average number of keys per bucket.
	DefaultLambda = 5

	// DefaultLoadFactor is keys / capacity. 1.0 produces a minimal table.
	DefaultLoadFactor = 1.0

	// maxKeys bounds the key count so that slot indices fit the 32-bit
	// displacement arithmetic.
	maxKeys = math.MaxInt32
)

// Config controls a construction run. The zero value is not valid; use
// DefaultConfig and override fields.
type Config struct {
	// Lambda is the target average bucket size.
	Lambda int

	// LoadFactor derives the capacity as ceil(numKeys / LoadFactor).
	// Ignored when Capacity is set.
	LoadFactor float64

	// Capacity overrides the slot count when > 0. A capacity below the key
	// count makes every attempt fail.
	Capacity int

	// Hash selects the keyed hash family.
	Hash HashID

	// MaxAttempts bounds Generate. Zero means unbounded.
	MaxAttempts int

	// Workers > 1 runs that many speculative attempts concurrently.
	Workers int

	// Logger receives Debug records for attempts. nil is treated as a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used when the caller sets nothing.
func DefaultConfig() Config {
	return Config{
		Lambda:     DefaultLambda,
		LoadFactor: DefaultLoadFactor,
		Hash:       SipHash,
		Workers:    1,
	}
}

// Validate reports whether the configuration can drive a construction.
func (c *Config) Validate() error {
	if c.Lambda <= 0 {
		return fmt.Errorf("%w: lambda must be positive, got %d", phferrors.ErrInvalidConfig, c.Lambda)
	}
	if c.Capacity == 0 && (c.LoadFactor <= 0 || c.LoadFactor > 1 || math.IsNaN(c.LoadFactor)) {
		return fmt.Errorf("%w: load factor must be in (0, 1], got %v", phferrors.ErrInvalidConfig, c.LoadFactor)
	}
	if c.Capacity < 0 || c.Capacity > maxKeys {
		return fmt.Errorf("%w: capacity out of range: %d", phferrors.ErrInvalidConfig, c.Capacity)
	}
	if !c.Hash.Valid() {
		return fmt.Errorf("%w: unknown hash family %d", phferrors.ErrInvalidConfig, c.Hash)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("%w: max attempts must not be negative, got %d", phferrors.ErrInvalidConfig, c.MaxAttempts)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", phferrors.ErrInvalidConfig, c.Workers)
	}
	return nil
}

// logger returns the configured logger or a no-op logger.
func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// capacityFor returns the slot count for numKeys keys.
func (c *Config) capacityFor(numKeys int) int {
	if c.Capacity > 0 {
		return c.Capacity
	}
	return ComputeCapacity(numKeys, c.LoadFactor)
}

// ComputeCapacity returns ceil(numKeys / loadFactor), but always at least numKeys.
func ComputeCapacity(numKeys int, loadFactor float64) int {
	n := int(math.Ceil(float64(numKeys) / loadFactor))
	if n < numKeys {
		n = numKeys
	}
	return n
}

// NumBuckets returns ceil(numKeys / lambda). Zero keys produce zero buckets.
func NumBuckets(numKeys, lambda int) int {
	return (numKeys + lambda - 1) / lambda
}
