package chd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	phferrors "github.com/tamirms/phf/errors"
)

// TryGenerate runs a single partition + resolve pass with seed.
//
// It is a pure function of (keys, seed, cfg): repeated calls return
// identical states. Returns an error wrapping errAttemptFailed when some
// bucket cannot be placed, or ErrInvalidConfig for a bad configuration.
// Keys must be distinct; duplicates make every attempt fail.
func TryGenerate(keys [][]byte, seed uint64, cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(keys) > maxKeys {
		return nil, phferrors.ErrTooManyKeys
	}
	return tryGenerate(keys, seed, &cfg)
}

func tryGenerate(keys [][]byte, seed uint64, cfg *Config) (*State, error) {
	hashes := make([]Hashes, len(keys))
	for i, key := range keys {
		hashes[i] = Hash(cfg.Hash, seed, key)
	}

	numBuckets := NumBuckets(len(keys), cfg.Lambda)
	capacity := cfg.capacityFor(len(keys))
	if len(keys) == 0 {
		capacity = 0
	}

	s := newSolver(hashes, numBuckets, capacity)
	if err := s.solve(partition(hashes, numBuckets)); err != nil {
		return nil, err
	}

	return &State{
		Seed:     seed,
		Hash:     cfg.Hash,
		Disps:    s.disps,
		Map:      s.slots,
		Attempts: 1,
	}, nil
}

// Generate draws seeds from src and calls TryGenerate until an attempt
// succeeds.
//
// With cfg.MaxAttempts == 0 there is no attempt limit: a key set that
// cannot fit its capacity (for example an explicit Capacity below the key
// count) makes Generate loop until ctx is cancelled. Choosing a capacity at
// or above the key count is the caller's responsibility.
//
// Attempt states: attempting -> succeeded, or attempting -> failed-retry ->
// attempting with the next seed. With cfg.Workers > 1, seeds are drawn in
// batches of Workers before the batch runs; the lowest-indexed success wins,
// so the result equals the sequential result for the same src.
//
// Returns ErrAttemptsExhausted when the attempt budget runs out, ctx.Err()
// on cancellation, or ErrInvalidConfig.
func Generate(ctx context.Context, keys [][]byte, src rand.Source, cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(keys) > maxKeys {
		return nil, phferrors.ErrTooManyKeys
	}
	log := cfg.logger()

	workers := max(cfg.Workers, 1)
	seeds := make([]uint64, 0, workers)
	results := make([]*State, workers)

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch := workers
		if cfg.MaxAttempts > 0 {
			batch = min(batch, cfg.MaxAttempts-attempts)
		}
		if batch <= 0 {
			return nil, fmt.Errorf("%w: %d attempts for %d keys",
				phferrors.ErrAttemptsExhausted, attempts, len(keys))
		}

		// Seeds are drawn before any attempt of the batch starts.
		seeds = seeds[:0]
		for range batch {
			seeds = append(seeds, src.Uint64())
		}

		if err := runBatch(ctx, keys, seeds, &cfg, results[:batch]); err != nil {
			return nil, err
		}

		for i, st := range results[:batch] {
			attempt := attempts + i + 1
			if st == nil {
				log.Debug("construction attempt failed",
					zap.Int("attempt", attempt),
					zap.Uint64("seed", seeds[i]))
				continue
			}
			st.Attempts = attempt
			log.Debug("construction succeeded",
				zap.Int("attempts", attempt),
				zap.Uint64("seed", st.Seed),
				zap.Int("keys", len(keys)),
				zap.Int("buckets", len(st.Disps)),
				zap.Int("capacity", st.Capacity()))
			return st, nil
		}
		attempts += batch
	}
}

// runBatch runs one attempt per seed and stores successes in results
// (nil for a failed attempt). A single seed runs on the calling goroutine.
func runBatch(ctx context.Context, keys [][]byte, seeds []uint64, cfg *Config, results []*State) error {
	clear(results)

	if len(seeds) == 1 {
		st, err := tryGenerate(keys, seeds[0], cfg)
		if err != nil && !errors.Is(err, errAttemptFailed) {
			return err
		}
		results[0] = st
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for i, seed := range seeds {
		g.Go(func() error {
			st, err := tryGenerate(keys, seed, cfg)
			if err != nil {
				if errors.Is(err, errAttemptFailed) {
					return nil
				}
				return err
			}
			results[i] = st
			return nil
		})
	}
	return g.Wait()
}
