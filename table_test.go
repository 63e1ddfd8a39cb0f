package phf_test

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/codegen"
	phferrors "github.com/tamirms/phf/errors"
	"github.com/tamirms/phf/internal/format"
)

// writeMapFile builds a map of words to their indices and writes it to a
// table file in a temporary directory.
func writeMapFile(t *testing.T, words []string, opts ...codegen.Option) string {
	t.Helper()
	b := codegen.NewMap[string](opts...)
	for i, w := range words {
		b.Entry(w, fmt.Sprintf("value-%d", i))
	}
	path := filepath.Join(t.TempDir(), "table.phf")
	require.NoError(t, b.WriteFile(context.Background(), path))
	return path
}

func TestTableRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 11))
	for _, h := range []phf.HashFunc{phf.SipHash, phf.XXH3, phf.Murmur3} {
		for _, alpha := range []float64{1.0, 0.7} {
			t.Run(fmt.Sprintf("%s/%v", h, alpha), func(t *testing.T) {
				words := randomWords(rng, 500)
				path := writeMapFile(t, words, codegen.WithHash(h), codegen.WithLoadFactor(alpha), codegen.WithSeed(rng.Uint64()))

				tbl, err := phf.Open(path)
				require.NoError(t, err)
				defer tbl.Close()

				require.NoError(t, tbl.Verify())
				require.Equal(t, len(words), tbl.Len())
				require.GreaterOrEqual(t, tbl.Capacity(), len(words))
				require.Equal(t, h, tbl.Hash())
				require.False(t, tbl.IsSet())

				for i, w := range words {
					v, err := tbl.Get([]byte(w))
					require.NoError(t, err, "key %q", w)
					require.Equal(t, fmt.Sprintf("value-%d", i), string(v))
				}
				for range 500 {
					_, err := tbl.Get(fmt.Appendf(nil, "miss-%d", rng.Uint64()))
					require.ErrorIs(t, err, phferrors.ErrNotFound)
				}

				n := 0
				for k, v := range tbl.All() {
					require.Equal(t, string(v), mustGet(t, tbl, k))
					n++
				}
				require.Equal(t, len(words), n)
			})
		}
	}
}

func mustGet(t *testing.T, tbl *phf.Table, key []byte) string {
	t.Helper()
	v, err := tbl.Get(key)
	require.NoError(t, err)
	return string(v)
}

// TestTableMatchesInMemory verifies that a file and an in-memory table
// built with the same seed share the construction.
func TestTableMatchesInMemory(t *testing.T) {
	words := randomWords(rand.New(rand.NewPCG(12, 13)), 100)
	path := writeMapFile(t, words, codegen.WithSeed(77))
	tbl, err := phf.Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	b := codegen.NewMap[string](codegen.WithSeed(77))
	for i, w := range words {
		b.Entry(w, fmt.Sprintf("value-%d", i))
	}
	m, err := b.Table(context.Background())
	require.NoError(t, err)

	require.Equal(t, m.Key, tbl.Seed())
	require.Equal(t, len(m.Entries), tbl.Capacity())
}

func TestTableSet(t *testing.T) {
	b := codegen.NewSet[[]byte](codegen.WithSeed(3))
	keys := [][]byte{[]byte("a"), {0x00, 0xff}, []byte("longer key"), {}}
	for _, k := range keys {
		b.Entry(k)
	}
	path := filepath.Join(t.TempDir(), "set.phf")
	require.NoError(t, b.WriteFile(context.Background(), path))

	tbl, err := phf.Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	require.True(t, tbl.IsSet())
	for _, k := range keys {
		ok, err := tbl.Contains(k)
		require.NoError(t, err)
		require.True(t, ok, "missing %q", k)
	}
	ok, err := tbl.Contains([]byte("b"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTableEmpty(t *testing.T) {
	path := writeMapFile(t, nil)
	tbl, err := phf.Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.Verify())
	require.Zero(t, tbl.Len())
	_, err = tbl.Get([]byte("x"))
	require.ErrorIs(t, err, phferrors.ErrNotFound)
}

func TestTableOpenBytes(t *testing.T) {
	path := writeMapFile(t, []string{"x", "y", "z"}, codegen.WithSeed(1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tbl, err := phf.OpenBytes(data)
	require.NoError(t, err)
	require.NoError(t, tbl.Verify())
	require.Equal(t, "value-1", mustGet(t, tbl, []byte("y")))
	require.NoError(t, tbl.Close())
}

func TestTableCorruption(t *testing.T) {
	path := writeMapFile(t, []string{"alpha", "beta", "gamma", "delta"}, codegen.WithSeed(1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("checksum", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[len(bad)-format.FooterSize-1] ^= 0xff
		tbl, err := phf.OpenBytes(bad)
		require.NoError(t, err)
		require.ErrorIs(t, tbl.Verify(), phferrors.ErrChecksumFailed)
	})

	t.Run("magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xff
		_, err := phf.OpenBytes(bad)
		require.ErrorIs(t, err, phferrors.ErrInvalidMagic)
	})

	t.Run("version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] = 0x7f
		_, err := phf.OpenBytes(bad)
		require.ErrorIs(t, err, phferrors.ErrInvalidVersion)
	})

	t.Run("hash family", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[6] = 0x40
		_, err := phf.OpenBytes(bad)
		require.ErrorIs(t, err, phferrors.ErrCorruptedTable)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := phf.OpenBytes(data[:len(data)-1])
		require.ErrorIs(t, err, phferrors.ErrTruncatedFile)
		_, err = phf.OpenBytes(data[:10])
		require.ErrorIs(t, err, phferrors.ErrTruncatedFile)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := phf.OpenBytes(append(append([]byte(nil), data...), 0))
		require.ErrorIs(t, err, phferrors.ErrCorruptedTable)
	})

	t.Run("records size overflow", func(t *testing.T) {
		hdr := format.Header{
			Magic:       format.Magic,
			Version:     format.Version,
			NumKeys:     1,
			NumBuckets:  1,
			Capacity:    1,
			RecordsSize: math.MaxUint64 - 15,
		}
		crafted := make([]byte, format.HeaderSize+format.DispSize+format.SlotSize)
		hdr.EncodeTo(crafted)
		require.Equal(t, uint64(len(crafted)), hdr.FileSize())

		var err error
		require.NotPanics(t, func() { _, err = phf.OpenBytes(crafted) })
		require.ErrorIs(t, err, phferrors.ErrCorruptedTable)
	})

	t.Run("truncated file", func(t *testing.T) {
		short := filepath.Join(t.TempDir(), "short.phf")
		require.NoError(t, os.WriteFile(short, data[:20], 0o644))
		_, err := phf.Open(short)
		require.ErrorIs(t, err, phferrors.ErrTruncatedFile)
	})
}

func TestTableClosed(t *testing.T) {
	path := writeMapFile(t, []string{"k"}, codegen.WithSeed(1))
	tbl, err := phf.Open(path)
	require.NoError(t, err)
	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())

	_, err = tbl.Get([]byte("k"))
	require.ErrorIs(t, err, phferrors.ErrTableClosed)
	require.ErrorIs(t, tbl.Verify(), phferrors.ErrTableClosed)
	for range tbl.All() {
		t.Fatal("closed table yielded an entry")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := phf.Open(filepath.Join(t.TempDir(), "nope.phf"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
