package chd

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a PCG generator seeded from the test name.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateKeys returns n distinct keys of varying length.
func generateKeys(rng *rand.Rand, n int) [][]byte {
	seen := make(map[string]struct{}, n)
	keys := make([][]byte, 0, n)
	for len(keys) < n {
		key := fmt.Appendf(nil, "key-%x-%d", rng.Uint64(), rng.IntN(1000))
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func stringKeys(words ...string) [][]byte {
	keys := make([][]byte, len(words))
	for i, w := range words {
		keys[i] = []byte(w)
	}
	return keys
}

// checkState verifies the perfect hash invariant: every key is stored in
// exactly one slot, and Locate finds it there.
func checkState(t *testing.T, keys [][]byte, st *State) {
	t.Helper()

	seen := make([]bool, len(keys))
	occupied := 0
	for slot, keyIdx := range st.Map {
		if keyIdx == emptySlot {
			continue
		}
		if keyIdx < 0 || keyIdx >= len(keys) {
			t.Fatalf("slot %d holds invalid key index %d", slot, keyIdx)
		}
		if seen[keyIdx] {
			t.Fatalf("key %d stored in more than one slot", keyIdx)
		}
		seen[keyIdx] = true
		occupied++
	}
	if occupied != len(keys) {
		t.Fatalf("occupied slots = %d, want %d", occupied, len(keys))
	}

	for i, key := range keys {
		slot := st.Locate(key)
		if slot < 0 || slot >= st.Capacity() {
			t.Fatalf("key %q: slot %d out of range [0, %d)", key, slot, st.Capacity())
		}
		if st.Map[slot] != i {
			t.Fatalf("key %q: slot %d holds key %d, want %d", key, slot, st.Map[slot], i)
		}
	}

	for b, d := range st.Disps {
		if st.Capacity() > 0 && (d.D1 >= uint32(st.Capacity()) || d.D2 >= uint32(st.Capacity())) {
			t.Fatalf("bucket %d: disp (%d, %d) outside [0, %d)", b, d.D1, d.D2, st.Capacity())
		}
	}
}

// countingSource counts seed draws.
type countingSource struct {
	src   rand.Source
	draws int
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}
