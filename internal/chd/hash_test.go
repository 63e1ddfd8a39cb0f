package chd

import (
	"math"
	"testing"
)

func TestDisplacePinnedValues(t *testing.T) {
	cases := []struct {
		f1, f2, d1, d2 uint32
		want           uint32
	}{
		{0, 0, 0, 0, 0},
		{3, 5, 7, 11, 37},
		{math.MaxUint32, 1, 2, 0, math.MaxUint32}, // wraps: 2*(2^32-1)+1 mod 2^32
		{1, math.MaxUint32, 0, 1, 0},
	}
	for _, tc := range cases {
		if got := Displace(tc.f1, tc.f2, tc.d1, tc.d2); got != tc.want {
			t.Errorf("Displace(%d, %d, %d, %d) = %d, want %d", tc.f1, tc.f2, tc.d1, tc.d2, got, tc.want)
		}
	}
}

// TestHashDeterministic verifies that every family is a pure function of
// (seed, key) and that the seed changes the output.
func TestHashDeterministic(t *testing.T) {
	rng := newTestRNG(t)
	keys := generateKeys(rng, 200)

	for _, id := range []HashID{SipHash, XXH3, Murmur3, SipHash64} {
		t.Run(id.String(), func(t *testing.T) {
			seed := rng.Uint64()
			changed := 0
			for _, key := range keys {
				a := Hash(id, seed, key)
				b := Hash(id, seed, append([]byte(nil), key...))
				if a != b {
					t.Fatalf("Hash(%s, %d, %q) not deterministic: %+v vs %+v", id, seed, key, a, b)
				}
				if Hash(id, seed+1, key) != a {
					changed++
				}
			}
			if changed < len(keys)*9/10 {
				t.Errorf("seed change altered only %d of %d hashes", changed, len(keys))
			}
		})
	}
}

// TestHashFamiliesDiffer guards against a dispatch bug that silently routes
// every family to the same function.
func TestHashFamiliesDiffer(t *testing.T) {
	key := []byte("continue")
	const seed = 0xdeadbeef
	sip := Hash(SipHash, seed, key)
	xx := Hash(XXH3, seed, key)
	mm := Hash(Murmur3, seed, key)
	s64 := Hash(SipHash64, seed, key)
	if sip == xx || sip == mm || xx == mm || s64 == sip || s64 == xx || s64 == mm {
		t.Fatalf("hash families collide: siphash=%+v xxh3=%+v murmur3=%+v siphash64=%+v", sip, xx, mm, s64)
	}
}

// TestBucketDistribution checks that G spreads keys over buckets roughly
// uniformly (no bucket above 16x the mean for 50k keys).
func TestBucketDistribution(t *testing.T) {
	rng := newTestRNG(t)
	keys := generateKeys(rng, 50000)
	numBuckets := NumBuckets(len(keys), DefaultLambda)

	for _, id := range []HashID{SipHash, XXH3, Murmur3, SipHash64} {
		counts := make([]int, numBuckets)
		seed := rng.Uint64()
		for _, key := range keys {
			counts[Hash(id, seed, key).G%uint32(numBuckets)]++
		}
		for b, c := range counts {
			if c > 16*DefaultLambda {
				t.Fatalf("%s: bucket %d has %d keys (mean %d)", id, b, c, DefaultLambda)
			}
		}
	}
}

func TestHashIDString(t *testing.T) {
	cases := map[HashID]string{
		SipHash:    "siphash",
		XXH3:       "xxh3",
		Murmur3:    "murmur3",
		SipHash64:  "siphash64",
		HashID(99): "unknown",
	}
	for id, want := range cases {
		if got := id.String(); got != want {
			t.Errorf("HashID(%d).String() = %q, want %q", id, got, want)
		}
		if id.Valid() != (want != "unknown") {
			t.Errorf("HashID(%d).Valid() = %v", id, id.Valid())
		}
	}
}

// TestSipHash64PinnedValues pins the 21-bit split of SipHash-2-4 keyed with
// (0, seed). These are the words the Rust phf 0.7 runtime derives.
func TestSipHash64PinnedValues(t *testing.T) {
	cases := []struct {
		key  string
		seed uint64
		want Hashes
	}{
		{"loop", 1, Hashes{G: 1962246, F1: 1592581, F2: 1427488}},        // digest 0xd7208309a0bdf106
		{"continue", 0xdeadbeef, Hashes{G: 819579, F1: 408164, F2: 50468}}, // digest 0x831490c74c8c817b
		{"", 7, Hashes{G: 1178977, F1: 1920642, F2: 984748}},               // digest 0xbc1ab3a9d051fd61
	}
	for _, tc := range cases {
		if got := Hash(SipHash64, tc.seed, []byte(tc.key)); got != tc.want {
			t.Errorf("Hash(SipHash64, %d, %q) = %+v, want %+v", tc.seed, tc.key, got, tc.want)
		}
	}
}

func TestSplitFields(t *testing.T) {
	h := uint64(0x15)<<42 | uint64(0x1fffff)<<21 | 3
	if got, want := split(h), (Hashes{G: 3, F1: 0x1fffff, F2: 0x15}); got != want {
		t.Fatalf("split(%#x) = %+v, want %+v", h, got, want)
	}
	// Bit 63 lies outside every field.
	if got := split(1 << 63); got != (Hashes{}) {
		t.Fatalf("split(1<<63) = %+v, want zero", got)
	}
}
