package chd

import (
	"github.com/dchest/siphash"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// HashID identifies the keyed hash family used for both the bucket hash and
// the displacement inputs. It is recorded in every serialized table.
type HashID uint8

const (
	// SipHash is SipHash-2-4 keyed with (0, seed). Default.
	SipHash HashID = 0

	// XXH3 is xxHash3-128 with the seed.
	XXH3 HashID = 1

	// Murmur3 is MurmurHash3 x64-128 with the seed folded to 32 bits.
	Murmur3 HashID = 2

	// SipHash64 is 64-bit SipHash-2-4 keyed with (0, seed), split into three
	// 21-bit words. It is the hash the Rust phf 0.7 runtime recomputes.
	SipHash64 HashID = 3
)

// splitBits is the width of each word SipHash64 yields.
const splitBits = 21

// String returns the hash family name.
func (h HashID) String() string {
	switch h {
	case SipHash:
		return "siphash"
	case XXH3:
		return "xxh3"
	case Murmur3:
		return "murmur3"
	case SipHash64:
		return "siphash64"
	default:
		return "unknown"
	}
}

// Valid reports whether h names a known hash family.
func (h HashID) Valid() bool {
	return h <= SipHash64
}

// Hashes holds the three 32-bit words derived from one key: G selects the
// bucket, F1 and F2 feed the displacement function.
type Hashes struct {
	G  uint32
	F1 uint32
	F2 uint32
}

// Hash computes the bucket and displacement words of key for seed.
//
// With (lo, hi) the two halves of the 128-bit digest, G = lo>>32, F1 = lo
// and F2 = hi truncated to 32 bits. SipHash64 instead takes G, F1 and F2
// from consecutive 21-bit fields of a 64-bit digest, lowest first.
func Hash(id HashID, seed uint64, key []byte) Hashes {
	var lo, hi uint64
	switch id {
	case SipHash64:
		return split(siphash.Hash(0, seed, key))
	case XXH3:
		h := xxh3.Hash128Seed(key, seed)
		lo, hi = h.Lo, h.Hi
	case Murmur3:
		lo, hi = murmur3.Sum128WithSeed(key, uint32(seed)^uint32(seed>>32))
	default:
		lo, hi = siphash.Hash128(0, seed, key)
	}
	return Hashes{
		G:  uint32(lo >> 32),
		F1: uint32(lo),
		F2: uint32(hi),
	}
}

func split(h uint64) Hashes {
	const mask = 1<<splitBits - 1
	return Hashes{
		G:  uint32(h & mask),
		F1: uint32((h >> splitBits) & mask),
		F2: uint32((h >> (2 * splitBits)) & mask),
	}
}

// Displace is the secondary hash: d2 + f1*d1 + f2 with 32-bit wraparound.
func Displace(f1, f2, d1, d2 uint32) uint32 {
	return d2 + f1*d1 + f2
}

// Slot returns the slot of a key with hashes h under disps.
// Preconditions: len(disps) > 0 and capacity > 0.
func Slot(h Hashes, disps []Disp, capacity int) int {
	d := disps[h.G%uint32(len(disps))]
	return int(Displace(h.F1, h.F2, d.D1, d.D2) % uint32(capacity))
}
