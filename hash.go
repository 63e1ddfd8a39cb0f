package phf

import (
	"unsafe"

	"github.com/tamirms/phf/internal/chd"
)

// HashFunc identifies the keyed hash family a table was built with.
type HashFunc = chd.HashID

// Hash families. SipHash is the default and the zero value.
const (
	SipHash   = chd.SipHash
	XXH3      = chd.XXH3
	Murmur3   = chd.Murmur3

	// SipHash64 is the hash the Rust phf crate recomputes at runtime.
	SipHash64 = chd.SipHash64
)

// ParseHashFunc returns the hash family named s ("siphash", "xxh3",
// "murmur3", "siphash64").
func ParseHashFunc(s string) (HashFunc, bool) {
	for _, h := range []HashFunc{SipHash, XXH3, Murmur3, SipHash64} {
		if h.String() == s {
			return h, true
		}
	}
	return 0, false
}

// stringBytes returns the bytes of s without copying. The result must not
// be modified.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
