package phf

import (
	"iter"

	"github.com/tamirms/phf/internal/chd"
)

// Disp is the displacement pair of one bucket.
type Disp = chd.Disp

// Entry is one slot of a generated map.
type Entry[V any] struct {
	Key   string
	Value V
}

// Map is an immutable perfect hash map with string keys. It is normally
// declared as a literal emitted by codegen and is safe for concurrent use.
//
// Entries has one element per slot. When the table has more slots than
// keys, the unused slots repeat the entry of another key and NumKeys holds
// the real key count.
type Map[V any] struct {
	// Key is the seed of the successful construction attempt.
	Key uint64

	// Hash is the hash family. The zero value is SipHash.
	Hash HashFunc

	// NumKeys is the number of keys when it differs from len(Entries).
	NumKeys int

	// Disps holds one displacement pair per bucket.
	Disps []Disp

	// Entries holds the slot table.
	Entries []Entry[V]
}

// Index returns the slot of key, or -1 if key is not in the map.
func (m *Map[V]) Index(key string) int {
	return m.index(stringBytes(key))
}

func (m *Map[V]) index(key []byte) int {
	if len(m.Entries) == 0 || len(m.Disps) == 0 {
		return -1
	}
	slot := chd.Slot(chd.Hash(m.Hash, m.Key, key), m.Disps, len(m.Entries))
	if m.Entries[slot].Key != string(key) {
		return -1
	}
	return slot
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	return m.get(stringBytes(key))
}

// GetBytes is Get for a byte-slice key.
func (m *Map[V]) GetBytes(key []byte) (V, bool) {
	return m.get(key)
}

func (m *Map[V]) get(key []byte) (V, bool) {
	slot := m.index(key)
	if slot < 0 {
		var zero V
		return zero, false
	}
	return m.Entries[slot].Value, true
}

// Contains reports whether key is in the map.
func (m *Map[V]) Contains(key string) bool {
	return m.Index(key) >= 0
}

// Len returns the number of keys.
func (m *Map[V]) Len() int {
	if m.NumKeys > 0 {
		return m.NumKeys
	}
	return len(m.Entries)
}

// All yields every key and value in slot order. Filler slots are skipped.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for i, e := range m.Entries {
			if m.NumKeys > 0 && m.Index(e.Key) != i {
				continue
			}
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}
