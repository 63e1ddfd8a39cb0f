// Package phfmap converts constructed hash states into runtime maps.
package phfmap

import (
	"github.com/tamirms/phf"
	"github.com/tamirms/phf/internal/chd"
)

// SlotKey returns the key index stored in slot, or key 0 for an empty slot.
// A filler never satisfies the key comparison of another key's lookup.
func SlotKey(st *chd.State, slot int) int {
	if st.IsEmpty(slot) {
		return 0
	}
	return st.Map[slot]
}

// FromState returns the runtime map of st, which was constructed over keys.
// value yields the value of key i. NumKeys is set only when the table has
// more slots than keys.
func FromState[V any](st *chd.State, keys [][]byte, value func(i int) V) phf.Map[V] {
	m := phf.Map[V]{
		Key:     st.Seed,
		Hash:    st.Hash,
		Disps:   st.Disps,
		Entries: make([]phf.Entry[V], len(st.Map)),
	}
	if len(st.Map) > len(keys) {
		m.NumKeys = len(keys)
	}
	for slot := range st.Map {
		idx := SlotKey(st, slot)
		m.Entries[slot] = phf.Entry[V]{Key: string(keys[idx]), Value: value(idx)}
	}
	return m
}
