package chd

// emptySlot marks an unoccupied slot in State.Map.
const emptySlot = -1

// Disp is the displacement pair of one bucket.
type Disp struct {
	D1 uint32
	D2 uint32
}

// State is the result of a successful construction attempt.
type State struct {
	// Seed is the seed of the successful attempt.
	Seed uint64

	// Hash is the hash family the table was built with.
	Hash HashID

	// Disps holds one pair per bucket, indexed by bucket.
	Disps []Disp

	// Map is the slot table: Map[slot] is a key index, or -1 for an empty
	// slot. len(Map) is the capacity.
	Map []int

	// Attempts is the 1-based index of the successful attempt.
	Attempts int
}

// Capacity returns the number of slots.
func (s *State) Capacity() int {
	return len(s.Map)
}

// Locate returns the slot assigned to key. For keys outside the original
// set the slot is arbitrary; callers must compare the stored key.
// Returns -1 for an empty table.
func (s *State) Locate(key []byte) int {
	if len(s.Map) == 0 || len(s.Disps) == 0 {
		return -1
	}
	return Slot(Hash(s.Hash, s.Seed, key), s.Disps, len(s.Map))
}

// IsEmpty reports whether slot holds no key.
func (s *State) IsEmpty(slot int) bool {
	return s.Map[slot] == emptySlot
}
