package chd

import "fmt"

// errAttemptFailed is returned when some bucket has no valid displacement
// pair. The driver retries with a new seed; it is never user-facing.
var errAttemptFailed = fmt.Errorf("chd solver: no displacement fits bucket")

// solver holds the state of a single construction attempt. It is owned by
// one attempt and discarded afterwards, including on failure.
type solver struct {
	capacity uint32
	hashes   []Hashes

	// Output
	disps []Disp
	slots []int // slot -> key index, emptySlot if free

	// Within-bucket collision detection. tryGen[slot] == generation means
	// the slot was taken by the candidate pair currently being tested.
	tryGen     []uint64
	generation uint64

	// Reusable per-bucket buffers (max bucket size)
	candidate []int
}

// newSolver allocates the attempt-local slot table.
func newSolver(hashes []Hashes, numBuckets, capacity int) *solver {
	slots := make([]int, capacity)
	for i := range slots {
		slots[i] = emptySlot
	}
	return &solver{
		capacity: uint32(capacity),
		hashes:   hashes,
		disps:    make([]Disp, numBuckets),
		slots:    slots,
		tryGen:   make([]uint64, capacity),
	}
}

// solve places every bucket in order.
// Returns errAttemptFailed as soon as one bucket cannot be placed.
func (s *solver) solve(buckets []bucket) error {
	for _, b := range buckets {
		if len(b.keys) == 0 {
			// Ordered largest first, so the rest are empty too and keep (0, 0).
			break
		}
		if !s.placeBucket(b) {
			return fmt.Errorf("%w: bucket %d (%d keys, capacity %d)",
				errAttemptFailed, b.idx, len(b.keys), s.capacity)
		}
	}
	return nil
}

// placeBucket scans (d1, d2) over [0, capacity)² in order and commits the
// first pair that maps the bucket into distinct empty slots.
func (s *solver) placeBucket(b bucket) bool {
	if s.capacity == 0 {
		return false
	}
	if cap(s.candidate) < len(b.keys) {
		s.candidate = make([]int, len(b.keys))
	}
	candidate := s.candidate[:len(b.keys)]

	for d1 := uint32(0); d1 < s.capacity; d1++ {
		for d2 := uint32(0); d2 < s.capacity; d2++ {
			if s.tryPair(b, d1, d2, candidate) {
				for i, keyIdx := range b.keys {
					s.slots[candidate[i]] = keyIdx
				}
				s.disps[b.idx] = Disp{D1: d1, D2: d2}
				return true
			}
		}
	}
	return false
}

// tryPair computes the bucket's slots under (d1, d2) into candidate.
// Reports false on a collision with an occupied slot or within the bucket.
func (s *solver) tryPair(b bucket, d1, d2 uint32, candidate []int) bool {
	s.generation++
	for i, keyIdx := range b.keys {
		h := s.hashes[keyIdx]
		slot := Displace(h.F1, h.F2, d1, d2) % s.capacity
		if s.slots[slot] != emptySlot || s.tryGen[slot] == s.generation {
			return false
		}
		s.tryGen[slot] = s.generation
		candidate[i] = int(slot)
	}
	return true
}
