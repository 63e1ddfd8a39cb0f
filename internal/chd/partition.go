package chd

// bucket is a group of key indices sharing G mod numBuckets.
type bucket struct {
	idx  int   // bucket index (addresses State.Disps)
	keys []int // key indices
}

// partition groups key indices by bucket and orders the buckets by
// descending size, ties by ascending bucket index.
//
// Larger buckets are placed first while the slot table is still sparse.
// Counting sort: O(n) bucket ordering.
func partition(hashes []Hashes, numBuckets int) []bucket {
	buckets := make([]bucket, numBuckets)
	for i := range buckets {
		buckets[i].idx = i
	}
	if numBuckets == 0 {
		return buckets
	}
	for keyIdx, h := range hashes {
		b := int(h.G % uint32(numBuckets))
		buckets[b].keys = append(buckets[b].keys, keyIdx)
	}

	maxSize := 0
	for i := range buckets {
		maxSize = max(maxSize, len(buckets[i].keys))
	}

	// counts[s] = number of buckets of size s; positions derived so that
	// larger sizes come first.
	counts := make([]int, maxSize+1)
	for i := range buckets {
		counts[len(buckets[i].keys)]++
	}
	positions := make([]int, maxSize+1)
	pos := 0
	for size := maxSize; size >= 0; size-- {
		positions[size] = pos
		pos += counts[size]
	}

	ordered := make([]bucket, numBuckets)
	for i := range buckets {
		size := len(buckets[i].keys)
		ordered[positions[size]] = buckets[i]
		positions[size]++
	}
	return ordered
}
