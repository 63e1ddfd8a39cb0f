package phf

import "iter"

// Set is an immutable perfect hash set of strings, declared as a literal
// emitted by codegen.
type Set struct {
	Map Map[struct{}]
}

// Contains reports whether key is in the set.
func (s *Set) Contains(key string) bool {
	return s.Map.Contains(key)
}

// ContainsBytes is Contains for a byte-slice key.
func (s *Set) ContainsBytes(key []byte) bool {
	return s.Map.index(key) >= 0
}

// Len returns the number of keys.
func (s *Set) Len() int {
	return s.Map.Len()
}

// All yields every key in slot order.
func (s *Set) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range s.Map.All() {
			if !yield(k) {
				return
			}
		}
	}
}
