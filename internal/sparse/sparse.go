// Package sparse provides a set of small unsigned integers with constant
// time insertion, membership and clearing.
//
// The interpreter uses it to record which lookbehinds matched at the
// current position: the set is cleared once per input position, so Clear
// must not touch the backing arrays.
package sparse

// Set holds values in [0, capacity). The sparse array maps a value to its
// slot in dense; a value is present when that slot points back at it.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New returns an empty set for values below capacity.
func New(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds v and reports whether it was absent. Panics if v is out of
// range.
func (s *Set) Insert(v uint32) bool {
	if s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(len(s.dense)) //nolint:gosec // len(dense) < capacity
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is in the set. Out of range values are never
// present.
func (s *Set) Contains(v uint32) bool {
	if uint64(v) >= uint64(len(s.sparse)) {
		return false
	}
	i := s.sparse[v]
	return uint64(i) < uint64(len(s.dense)) && s.dense[i] == v
}

// Remove deletes v by moving the last element into its slot.
func (s *Set) Remove(v uint32) {
	if !s.Contains(v) {
		return
	}
	i := s.sparse[v]
	last := s.dense[len(s.dense)-1]
	s.dense[i] = last
	s.sparse[last] = i
	s.dense = s.dense[:len(s.dense)-1]
}

// Clear empties the set.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of values.
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the values in insertion order, until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
