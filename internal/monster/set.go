package monster

import "sort"

// Set is an unordered collection of unique monster identifiers.
// Identifiers are compared byte for byte.
type Set map[string]struct{}

// NewSet creates a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}

	return s
}

// Add inserts id into the set.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of unique identifiers.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the identifiers in ascending lexicographic order.
// The result is never nil.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Difference returns the identifiers in s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)

	for id := range s {
		if !other.Has(id) {
			out.Add(id)
		}
	}

	return out
}
