package index

import "sort"

// DocIDSet is an unordered set of document identifiers.
type DocIDSet map[DocID]struct{}

func NewDocIDSet(ids ...DocID) DocIDSet {
	s := make(DocIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s DocIDSet) Contains(id DocID) bool {
	_, ok := s[id]
	return ok
}

func (s DocIDSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order.
func (s DocIDSet) Sorted() []DocID {
	ids := make([]DocID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
