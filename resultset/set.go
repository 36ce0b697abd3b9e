// Package resultset implements the ordered, deduplicated candidate set that
// both the initial scanner and the refiner produce: a collection of
// scantypes.Item keyed by address, iterable in ascending address order.
package resultset

import (
	"github.com/google/btree"

	"github.com/orviska/fuzzyscan/scantypes"
)

// degree is the B-tree branching factor. Candidate sets can run into the
// millions of addresses during a refine round, so a wide, shallow tree
// keeps Insert/ForEach cache-friendly.
const degree = 32

// Set is an ordered set of scantypes.Item keyed by Address. No two items in
// the set share an address; inserting a second item at an existing address
// replaces the first.
type Set struct {
	tree *btree.BTreeG[scantypes.Item]
}

// New returns an empty candidate set.
func New() *Set {
	return &Set{
		tree: btree.NewG(degree, func(a, b scantypes.Item) bool {
			return a.Address < b.Address
		}),
	}
}

// Insert adds or replaces item, keyed by its address.
func (s *Set) Insert(item scantypes.Item) {
	s.tree.ReplaceOrInsert(item)
}

// InsertAll bulk-inserts items, in any order; the set's own ordering does
// not depend on insertion order.
func (s *Set) InsertAll(items []scantypes.Item) {
	for _, item := range items {
		s.tree.ReplaceOrInsert(item)
	}
}

// Len reports the number of distinct addresses in the set.
func (s *Set) Len() int {
	return s.tree.Len()
}

// ForEach visits every item in ascending address order. Returning false
// from fn stops the iteration early.
func (s *Set) ForEach(fn func(scantypes.Item) bool) {
	s.tree.Ascend(func(item scantypes.Item) bool {
		return fn(item)
	})
}

// Items materializes the set as a slice in ascending address order.
func (s *Set) Items() []scantypes.Item {
	out := make([]scantypes.Item, 0, s.tree.Len())
	s.tree.Ascend(func(item scantypes.Item) bool {
		out = append(out, item)
		return true
	})
	return out
}
