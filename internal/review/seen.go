package review

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/mmcdole/culler/internal/domain"
)

const (
	minSeenCapacity       = 1024
	seenFalsePositiveRate = 0.001
)

// seenIndex is the in-memory view of a kind's seen set. The bloom filter
// answers most "never seen" lookups while filtering a large library; the
// map is authoritative.
type seenIndex struct {
	ids   domain.IDSet
	bloom *bloom.BloomFilter
}

func newSeenIndex(ids domain.IDSet) *seenIndex {
	capacity := max(2*len(ids), minSeenCapacity)
	filter := bloom.NewWithEstimates(uint(capacity), seenFalsePositiveRate)
	for id := range ids {
		filter.AddString(id)
	}
	return &seenIndex{ids: ids.Clone(), bloom: filter}
}

// Has answers exactly as the map would. The filter is only a fast path: a
// negative skips the map lookup.
func (s *seenIndex) Has(id string) bool {
	if !s.bloom.TestString(id) {
		return false
	}
	return s.ids.Has(id)
}

func (s *seenIndex) Add(id string) {
	s.ids.Add(id)
	s.bloom.AddString(id)
}

// Remove drops id from the authoritative set. The filter cannot forget it,
// which only costs an extra map lookup.
func (s *seenIndex) Remove(id string) {
	delete(s.ids, id)
}

func (s *seenIndex) Len() int {
	return len(s.ids)
}

// Set returns the authoritative set for persistence
func (s *seenIndex) Set() domain.IDSet {
	return s.ids
}
