package joiner

import "github.com/bits-and-blooms/bitset"

// liveSet tracks which cluster ids are still live rows in the Bounding
// engine's D matrix. It mirrors the clusterToRow>=0 test the source relies
// on, but as an explicit bit test rather than a sign check, following the
// teacher's own use of bitset.BitSet for membership tracking (leafsets in
// internal/graphs/treedata.go). Kept alongside clusterToRow rather than
// instead of it: the bitset answers "is c live" (purgeRow's filter), and
// clusterToRow answers "which row is c at" (getRowMinimum reads only
// clusterToRow, treating -1 as absorbed).
//
// A neighbour-joining run on n leaves appends at most n-2 interior clusters
// plus one root, so the bitset is sized at 2*n up front and never needs to
// grow.
type liveSet struct {
	bits *bitset.BitSet
}

func newLiveSet(leafCount int) *liveSet {
	return &liveSet{bits: bitset.New(uint(2 * leafCount))}
}

func (s *liveSet) mark(cluster int) {
	s.bits.Set(uint(cluster))
}

func (s *liveSet) clear(cluster int) {
	s.bits.Clear(uint(cluster))
}

func (s *liveSet) isLive(cluster int) bool {
	return s.bits.Test(uint(cluster))
}
