// Package joiner implements the minimum-Q search and join/reduce step
// shared by the NJ, BIONJ and Bounding (Rapid-BIONJ) variants, and drives
// the full clustering loop for each.
package joiner

import (
	"github.com/evoltools/bionj2/internal/distmat"
	"github.com/evoltools/bionj2/internal/forest"
)

// Variant selects which of the three neighbour-joining algorithms a Joiner
// runs. Go has no class hierarchy to mirror the source's NJMatrix ->
// BIONJMatrix -> BoundingBIONJMatrix inheritance chain, so one Joiner
// carries all three variants' state and branches on Variant at the handful
// of points where the source overrides a virtual method.
type Variant int

const (
	NJ Variant = iota
	BIONJ
	Bounding
)

// infiniteDistance is the sentinel the source uses both to seed a
// min-search and to terminate a sorted row scan; 1e300 comfortably exceeds
// any realistic distance while still being an ordinary finite float64.
const infiniteDistance = 1e300

// Stats carries instrumentation gathered during a Bounding construction:
// the total number of sorted-row entries visited across the whole run, and
// the per-iteration breakdown of that count (one entry per join), which is
// what testable property #7 (decreasing search effort as qBest tightens)
// and the -plot diagnostic both consume.
type Stats struct {
	OperationCount      int
	EntriesPerIteration []int
}

// Joiner holds the distance matrix, the variance matrix (BIONJ/Bounding
// only), the forest being built, and the Bounding-only auxiliary state.
type Joiner struct {
	D       *distmat.Matrix
	V       *distmat.Matrix // nil for plain NJ
	Forest  *forest.Forest
	variant Variant

	rowToCluster []int // row index -> forest cluster id, current live rows

	// Bounding-only state (RapidNJ's D/S/I matrices and cluster bookkeeping).
	clusterToRow        []int     // cluster id -> live row, or -1 if absorbed
	clusterTotals       []float64 // "row" totals indexed by cluster id
	scaledClusterTotals []float64
	live                *liveSet // bitset mirror of clusterToRow's >=0 test
	sortedValues        [][]float64
	sortedClusters      [][]int
	rowScanOrder        []int
	stats               Stats

	// nprocs bounds the width of the errgroup-parallel row scans; see
	// minq.go and bounding.go.
	nprocs int

	// scratchTotals is the naive search's reusable scaled-row-total buffer,
	// sized once at leaf count and overwritten every iteration rather than
	// reallocated, mirroring the source's mutable scaledRowTotals field.
	scratchTotals []float64
}

// position is a candidate (row, column, Q-value) triple, row always the
// larger of the two row indices (matching the source's Position).
type position struct {
	row    int
	column int
	value  float64
}
