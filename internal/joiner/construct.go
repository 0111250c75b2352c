package joiner

import (
	"fmt"
	"runtime"

	"github.com/evoltools/bionj2/internal/distmat"
	"github.com/evoltools/bionj2/internal/forest"
	"github.com/evoltools/bionj2/internal/phyloerr"
)

// New builds a Joiner over the given distance matrix for the requested
// variant. D is taken by reference and mutated in place as clustering
// proceeds; callers that need the original matrix afterwards should pass
// D.Clone(). nprocs <= 0 is resolved to runtime.GOMAXPROCS(0).
func New(d *distmat.Matrix, variant Variant, nprocs int) (*Joiner, error) {
	n := d.RowCount()
	if n < 3 {
		return nil, fmt.Errorf("%w: have %d leaves, need at least 3", phyloerr.ErrTooFewLeaves, n)
	}
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	j := &Joiner{
		D:       d,
		Forest:  forest.New(),
		variant: variant,
		nprocs:  nprocs,
	}
	if variant != NJ {
		j.V = d.Clone()
	}
	j.rowToCluster = make([]int, n)
	for r := 0; r < n; r++ {
		j.rowToCluster[r] = j.Forest.NewLeaf(d.Labels[r])
	}
	return j, nil
}

// ConstructTree runs the naive O(n^3) NJ/BIONJ clustering loop to
// completion and returns the id of the tree's (unrooted) root cluster.
// Must not be called with Variant == Bounding; use ConstructTreeRapid for
// that.
func (j *Joiner) ConstructTree() (int, error) {
	if j.variant == Bounding {
		return 0, fmt.Errorf("%w: ConstructTree does not support Bounding, use ConstructTreeRapid", phyloerr.ErrUnknownVariant)
	}
	for j.D.RowCount() > 3 {
		best := j.getMinimumEntryNaive()
		j.reduce(best.column, best.row)
	}
	return j.finishTernary(), nil
}

// ConstructTreeRapid runs the Bounding (Rapid-BIONJ) clustering loop: a
// sorted-array pruning search in place of the naive O(n^2)-per-iteration
// scan, with a periodic purge of entries referring to absorbed clusters.
// Returns the tree's root cluster id and the run's instrumentation.
func (j *Joiner) ConstructTreeRapid() (int, Stats, error) {
	if j.variant != Bounding {
		return 0, Stats{}, fmt.Errorf("%w: ConstructTreeRapid requires Variant Bounding", phyloerr.ErrUnknownVariant)
	}
	j.setupBounding()
	nextPurge := j.D.RowCount() * 2 / 3
	var lastRowMinima []position
	for j.D.RowCount() > 3 {
		var best position
		lastRowMinima, best = j.getMinimumEntryBounding(lastRowMinima)
		j.clusterBounding(best.column, best.row)
		if j.D.RowCount() == nextPurge {
			j.purgeAll()
			nextPurge = j.D.RowCount() * 2 / 3
		}
	}
	return j.finishTernary(), j.stats, nil
}

func (j *Joiner) purgeAll() {
	for r := 0; r < j.D.RowCount(); r++ {
		j.purgeRow(r)
	}
}
