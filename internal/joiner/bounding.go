package joiner

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// setupBounding initializes the cluster-indexed bookkeeping (clusterToRow,
// clusterTotals, the live-cluster bitset) and the sorted D-row mirrors (S
// and I, in the RapidNJ papers' naming) that the Bounding variant needs on
// top of the plain BIONJ state. Must be called once, after the matrices are
// loaded and before the clustering loop starts.
func (j *Joiner) setupBounding() {
	n := j.D.RowCount()
	j.clusterToRow = make([]int, n)
	j.clusterTotals = make([]float64, n)
	j.live = newLiveSet(n)
	for r := 0; r < n; r++ {
		j.clusterToRow[r] = r
		j.clusterTotals[r] = j.D.RowTotal(r)
		j.live.mark(r)
	}
	j.scaledClusterTotals = make([]float64, n, 2*n)
	j.rowScanOrder = make([]int, n)

	// Indexed by live row, not by cluster id, so (unlike clusterToRow and
	// friends) these never grow past n entries: a join shrinks the row
	// count, it never increases it.
	j.sortedValues = make([][]float64, n)
	j.sortedClusters = make([][]int, n)
	for r := 0; r < n; r++ {
		j.sortedValues[r] = make([]float64, n)
		j.sortedClusters[r] = make([]int, n)
	}
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(j.nprocs)
	for r := 0; r < n; r++ {
		r := r
		g.Go(func() error { j.sortRow(r); return nil })
	}
	_ = g.Wait()
}

// sortRow copies live row r of D into the sorted mirror, tagging each value
// with the cluster id it came from, and sorts both in step by value
// ascending, with a trailing infiniteDistance sentinel so a scan of the row
// has a natural stopping point.
func (j *Joiner) sortRow(r int) {
	n := j.D.RowCount()
	values := j.sortedValues[r]
	clusters := j.sortedClusters[r]
	w := 0
	for i := 0; i < n; i++ {
		if i == r {
			continue
		}
		values[w] = j.D.Get(r, i)
		clusters[w] = j.rowToCluster[i]
		w++
	}
	values[w] = infiniteDistance
	clusters[w] = 0
	sortParallelSlices(values[:w+1], clusters[:w+1])
}

// sortParallelSlices sorts values ascending, permuting clusters identically
// (the source's mirroredHeapsort, done here with sort.Sort over a small
// adapter instead of a hand-written heapsort: Go's sort package is what the
// ecosystem reaches for, and the source's own comment frames its heapsort
// as just "an implementation of the obvious algorithm", not something
// tuned beyond what a library sort already does).
func sortParallelSlices(values []float64, clusters []int) {
	sort.Sort(&parallelSort{values: values, clusters: clusters})
}

type parallelSort struct {
	values   []float64
	clusters []int
}

func (p *parallelSort) Len() int      { return len(p.values) }
func (p *parallelSort) Swap(i, k int) {
	p.values[i], p.values[k] = p.values[k], p.values[i]
	p.clusters[i], p.clusters[k] = p.clusters[k], p.clusters[i]
}
func (p *parallelSort) Less(i, k int) bool { return p.values[i] < p.values[k] }

// purgeRow drops entries from row r's sorted mirror that refer to clusters
// no longer live, compacting the rest forward. Stops at the first
// infiniteDistance sentinel, which purgeRow re-copies in place as it goes.
func (j *Joiner) purgeRow(r int) {
	values := j.sortedValues[r]
	clusters := j.sortedClusters[r]
	w := 0
	for i := 0; i < len(values); i++ {
		values[w] = values[i]
		clusters[w] = clusters[i]
		if values[i] >= infiniteDistance {
			break
		}
		if j.live.isLive(clusters[i]) {
			w++
		}
	}
}

// clusterBounding performs the Bounding variant's join step: it unmaps the
// two absorbed clusters, delegates the distance/variance reduction to
// reduce, then mirrors the row-removal RemoveRow already performed on D
// (and V) onto the sorted S/I rows, and finally rebuilds clusterTotals for
// every live cluster (the "-infiniteDistance wipe" trick, so the inner
// bound-search loop doesn't need to re-check liveness for totals).
func (j *Joiner) clusterBounding(a, b int) {
	n := j.D.RowCount()
	clusterA := j.rowToCluster[a]
	clusterB := j.rowToCluster[b]
	clusterMoved := j.rowToCluster[n-1]

	j.clusterToRow[clusterA] = -1
	j.clusterToRow[clusterB] = -1
	j.live.clear(clusterA)
	j.live.clear(clusterB)

	newClusterID := j.Forest.Len()
	j.reduce(a, b)

	j.clusterToRow = append(j.clusterToRow, a)
	j.clusterTotals = append(j.clusterTotals, j.D.RowTotal(a))
	j.scaledClusterTotals = append(j.scaledClusterTotals, j.D.RowTotal(a)/float64(j.D.RowCount()-1))
	j.live.mark(newClusterID)

	if b < j.D.RowCount() {
		j.clusterToRow[clusterMoved] = b
	}

	// reduce() already shrank D (and V) by one row via RemoveRow, which
	// moved the last live row (index n-1 before the removal, which is
	// D.RowCount() after it) into slot b. The S/I rows follow the same
	// move, so the sorted row for b becomes cluster moved's sorted row.
	// Only row pointers move here; the totals rebuild below reads
	// rowToCluster, not the S/I rows.
	last := j.D.RowCount()
	j.sortedValues[b] = j.sortedValues[last]
	j.sortedClusters[b] = j.sortedClusters[last]

	for wipe := 0; wipe < newClusterID; wipe++ {
		j.clusterTotals[wipe] = -infiniteDistance
	}
	for r := 0; r < j.D.RowCount(); r++ {
		cluster := j.rowToCluster[r]
		j.clusterTotals[cluster] = j.D.RowTotal(r)
	}
	j.sortRow(a)
}

// decideOnRowScanningOrder rigs the next iteration's row-scan order to
// visit rows that had promising (low) Q-values last time first, so that
// qBest tightens early and the pruning bound in getRowMinimum starts doing
// useful work sooner. Mirrors the source's decideOnRowScanningOrder.
func (j *Joiner) decideOnRowScanningOrder(lastRowMinima []position) {
	sorted := make([]position, len(lastRowMinima))
	copy(sorted, lastRowMinima)
	sort.Slice(sorted, func(i, k int) bool { return sorted[i].value < sorted[k].value })

	n := j.D.RowCount()
	chosen := make([]bool, n)
	w := 0
	for _, pos := range sorted {
		if pos.value >= infiniteDistance {
			break
		}
		if pos.row < n {
			if !chosen[pos.row] {
				j.rowScanOrder[w] = pos.row
				w++
			}
			chosen[pos.row] = true
		}
		if pos.column < n {
			if !chosen[pos.column] {
				j.rowScanOrder[w] = pos.column
				w++
			}
			chosen[pos.column] = true
		}
	}
	for r := 0; r < n; r++ {
		if !chosen[r] {
			j.rowScanOrder[w] = r
			w++
		}
	}
}

// getMinimumEntryBounding is the Bounding variant's override of the naive
// min-Q search: it computes maxTot (the largest live scaled cluster total)
// once, then scans every row using getRowMinimum's sorted-array pruning
// bound, sharing qBest across rows as it tightens (protected by mu, the
// same #pragma omp critical shape the source uses).
func (j *Joiner) getMinimumEntryBounding(lastRowMinima []position) ([]position, position) {
	n := j.D.RowCount()
	c := j.Forest.Len()
	nless2 := float64(n - 2)
	tMultiplier := 0.0
	if n > 2 {
		tMultiplier = 1 / nless2
	}
	maxTot := 0.0
	for i := 0; i < c; i++ {
		j.scaledClusterTotals[i] = j.clusterTotals[i] * tMultiplier
		if j.clusterToRow[i] >= 0 && maxTot < j.scaledClusterTotals[i] {
			maxTot = j.scaledClusterTotals[i]
		}
	}

	if lastRowMinima != nil {
		j.decideOnRowScanningOrder(lastRowMinima)
	} else {
		for r := 0; r < n; r++ {
			j.rowScanOrder[r] = r
		}
	}

	rowMinima := make([]position, n)
	var mu sync.Mutex
	qBest := infiniteDistance
	visited := make([]int, n)

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(j.nprocs)
	for idx := 0; idx < n; idx++ {
		row := j.rowScanOrder[idx]
		g.Go(func() error {
			mu.Lock()
			bound := qBest
			mu.Unlock()
			pos, entriesVisited := j.getRowMinimum(row, maxTot, bound)
			rowMinima[row] = pos
			visited[row] = entriesVisited
			mu.Lock()
			if pos.value < qBest {
				qBest = pos.value
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, v := range visited {
		total += v
	}
	j.stats.OperationCount += total
	j.stats.EntriesPerIteration = append(j.stats.EntriesPerIteration, total)

	best := position{value: infiniteDistance}
	for _, pos := range rowMinima {
		if pos.value < best.value {
			best = pos
		}
	}
	return rowMinima, best
}

// getRowMinimum scans row's sorted D entries in ascending order, stopping
// as soon as an entry can no longer beat qBest even in the best case
// (vRowBound), and returns both the best position found and the number of
// entries actually visited (used for the operation-count diagnostic).
func (j *Joiner) getRowMinimum(row int, maxTot, qBest float64) (position, int) {
	n := j.D.RowCount()
	nless2 := float64(n - 2)
	tMultiplier := 0.0
	if n > 2 {
		tMultiplier = 1 / nless2
	}
	rowTotal := j.D.RowTotal(row) * tMultiplier
	vRowBound := qBest + maxTot + rowTotal

	pos := position{row: row, column: 0, value: infiniteDistance}
	values := j.sortedValues[row]
	clusters := j.sortedClusters[row]

	i := 0
	for ; values[i] < vRowBound; i++ {
		cluster := clusters[i]
		drc := values[i]
		qrc := drc - j.scaledClusterTotals[cluster] - rowTotal
		if qrc < pos.value {
			otherRow := j.clusterToRow[cluster]
			if otherRow >= 0 {
				if otherRow < row {
					pos.column = otherRow
					pos.row = row
				} else {
					pos.column = row
					pos.row = otherRow
				}
				pos.value = qrc
				if qrc < qBest {
					qBest = qrc
					vRowBound = qBest + maxTot + rowTotal
				}
			}
		}
	}
	return pos, i + 1
}
