package joiner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// getMinimumEntryNaive scans every live row for its minimum Q-value (the
// naive O(n^2)-per-iteration search shared by NJ and BIONJ; Bounding
// overrides this with the sorted-array search in bounding.go), and returns
// the global minimum. Row 0 is never scanned: every Q(r,c) with c<r is
// already visited once row r itself is scanned, so by the time every row
// 1..n-1 has been scanned, every off-diagonal cell has been seen exactly
// once.
func (j *Joiner) getMinimumEntryNaive() position {
	n := j.D.RowCount()
	nless2 := float64(n - 2)
	tMultiplier := 0.0
	if n > 2 {
		tMultiplier = 1 / nless2
	}
	if cap(j.scratchTotals) < n {
		j.scratchTotals = make([]float64, n)
	}
	tot := j.scratchTotals[:n]
	for r := 0; r < n; r++ {
		tot[r] = j.D.RowTotal(r) * tMultiplier
	}

	rowMinima := make([]position, n)
	rowMinima[0] = position{row: 0, column: 0, value: infiniteDistance}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(j.nprocs)
	for row := 1; row < n; row++ {
		row := row
		g.Go(func() error {
			pos := position{row: row, column: 0, value: infiniteDistance}
			for col := 0; col < row; col++ {
				v := j.D.Get(row, col) - tot[col]
				if v < pos.value {
					pos.column = col
					pos.value = v
				}
			}
			pos.value -= tot[row]
			rowMinima[row] = pos
			return nil
		})
	}
	_ = g.Wait() // the row-scan goroutines never return an error

	best := position{value: infiniteDistance}
	for _, pos := range rowMinima {
		if pos.value < best.value {
			best = pos
		}
	}
	return best
}
