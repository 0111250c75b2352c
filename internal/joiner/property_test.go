package joiner

import "testing"

func TestConstructTreeRapidStatsOneEntryPerJoin(t *testing.T) {
	labels, rows := additiveFourTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, Bounding, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, stats, err := j.ConstructTreeRapid()
	if err != nil {
		t.Fatalf("ConstructTreeRapid: %v", err)
	}
	wantJoins := len(labels) - 3
	if got := len(stats.EntriesPerIteration); got != wantJoins {
		t.Errorf("len(EntriesPerIteration) = %d, want %d (one per join before the ternary finish)", got, wantJoins)
	}
	if stats.OperationCount <= 0 {
		t.Errorf("OperationCount = %d, want > 0", stats.OperationCount)
	}
	sum := 0
	for _, v := range stats.EntriesPerIteration {
		sum += v
	}
	if sum != stats.OperationCount {
		t.Errorf("sum(EntriesPerIteration) = %d, want OperationCount %d", sum, stats.OperationCount)
	}
}

func TestConstructTreeRapidNeverVisitsMoreThanRowWidth(t *testing.T) {
	// Each row-scan can never visit more entries than the row holds (at
	// most one per other input leaf, plus the sentinel; rows not re-sorted
	// since the last purge still hold entries for absorbed clusters): a regression
	// guard against the pruning bound somehow scanning past the sorted
	// row's populated prefix.
	labels, rows := additiveFourTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, Bounding, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, stats, err := j.ConstructTreeRapid()
	if err != nil {
		t.Fatalf("ConstructTreeRapid: %v", err)
	}
	n := len(labels)
	for iter, visited := range stats.EntriesPerIteration {
		maxPossible := n * n // generous bound: n rows, each at most n entries
		if visited > maxPossible {
			t.Errorf("iteration %d visited %d entries, want <= %d", iter, visited, maxPossible)
		}
	}
}
