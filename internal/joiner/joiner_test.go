package joiner

import (
	"math"
	"strings"
	"testing"

	"github.com/evoltools/bionj2/internal/distmat"
	"github.com/evoltools/bionj2/internal/forest"
)

// buildMatrix is a small helper for constructing a labelled distance matrix
// directly from a symmetric table, for tests that need to reason about a
// specific, known set of distances.
func buildMatrix(labels []string, rows [][]float64) *distmat.Matrix {
	m := distmat.NewMatrix(len(labels))
	for r, name := range labels {
		m.Labels[r] = name
		for c, v := range rows[r] {
			m.Set(r, c, v)
		}
	}
	m.RecomputeTotals()
	return m
}

// ancestors walks cluster-forest parent links (derived from the forest's
// child links, which only point downward) from leaf up to the root,
// returning the chain of (clusterID, lengthToParent) pairs.
func ancestors(f *forest.Forest, leaf int) []struct {
	id     int
	length float64
} {
	parent := make(map[int]int)
	lengthToParent := make(map[int]float64)
	for id := 0; id < f.Len(); id++ {
		cl := f.At(id)
		for _, link := range cl.Links {
			parent[link.Cluster] = id
			lengthToParent[link.Cluster] = link.Length
		}
	}
	var chain []struct {
		id     int
		length float64
	}
	cur := leaf
	for {
		p, ok := parent[cur]
		if !ok {
			break
		}
		chain = append(chain, struct {
			id     int
			length float64
		}{cur, lengthToParent[cur]})
		cur = p
	}
	return chain
}

// patristicDistance sums branch lengths along the path between two leaves
// via their lowest common ancestor, computed directly from the forest
// (independent of the Newick emitter, so it exercises the forest's own
// semantics rather than round-tripping through text).
func patristicDistance(f *forest.Forest, leafA, leafB int) float64 {
	chainA := ancestors(f, leafA)
	chainB := ancestors(f, leafB)
	// Each chain step is (cluster, length up to that cluster's parent), so a
	// step's cluster sits at the distance accumulated before its own length
	// is added; the root has no step of its own and closes each chain.
	onA := make(map[int]float64) // ancestor cluster id -> distance from leafA
	dist := 0.0
	for _, step := range chainA {
		onA[step.id] = dist
		dist += step.length
	}
	onA[f.Root()] = dist
	dist = 0.0
	for _, step := range chainB {
		if d, ok := onA[step.id]; ok {
			return d + dist
		}
		dist += step.length
	}
	return onA[f.Root()] + dist
}

func leafIDByName(f *forest.Forest, name string) int {
	for id := 0; id < f.Len(); id++ {
		cl := f.At(id)
		if len(cl.Links) == 0 && cl.Name == name {
			return id
		}
	}
	panic("no such leaf: " + name)
}

// additiveFourTaxon returns the labels and distance table for the tree
// ((A:1,B:2):3,(C:4,D:5):6); — a classic additive (noise-free) example on
// which NJ is exact, so recovered patristic distances should exactly match
// the table, modulo floating point error.
func additiveFourTaxon() ([]string, [][]float64) {
	labels := []string{"A", "B", "C", "D"}
	rows := [][]float64{
		{0, 3, 14, 15},
		{3, 0, 15, 16},
		{14, 15, 0, 9},
		{15, 16, 9, 0},
	}
	return labels, rows
}

// additiveFiveTaxon returns the labels and distance table for a five-leaf
// additive tree, large enough that ConstructTreeRapid needs two Bounding
// iterations (so decideOnRowScanningOrder runs against a lastRowMinima
// computed at a higher row count than the one it's applied to).
func additiveFiveTaxon() ([]string, [][]float64) {
	// Derived from the tree ((A:1,B:2):5,C:6,(D:3,E:4):7) (unrooted, ternary
	// at the root), so it's exactly additive.
	labels := []string{"A", "B", "C", "D", "E"}
	rows := [][]float64{
		{0, 3, 12, 16, 17},
		{3, 0, 13, 17, 18},
		{12, 13, 0, 16, 17},
		{16, 17, 16, 0, 7},
		{17, 18, 17, 7, 0},
	}
	return labels, rows
}

func checkPatristicMatches(t *testing.T, f *forest.Forest, labels []string, rows [][]float64) {
	t.Helper()
	for i := range labels {
		for k := i + 1; k < len(labels); k++ {
			a := leafIDByName(f, labels[i])
			b := leafIDByName(f, labels[k])
			got := patristicDistance(f, a, b)
			want := rows[i][k]
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("patristic distance %s-%s = %v, want %v", labels[i], labels[k], got, want)
			}
		}
	}
}

func TestConstructTreeRecoversAdditiveDistancesNJ(t *testing.T) {
	labels, rows := additiveFourTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, NJ, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := j.ConstructTree(); err != nil {
		t.Fatalf("ConstructTree: %v", err)
	}
	checkPatristicMatches(t, j.Forest, labels, rows)
}

func TestConstructTreeRecoversAdditiveDistancesBIONJ(t *testing.T) {
	labels, rows := additiveFourTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, BIONJ, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := j.ConstructTree(); err != nil {
		t.Fatalf("ConstructTree: %v", err)
	}
	checkPatristicMatches(t, j.Forest, labels, rows)
}

func TestConstructTreeRapidRecoversAdditiveDistances(t *testing.T) {
	labels, rows := additiveFourTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, Bounding, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := j.ConstructTreeRapid(); err != nil {
		t.Fatalf("ConstructTreeRapid: %v", err)
	}
	checkPatristicMatches(t, j.Forest, labels, rows)
}

func TestConstructTreeRapidMatchesNaiveBIONJ(t *testing.T) {
	labels, rows := additiveFourTaxon()
	naive, err := New(buildMatrix(labels, rows), BIONJ, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := naive.ConstructTree(); err != nil {
		t.Fatalf("ConstructTree: %v", err)
	}
	rapid, err := New(buildMatrix(labels, rows), Bounding, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := rapid.ConstructTreeRapid(); err != nil {
		t.Fatalf("ConstructTreeRapid: %v", err)
	}
	for i := range labels {
		for k := i + 1; k < len(labels); k++ {
			na := leafIDByName(naive.Forest, labels[i])
			nb := leafIDByName(naive.Forest, labels[k])
			ra := leafIDByName(rapid.Forest, labels[i])
			rb := leafIDByName(rapid.Forest, labels[k])
			got := patristicDistance(rapid.Forest, ra, rb)
			want := patristicDistance(naive.Forest, na, nb)
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("patristic distance %s-%s: naive BIONJ %v, Bounding %v", labels[i], labels[k], want, got)
			}
		}
	}
}

func TestConstructTreeRapidRecoversAdditiveDistancesFiveTaxa(t *testing.T) {
	// Five leaves means ConstructTreeRapid runs two Bounding iterations
	// before the ternary finish, so decideOnRowScanningOrder is exercised
	// with a lastRowMinima computed at a higher row count than the one
	// it's applied against (regression for the chosen[] index panic).
	labels, rows := additiveFiveTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, Bounding, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := j.ConstructTreeRapid(); err != nil {
		t.Fatalf("ConstructTreeRapid: %v", err)
	}
	checkPatristicMatches(t, j.Forest, labels, rows)
}

func TestChooseLambdaOnZeroVarianceReturnsHalf(t *testing.T) {
	// Two distinct taxa at distance 0 give V[a,b] == 0 (V starts as a clone
	// of D); chooseLambda must fall back to the NJ midpoint instead of
	// dividing by zero.
	labels := []string{"A", "B", "C", "D"}
	rows := [][]float64{
		{0, 0, 5, 6},
		{0, 0, 5, 6},
		{5, 5, 0, 3},
		{6, 6, 3, 0},
	}
	m := buildMatrix(labels, rows)
	j, err := New(m, BIONJ, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := j.chooseLambda(0, 1, j.V.Get(0, 1))
	if got != 0.5 {
		t.Errorf("chooseLambda with Vab=0 = %v, want 0.5", got)
	}
	if _, err := j.ConstructTree(); err != nil {
		t.Fatalf("ConstructTree: %v", err)
	}
	for id := 0; id < j.Forest.Len(); id++ {
		for _, link := range j.Forest.At(id).Links {
			if math.IsNaN(link.Length) {
				t.Errorf("cluster %d has NaN branch length to %d", id, link.Cluster)
			}
		}
	}
}

func TestNewRejectsTooFewLeaves(t *testing.T) {
	m := distmat.NewMatrix(2)
	_, err := New(m, NJ, 1)
	if err == nil {
		t.Fatal("New with 2 leaves succeeded, want error")
	}
	if !strings.Contains(err.Error(), "at least 3") {
		t.Errorf("error = %q, want mention of minimum leaf count", err)
	}
}

func TestConstructTreeRejectsBoundingVariant(t *testing.T) {
	labels, rows := additiveFourTaxon()
	m := buildMatrix(labels, rows)
	j, err := New(m, Bounding, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := j.ConstructTree(); err == nil {
		t.Fatal("ConstructTree on Bounding variant succeeded, want error")
	}
}
