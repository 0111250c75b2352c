// Package forest implements the append-only cluster forest that the
// neighbour-joining family of algorithms builds up: leaves are added first,
// then each join appends a new interior cluster referencing the two
// clusters it absorbed (and the branch lengths to each), and the final
// ternary join appends the unrooted root. Clusters are never mutated once
// appended, and are addressed by their position in the slice, so a Forest
// is safe to read concurrently once construction (which is inherently
// sequential) is done.
package forest

// Link is one edge from an interior cluster down to a cluster it joined.
type Link struct {
	Cluster int     // index into Forest.clusters
	Length  float64 // branch length along this link
}

// Cluster is either a leaf (no links) or an interior node (two links for an
// ordinary join, three for the final, unrooted unification of the last
// three clusters).
type Cluster struct {
	Name  string // leaf name; empty for interior clusters
	Links []Link
}

// Forest is the append-only collection of clusters built up over a
// construction run.
type Forest struct {
	clusters []Cluster
}

// New creates an empty forest.
func New() *Forest {
	return &Forest{}
}

// NewLeaf appends a leaf cluster and returns its id.
func (f *Forest) NewLeaf(name string) int {
	f.clusters = append(f.clusters, Cluster{Name: name})
	return len(f.clusters) - 1
}

// Join appends an interior cluster joining a and b with the given branch
// lengths, and returns its id.
func (f *Forest) Join(a int, aLength float64, b int, bLength float64) int {
	f.clusters = append(f.clusters, Cluster{
		Links: []Link{{Cluster: a, Length: aLength}, {Cluster: b, Length: bLength}},
	})
	return len(f.clusters) - 1
}

// JoinTernary appends the final, three-way root cluster that unifies the
// last three live clusters of an unrooted tree, and returns its id.
func (f *Forest) JoinTernary(a int, aLength float64, b int, bLength float64, c int, cLength float64) int {
	f.clusters = append(f.clusters, Cluster{
		Links: []Link{
			{Cluster: a, Length: aLength},
			{Cluster: b, Length: bLength},
			{Cluster: c, Length: cLength},
		},
	})
	return len(f.clusters) - 1
}

// Len returns the number of clusters (leaves plus interior) appended so far.
func (f *Forest) Len() int {
	return len(f.clusters)
}

// At returns the cluster stored at id.
func (f *Forest) At(id int) Cluster {
	return f.clusters[id]
}

// Root returns the id of the last cluster appended, which is the root of
// the tree once construction has finished with a call to JoinTernary (or,
// for a two-leaf input, the single Join that produced it).
func (f *Forest) Root() int {
	return len(f.clusters) - 1
}
