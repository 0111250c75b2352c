// Package newick emits a forest.Forest as a Newick tree string using an
// explicit stack instead of recursion, mirroring the source's
// writeTreeFile: recursion depth would otherwise track tree depth, which
// for a maximally unbalanced neighbour-joining tree is O(n).
package newick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evoltools/bionj2/internal/forest"
	"github.com/evoltools/bionj2/internal/phyloerr"
)

// place is one entry on the traversal stack: the cluster being visited, and
// which of its links has already been emitted (0 means "not yet entered").
type place struct {
	cluster    int
	linkNumber int
}

// Write renders the tree rooted at f.Root() as a Newick string terminated
// with a semicolon. Returns phyloerr.ErrNewickCycle if the forest's links
// describe a cycle instead of a tree; this should never happen for a
// correctly constructed forest and indicates a fatal logic error upstream.
func Write(f *forest.Forest) (string, error) {
	if f.Len() == 0 {
		return "", fmt.Errorf("%w: empty forest", phyloerr.ErrTooFewLeaves)
	}
	var out strings.Builder
	stack := []place{{cluster: f.Root(), linkNumber: 0}}
	maxLoop := 3 * f.Len()
	for len(stack) > 0 {
		maxLoop--
		if maxLoop < 0 {
			return "", phyloerr.ErrNewickCycle
		}
		here := stack[len(stack)-1]
		cluster := f.At(here.cluster)
		stack = stack[:len(stack)-1]
		if len(cluster.Links) == 0 {
			out.WriteString(cluster.Name)
			continue
		}
		if here.linkNumber == 0 {
			out.WriteByte('(')
			stack = append(stack, place{cluster: here.cluster, linkNumber: 1})
			stack = append(stack, place{cluster: cluster.Links[0].Cluster, linkNumber: 0})
			continue
		}
		nextChildNum := here.linkNumber
		prevLink := cluster.Links[nextChildNum-1]
		out.WriteByte(':')
		out.WriteString(strconv.FormatFloat(prevLink.Length, 'g', 8, 64))
		if nextChildNum < len(cluster.Links) {
			out.WriteByte(',')
			nextLink := cluster.Links[nextChildNum]
			stack = append(stack, place{cluster: here.cluster, linkNumber: nextChildNum + 1})
			stack = append(stack, place{cluster: nextLink.Cluster, linkNumber: 0})
		} else {
			out.WriteByte(')')
		}
	}
	out.WriteByte(';')
	return out.String(), nil
}
