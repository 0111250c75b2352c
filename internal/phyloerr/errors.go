// Package phyloerr holds the sentinel errors shared by the bionj2 packages.
package phyloerr

import "errors"

var (
	ErrIO               = errors.New("error reading file")
	ErrMatrixParse      = errors.New("invalid distance matrix")
	ErrMatrixSize       = errors.New("distance matrix rank mismatch")
	ErrTooFewLeaves     = errors.New("too few leaves to build a tree")
	ErrNewickCycle      = errors.New("cluster forest contains a cycle")
	ErrUnknownVariant   = errors.New("unknown joiner variant")
)
