package distmat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/evoltools/bionj2/internal/phyloerr"
)

// LoadFromFile reads a PHYLIP-style distance matrix: a first line giving the
// rank n, followed by n lines each holding a name and n whitespace-separated
// distances. Values above and below the diagonal need not agree exactly;
// LoadFromFile averages them the way the source's constructor does, without
// reporting the discrepancy.
func LoadFromFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", phyloerr.ErrIO, path, err)
	}
	defer f.Close()
	m, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadFromReader parses the same format as LoadFromFile from an arbitrary
// reader (used directly by tests, and by LoadFromFile).
func LoadFromReader(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty input", phyloerr.ErrMatrixParse)
	}
	rank, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || rank < 0 {
		return nil, fmt.Errorf("%w: first line %q is not a non-negative rank",
			phyloerr.ErrMatrixParse, scanner.Text())
	}
	m := NewMatrix(rank)
	for r := 0; r < rank; r++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: expected %d rows, found %d",
				phyloerr.ErrMatrixSize, rank, r)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != rank+1 {
			return nil, fmt.Errorf("%w: row %d has %d fields, want name + %d distances",
				phyloerr.ErrMatrixParse, r, len(fields), rank)
		}
		m.Labels[r] = fields[0]
		for c := 0; c < rank; c++ {
			v, err := strconv.ParseFloat(fields[c+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %s",
					phyloerr.ErrMatrixParse, r, c, err)
			}
			m.rows[r][c] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", phyloerr.ErrIO, err)
	}
	m.Symmetrize()
	m.RecomputeTotals()
	return m, nil
}
