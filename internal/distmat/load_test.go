package distmat

import (
	"errors"
	"strings"
	"testing"

	"github.com/evoltools/bionj2/internal/phyloerr"
)

func TestLoadFromFile(t *testing.T) {
	m, err := LoadFromFile("testdata/five.dist")
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if m.RowCount() != 5 {
		t.Fatalf("RowCount() = %d, want 5", m.RowCount())
	}
	if got, want := m.Labels[0], "A"; got != want {
		t.Errorf("Labels[0] = %q, want %q", got, want)
	}
	if got, want := m.Get(0, 1), 5.0; got != want {
		t.Errorf("Get(0,1) = %v, want %v", got, want)
	}
	if got, want := m.Get(1, 0), 5.0; got != want {
		t.Errorf("Get(1,0) = %v, want %v", got, want)
	}
}

func TestLoadFromReaderErrors(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectedErr error
	}{
		{"empty input", "", phyloerr.ErrMatrixParse},
		{"non-numeric rank", "abc\n", phyloerr.ErrMatrixParse},
		{"missing row", "2\nA 0 1\n", phyloerr.ErrMatrixSize},
		{"wrong field count", "2\nA 0 1\nB 1\n", phyloerr.ErrMatrixParse},
		{"non-numeric distance", "2\nA 0 1\nB x 0\n", phyloerr.ErrMatrixParse},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(test.input))
			if !errors.Is(err, test.expectedErr) {
				t.Errorf("LoadFromReader(%q) error = %v, want %v", test.input, err, test.expectedErr)
			}
		})
	}
}

func TestLoadFromReaderAveragesAsymmetricEntries(t *testing.T) {
	m, err := LoadFromReader(strings.NewReader("2\nA 0 3\nB 5 0\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if got, want := m.Get(0, 1), 4.0; got != want {
		t.Errorf("Get(0,1) = %v, want %v (average of 3 and 5)", got, want)
	}
	if got, want := m.Get(1, 0), 4.0; got != want {
		t.Errorf("Get(1,0) = %v, want %v (average of 3 and 5)", got, want)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("testdata/does-not-exist.dist")
	if !errors.Is(err, phyloerr.ErrIO) {
		t.Errorf("LoadFromFile error = %v, want %v", err, phyloerr.ErrIO)
	}
}
