/*
bionj2 builds a phylogenetic tree from a distance matrix using neighbour
joining, BIONJ, or the Bounding (Rapid-BIONJ) search.

usage: bionj2 [ -bionj | -bounding | -n <procs> | -compare | -plot <prefix> ] <matrix> <output>

flags:

	-bionj
	  	use BIONJ's variance-weighted reduction instead of plain NJ
	-bounding
	  	use the sorted-array pruning search (implies -bionj); fastest on
	  	large inputs, produces the same tree as -bionj
	-n int
	  	number of parallel processes
	-compare
	  	(with -bounding) also run naive BIONJ on the same input and report
	  	its time alongside the Bounding run's
	-plot prefix
	  	(with -bounding) write prefix.png, a line plot of sorted-row
	  	entries visited per join
	-h	prints this message and exits
	-v	prints version number and exits

examples:

	  bionj2 -bionj distances.txt tree.nwk
	  bionj2 -bounding -n 4 -plot effort distances.txt tree.nwk
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/evoltools/bionj2/internal/diagnostics"
	"github.com/evoltools/bionj2/internal/distmat"
	"github.com/evoltools/bionj2/internal/joiner"
	"github.com/evoltools/bionj2/internal/newick"
)

const (
	Version    = "v0.1.0"
	ErrMessage = "bionj2 encountered an error ::"
)

type args struct {
	bionj      bool
	bounding   bool
	compare    bool
	nprocs     int
	plotPrefix string
	matrixFile string
	outputFile string
}

func setNProcs(nprocs int) int {
	maxProcs := runtime.GOMAXPROCS(0)
	switch {
	case nprocs > maxProcs:
		log.Printf("%d is greater than available processes (%d); limit set to %d\n", nprocs, maxProcs, maxProcs)
		return maxProcs
	case nprocs <= 0:
		log.Printf("number of processes not set; defaulting to %d processes\n", maxProcs)
		return maxProcs
	default:
		return nprocs
	}
}

func parseArgs() args {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr,
			"usage: bionj2 [ -bionj | -bounding | -n <procs> | -compare | -plot <prefix> ] <matrix> <output>\n",
			"\n",
			"flags:\n\n",
		)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr,
			"\n",
			"examples:\n\n",
			"  bionj2 -bionj distances.txt tree.nwk\n",
			"  bionj2 -bounding -n 4 -plot effort distances.txt tree.nwk\n",
		)
	}
	bionj := flag.Bool("bionj", false, "use BIONJ's variance-weighted reduction instead of plain NJ")
	bounding := flag.Bool("bounding", false, "use the sorted-array pruning search (implies -bionj)")
	compare := flag.Bool("compare", false, "(with -bounding) also run naive BIONJ and report its time")
	plotPrefix := flag.String("plot", "", "(with -bounding) write `prefix`.png of entries visited per join")
	nprocs := flag.Int("n", 0, "number of parallel processes")
	help := flag.Bool("h", false, "prints this message and exits")
	ver := flag.Bool("v", false, "prints version number and exits")
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *ver {
		fmt.Printf("bionj2 version %s\n", Version)
		os.Exit(0)
	}
	if flag.NArg() != 2 {
		parserError("two positional arguments required: <matrix> <output>")
	}
	return args{
		bionj:      *bionj,
		bounding:   *bounding,
		compare:    *compare,
		nprocs:     setNProcs(*nprocs),
		plotPrefix: *plotPrefix,
		matrixFile: flag.Arg(0),
		outputFile: flag.Arg(1),
	}
}

func parserError(message string) {
	fmt.Fprintln(os.Stderr, message)
	flag.Usage()
	os.Exit(1)
}

func variantFor(a args) joiner.Variant {
	switch {
	case a.bounding:
		return joiner.Bounding
	case a.bionj:
		return joiner.BIONJ
	default:
		return joiner.NJ
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("bionj2 version %s", Version)
	args := parseArgs()

	log.Printf("loading distance matrix from %s", args.matrixFile)
	m, err := distmat.LoadFromFile(args.matrixFile)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	log.Printf("%d taxa loaded", m.RowCount())

	variant := variantFor(args)
	var compareMatrix *distmat.Matrix
	if variant == joiner.Bounding && args.compare {
		// Snapshot the matrix before the Bounding run consumes it, so the
		// comparison run starts from the same input rather than whatever
		// three rows happen to be left once ConstructTreeRapid finishes.
		compareMatrix = m.Clone()
	}
	j, err := joiner.New(m, variant, args.nprocs)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}

	var root int
	start := time.Now()
	if variant == joiner.Bounding {
		var stats joiner.Stats
		log.Println("running Bounding (Rapid-BIONJ) construction...")
		root, stats, err = j.ConstructTreeRapid()
		if err != nil {
			log.Fatalf("%s %s\n", ErrMessage, err)
		}
		elapsed := time.Since(start)
		fmt.Printf("Did %d V entry operations\n", stats.OperationCount)
		fmt.Printf("Bounding construction took %.6f seconds\n", elapsed.Seconds())
		if args.plotPrefix != "" {
			if err := diagnostics.WriteEntriesPlot(stats.EntriesPerIteration, args.plotPrefix); err != nil {
				log.Fatalf("%s writing entries plot: %s\n", ErrMessage, err)
			}
		}
		if args.compare {
			compareJoiner, err := joiner.New(compareMatrix, joiner.BIONJ, args.nprocs)
			if err != nil {
				log.Fatalf("%s %s\n", ErrMessage, err)
			}
			compareStart := time.Now()
			if _, err := compareJoiner.ConstructTree(); err != nil {
				log.Fatalf("%s %s\n", ErrMessage, err)
			}
			fmt.Printf("Naive BIONJ construction took %.6f seconds\n", time.Since(compareStart).Seconds())
		}
	} else {
		log.Println("running construction...")
		root, err = j.ConstructTree()
		if err != nil {
			log.Fatalf("%s %s\n", ErrMessage, err)
		}
		fmt.Printf("Construction took %.6f seconds\n", time.Since(start).Seconds())
	}
	if root != j.Forest.Root() {
		log.Fatalf("%s internal error: root cluster %d does not match forest root %d\n", ErrMessage, root, j.Forest.Root())
	}

	out, err := newick.Write(j.Forest)
	if err != nil {
		log.Fatalf("%s %s\n", ErrMessage, err)
	}
	if err := os.WriteFile(args.outputFile, []byte(out), 0644); err != nil {
		log.Fatalf("%s writing output: %s\n", ErrMessage, err)
	}
	log.Printf("wrote tree to %s", args.outputFile)
}
