//go:build ignore

// Generate a synthetic confidence dataset for end-to-end runs: samples whose
// observed accuracy matches the drawn confidence, so the uncalibrated ECE is
// near zero, plus an optional miscalibration offset.
// Usage: go run ./scripts/gen-synthetic.go [-n 1000] [-classes 10] [-offset 0.0] [-out testdata/synthetic.csv]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

func main() {
	n := flag.Int("n", 1000, "sample count")
	classes := flag.Int("classes", 10, "class count")
	offset := flag.Float64("offset", 0.0, "miscalibration: added to confidence, not to accuracy")
	seed := flag.Int64("seed", 42, "random seed")
	out := flag.String("out", "testdata/synthetic.csv", "output path")
	flag.Parse()

	if *classes < 2 {
		fmt.Fprintln(os.Stderr, "error: need at least 2 classes")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, *classes+1)
	for k := 0; k < *classes; k++ {
		header[k] = "p" + strconv.Itoa(k)
	}
	header[*classes] = "label"
	if err := w.Write(header); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	low := 1.0 / float64(*classes)
	for i := 0; i < *n; i++ {
		// Accuracy target drawn uniformly above chance level.
		acc := low + rng.Float64()*(1-low)
		conf := acc + *offset
		if conf > 1 {
			conf = 1
		}
		if conf < low {
			conf = low
		}

		pred := rng.Intn(*classes)
		label := pred
		if rng.Float64() >= acc {
			// Miss: pick a different class as truth.
			label = (pred + 1 + rng.Intn(*classes-1)) % *classes
		}

		row := make([]string, *classes+1)
		rest := (1 - conf) / float64(*classes-1)
		for k := 0; k < *classes; k++ {
			p := rest
			if k == pred {
				p = conf
			}
			row[k] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		row[*classes] = strconv.Itoa(label)
		if err := w.Write(row); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d samples to %s\n", *n, *out)
}
