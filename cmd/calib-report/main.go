// calib-report combines per-experiment results files into the four
// cross-experiment summary tables (absolute and relative, for ECE and
// class-wise ECE).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	calib "github.com/jamesainslie/go-calib"
	"github.com/jamesainslie/go-calib/internal/report"
)

func main() {
	outDir := flag.String("out", ".", "Output directory for summary CSVs")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: calib-report [-out DIR] RESULTS...")
		fmt.Fprintln(os.Stderr, "Each argument is a results.csv or an experiment directory containing one.")
		os.Exit(1)
	}

	paths := make([]string, 0, flag.NArg())
	for _, arg := range flag.Args() {
		paths = append(paths, resolveResults(arg))
	}

	recs, err := report.Combine(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error combining results: %v\n", err)
		os.Exit(1)
	}
	recs = report.Filter(recs)
	expect := report.ExpectationFromRecords(recs)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	metrics := []struct{ metric, prefix string }{
		{calib.MetricECE, "ece"},
		{calib.MetricClasswiseECE, "cwece"},
	}
	for _, m := range metrics {
		metric, prefix := m.metric, m.prefix
		summary, err := report.Summarize(recs, metric, expect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error summarizing %s: %v\n", metric, err)
			os.Exit(1)
		}
		relative, err := report.Relative(summary)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error computing relative %s: %v\n", metric, err)
			os.Exit(1)
		}

		absPath := filepath.Join(*outDir, prefix+"_results_summary_absolute.csv")
		relPath := filepath.Join(*outDir, prefix+"_results_summary_relative.csv")
		if err := report.WriteSummaryAbsolute(absPath, summary); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", absPath, err)
			os.Exit(1)
		}
		if err := report.WriteSummaryRelative(relPath, relative); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", relPath, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s and %s\n", absPath, relPath)
	}
}

// resolveResults accepts either a results file or an experiment directory.
func resolveResults(arg string) string {
	if strings.HasSuffix(arg, ".csv") {
		return arg
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return filepath.Join(arg, "results.csv")
	}
	return arg
}
