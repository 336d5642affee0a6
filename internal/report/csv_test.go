package report

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	calib "github.com/jamesainslie/go-calib"
	"github.com/jamesainslie/go-calib/calibrator"
)

func TestWriteReadResults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	recs := []calib.Record{
		rec(calib.UncalibratedMethod, calibrator.Baseline, calib.MetricECE, 0, 0.125),
		rec("HistogramBinning", calibrator.Reduced, calib.MetricClasswiseECE, 3, 0.0625),
	}

	if err := WriteResults(path, recs); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	got, err := ReadResults(path)
	if err != nil {
		t.Fatalf("ReadResults() error = %v", err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Errorf("round trip = %+v, want %+v", got, recs)
	}
}

func TestWriteResults_SemicolonSeparated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	recs := []calib.Record{rec("HistogramBinning", calibrator.Baseline, calib.MetricECE, 0, 0.1)}

	if err := WriteResults(path, recs); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if want := "Model;Dataset;Calibration Method;Reduction Method;Metric;Fold;Score"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	if !strings.Contains(lines[1], ";") {
		t.Errorf("data line %q not semicolon separated", lines[1])
	}
}

func TestReadResults_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	content := "Model;Dataset;Metric;Fold;Score\nm;d;ECE;0;0.1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadResults(path)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("ReadResults() error = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the offending file", err)
	}
}

func TestReadResults_ShortRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	content := "Model;Dataset;Calibration Method;Reduction Method;Metric;Fold;Score\n" +
		"m;d;HistogramBinning\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadResults(path)
	if err == nil {
		t.Fatal("ReadResults() succeeded on a truncated row, want error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the offending file", err)
	}
}

func TestReadResults_BadScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	content := "Model;Dataset;Calibration Method;Reduction Method;Metric;Fold;Score\n" +
		"m;d;HistogramBinning;Baseline;ECE;0;not-a-number\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadResults(path); err == nil {
		t.Error("ReadResults() succeeded on malformed score, want error")
	}
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := WriteResults(a, []calib.Record{rec("HistogramBinning", calibrator.Baseline, calib.MetricECE, 0, 0.1)}); err != nil {
		t.Fatal(err)
	}
	if err := WriteResults(b, []calib.Record{rec("BetaCalibration", calibrator.Baseline, calib.MetricECE, 0, 0.2)}); err != nil {
		t.Fatal(err)
	}

	recs, err := Combine([]string{a, b})
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Method != "HistogramBinning" || recs[1].Method != "BetaCalibration" {
		t.Errorf("combined order = %s, %s", recs[0].Method, recs[1].Method)
	}
}

func TestWriteSummaryAbsolute_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	s, err := Summarize(testRecords(), calib.MetricECE, testExpectation())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if err := WriteSummaryAbsolute(path, s); err != nil {
		t.Fatalf("WriteSummaryAbsolute() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if want := "Model,Dataset,Calibration Method,Baseline,Reduced"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	// HistogramBinning row: identical per-fold scores, so ±0.
	if want := "m,d,HistogramBinning,0.200000 ±0.000000,0.250000 ±0.000000"; lines[2] != want {
		t.Errorf("row = %q, want %q", lines[2], want)
	}
	// Uncalibrated has no Reduced variant: empty trailing cell.
	if !strings.HasPrefix(lines[1], "m,d,Uncalibrated,0.200000 ±0.141421,") {
		t.Errorf("uncalibrated row = %q", lines[1])
	}
}

func TestWriteSummaryRelative_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	s, err := Summarize(testRecords(), calib.MetricECE, testExpectation())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	r, err := Relative(s)
	if err != nil {
		t.Fatalf("Relative() error = %v", err)
	}
	if err := WriteSummaryRelative(path, r); err != nil {
		t.Fatalf("WriteSummaryRelative() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Baseline keeps the absolute mean; Reduced is signed percent change.
	if want := "m,d,HistogramBinning,0.20000 ±0.00%,+25.00% ±0.00%"; lines[2] != want {
		t.Errorf("row = %q, want %q", lines[2], want)
	}
}

func TestWriteResults_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	if err := WriteResults(path, nil); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "results.csv" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only results.csv", names)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("file mode = %o, want 644", got)
	}
}
