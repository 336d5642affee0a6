package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	calib "github.com/jamesainslie/go-calib"
	"github.com/jamesainslie/go-calib/calibrator"
)

// ErrMissingColumn indicates a results file whose header lacks a required
// column. The error names the offending file.
var ErrMissingColumn = errors.New("report: results file missing column")

// resultColumns is the header of a per-experiment results.csv, in order.
var resultColumns = []string{
	"Model",
	"Dataset",
	"Calibration Method",
	"Reduction Method",
	"Metric",
	"Fold",
	"Score",
}

// WriteResults writes the raw per-fold records as a semicolon-separated
// results.csv. The write is atomic: a failed run never truncates a
// previously completed file.
func WriteResults(path string, recs []calib.Record) error {
	return writeAtomic(path, func(f io.Writer) error {
		w := csv.NewWriter(f)
		w.Comma = ';'
		if err := w.Write(resultColumns); err != nil {
			return err
		}
		for _, r := range recs {
			row := []string{
				r.Model,
				r.Dataset,
				r.Method,
				r.Reduction,
				r.Metric,
				strconv.Itoa(r.Fold),
				strconv.FormatFloat(r.Score, 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// ReadResults loads a results.csv written by WriteResults. A header missing
// any expected column is an explicit error identifying the file.
func ReadResults(path string) ([]calib.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range resultColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, path)
		}
	}

	var recs []calib.Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		fold, err := strconv.Atoi(row[col["Fold"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad fold: %w", path, line, err)
		}
		score, err := strconv.ParseFloat(row[col["Score"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad score: %w", path, line, err)
		}
		recs = append(recs, calib.Record{
			Model:     row[col["Model"]],
			Dataset:   row[col["Dataset"]],
			Method:    row[col["Calibration Method"]],
			Reduction: row[col["Reduction Method"]],
			Metric:    row[col["Metric"]],
			Fold:      fold,
			Score:     score,
		})
	}
	return recs, nil
}

// Combine reads and concatenates multiple experiments' results files.
func Combine(paths []string) ([]calib.Record, error) {
	var all []calib.Record
	for _, p := range paths {
		recs, err := ReadResults(p)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// WriteSummaryAbsolute writes a comma-separated table with one row per
// (model, dataset, method) and the mean ±std per variant column.
func WriteSummaryAbsolute(path string, s *Summary) error {
	return writeAtomic(path, func(f io.Writer) error {
		w := csv.NewWriter(f)
		header := append([]string{"Model", "Dataset", "Calibration Method"}, s.Columns...)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range s.Rows {
			line := []string{row.Model, row.Dataset, row.Method}
			for _, variant := range s.Columns {
				cell, ok := row.Cells[variant]
				if !ok {
					line = append(line, "")
					continue
				}
				line = append(line, fmt.Sprintf("%.6f ±%.6f", cell.Mean, cell.Std))
			}
			if err := w.Write(line); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteSummaryRelative writes the relative-change table. The Baseline
// column keeps the absolute mean with its spread in percent; other columns
// carry the signed percent change vs the baseline mean.
func WriteSummaryRelative(path string, s *RelativeSummary) error {
	return writeAtomic(path, func(f io.Writer) error {
		w := csv.NewWriter(f)
		header := append([]string{"Model", "Dataset", "Calibration Method"}, s.Columns...)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range s.Rows {
			line := []string{row.Model, row.Dataset, row.Method}
			for _, variant := range s.Columns {
				if variant == calibrator.Baseline {
					line = append(line, fmt.Sprintf("%.5f ±%.2f%%", row.BaselineMean, row.BaselineSpread))
					continue
				}
				cell, ok := row.Cells[variant]
				if !ok {
					line = append(line, "")
					continue
				}
				line = append(line, fmt.Sprintf("%+.2f%% ±%.2f%%", cell.Change, cell.Spread))
			}
			if err := w.Write(line); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// writeAtomic writes through a temp file in the destination directory and
// renames it into place.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // No-op after successful rename.

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
