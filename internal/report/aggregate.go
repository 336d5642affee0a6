// Package report reshapes evaluator records into summary tables and writes
// the per-experiment and combined CSV outputs.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	calib "github.com/jamesainslie/go-calib"
	"github.com/jamesainslie/go-calib/calibrator"
)

// Sentinel errors for aggregation.
var (
	// ErrEmptyGroup indicates an expected (variant, metric) group with zero
	// available folds. Aggregation refuses to fabricate a mean for it.
	ErrEmptyGroup = errors.New("report: group has zero available folds")

	// ErrZeroBaseline indicates a relative-change computation whose baseline
	// mean is zero.
	ErrZeroBaseline = errors.New("report: baseline mean is zero")

	// ErrMissingBaseline indicates a method whose expected variants do not
	// include the Baseline column relative change is computed against.
	ErrMissingBaseline = errors.New("report: no baseline variant for method")
)

// IsDiagnostic reports whether the metric is a calibrator diagnostic,
// recorded but excluded from tables and plots.
func IsDiagnostic(metric string) bool {
	return metric == calib.MetricCondition || metric == calib.MetricWeakCondition
}

// Filter returns the records fit for reporting: diagnostic metrics are
// dropped, and so is every variant whose name contains "weighted"
// (case-insensitive). The weighted family is excluded from reporting.
func Filter(recs []calib.Record) []calib.Record {
	out := make([]calib.Record, 0, len(recs))
	for _, r := range recs {
		if IsDiagnostic(r.Metric) {
			continue
		}
		if strings.Contains(strings.ToLower(r.Reduction), "weighted") {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Expectation lists the method rows a summary must produce and, per method,
// the reduction variants it must cover. A listed variant with zero
// available folds is an error rather than a silent gap, and the baseline
// mapping for relative change is the explicit Baseline entry, never guessed.
type Expectation struct {
	Methods  []string            // row order within a (model, dataset) pair
	Variants map[string][]string // per-method variants, display order
}

// DefaultExpectation builds the expectation matching an evaluator run with
// the given method registry. The uncalibrated reference row comes first.
func DefaultExpectation(specs []calibrator.Spec) Expectation {
	e := Expectation{
		Methods:  []string{calib.UncalibratedMethod},
		Variants: map[string][]string{calib.UncalibratedMethod: {calibrator.Baseline}},
	}
	for _, s := range specs {
		if strings.Contains(strings.ToLower(s.Reduction), "weighted") {
			continue
		}
		if _, ok := e.Variants[s.Method]; !ok {
			e.Methods = append(e.Methods, s.Method)
		}
		e.Variants[s.Method] = append(e.Variants[s.Method], s.Reduction)
	}
	for m, vs := range e.Variants {
		e.Variants[m] = OrderVariants(calibrator.Baseline, vs)
	}
	return e
}

// ExpectationFromRecords derives the expectation from already-filtered
// records, for combining experiments whose registry is not known. Every
// (method, variant) that appears anywhere becomes expected everywhere.
func ExpectationFromRecords(recs []calib.Record) Expectation {
	e := Expectation{Variants: map[string][]string{}}
	seen := map[string]map[string]bool{}
	for _, r := range recs {
		if seen[r.Method] == nil {
			seen[r.Method] = map[string]bool{}
			if r.Method == calib.UncalibratedMethod {
				e.Methods = append([]string{r.Method}, e.Methods...)
			} else {
				e.Methods = append(e.Methods, r.Method)
			}
		}
		if !seen[r.Method][r.Reduction] {
			seen[r.Method][r.Reduction] = true
			e.Variants[r.Method] = append(e.Variants[r.Method], r.Reduction)
		}
	}
	for m, vs := range e.Variants {
		e.Variants[m] = OrderVariants(calibrator.Baseline, vs)
	}
	return e
}

// Cell is one aggregated (variant, metric) group: across-fold mean and
// standard deviation over the available folds.
type Cell struct {
	Mean  float64
	Std   float64
	Folds int
}

// Row is one summary line, keyed by (model, dataset, method).
type Row struct {
	Model   string
	Dataset string
	Method  string
	Cells   map[string]Cell // keyed by reduction variant
}

// Summary is the across-fold aggregation of one metric.
type Summary struct {
	Metric  string
	Columns []string // reduction variants in display order
	Rows    []Row
}

type groupKey struct {
	model, dataset, method, reduction string
}

// Summarize aggregates the records of one metric into a summary table.
// Statistics run over whatever folds are available per group; a group the
// expectation lists but no fold produced is an explicit error.
func Summarize(recs []calib.Record, metric string, expect Expectation) (*Summary, error) {
	groups := map[groupKey][]float64{}
	type pair struct{ model, dataset string }
	pairSet := map[pair]bool{}
	var pairs []pair

	for _, r := range recs {
		if r.Metric != metric {
			continue
		}
		k := groupKey{r.Model, r.Dataset, r.Method, r.Reduction}
		groups[k] = append(groups[k], r.Score)
		p := pair{r.Model, r.Dataset}
		if !pairSet[p] {
			pairSet[p] = true
			pairs = append(pairs, p)
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no %q records", ErrEmptyGroup, metric)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].model != pairs[j].model {
			return pairs[i].model < pairs[j].model
		}
		return pairs[i].dataset < pairs[j].dataset
	})

	// Union of per-method variants, in display order.
	var all []string
	seen := map[string]bool{}
	for _, m := range expect.Methods {
		for _, v := range expect.Variants[m] {
			if !seen[v] {
				seen[v] = true
				all = append(all, v)
			}
		}
	}
	columns := OrderVariants(calibrator.Baseline, all)

	s := &Summary{Metric: metric, Columns: columns}
	for _, p := range pairs {
		for _, method := range expect.Methods {
			row := Row{Model: p.model, Dataset: p.dataset, Method: method, Cells: map[string]Cell{}}
			for _, variant := range expect.Variants[method] {
				scores := groups[groupKey{p.model, p.dataset, method, variant}]
				if len(scores) == 0 {
					return nil, fmt.Errorf("%w: %s/%s %s %s (%s)",
						ErrEmptyGroup, p.model, p.dataset, method, variant, metric)
				}
				row.Cells[variant] = aggregate(scores)
			}
			s.Rows = append(s.Rows, row)
		}
	}
	return s, nil
}

func aggregate(scores []float64) Cell {
	c := Cell{Mean: stat.Mean(scores, nil), Folds: len(scores)}
	if len(scores) > 1 {
		c.Std = stat.StdDev(scores, nil)
	}
	return c
}

// RelativeCell expresses one variant as percentage change vs the row's
// baseline mean; Spread is the variant's std on the same percent scale.
type RelativeCell struct {
	Change float64
	Spread float64
	Folds  int
}

// RelativeRow keeps the baseline absolute mean so the absolute values can
// be reconstructed from the relative table.
type RelativeRow struct {
	Model          string
	Dataset        string
	Method         string
	BaselineMean   float64
	BaselineSpread float64 // baseline std as percent of baseline mean
	Cells          map[string]RelativeCell
}

// RelativeSummary is the relative-change form of a Summary.
type RelativeSummary struct {
	Metric  string
	Columns []string
	Rows    []RelativeRow
}

// Relative converts an absolute summary into relative-change form. Each
// non-baseline cell becomes (mean − baseMean) / baseMean × 100 for the
// row's Baseline variant. A zero baseline mean is an explicit error.
func Relative(s *Summary) (*RelativeSummary, error) {
	out := &RelativeSummary{Metric: s.Metric, Columns: s.Columns}
	for _, row := range s.Rows {
		base, ok := row.Cells[calibrator.Baseline]
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s %s", ErrMissingBaseline, row.Model, row.Dataset, row.Method)
		}
		if base.Mean == 0 {
			return nil, fmt.Errorf("%w: %s/%s %s (%s)", ErrZeroBaseline, row.Model, row.Dataset, row.Method, s.Metric)
		}

		r := RelativeRow{
			Model:          row.Model,
			Dataset:        row.Dataset,
			Method:         row.Method,
			BaselineMean:   base.Mean,
			BaselineSpread: base.Std / base.Mean * 100,
			Cells:          map[string]RelativeCell{},
		}
		for variant, cell := range row.Cells {
			if variant == calibrator.Baseline {
				continue
			}
			r.Cells[variant] = RelativeCell{
				Change: (cell.Mean - base.Mean) / base.Mean * 100,
				Spread: cell.Std / base.Mean * 100,
				Folds:  cell.Folds,
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}
