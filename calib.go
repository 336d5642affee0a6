package calib

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-calib/calibrator"
)

// rowSumTolerance is how far a confidence row may drift from summing to 1
// before it is rejected.
const rowSumTolerance = 1e-6

// Evaluator runs cross-validated evaluation of calibration method variants
// over one model/dataset pair's confidence matrix.
type Evaluator struct {
	model   string
	dataset string
	cfg     config
}

// New creates an Evaluator for the named model and dataset.
func New(model, dataset string, opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Evaluator{model: model, dataset: dataset, cfg: cfg}
}

// Run splits the samples into folds, fits every registered method variant
// on each fold's complement, evaluates it on the held-out fold, and returns
// one record per (variant, metric, fold). Fit failures are recorded and do
// not abort the remaining variants or folds.
//
// Given the same seed, inputs, and configuration the returned records are
// identical run to run, including with WithWorkers > 1.
func (e *Evaluator) Run(ctx context.Context, probs [][]float64, labels []int) (*Result, error) {
	if err := validateInputs(probs, labels); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(e.cfg.seed))
	var folds []Fold
	var err error
	if e.cfg.stratified {
		folds, err = StratifiedKFold(labels, e.cfg.folds, rng)
	} else {
		folds, err = KFold(len(probs), e.cfg.folds, rng)
	}
	if err != nil {
		return nil, err
	}

	e.cfg.logger.Info("starting evaluation",
		"model", e.model,
		"dataset", e.dataset,
		"samples", len(probs),
		"folds", len(folds),
		"variants", len(e.cfg.methods))

	type foldOut struct {
		records  []Record
		failures []Failure
	}
	outs := make([]foldOut, len(folds))

	if e.cfg.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.workers)
		for f := range folds {
			f := f
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				recs, fails := e.evalFold(f, folds[f], probs, labels)
				outs[f] = foldOut{records: recs, failures: fails}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for f := range folds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			recs, fails := e.evalFold(f, folds[f], probs, labels)
			outs[f] = foldOut{records: recs, failures: fails}
		}
	}

	// Flatten in fold order so output is deterministic either way.
	result := &Result{}
	for _, out := range outs {
		result.Records = append(result.Records, out.records...)
		result.Failures = append(result.Failures, out.failures...)
	}
	return result, nil
}

// evalFold fits and evaluates every variant on one fold. Pure over its
// inputs; safe to call concurrently for distinct folds.
func (e *Evaluator) evalFold(f int, fold Fold, probs [][]float64, labels []int) ([]Record, []Failure) {
	trainP, trainY := gather(probs, labels, fold.Train)
	testP, testY := gather(probs, labels, fold.Test)

	var records []Record
	var failures []Failure

	emit := func(method, reduction, metric string, score float64) {
		records = append(records, Record{
			Model:     e.model,
			Dataset:   e.dataset,
			Method:    method,
			Reduction: reduction,
			Metric:    metric,
			Fold:      f,
			Score:     score,
		})
	}

	// Reference metrics on the raw held-out confidences.
	emit(UncalibratedMethod, calibrator.Baseline, MetricECE, ECE(testP, testY, e.cfg.bins))
	emit(UncalibratedMethod, calibrator.Baseline, MetricClasswiseECE, ClasswiseECE(testP, testY, e.cfg.bins))

	for _, spec := range e.cfg.methods {
		c := spec.New()
		if err := c.Fit(trainP, trainY); err != nil {
			e.cfg.logger.Warn("calibrator fit failed",
				"method", spec.Method,
				"reduction", spec.Reduction,
				"fold", f,
				"err", err)
			failures = append(failures, Failure{
				Model:     e.model,
				Dataset:   e.dataset,
				Method:    spec.Method,
				Reduction: spec.Reduction,
				Fold:      f,
				Err:       err.Error(),
			})
			continue
		}

		recal := c.Apply(testP)
		emit(spec.Method, spec.Reduction, MetricECE, ECE(recal, testY, e.cfg.bins))
		emit(spec.Method, spec.Reduction, MetricClasswiseECE, ClasswiseECE(recal, testY, e.cfg.bins))

		if prober, ok := c.(calibrator.CurveProber); ok {
			condition, weak := probeCurve(prober)
			emit(spec.Method, spec.Reduction, MetricCondition, condition)
			emit(spec.Method, spec.Reduction, MetricWeakCondition, weak)
		}
	}

	return records, failures
}

// curveProbePoints is the grid resolution for the condition diagnostics.
const curveProbePoints = 201

// probeCurve evaluates the fitted scalar map on a uniform grid and reports
// a Lipschitz estimate (condition) and the fraction of non-decreasing steps
// (weak_condition, 1.0 for a weakly monotone map).
func probeCurve(c calibrator.CurveProber) (condition, weak float64) {
	h := 1.0 / float64(curveProbePoints-1)
	prev := c.Curve(0)
	nondec := 0
	for i := 1; i < curveProbePoints; i++ {
		v := c.Curve(float64(i) * h)
		slope := math.Abs(v-prev) / h
		if slope > condition {
			condition = slope
		}
		if v >= prev-1e-12 {
			nondec++
		}
		prev = v
	}
	weak = float64(nondec) / float64(curveProbePoints-1)
	return condition, weak
}

// validateInputs checks the confidence matrix and labels form a consistent,
// row-stochastic classification set.
func validateInputs(probs [][]float64, labels []int) error {
	if len(probs) == 0 || len(probs) != len(labels) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(probs), len(labels))
	}
	classes := len(probs[0])
	if classes < 2 {
		return fmt.Errorf("%w: %d classes", ErrShapeMismatch, classes)
	}
	for i, row := range probs {
		if len(row) != classes {
			return fmt.Errorf("%w: row %d has %d classes, want %d", ErrShapeMismatch, i, len(row), classes)
		}
		var sum float64
		for _, p := range row {
			if p < 0 || p > 1 {
				return fmt.Errorf("%w: row %d", ErrNotRowStochastic, i)
			}
			sum += p
		}
		if math.Abs(sum-1) > rowSumTolerance {
			return fmt.Errorf("%w: row %d sums to %g", ErrNotRowStochastic, i, sum)
		}
		if labels[i] < 0 || labels[i] >= classes {
			return fmt.Errorf("%w: label %d at row %d", ErrBadLabel, labels[i], i)
		}
	}
	return nil
}
