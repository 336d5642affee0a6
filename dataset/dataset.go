// Package dataset loads confidence matrices and ground-truth labels for
// calibration experiments.
package dataset

import (
	"errors"
	"fmt"
	"math"
)

// rowSumTolerance is how far a confidence row may drift from summing to 1
// before validation rejects it.
const rowSumTolerance = 1e-6

// Sentinel errors.
var (
	// ErrEmpty indicates a dataset with no samples.
	ErrEmpty = errors.New("dataset: no samples")

	// ErrNotRowStochastic indicates a confidence row not summing to 1.
	ErrNotRowStochastic = errors.New("dataset: confidence row is not row-stochastic")

	// ErrBadLabel indicates a label outside [0, classes).
	ErrBadLabel = errors.New("dataset: label out of range")
)

// Dataset is one model's predicted confidences and the aligned ground-truth
// labels on a fixed evaluation set. Immutable after load.
type Dataset struct {
	Name   string
	Probs  [][]float64
	Labels []int
}

// Classes returns the class count K.
func (d *Dataset) Classes() int {
	if len(d.Probs) == 0 {
		return 0
	}
	return len(d.Probs[0])
}

// Len returns the sample count N.
func (d *Dataset) Len() int {
	return len(d.Probs)
}

// Validate checks shape consistency, row stochasticity, and label range.
func (d *Dataset) Validate() error {
	if len(d.Probs) == 0 {
		return ErrEmpty
	}
	if len(d.Probs) != len(d.Labels) {
		return fmt.Errorf("dataset: %d rows but %d labels", len(d.Probs), len(d.Labels))
	}
	classes := len(d.Probs[0])
	for i, row := range d.Probs {
		if len(row) != classes {
			return fmt.Errorf("dataset: row %d has %d classes, want %d", i, len(row), classes)
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
		if d.Labels[i] < 0 || d.Labels[i] >= classes {
			return fmt.Errorf("%w: label %d at row %d", ErrBadLabel, d.Labels[i], i)
		}
	}
	return nil
}
