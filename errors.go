package calib

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrShapeMismatch indicates confidences and labels disagree in length,
	// or a confidence row has the wrong number of classes.
	ErrShapeMismatch = errors.New("calib: confidence matrix and labels shape mismatch")

	// ErrBadFoldCount indicates the requested fold count cannot partition
	// the sample set (fewer than 2 folds, or more folds than samples).
	ErrBadFoldCount = errors.New("calib: invalid fold count")

	// ErrBadLabel indicates a label outside [0, classes).
	ErrBadLabel = errors.New("calib: label out of range")

	// ErrNotRowStochastic indicates a confidence row that does not sum to 1.
	ErrNotRowStochastic = errors.New("calib: confidence row is not row-stochastic")
)
