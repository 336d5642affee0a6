// Package calibrator provides probability calibration methods and their
// reduced, class-wise, and weighted variants behind a uniform interface.
//
// A base method (temperature scaling, isotonic regression, histogram
// binning, beta calibration) comes in a closed set of variants:
//
//   - Baseline: operates on the full class-probability vector.
//   - Reduced: operates on the max-confidence signal only.
//   - Class-wise: one independent calibrator per class, renormalized.
//   - Weighted: the reduced fit is weighted by predicted confidence.
package calibrator

// Calibrator is fit on held-in confidences and labels, then maps confidence
// vectors to recalibrated confidence vectors. Fit must be called before
// Apply. Implementations are not safe for concurrent use; the evaluator
// constructs a fresh instance per fold.
type Calibrator interface {
	Fit(probs [][]float64, labels []int) error
	Apply(probs [][]float64) [][]float64
}

// CurveProber is implemented by calibrators whose fitted transform reduces
// to a scalar map on [0,1]. The evaluator probes it for the condition
// diagnostics.
type CurveProber interface {
	Curve(t float64) float64
}

// Reduction variant display names. These are the values carried in result
// records and used as summary table columns.
const (
	Baseline                 = "Baseline"
	Reduced                  = "Reduced"
	ClassWise                = "Class-wise"
	ClassWiseReduced         = "Class-wise reduced"
	WeightedReduced          = "Weighted Reduced"
	ClassWiseWeightedReduced = "Class-wise weighted reduced"
)

// Base method names.
const (
	MethodTemperature = "TemperatureScaling"
	MethodIsotonic    = "IsotonicRegression"
	MethodHistogram   = "HistogramBinning"
	MethodBeta        = "BetaCalibration"
)

// Spec identifies one method variant and constructs fresh instances of it.
type Spec struct {
	Method    string
	Reduction string
	New       func() Calibrator
}

// scalar is a 1-D calibration map fit on (confidence, correctness) pairs.
// Weights may be nil for an unweighted fit.
type scalar interface {
	fit(conf, hit, w []float64) error
	transform(p float64) float64
}

// variants expands one base method into its six variants.
func variants(method string, newScalar func() scalar, baseline func() Calibrator) []Spec {
	return []Spec{
		{Method: method, Reduction: Baseline, New: baseline},
		{Method: method, Reduction: Reduced, New: func() Calibrator {
			return &reduced{m: newScalar()}
		}},
		{Method: method, Reduction: ClassWise, New: func() Calibrator {
			return &classWise{newScalar: newScalar}
		}},
		{Method: method, Reduction: ClassWiseReduced, New: func() Calibrator {
			return &classWise{newScalar: newScalar, reduced: true}
		}},
		{Method: method, Reduction: WeightedReduced, New: func() Calibrator {
			return &reduced{m: newScalar(), weighted: true}
		}},
		{Method: method, Reduction: ClassWiseWeightedReduced, New: func() Calibrator {
			return &classWise{newScalar: newScalar, reduced: true, weighted: true}
		}},
	}
}

// DefaultMethods returns the full registry in canonical order: base methods
// in fixed order, each expanded into its variants.
func DefaultMethods() []Spec {
	var specs []Spec
	specs = append(specs, variants(MethodTemperature,
		func() scalar { return &binaryTemperature{} },
		func() Calibrator { return NewTemperatureScaling() },
	)...)
	specs = append(specs, variants(MethodIsotonic,
		func() scalar { return &isotonic{} },
		func() Calibrator { return &fullVector{m: &isotonic{}} },
	)...)
	specs = append(specs, variants(MethodHistogram,
		func() scalar { return newHistogram(defaultHistogramBins) },
		func() Calibrator { return &fullVector{m: newHistogram(defaultHistogramBins)} },
	)...)
	specs = append(specs, variants(MethodBeta,
		func() scalar { return &beta{} },
		func() Calibrator { return &fullVector{m: &beta{}} },
	)...)
	return specs
}
