package calib

// Metric names emitted by the evaluator.
const (
	// MetricECE is the Expected Calibration Error over max-confidence bins.
	MetricECE = "ECE"

	// MetricClasswiseECE is ECE computed per class and averaged.
	MetricClasswiseECE = "cwECE"

	// MetricCondition is a Lipschitz estimate of the fitted calibration map.
	// Diagnostic only; reporting drops it.
	MetricCondition = "condition"

	// MetricWeakCondition is the fraction of non-decreasing steps of the
	// fitted calibration map. Diagnostic only; reporting drops it.
	MetricWeakCondition = "weak_condition"
)

// UncalibratedMethod names the reference entry measured on raw confidences.
const UncalibratedMethod = "Uncalibrated"

// Record is one evaluator measurement: a single metric value for one
// calibration method variant on one held-out fold.
type Record struct {
	Model     string
	Dataset   string
	Method    string // base calibration method, e.g. "TemperatureScaling"
	Reduction string // variant display name, e.g. "Class-wise reduced"
	Metric    string
	Fold      int
	Score     float64
}

// Failure marks a calibrator that could not be fit on one fold. The rest of
// the run is unaffected; the variant simply has no records for that fold.
type Failure struct {
	Model     string
	Dataset   string
	Method    string
	Reduction string
	Fold      int
	Err       string
}

// Result holds everything one evaluator run produced.
type Result struct {
	Records  []Record
	Failures []Failure
}
