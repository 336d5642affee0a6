// Package calib provides cross-validated evaluation of probability
// calibration methods for pre-trained classifiers.
//
// # Quick Start
//
//	eval := calib.New("resnet56", "cifar10", calib.WithFolds(5), calib.WithBins(20))
//	result, err := eval.Run(ctx, confidences, labels)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range result.Records {
//	    fmt.Printf("%s/%s %s fold %d: %.5f\n",
//	        rec.Method, rec.Reduction, rec.Metric, rec.Fold, rec.Score)
//	}
//
// # Determinism
//
// Fold assignment and all results are reproducible bit for bit given the
// same seed, inputs, and configuration, including when folds are evaluated
// in parallel via WithWorkers.
//
// # Calibration methods
//
// The default registry (see the calibrator package) covers temperature
// scaling, isotonic regression, histogram binning, and beta calibration,
// each in baseline, reduced, class-wise, and weighted variants.
package calib
