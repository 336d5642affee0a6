package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	calib "github.com/jamesainslie/go-calib"
	"github.com/jamesainslie/go-calib/calibrator"
	"github.com/jamesainslie/go-calib/dataset"
	"github.com/jamesainslie/go-calib/inference"
	"github.com/jamesainslie/go-calib/internal/config"
	"github.com/jamesainslie/go-calib/internal/report"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to experiment YAML config")
		model       = flag.String("model", "", "Model name (e.g. resnet56)")
		datasetName = flag.String("dataset", "", "Dataset name (e.g. cifar10)")
		confidences = flag.String("confidences", "", "Path to precomputed confidence CSV")
		onnxModel   = flag.String("onnx-model", "", "Path to ONNX classifier (with -features)")
		features    = flag.String("features", "", "Path to feature CSV for the ONNX classifier")
		folds       = flag.Int("folds", 0, "Cross-validation fold count")
		bins        = flag.Int("bins", 0, "Bin count for calibration-error metrics")
		seed        = flag.Int64("seed", 0, "Random seed for fold assignment")
		stratified  = flag.Bool("stratified", false, "Stratify folds by label")
		workers     = flag.Int("workers", 0, "Folds evaluated concurrently")
		outDir      = flag.String("out", "", "Output directory for results.csv")
	)
	flag.Parse()

	exp, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags set explicitly override the config file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			exp.Model = *model
		case "dataset":
			exp.Dataset = *datasetName
		case "confidences":
			exp.Confidences = *confidences
		case "onnx-model":
			exp.ONNXModel = *onnxModel
		case "features":
			exp.Features = *features
		case "folds":
			exp.Folds = *folds
		case "bins":
			exp.Bins = *bins
		case "seed":
			exp.Seed = *seed
		case "stratified":
			exp.Stratified = *stratified
		case "workers":
			exp.Workers = *workers
		case "out":
			exp.OutDir = *outDir
		}
	})

	if err := exp.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	probs, labels, err := loadConfidences(ctx, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading confidences: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d samples, %d classes (%s / %s)\n\n",
		len(probs), len(probs[0]), exp.Model, exp.Dataset)

	eval := calib.New(exp.Model, exp.Dataset,
		calib.WithFolds(exp.Folds),
		calib.WithBins(exp.Bins),
		calib.WithSeed(exp.Seed),
		calib.WithStratified(exp.Stratified),
		calib.WithWorkers(exp.Workers),
	)

	result, err := eval.Run(ctx, probs, labels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during evaluation: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(exp.OutDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}
	resultsPath := filepath.Join(exp.OutDir, "results.csv")
	if err := report.WriteResults(resultsPath, result.Records); err != nil {
		fmt.Fprintf(os.Stderr, "error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d records to %s\n\n", len(result.Records), resultsPath)

	printSummary(result)

	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "fit failed: %s/%s fold %d: %s\n", f.Method, f.Reduction, f.Fold, f.Err)
	}
}

// loadConfidences produces the confidence matrix either from a precomputed
// CSV or by running the ONNX classifier over a feature file.
func loadConfidences(ctx context.Context, exp config.Experiment) ([][]float64, []int, error) {
	if exp.Confidences != "" {
		d, err := dataset.Load(exp.Dataset, exp.Confidences)
		if err != nil {
			return nil, nil, err
		}
		return d.Probs, d.Labels, nil
	}

	features, labels, err := dataset.LoadFeatures(exp.Features)
	if err != nil {
		return nil, nil, err
	}

	pool, err := inference.NewPool(exp.ONNXModel, exp.Workers)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = pool.Close() }()

	probs, err := pool.Predict(ctx, features)
	if err != nil {
		return nil, nil, err
	}
	return probs, labels, nil
}

// printSummary renders the across-fold ECE/cwECE means per variant.
func printSummary(result *calib.Result) {
	recs := report.Filter(result.Records)
	expect := report.DefaultExpectation(calibrator.DefaultMethods())

	for _, metric := range []string{calib.MetricECE, calib.MetricClasswiseECE} {
		summary, err := report.Summarize(recs, metric, expect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "summary for %s unavailable: %v\n", metric, err)
			continue
		}

		fmt.Printf("%s (mean ±std across folds)\n", metric)
		fmt.Printf("%-22s", "Method")
		for _, v := range summary.Columns {
			fmt.Printf(" %-28s", v)
		}
		fmt.Println()
		for _, row := range summary.Rows {
			fmt.Printf("%-22s", row.Method)
			for _, v := range summary.Columns {
				cell, ok := row.Cells[v]
				if !ok {
					fmt.Printf(" %-28s", "-")
					continue
				}
				fmt.Printf(" %-28s", fmt.Sprintf("%.5f ±%.5f", cell.Mean, cell.Std))
			}
			fmt.Println()
		}
		fmt.Println()
	}
}
