package calib

import (
	"log/slog"

	"github.com/jamesainslie/go-calib/calibrator"
)

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	folds      int
	bins       int
	seed       int64
	stratified bool
	workers    int
	methods    []calibrator.Spec
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		folds:   5,
		bins:    20,
		seed:    42,
		workers: 1,
		methods: calibrator.DefaultMethods(),
		logger:  slog.Default(),
	}
}

// WithFolds sets the cross-validation fold count (default: 5).
func WithFolds(f int) Option {
	return func(c *config) {
		if f > 0 {
			c.folds = f
		}
	}
}

// WithBins sets the bin count for histogram-based metrics (default: 20).
func WithBins(b int) Option {
	return func(c *config) {
		if b > 0 {
			c.bins = b
		}
	}
}

// WithSeed sets the random seed for fold assignment (default: 42).
func WithSeed(s int64) Option {
	return func(c *config) {
		c.seed = s
	}
}

// WithStratified enables label-stratified fold splitting.
func WithStratified(on bool) Option {
	return func(c *config) {
		c.stratified = on
	}
}

// WithWorkers sets the number of folds evaluated concurrently (default: 1).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMethods replaces the default calibration method registry.
func WithMethods(methods []calibrator.Spec) Option {
	return func(c *config) {
		if len(methods) > 0 {
			c.methods = methods
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
