package calibrator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// probEps keeps logs and logits finite on degenerate confidences.
const probEps = 1e-12

// TemperatureScaling rescales log-confidences by a single learned
// temperature T: q = softmax(log p / T). T is fit by minimizing the
// negative log-likelihood on the fitting set.
type TemperatureScaling struct {
	T float64
}

// NewTemperatureScaling returns an identity-temperature calibrator.
func NewTemperatureScaling() *TemperatureScaling {
	return &TemperatureScaling{T: 1}
}

func (c *TemperatureScaling) Fit(probs [][]float64, labels []int) error {
	if len(probs) == 0 {
		return errors.New("calibrator: empty fitting set")
	}

	logits := make([][]float64, len(probs))
	for i, row := range probs {
		logits[i] = make([]float64, len(row))
		for k, p := range row {
			logits[i][k] = math.Log(clampProb(p))
		}
	}

	// Minimize NLL over log T so the search space is unconstrained.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			t := math.Exp(x[0])
			var nll float64
			for i, row := range logits {
				nll -= logSoftmaxAt(row, labels[i], t)
			}
			return nll
		},
	}

	result, err := optimize.Minimize(problem, []float64{0}, nil, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("calibrator: temperature fit: %w", err)
	}
	c.T = math.Exp(result.X[0])
	return nil
}

func (c *TemperatureScaling) Apply(probs [][]float64) [][]float64 {
	out := make([][]float64, len(probs))
	for i, row := range probs {
		q := make([]float64, len(row))
		for k, p := range row {
			q[k] = math.Log(clampProb(p)) / c.T
		}
		softmaxInPlace(q)
		out[i] = q
	}
	return out
}

// Curve reports the binary form of the fitted temperature, the map the
// method applies to a two-class confidence.
func (c *TemperatureScaling) Curve(t float64) float64 {
	return sigmoid(logit(t) / c.T)
}

// binaryTemperature is the scalar form used by the reduced and class-wise
// variants: q = sigmoid(logit(p) / T).
type binaryTemperature struct {
	t float64
}

func (m *binaryTemperature) fit(conf, hit, w []float64) error {
	if len(conf) == 0 {
		return errors.New("calibrator: empty fitting set")
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			t := math.Exp(x[0])
			var nll float64
			for i, p := range conf {
				q := clampProb(sigmoid(logit(p) / t))
				l := -math.Log(q)
				if hit[i] == 0 {
					l = -math.Log(1 - q)
				}
				if w != nil {
					l *= w[i]
				}
				nll += l
			}
			return nll
		},
	}

	result, err := optimize.Minimize(problem, []float64{0}, nil, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("calibrator: binary temperature fit: %w", err)
	}
	m.t = math.Exp(result.X[0])
	return nil
}

func (m *binaryTemperature) transform(p float64) float64 {
	return sigmoid(logit(p) / m.t)
}

func clampProb(p float64) float64 {
	if p < probEps {
		return probEps
	}
	if p > 1-probEps {
		return 1 - probEps
	}
	return p
}

func logit(p float64) float64 {
	p = clampProb(p)
	return math.Log(p / (1 - p))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// logSoftmaxAt computes log softmax(row/t)[label] without materializing the
// full softmax.
func logSoftmaxAt(row []float64, label int, t float64) float64 {
	max := math.Inf(-1)
	for _, v := range row {
		if v/t > max {
			max = v / t
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(v/t - max)
	}
	return row[label]/t - max - math.Log(sum)
}

// softmaxInPlace replaces logits with a numerically stable softmax.
func softmaxInPlace(q []float64) {
	max := math.Inf(-1)
	for _, v := range q {
		if v > max {
			max = v
		}
	}
	var sum float64
	for k, v := range q {
		q[k] = math.Exp(v - max)
		sum += q[k]
	}
	for k := range q {
		q[k] /= sum
	}
}
