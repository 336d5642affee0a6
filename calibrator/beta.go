package calibrator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// beta fits the three-parameter beta calibration map
//
//	logit(q) = a·ln(p) − b·ln(1−p) + c,  a, b ≥ 0
//
// by minimizing the (weighted) binary negative log-likelihood. The
// non-negativity of a and b is enforced by optimizing their logs.
type beta struct {
	a, b, c float64
}

func (m *beta) fit(conf, hit, w []float64) error {
	if len(conf) == 0 {
		return errors.New("calibrator: empty fitting set")
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			a := math.Exp(x[0])
			b := math.Exp(x[1])
			c := x[2]
			var nll float64
			for i, p := range conf {
				q := clampProb(betaMap(p, a, b, c))
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

	result, err := optimize.Minimize(problem, []float64{0, 0, 0}, nil, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("calibrator: beta fit: %w", err)
	}
	m.a = math.Exp(result.X[0])
	m.b = math.Exp(result.X[1])
	m.c = result.X[2]
	return nil
}

func (m *beta) transform(p float64) float64 {
	return betaMap(p, m.a, m.b, m.c)
}

func betaMap(p, a, b, c float64) float64 {
	p = clampProb(p)
	return sigmoid(a*math.Log(p) - b*math.Log(1-p) + c)
}
