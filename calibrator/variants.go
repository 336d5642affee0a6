package calibrator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// fullVector applies one shared scalar map to every class probability and
// renormalizes. The map is fit on the pooled one-vs-rest pairs of all
// classes, so it sees every column of the training confidences.
type fullVector struct {
	m scalar
}

func (c *fullVector) Fit(probs [][]float64, labels []int) error {
	conf, hit := poolOneVsRest(probs, labels)
	return c.m.fit(conf, hit, nil)
}

func (c *fullVector) Apply(probs [][]float64) [][]float64 {
	out := make([][]float64, len(probs))
	for i, row := range probs {
		q := make([]float64, len(row))
		for k, p := range row {
			q[k] = clampUnit(c.m.transform(p))
		}
		renormalize(q)
		out[i] = q
	}
	return out
}

func (c *fullVector) Curve(t float64) float64 {
	return clampUnit(c.m.transform(t))
}

// reduced restricts the method to the max-confidence signal. The fitted map
// adjusts the top probability; the remaining mass is rescaled to keep the
// row stochastic.
type reduced struct {
	m        scalar
	weighted bool
}

func (c *reduced) Fit(probs [][]float64, labels []int) error {
	n := len(probs)
	conf := make([]float64, n)
	hit := make([]float64, n)
	var w []float64
	if c.weighted {
		w = make([]float64, n)
	}
	for i, row := range probs {
		k := floats.MaxIdx(row)
		conf[i] = row[k]
		if k == labels[i] {
			hit[i] = 1
		}
		if c.weighted {
			w[i] = row[k]
		}
	}
	return c.m.fit(conf, hit, w)
}

func (c *reduced) Apply(probs [][]float64) [][]float64 {
	out := make([][]float64, len(probs))
	for i, row := range probs {
		k := floats.MaxIdx(row)
		out[i] = rescaleTop(row, k, clampUnit(c.m.transform(row[k])))
	}
	return out
}

func (c *reduced) Curve(t float64) float64 {
	return clampUnit(c.m.transform(t))
}

// classWise fits one independent scalar calibrator per class. In the
// reduced form each class's calibrator is fit only on the samples predicted
// as that class and adjusts the top probability; otherwise calibrators are
// fit one-vs-rest per column and the output is renormalized.
type classWise struct {
	newScalar func() scalar
	reduced   bool
	weighted  bool

	models []scalar
}

func (c *classWise) Fit(probs [][]float64, labels []int) error {
	if len(probs) == 0 {
		return errors.New("calibrator: empty fitting set")
	}
	classes := len(probs[0])
	c.models = make([]scalar, classes)

	for k := 0; k < classes; k++ {
		var conf, hit, w []float64
		for i, row := range probs {
			if c.reduced {
				pred := floats.MaxIdx(row)
				if pred != k {
					continue
				}
				conf = append(conf, row[pred])
				if labels[i] == pred {
					hit = append(hit, 1)
				} else {
					hit = append(hit, 0)
				}
				if c.weighted {
					w = append(w, row[pred])
				}
			} else {
				conf = append(conf, row[k])
				if labels[i] == k {
					hit = append(hit, 1)
				} else {
					hit = append(hit, 0)
				}
			}
		}
		if len(conf) == 0 {
			return fmt.Errorf("calibrator: class %d has no fitting samples", k)
		}
		m := c.newScalar()
		if err := m.fit(conf, hit, w); err != nil {
			return fmt.Errorf("calibrator: class %d: %w", k, err)
		}
		c.models[k] = m
	}
	return nil
}

func (c *classWise) Apply(probs [][]float64) [][]float64 {
	out := make([][]float64, len(probs))
	for i, row := range probs {
		if c.reduced {
			k := floats.MaxIdx(row)
			out[i] = rescaleTop(row, k, clampUnit(c.models[k].transform(row[k])))
			continue
		}
		q := make([]float64, len(row))
		for k, p := range row {
			q[k] = clampUnit(c.models[k].transform(p))
		}
		renormalize(q)
		out[i] = q
	}
	return out
}

// Curve reports the mean of the per-class maps, the variant's effective
// scalar transform.
func (c *classWise) Curve(t float64) float64 {
	if len(c.models) == 0 {
		return t
	}
	var sum float64
	for _, m := range c.models {
		sum += clampUnit(m.transform(t))
	}
	return sum / float64(len(c.models))
}

// poolOneVsRest flattens an N×K confidence matrix into N*K scalar
// (confidence, correctness) pairs.
func poolOneVsRest(probs [][]float64, labels []int) (conf, hit []float64) {
	for i, row := range probs {
		for k, p := range row {
			conf = append(conf, p)
			if labels[i] == k {
				hit = append(hit, 1)
			} else {
				hit = append(hit, 0)
			}
		}
	}
	return conf, hit
}

// rescaleTop replaces row[k] with newTop and scales the remaining entries
// so the row still sums to 1.
func rescaleTop(row []float64, k int, newTop float64) []float64 {
	q := make([]float64, len(row))
	rest := 1 - row[k]
	if rest <= 1e-12 {
		// All mass on the top class: spread the freed mass uniformly.
		fill := 0.0
		if len(row) > 1 {
			fill = (1 - newTop) / float64(len(row)-1)
		}
		for j := range q {
			q[j] = fill
		}
		q[k] = newTop
		return q
	}
	scale := (1 - newTop) / rest
	for j, p := range row {
		q[j] = p * scale
	}
	q[k] = newTop
	return q
}

// renormalize scales q to sum to 1, falling back to uniform when the
// transform zeroed the whole row.
func renormalize(q []float64) {
	sum := floats.Sum(q)
	if sum <= 1e-12 {
		for j := range q {
			q[j] = 1 / float64(len(q))
		}
		return
	}
	floats.Scale(1/sum, q)
}

func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
