package calibrator

import "errors"

const defaultHistogramBins = 10

// histogram maps each confidence to the observed (weighted) accuracy of its
// equal-width bin on the fitting set. Empty bins fall back to the global
// accuracy so the map is total on [0,1].
type histogram struct {
	bins  int
	value []float64
}

func newHistogram(bins int) *histogram {
	if bins <= 0 {
		bins = defaultHistogramBins
	}
	return &histogram{bins: bins}
}

func (m *histogram) fit(conf, hit, w []float64) error {
	if len(conf) == 0 {
		return errors.New("calibrator: empty fitting set")
	}

	sum := make([]float64, m.bins)
	weight := make([]float64, m.bins)
	var totalSum, totalWeight float64

	for i, p := range conf {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		b := histBin(p, m.bins)
		sum[b] += hit[i] * wi
		weight[b] += wi
		totalSum += hit[i] * wi
		totalWeight += wi
	}
	if totalWeight <= 0 {
		return errors.New("calibrator: histogram fit has no positive-weight samples")
	}

	global := totalSum / totalWeight
	m.value = make([]float64, m.bins)
	for b := 0; b < m.bins; b++ {
		if weight[b] > 0 {
			m.value[b] = sum[b] / weight[b]
		} else {
			m.value[b] = global
		}
	}
	return nil
}

func (m *histogram) transform(p float64) float64 {
	return m.value[histBin(p, m.bins)]
}

func histBin(p float64, bins int) int {
	b := int(p * float64(bins))
	if b >= bins {
		b = bins - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}
