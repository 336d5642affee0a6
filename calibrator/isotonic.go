package calibrator

import (
	"errors"
	"sort"
)

// isotonic fits a non-decreasing step function to (confidence, correctness)
// pairs by the pool-adjacent-violators algorithm. Supports weighted fits.
type isotonic struct {
	// Fitted blocks: bound[i] is the largest confidence in block i, value[i]
	// the block's pooled correctness. bound is strictly increasing.
	bound []float64
	value []float64
}

func (m *isotonic) fit(conf, hit, w []float64) error {
	n := len(conf)
	if n == 0 {
		return errors.New("calibrator: empty fitting set")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return conf[order[a]] < conf[order[b]] })

	type block struct {
		sum    float64 // weighted correctness sum
		weight float64
		bound  float64 // max confidence in block
	}

	blocks := make([]block, 0, n)
	for _, i := range order {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		if wi <= 0 {
			continue
		}
		blocks = append(blocks, block{sum: hit[i] * wi, weight: wi, bound: conf[i]})

		// Pool while the new block violates monotonicity.
		for len(blocks) > 1 {
			last := len(blocks) - 1
			if blocks[last-1].sum*blocks[last].weight <= blocks[last].sum*blocks[last-1].weight {
				break
			}
			blocks[last-1].sum += blocks[last].sum
			blocks[last-1].weight += blocks[last].weight
			blocks[last-1].bound = blocks[last].bound
			blocks = blocks[:last]
		}
	}
	if len(blocks) == 0 {
		return errors.New("calibrator: isotonic fit has no positive-weight samples")
	}

	m.bound = make([]float64, len(blocks))
	m.value = make([]float64, len(blocks))
	for i, b := range blocks {
		m.bound[i] = b.bound
		m.value[i] = b.sum / b.weight
	}
	return nil
}

func (m *isotonic) transform(p float64) float64 {
	// First block whose upper bound covers p; above the last bound the map
	// saturates at the last block value.
	i := sort.SearchFloat64s(m.bound, p)
	if i >= len(m.value) {
		i = len(m.value) - 1
	}
	return m.value[i]
}
