package calib

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ECE computes the Expected Calibration Error: the weighted average, over
// bins equal-width confidence bins, of the absolute gap between mean
// predicted max-confidence and observed top-1 accuracy in that bin.
func ECE(probs [][]float64, labels []int, bins int) float64 {
	n := len(probs)
	if n == 0 || bins <= 0 {
		return 0
	}

	sumConf := make([]float64, bins)
	sumHit := make([]float64, bins)
	count := make([]float64, bins)

	for i, row := range probs {
		k := floats.MaxIdx(row)
		conf := row[k]
		b := binIndex(conf, bins)
		sumConf[b] += conf
		if k == labels[i] {
			sumHit[b]++
		}
		count[b]++
	}

	var ece float64
	for b := 0; b < bins; b++ {
		if count[b] == 0 {
			continue
		}
		gap := math.Abs(sumConf[b]/count[b] - sumHit[b]/count[b])
		ece += count[b] / float64(n) * gap
	}
	return ece
}

// ClasswiseECE computes ECE independently per class over that class's
// probability column, then averages across classes.
func ClasswiseECE(probs [][]float64, labels []int, bins int) float64 {
	n := len(probs)
	if n == 0 || bins <= 0 {
		return 0
	}
	classes := len(probs[0])
	if classes == 0 {
		return 0
	}

	var total float64
	for c := 0; c < classes; c++ {
		sumConf := make([]float64, bins)
		sumHit := make([]float64, bins)
		count := make([]float64, bins)

		for i, row := range probs {
			conf := row[c]
			b := binIndex(conf, bins)
			sumConf[b] += conf
			if labels[i] == c {
				sumHit[b]++
			}
			count[b]++
		}

		var ece float64
		for b := 0; b < bins; b++ {
			if count[b] == 0 {
				continue
			}
			gap := math.Abs(sumConf[b]/count[b] - sumHit[b]/count[b])
			ece += count[b] / float64(n) * gap
		}
		total += ece
	}
	return total / float64(classes)
}

// binIndex maps a confidence in [0,1] to an equal-width bin. Confidence 1.0
// lands in the top bin.
func binIndex(conf float64, bins int) int {
	b := int(conf * float64(bins))
	if b >= bins {
		b = bins - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}
