package calibrator

import (
	"math"
	"testing"
)

func TestBetaMap_Identity(t *testing.T) {
	// a=1, b=1, c=0 reduces to logit(q) = logit(p).
	for _, p := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		if got := betaMap(p, 1, 1, 0); math.Abs(got-p) > 1e-9 {
			t.Errorf("betaMap(%g, 1, 1, 0) = %g, want %g", p, got, p)
		}
	}
}

func TestBeta_Overconfident(t *testing.T) {
	// Two confidence levels, both observed less accurate than stated.
	var conf, hit []float64
	for i := 0; i < 20; i++ {
		conf = append(conf, 0.9)
		if i < 12 { // 60% accurate at 0.9
			hit = append(hit, 1)
		} else {
			hit = append(hit, 0)
		}
	}
	for i := 0; i < 20; i++ {
		conf = append(conf, 0.7)
		if i < 11 { // 55% accurate at 0.7
			hit = append(hit, 1)
		} else {
			hit = append(hit, 0)
		}
	}

	m := &beta{}
	if err := m.fit(conf, hit, nil); err != nil {
		t.Fatalf("fit() error = %v", err)
	}
	if got := m.transform(0.9); got >= 0.9 {
		t.Errorf("transform(0.9) = %g, want pulled below 0.9", got)
	}
	if m.a < 0 || m.b < 0 {
		t.Errorf("fitted a=%g b=%g, want non-negative", m.a, m.b)
	}
}

func TestBeta_MonotoneAndBounded(t *testing.T) {
	// With a, b >= 0 the map is non-decreasing regardless of the fit.
	m := &beta{}
	err := m.fit(
		[]float64{0.2, 0.4, 0.6, 0.8, 0.3, 0.7, 0.5, 0.9},
		[]float64{0, 0, 1, 1, 0, 1, 1, 1},
		nil,
	)
	if err != nil {
		t.Fatalf("fit() error = %v", err)
	}

	prev := math.Inf(-1)
	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		v := m.transform(p)
		if v < 0 || v > 1 {
			t.Fatalf("transform(%g) = %g out of [0,1]", p, v)
		}
		if v < prev-1e-12 {
			t.Fatalf("transform not monotone at %g: %g < %g", p, v, prev)
		}
		prev = v
	}
}

func TestBeta_WeightedFit(t *testing.T) {
	// Heavier weights on misses pull the map down relative to the
	// unweighted fit.
	conf := []float64{0.8, 0.8, 0.8, 0.8}
	hit := []float64{1, 1, 0, 0}

	plain := &beta{}
	if err := plain.fit(conf, hit, nil); err != nil {
		t.Fatalf("fit() error = %v", err)
	}
	weighted := &beta{}
	if err := weighted.fit(conf, hit, []float64{1, 1, 5, 5}); err != nil {
		t.Fatalf("weighted fit() error = %v", err)
	}

	if pw, pp := weighted.transform(0.8), plain.transform(0.8); pw >= pp {
		t.Errorf("weighted transform(0.8) = %g, want below unweighted %g", pw, pp)
	}
}

func TestBeta_EmptyFit(t *testing.T) {
	m := &beta{}
	if err := m.fit(nil, nil, nil); err == nil {
		t.Error("fit() on empty set succeeded, want error")
	}
}
