package calibrator

import (
	"math"
	"testing"
)

func TestIsotonic_PoolsViolators(t *testing.T) {
	// The middle pair violates monotonicity and gets pooled to 0.5.
	m := &isotonic{}
	err := m.fit(
		[]float64{0.2, 0.4, 0.6, 0.8},
		[]float64{0, 1, 0, 1},
		nil,
	)
	if err != nil {
		t.Fatalf("fit() error = %v", err)
	}

	wantBound := []float64{0.2, 0.6, 0.8}
	wantValue := []float64{0, 0.5, 1}
	if len(m.bound) != len(wantBound) {
		t.Fatalf("got %d blocks, want %d", len(m.bound), len(wantBound))
	}
	for i := range wantBound {
		if m.bound[i] != wantBound[i] || m.value[i] != wantValue[i] {
			t.Errorf("block %d = (%g, %g), want (%g, %g)",
				i, m.bound[i], m.value[i], wantBound[i], wantValue[i])
		}
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{p: 0.0, want: 0},
		{p: 0.2, want: 0},
		{p: 0.3, want: 0.5},
		{p: 0.6, want: 0.5},
		{p: 0.7, want: 1},
		{p: 0.95, want: 1}, // above the last bound the map saturates
	}
	for _, tt := range tests {
		if got := m.transform(tt.p); got != tt.want {
			t.Errorf("transform(%g) = %g, want %g", tt.p, got, tt.want)
		}
	}
}

func TestIsotonic_Monotone(t *testing.T) {
	m := &isotonic{}
	err := m.fit(
		[]float64{0.1, 0.9, 0.3, 0.7, 0.5, 0.2, 0.8, 0.4, 0.6, 0.95},
		[]float64{0, 1, 1, 0, 1, 0, 1, 0, 1, 1},
		nil,
	)
	if err != nil {
		t.Fatalf("fit() error = %v", err)
	}

	prev := math.Inf(-1)
	for i := 0; i <= 100; i++ {
		v := m.transform(float64(i) / 100)
		if v < prev {
			t.Fatalf("transform not monotone at %g: %g < %g", float64(i)/100, v, prev)
		}
		if v < 0 || v > 1 {
			t.Fatalf("transform(%g) = %g out of [0,1]", float64(i)/100, v)
		}
		prev = v
	}
}

func TestIsotonic_Weighted(t *testing.T) {
	// One violating pair pools into a single block whose value is the
	// weighted hit rate.
	m := &isotonic{}
	err := m.fit(
		[]float64{0.3, 0.6},
		[]float64{1, 0},
		[]float64{3, 1},
	)
	if err != nil {
		t.Fatalf("fit() error = %v", err)
	}
	if got, want := m.transform(0.5), 0.75; got != want {
		t.Errorf("transform(0.5) = %g, want %g", got, want)
	}
}

func TestIsotonic_EmptyFit(t *testing.T) {
	m := &isotonic{}
	if err := m.fit(nil, nil, nil); err == nil {
		t.Error("fit() on empty set succeeded, want error")
	}
}

func TestIsotonic_ZeroWeights(t *testing.T) {
	m := &isotonic{}
	err := m.fit(
		[]float64{0.3, 0.6},
		[]float64{1, 0},
		[]float64{0, 0},
	)
	if err == nil {
		t.Error("fit() with all-zero weights succeeded, want error")
	}
}
