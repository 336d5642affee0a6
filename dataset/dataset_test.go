package dataset

import (
	"errors"
	"testing"
)

func validDataset() *Dataset {
	return &Dataset{
		Name:   "synthetic",
		Probs:  [][]float64{{0.7, 0.2, 0.1}, {0.1, 0.8, 0.1}, {0.3, 0.3, 0.4}},
		Labels: []int{0, 1, 2},
	}
}

func TestDataset_Shape(t *testing.T) {
	d := validDataset()
	if got := d.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if got := d.Classes(); got != 3 {
		t.Errorf("Classes() = %d, want 3", got)
	}

	empty := &Dataset{}
	if got := empty.Classes(); got != 0 {
		t.Errorf("empty Classes() = %d, want 0", got)
	}
}

func TestDataset_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Dataset)
		wantErr error
	}{
		{
			name:    "valid",
			mutate:  func(*Dataset) {},
			wantErr: nil,
		},
		{
			name:    "empty",
			mutate:  func(d *Dataset) { d.Probs, d.Labels = nil, nil },
			wantErr: ErrEmpty,
		},
		{
			name:    "row not summing to one",
			mutate:  func(d *Dataset) { d.Probs[1] = []float64{0.5, 0.6, 0.1} },
			wantErr: ErrNotRowStochastic,
		},
		{
			name:    "negative probability",
			mutate:  func(d *Dataset) { d.Probs[1] = []float64{-0.1, 0.9, 0.2} },
			wantErr: ErrNotRowStochastic,
		},
		{
			name:    "label out of range",
			mutate:  func(d *Dataset) { d.Labels[2] = 3 },
			wantErr: ErrBadLabel,
		},
		{
			name:    "negative label",
			mutate:  func(d *Dataset) { d.Labels[0] = -1 },
			wantErr: ErrBadLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDataset()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDataset_ValidateRaggedRows(t *testing.T) {
	d := validDataset()
	d.Probs[1] = []float64{0.5, 0.5}
	if err := d.Validate(); err == nil {
		t.Error("Validate() = nil, want error for ragged rows")
	}
}

func TestDataset_ValidateToleratesRounding(t *testing.T) {
	d := &Dataset{
		Name:   "rounded",
		Probs:  [][]float64{{0.3333333, 0.3333333, 0.3333334}},
		Labels: []int{0},
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error = %v for row within tolerance", err)
	}
}
