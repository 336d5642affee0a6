package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Load reads a confidence CSV with header p0..p{K-1},label and validates
// the result. The file is the output of a model's inference step on its
// evaluation set; one row per sample.
func Load(name, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	classes, err := probColumns(header, path)
	if err != nil {
		return nil, err
	}

	d := &Dataset{Name: name}
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		probs := make([]float64, classes)
		for k := 0; k < classes; k++ {
			probs[k], err = strconv.ParseFloat(row[k], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad probability: %w", path, line, err)
			}
		}
		label, err := strconv.Atoi(row[classes])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad label: %w", path, line, err)
		}
		d.Probs = append(d.Probs, probs)
		d.Labels = append(d.Labels, label)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadFeatures reads a feature CSV with header f0..f{D-1},label for
// experiments that compute confidences through an ONNX classifier.
func LoadFeatures(path string) (features [][]float32, labels []int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening features: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	dims := len(header) - 1
	if dims < 1 || header[dims] != "label" {
		return nil, nil, fmt.Errorf("%s: want header f0..f%d,label, got %v", path, dims-1, header)
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		vec := make([]float32, dims)
		for j := 0; j < dims; j++ {
			v, err := strconv.ParseFloat(row[j], 32)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: bad feature: %w", path, line, err)
			}
			vec[j] = float32(v)
		}
		label, err := strconv.Atoi(row[dims])
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: bad label: %w", path, line, err)
		}
		features = append(features, vec)
		labels = append(labels, label)
	}
	return features, labels, nil
}

// probColumns validates a p0..p{K-1},label header and returns K.
func probColumns(header []string, path string) (int, error) {
	if len(header) < 3 {
		return 0, fmt.Errorf("%s: header too short: %v", path, header)
	}
	classes := len(header) - 1
	if header[classes] != "label" {
		return 0, fmt.Errorf("%s: last column must be %q, got %q", path, "label", header[classes])
	}
	for k := 0; k < classes; k++ {
		if header[k] != "p"+strconv.Itoa(k) {
			return 0, fmt.Errorf("%s: column %d must be %q, got %q",
				path, k, "p"+strconv.Itoa(k), header[k])
		}
	}
	return classes, nil
}
