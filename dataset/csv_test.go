package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, `p0,p1,p2,label
0.7,0.2,0.1,0
0.1,0.8,0.1,1
0.3,0.3,0.4,2
`)

	d, err := Load("synthetic", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Name != "synthetic" {
		t.Errorf("Name = %q, want synthetic", d.Name)
	}
	if d.Len() != 3 || d.Classes() != 3 {
		t.Errorf("shape = %dx%d, want 3x3", d.Len(), d.Classes())
	}
	if d.Probs[1][1] != 0.8 || d.Labels[1] != 1 {
		t.Errorf("row 1 = %v label %d", d.Probs[1], d.Labels[1])
	}
}

func TestLoad_BadHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "wrong probability column name",
			content: "p0,q1,p2,label\n0.7,0.2,0.1,0\n",
		},
		{
			name:    "missing label column",
			content: "p0,p1,p2\n0.7,0.2,0.1\n",
		},
		{
			name:    "too short",
			content: "p0,label\n1.0,0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load("x", writeCSV(t, tt.content)); err == nil {
				t.Error("Load() = nil error, want header error")
			}
		})
	}
}

func TestLoad_InvalidRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "not row stochastic",
			content: "p0,p1,label\n0.7,0.7,0\n",
			wantErr: ErrNotRowStochastic,
		},
		{
			name:    "label out of range",
			content: "p0,p1,label\n0.7,0.3,2\n",
			wantErr: ErrBadLabel,
		},
		{
			name:    "empty body",
			content: "p0,p1,label\n",
			wantErr: ErrEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("x", writeCSV(t, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_BadNumber(t *testing.T) {
	path := writeCSV(t, "p0,p1,label\nabc,0.3,0\n")
	_, err := Load("x", path)
	if err == nil {
		t.Fatal("Load() = nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the offending line", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("x", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Load() on missing file succeeded, want error")
	}
}

func TestLoadFeatures(t *testing.T) {
	path := writeCSV(t, `f0,f1,f2,f3,label
0.5,1.5,-2.0,0.25,1
1.0,0.0,3.0,-1.5,0
`)

	features, labels, err := LoadFeatures(path)
	if err != nil {
		t.Fatalf("LoadFeatures() error = %v", err)
	}
	if len(features) != 2 || len(labels) != 2 {
		t.Fatalf("got %d features, %d labels, want 2 each", len(features), len(labels))
	}
	if len(features[0]) != 4 {
		t.Errorf("feature dims = %d, want 4", len(features[0]))
	}
	if features[0][2] != -2.0 || labels[0] != 1 {
		t.Errorf("row 0 = %v label %d", features[0], labels[0])
	}
}

func TestLoadFeatures_BadHeader(t *testing.T) {
	path := writeCSV(t, "f0,f1,target\n0.5,1.5,1\n")
	if _, _, err := LoadFeatures(path); err == nil {
		t.Error("LoadFeatures() = nil error, want header error")
	}
}
