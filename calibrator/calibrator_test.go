package calibrator

import "testing"

func TestDefaultMethods_Registry(t *testing.T) {
	specs := DefaultMethods()

	wantMethods := []string{MethodTemperature, MethodIsotonic, MethodHistogram, MethodBeta}
	wantReductions := []string{
		Baseline,
		Reduced,
		ClassWise,
		ClassWiseReduced,
		WeightedReduced,
		ClassWiseWeightedReduced,
	}

	if got, want := len(specs), len(wantMethods)*len(wantReductions); got != want {
		t.Fatalf("got %d specs, want %d", got, want)
	}

	for i, spec := range specs {
		method := wantMethods[i/len(wantReductions)]
		reduction := wantReductions[i%len(wantReductions)]
		if spec.Method != method {
			t.Errorf("spec %d: method = %q, want %q", i, spec.Method, method)
		}
		if spec.Reduction != reduction {
			t.Errorf("spec %d: reduction = %q, want %q", i, spec.Reduction, reduction)
		}
		if spec.New == nil {
			t.Errorf("spec %d (%s/%s): nil constructor", i, spec.Method, spec.Reduction)
			continue
		}
		if spec.New() == nil {
			t.Errorf("spec %d (%s/%s): constructor returned nil", i, spec.Method, spec.Reduction)
		}
	}
}

func TestDefaultMethods_FreshInstances(t *testing.T) {
	for _, spec := range DefaultMethods() {
		a, b := spec.New(), spec.New()
		if a == b {
			t.Errorf("%s/%s: constructor returned the same instance twice", spec.Method, spec.Reduction)
		}
	}
}

func TestDefaultMethods_CurveProbers(t *testing.T) {
	// Every registered variant reduces to a scalar map and exposes it.
	for _, spec := range DefaultMethods() {
		if _, ok := spec.New().(CurveProber); !ok {
			t.Errorf("%s/%s does not implement CurveProber", spec.Method, spec.Reduction)
		}
	}
}
