package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiffMagnitudes(t *testing.T) {
	got := []float64{15.001, 14.598, 14.402}
	want := []float64{15.000, 14.600, 14.400}

	d, err := MaxAbsDiff(got, want)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}
	if math.Abs(d-0.002) > 1e-12 {
		t.Fatalf("MaxAbsDiff = %v, want 0.002", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]float64{15.0}, []float64{15.0, 14.6})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestMaxAbsDiffIdentical(t *testing.T) {
	mags := []float64{15.0, 14.6, 14.4}

	d, err := MaxAbsDiff(mags, mags)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}
	if d != 0 {
		t.Fatalf("MaxAbsDiff = %v, want 0 for identical slices", d)
	}
}

func TestRequireFiniteAcceptsWeights(t *testing.T) {
	RequireFinite(t, []float64{0.25, 0.5, 0.25})
}

func TestRequireNearlyEqualSubMillimag(t *testing.T) {
	RequireNearlyEqual(t, 15.5001, 15.5, 1e-3)
}

func TestRequireSliceNearlyEqualOneHot(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1e-10, 1, -1e-10}, []float64{0, 1, 0}, 1e-8)
}
