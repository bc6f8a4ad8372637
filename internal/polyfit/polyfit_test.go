package polyfit

import (
	"errors"
	"math"
	"testing"

	"github.com/andrewmoore73/calibrimbore/internal/testutil"
)

func TestFitRecoversExactCubic(t *testing.T) {
	want := []float64{0.5, -1.2, 0.3, 0.04}
	var x, y []float64
	for v := -1.0; v <= 1.5; v += 0.1 {
		x = append(x, v)
		y = append(y, Eval(want, v))
	}
	got, err := Fit(x, y, 3)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireFinite(t, got)
	d, err := testutil.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}
	if d > 1e-10 {
		t.Fatalf("worst coefficient error %v, want < 1e-10", d)
	}
}

func TestResidualMeanIsZero(t *testing.T) {
	// OLS normal-equations property: residuals at the training samples
	// average to zero whenever the constant term is in the basis.
	var x, y []float64
	for v := 0.0; v < 2; v += 0.05 {
		x = append(x, v)
		y = append(y, math.Sin(3*v))
	}
	c, err := Fit(x, y, 3)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	sum := 0.0
	for i := range x {
		sum += y[i] - Eval(c, x[i])
	}
	if mean := sum / float64(len(x)); math.Abs(mean) > 1e-10 {
		t.Fatalf("residual mean %v, want ~0", mean)
	}
}

func TestFitErrors(t *testing.T) {
	if _, err := Fit([]float64{1, 2}, []float64{1, 2}, 3); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("got %v, want ErrTooFewPoints", err)
	}
	if _, err := Fit([]float64{1, 2, 3}, []float64{1, 2}, 1); err == nil {
		t.Fatal("length mismatch accepted")
	}
	// Repeated abscissa makes the quadratic fit degenerate.
	if _, err := Fit([]float64{1, 1, 1}, []float64{1, 2, 3}, 2); !errors.Is(err, ErrSingular) {
		t.Fatalf("got %v, want ErrSingular", err)
	}
}

func TestEvalHorner(t *testing.T) {
	c := []float64{1, 0, -2}
	if got := Eval(c, 3); got != 1-2*9 {
		t.Fatalf("Eval got %v want %v", got, 1-2*9)
	}
	if got := Eval(nil, 5); got != 0 {
		t.Fatalf("empty coeffs: got %v want 0", got)
	}
}
