// Package polyfit provides ordinary least-squares polynomial fitting
// shared by the cubic colour correction and the extinction-coefficient
// model.
package polyfit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooFewPoints indicates fewer samples than coefficients.
	ErrTooFewPoints = errors.New("polyfit: too few points for degree")
	// ErrSingular indicates a degenerate design matrix (e.g. repeated abscissa).
	ErrSingular = errors.New("polyfit: singular design matrix")
)

// Fit returns the OLS coefficients c[0..degree] of
// y = c0 + c1*x + ... + c_degree*x^degree.
func Fit(x, y []float64, degree int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("polyfit: length mismatch: %d vs %d", len(x), len(y))
	}
	if degree < 0 {
		return nil, fmt.Errorf("polyfit: negative degree %d", degree)
	}
	n := degree + 1
	if len(x) < n {
		return nil, fmt.Errorf("%w: %d points, degree %d", ErrTooFewPoints, len(x), degree)
	}

	a := mat.NewDense(len(x), n, nil)
	for i, xi := range x {
		v := 1.0
		for j := 0; j < n; j++ {
			a.Set(i, j, v)
			v *= xi
		}
	}
	b := mat.NewVecDense(len(y), append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		out[j] = sol.AtVec(j)
		if math.IsNaN(out[j]) || math.IsInf(out[j], 0) {
			return nil, ErrSingular
		}
	}
	return out, nil
}

// Eval evaluates the polynomial with coefficients c at x (Horner form).
func Eval(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}
