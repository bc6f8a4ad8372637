package calib

import (
	"fmt"
	"math"

	"github.com/andrewmoore73/calibrimbore/fit/composite"
	"github.com/andrewmoore73/calibrimbore/internal/polyfit"
	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
)

// Model is a fitted composite-filter calibration. It maps reference
// photometry to magnitudes in the target bandpass:
//
//	m = sum_i w_i m_i + cubic(c) - R(c)*E
//
// where c is the intrinsic colour of the source and E the line-of-sight
// reddening in E(B-V).
type Model struct {
	// Target names the bandpass being reconstructed.
	Target string
	// System is the magnitude system of the target bandpass.
	System bandpass.System

	// Bands are the reference band names, in weight order.
	Bands []string
	// Weights are the fitted linear coefficients, one per band.
	Weights []float64

	// ColorBands name the blue and red bands of the fit colour.
	ColorBands [2]string
	// ColorCoeff is the reddening of the fit colour per unit E(B-V),
	// used to de-redden observed colours before evaluating the
	// polynomial terms.
	ColorCoeff float64
	// Window is the colour domain [lo, hi] the model was fitted on.
	Window [2]float64

	// Cubic holds the residual colour-correction coefficients in
	// ascending power order.
	Cubic []float64
	// R holds the extinction-coefficient polynomial R(c), the
	// target-band extinction per unit E(B-V), ascending power order.
	R []float64

	// Fit carries the residual diagnostics of the weight solution.
	// It is informational and not required for evaluation.
	Fit *composite.Result
}

// Validate checks the model for internal consistency.
func (m *Model) Validate() error {
	if m.Target == "" {
		return fmt.Errorf("%w: empty target name", ErrBadModel)
	}
	if len(m.Bands) == 0 || len(m.Bands) != len(m.Weights) {
		return fmt.Errorf("%w: %d bands, %d weights", ErrBadModel, len(m.Bands), len(m.Weights))
	}
	if len(m.Cubic) == 0 || len(m.R) == 0 {
		return fmt.Errorf("%w: missing polynomial terms", ErrBadModel)
	}
	if !(m.Window[0] < m.Window[1]) {
		return fmt.Errorf("%w: colour window [%g, %g]", ErrBadModel, m.Window[0], m.Window[1])
	}
	return nil
}

// Composite returns the weighted sum of reference magnitudes. mags must
// contain every band of the model.
func (m *Model) Composite(mags map[string]float64) (float64, error) {
	v := 0.0
	for i, name := range m.Bands {
		mag, ok := mags[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingBand, name)
		}
		v += m.Weights[i] * mag
	}
	return v, nil
}

// Correction evaluates the residual colour correction at an intrinsic
// colour. Colours outside the fitted window are clamped to its edge.
func (m *Model) Correction(color float64) float64 {
	return polyfit.Eval(m.Cubic, m.clamp(color))
}

// RCoeff evaluates the extinction coefficient R(c) at an intrinsic
// colour, clamped to the fitted window.
func (m *Model) RCoeff(color float64) float64 {
	return polyfit.Eval(m.R, m.clamp(color))
}

// InDomain reports whether a colour lies inside the fitted window.
func (m *Model) InDomain(color float64) bool {
	return color >= m.Window[0] && color <= m.Window[1]
}

func (m *Model) clamp(color float64) float64 {
	return math.Min(math.Max(color, m.Window[0]), m.Window[1])
}

// Sigma propagates the magnitude uncertainty: per-band catalog errors
// through the weights, plus the reddening uncertainty through R(c).
func (m *Model) Sigma(errs map[string]float64, color, redSigma float64) float64 {
	sum := 0.0
	for i, name := range m.Bands {
		e := m.Weights[i] * errs[name]
		sum += e * e
	}
	re := m.RCoeff(color) * redSigma
	return math.Sqrt(sum + re*re)
}
