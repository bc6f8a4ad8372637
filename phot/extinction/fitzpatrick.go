package extinction

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/interp"

	"github.com/andrewmoore73/calibrimbore/phot/synth"
)

// Law maps wavelength (Angstrom) and reddening amount E(B-V) to the
// extinction A(lambda) in magnitudes at each wavelength.
type Law interface {
	Extinction(wave []float64, ebv float64) []float64
}

// ErrInvalidRV indicates a non-positive R_V shape parameter.
var ErrInvalidRV = errors.New("extinction: R_V must be > 0")

// Spline anchor positions in inverse microns, from infinity down to
// 2600 A. The last two sit inside the UV range so the spline joins the
// analytic curve continuously.
var knotX = [9]float64{0, 0.377, 0.820, 1.667, 1.828, 2.141, 2.433, 3.704, 3.846}

// Fitzpatrick is the Fitzpatrick (1999) reddening law for a fixed R_V.
type Fitzpatrick struct {
	rv     float64
	spline interp.NaturalCubic
}

// NewFitzpatrick builds the law for shape parameter rv (3.1 is the
// standard diffuse-ISM value).
func NewFitzpatrick(rv float64) (*Fitzpatrick, error) {
	if rv <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRV, rv)
	}
	f := &Fitzpatrick{rv: rv}

	// Optical/IR anchor values of A(lambda)/E(B-V) as polynomials in
	// R_V, per Fitzpatrick (1999) table 4.
	ky := []float64{
		0,
		0.26469 * rv / 3.1,
		0.82925 * rv / 3.1,
		-0.422809 + 1.00270*rv + 2.13572e-4*rv*rv,
		-5.13540e-2 + 1.00216*rv - 7.35778e-5*rv*rv,
		0.700127 + 1.00184*rv - 3.32598e-5*rv*rv,
		1.19456 + 1.01707*rv - 5.46959e-3*rv*rv + 7.97809e-4*rv*rv*rv - 4.45636e-5*rv*rv*rv*rv,
		f.uv(knotX[7]),
		f.uv(knotX[8]),
	}
	if err := f.spline.Fit(knotX[:], ky); err != nil {
		return nil, fmt.Errorf("extinction: spline fit: %w", err)
	}
	return f, nil
}

// RV returns the shape parameter.
func (f *Fitzpatrick) RV() float64 { return f.rv }

// uv evaluates A(lambda)/E(B-V) in the ultraviolet (x in inverse
// microns) using the Fitzpatrick & Massa form.
func (f *Fitzpatrick) uv(x float64) float64 {
	const (
		x0    = 4.596
		gamma = 0.99
		c3    = 3.23
		c4    = 0.41
		c5    = 5.9
	)
	c2 := -0.824 + 4.717/f.rv
	c1 := 2.030 - 3.007*c2

	x2 := x * x
	d := x2 / ((x2-x0*x0)*(x2-x0*x0) + x2*gamma*gamma)
	k := c1 + c2*x + c3*d
	if x > c5 {
		y := x - c5
		k += c4 * (0.5392*y*y + 0.05644*y*y*y)
	}
	return k + f.rv
}

// Extinction implements Law. Wavelengths at or below zero yield zero.
func (f *Fitzpatrick) Extinction(wave []float64, ebv float64) []float64 {
	out := make([]float64, len(wave))
	if ebv == 0 {
		return out
	}
	for i, w := range wave {
		if w <= 0 {
			continue
		}
		x := 1e4 / w // inverse microns
		switch {
		case x <= 0:
		case x < knotX[7]:
			out[i] = ebv * f.spline.Predict(x)
		default:
			out[i] = ebv * f.uv(x)
		}
	}
	return out
}

// Apply returns a copy of s with the law's reddening applied,
// flux' = flux * 10^(-0.4 * A(lambda)).
func Apply(law Law, s *synth.Spectrum, ebv float64) *synth.Spectrum {
	att := law.Extinction(s.Wave, ebv)
	for i, a := range att {
		att[i] = math.Pow(10, -0.4*a)
	}
	flux := make([]float64, len(s.Flux))
	vecmath.MulBlock(flux, s.Flux, att)
	return &synth.Spectrum{Name: s.Name, Wave: s.Wave, Flux: flux}
}
