package bandpass

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// System identifies the photometric magnitude system a bandpass is
// calibrated against.
type System int

const (
	// SystemAB uses the monochromatic AB zero point.
	SystemAB System = iota
	// SystemVega references magnitudes to a Vega spectrum.
	SystemVega
)

// String returns the conventional name of the system.
func (s System) String() string {
	if s == SystemVega {
		return "Vega"
	}
	return "AB"
}

// ParseSystem maps a case-insensitive system name to a System.
// Unknown names default to AB.
func ParseSystem(name string) System {
	switch name {
	case "vega", "Vega", "VEGA":
		return SystemVega
	default:
		return SystemAB
	}
}

// Bandpass is an immutable filter transmission curve.
//
// Wave is strictly ascending, in Angstrom. Throughput holds the
// transmission fraction in [0,1]. Callers must not modify the slices
// after construction; New copies its inputs.
type Bandpass struct {
	Name       string
	System     System
	Wave       []float64
	Throughput []float64
}

// New validates and copies the curve into a Bandpass.
func New(name string, wave, throughput []float64, system System) (*Bandpass, error) {
	if err := validateCurve(wave, throughput); err != nil {
		return nil, err
	}
	b := &Bandpass{
		Name:       name,
		System:     system,
		Wave:       append([]float64(nil), wave...),
		Throughput: append([]float64(nil), throughput...),
	}
	if b.Area() <= 0 {
		return nil, ErrZeroArea
	}
	return b, nil
}

// Area returns the transmission integral over the native grid.
func (b *Bandpass) Area() float64 {
	return integrate.Trapezoidal(b.Wave, b.Throughput)
}

// Pivot returns the pivot wavelength,
//
//	sqrt( integral(T * lambda) / integral(T / lambda) ).
//
// It is invariant under uniform positive rescaling of the throughput.
func (b *Bandpass) Pivot() float64 {
	n := len(b.Wave)
	num := make([]float64, n)
	den := make([]float64, n)
	for i, w := range b.Wave {
		num[i] = b.Throughput[i] * w
		den[i] = b.Throughput[i] / w
	}
	return math.Sqrt(integrate.Trapezoidal(b.Wave, num) / integrate.Trapezoidal(b.Wave, den))
}

// Overlap returns the fraction of b's transmission area covered by other,
//
//	integral(other(lambda) * T) / integral(T),
//
// with other resampled onto b's grid and treated as zero outside its
// native domain. Used to select reference bands that matter for a target.
func (b *Bandpass) Overlap(other *Bandpass) float64 {
	ot := Regrid(other.Wave, other.Throughput, b.Wave)
	prod := make([]float64, len(b.Wave))
	for i := range prod {
		prod[i] = ot[i] * b.Throughput[i]
	}
	return integrate.Trapezoidal(b.Wave, prod) / b.Area()
}

// Resample returns a copy of b sampled on grid, zero outside b's
// native domain. The grid must itself be a valid ascending grid.
func (b *Bandpass) Resample(grid []float64) (*Bandpass, error) {
	return New(b.Name, grid, Regrid(b.Wave, b.Throughput, grid), b.System)
}
