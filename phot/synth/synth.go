package synth

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/integrate"

	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
)

// Speed of light in Angstrom/s, for the flam -> fnu conversion.
const cLightAA = 2.99792458e18

// AB magnitude zero point for f_nu in erg/s/cm^2/Hz.
const abZeroPoint = -48.60

var (
	// ErrNoOverlap indicates a spectrum and bandpass with no common
	// spectral range (the overlap integral is numerically zero).
	ErrNoOverlap = errors.New("synth: spectrum and bandpass do not overlap")
	// ErrNoVega indicates a Vega-system bandpass without a Vega reference spectrum.
	ErrNoVega = errors.New("synth: vega system requires a reference spectrum")
	// ErrNonPositiveFlux indicates a mean flux that cannot be converted to a magnitude.
	ErrNonPositiveFlux = errors.New("synth: mean flux must be > 0")
)

// Spectrum is a sampled flux-density curve in erg/s/cm^2/A on an
// ascending wavelength grid in Angstrom. Immutable once built.
type Spectrum struct {
	Name string
	Wave []float64
	Flux []float64
}

// NewSpectrum validates and copies a spectrum.
func NewSpectrum(name string, wave, flux []float64) (*Spectrum, error) {
	if len(wave) != len(flux) {
		return nil, fmt.Errorf("synth: wave and flux must have same length: %d vs %d", len(wave), len(flux))
	}
	if len(wave) < 2 {
		return nil, errors.New("synth: spectrum needs at least two samples")
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] <= wave[i-1] {
			return nil, fmt.Errorf("synth: wavelength grid must be strictly ascending at index %d", i)
		}
	}
	return &Spectrum{
		Name: name,
		Wave: append([]float64(nil), wave...),
		Flux: append([]float64(nil), flux...),
	}, nil
}

// Integrator computes the photon-weighted mean flux density of a
// spectrum through a bandpass.
type Integrator interface {
	MeanFlux(s *Spectrum, b *bandpass.Bandpass) (float64, error)
}

// Trapezoid integrates on the bandpass's native grid using trapezoidal
// quadrature, resampling the spectrum with zero fill outside its domain.
// It is the default Integrator.
type Trapezoid struct{}

// MeanFlux implements Integrator.
func (Trapezoid) MeanFlux(s *Spectrum, b *bandpass.Bandpass) (float64, error) {
	n := len(b.Wave)
	f := bandpass.Regrid(s.Wave, s.Flux, b.Wave)

	num := make([]float64, n)
	den := make([]float64, n)
	vecmath.MulBlock(num, f, b.Throughput)
	vecmath.MulBlockInPlace(num, b.Wave)
	vecmath.MulBlock(den, b.Throughput, b.Wave)

	total := integrate.Trapezoidal(b.Wave, num)
	weight := integrate.Trapezoidal(b.Wave, den)
	if total == 0 {
		return 0, fmt.Errorf("%w: %s vs %s", ErrNoOverlap, s.Name, b.Name)
	}
	return total / weight, nil
}

// ZeroPoint returns the magnitude zero point of a bandpass in its
// declared system. For Vega bandpasses a Vega reference spectrum is
// required; for AB it is ignored and may be nil.
func ZeroPoint(integ Integrator, b *bandpass.Bandpass, vega *Spectrum) (float64, error) {
	switch b.System {
	case bandpass.SystemVega:
		if vega == nil {
			return 0, fmt.Errorf("%w: band %s", ErrNoVega, b.Name)
		}
		mean, err := integ.MeanFlux(vega, b)
		if err != nil {
			return 0, err
		}
		if mean <= 0 {
			return 0, fmt.Errorf("%w: vega through %s", ErrNonPositiveFlux, b.Name)
		}
		return 2.5 * math.Log10(mean), nil
	default:
		// m_AB = -2.5*log10(f_nu) - 48.60 with f_nu = <f_lambda> * pivot^2 / c.
		p := b.Pivot()
		return -2.5*math.Log10(p*p/cLightAA) + abZeroPoint, nil
	}
}

// Photometer is a bandpass plus its resolved zero point, ready to
// produce magnitudes.
type Photometer struct {
	band  *bandpass.Bandpass
	zp    float64
	integ Integrator
}

// Option configures a Photometer.
type Option func(*Photometer)

// WithIntegrator substitutes the integration backend.
func WithIntegrator(integ Integrator) Option {
	return func(p *Photometer) {
		if integ != nil {
			p.integ = integ
		}
	}
}

// NewPhotometer resolves the zero point of b and returns a Photometer.
// vega may be nil for AB bandpasses.
func NewPhotometer(b *bandpass.Bandpass, vega *Spectrum, opts ...Option) (*Photometer, error) {
	p := &Photometer{band: b, integ: Trapezoid{}}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	zp, err := ZeroPoint(p.integ, b, vega)
	if err != nil {
		return nil, err
	}
	p.zp = zp
	return p, nil
}

// Band returns the underlying bandpass.
func (p *Photometer) Band() *bandpass.Bandpass { return p.band }

// ZeroPoint returns the resolved zero point.
func (p *Photometer) ZeroPoint() float64 { return p.zp }

// Magnitude returns the synthetic magnitude of s through the bandpass.
func (p *Photometer) Magnitude(s *Spectrum) (float64, error) {
	mean, err := p.integ.MeanFlux(s, p.band)
	if err != nil {
		return 0, err
	}
	if mean <= 0 {
		return 0, fmt.Errorf("%w: %s through %s", ErrNonPositiveFlux, s.Name, p.band.Name)
	}
	return -2.5*math.Log10(mean) + p.zp, nil
}

// Color returns m_blue - m_red for the spectrum through the two photometers.
func Color(s *Spectrum, blue, red *Photometer) (float64, error) {
	mb, err := blue.Magnitude(s)
	if err != nil {
		return 0, err
	}
	mr, err := red.Magnitude(s)
	if err != nil {
		return 0, err
	}
	return mb - mr, nil
}
