package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
)

func testBand(t *testing.T, name string, center, width float64, system bandpass.System) *bandpass.Bandpass {
	t.Helper()
	var wave, thr []float64
	for w := center - 3*width; w <= center+3*width; w += width / 25 {
		wave = append(wave, w)
		d := (w - center) / width
		thr = append(thr, math.Exp(-0.5*d*d))
	}
	b, err := bandpass.New(name, wave, thr, system)
	if err != nil {
		t.Fatalf("band %s: %v", name, err)
	}
	return b
}

// flatABSpectrum has constant f_nu equal to the AB reference flux, so
// its AB magnitude is zero in every band by construction.
func flatABSpectrum(t *testing.T) *Spectrum {
	t.Helper()
	fnu := math.Pow(10, 0.4*abZeroPoint) // erg/s/cm^2/Hz
	var wave, flux []float64
	for w := 3000.0; w <= 11000; w += 5 {
		wave = append(wave, w)
		flux = append(flux, fnu*cLightAA/(w*w))
	}
	s, err := NewSpectrum("flat-ab", wave, flux)
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}
	return s
}

func TestFlatABSpectrumHasZeroMagnitude(t *testing.T) {
	s := flatABSpectrum(t)
	for _, center := range []float64{4800, 6200, 7500, 8700} {
		b := testBand(t, "b", center, 400, bandpass.SystemAB)
		p, err := NewPhotometer(b, nil)
		if err != nil {
			t.Fatalf("NewPhotometer: %v", err)
		}
		m, err := p.Magnitude(s)
		if err != nil {
			t.Fatalf("Magnitude: %v", err)
		}
		if math.Abs(m) > 1e-8 {
			t.Fatalf("center %v: AB mag of flat f_nu spectrum = %v, want 0", center, m)
		}
	}
}

func TestVegaReferenceHasZeroMagnitude(t *testing.T) {
	ref := flatABSpectrum(t) // any well-behaved spectrum works as the reference
	b := testBand(t, "v", 5500, 450, bandpass.SystemVega)
	p, err := NewPhotometer(b, ref)
	if err != nil {
		t.Fatalf("NewPhotometer: %v", err)
	}
	m, err := p.Magnitude(ref)
	if err != nil {
		t.Fatalf("Magnitude: %v", err)
	}
	if math.Abs(m) > 1e-12 {
		t.Fatalf("vega reference magnitude = %v, want 0", m)
	}

	if _, err := NewPhotometer(b, nil); !errors.Is(err, ErrNoVega) {
		t.Fatalf("missing vega reference: got %v, want ErrNoVega", err)
	}
}

func TestNoOverlapIsDomainError(t *testing.T) {
	s, err := NewSpectrum("blue", []float64{3000, 3100, 3200}, []float64{1, 1, 1})
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}
	b := testBand(t, "red", 9000, 200, bandpass.SystemAB)
	p, err := NewPhotometer(b, nil)
	if err != nil {
		t.Fatalf("NewPhotometer: %v", err)
	}
	if _, err := p.Magnitude(s); !errors.Is(err, ErrNoOverlap) {
		t.Fatalf("got %v, want ErrNoOverlap", err)
	}
}

func TestColor(t *testing.T) {
	s := flatABSpectrum(t)
	blue, err := NewPhotometer(testBand(t, "g", 4800, 400, bandpass.SystemAB), nil)
	if err != nil {
		t.Fatal(err)
	}
	red, err := NewPhotometer(testBand(t, "r", 6200, 400, bandpass.SystemAB), nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Color(s, blue, red)
	if err != nil {
		t.Fatalf("Color: %v", err)
	}
	if math.Abs(c) > 1e-8 {
		t.Fatalf("flat AB color = %v, want 0", c)
	}
}
