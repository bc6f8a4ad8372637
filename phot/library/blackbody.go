package library

import (
	"fmt"
	"math"

	"github.com/andrewmoore73/calibrimbore/phot/synth"
)

// hc/k in Angstrom * Kelvin.
const hcOverK = 1.43877688e8

// Blackbody generates n deterministic Planck spectra with temperatures
// log-spaced between tMin and tMax Kelvin on the given wavelength grid,
// normalized to unit flux density at 5500 A. Cool templates are red,
// hot templates blue, so a 3000..12000 K run spans roughly the stellar
// colour range the calibration needs.
func Blackbody(n int, tMin, tMax float64, grid []float64) ([]*synth.Spectrum, error) {
	if n < 1 {
		return nil, fmt.Errorf("library: blackbody count must be >= 1: %d", n)
	}
	if tMin <= 0 || tMax <= tMin {
		return nil, fmt.Errorf("library: invalid temperature range [%g, %g]", tMin, tMax)
	}
	specs := make([]*synth.Spectrum, 0, n)
	logMin, logMax := math.Log(tMin), math.Log(tMax)
	for i := 0; i < n; i++ {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		temp := math.Exp(logMin + frac*(logMax-logMin))
		flux := make([]float64, len(grid))
		norm := planck(5500, temp)
		for j, w := range grid {
			flux[j] = planck(w, temp) / norm
		}
		s, err := synth.NewSpectrum(fmt.Sprintf("bb-%.0fK", temp), grid, flux)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// planck returns the Planck flux density shape in f_lambda units,
// up to a temperature-independent constant.
func planck(wave, temp float64) float64 {
	x := hcOverK / (wave * temp)
	return 1 / (math.Pow(wave, 5) * (math.Exp(x) - 1))
}

// Grid returns an ascending wavelength grid from lo to hi Angstrom with
// the given step.
func Grid(lo, hi, step float64) []float64 {
	var grid []float64
	for w := lo; w <= hi; w += step {
		grid = append(grid, w)
	}
	return grid
}
