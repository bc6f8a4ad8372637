package synth_test

import (
	"fmt"
	"log"

	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
	"github.com/andrewmoore73/calibrimbore/phot/synth"
)

func ExamplePhotometer_Magnitude() {
	var wave, thr, vegaFlux, starFlux []float64
	for w := 4000.0; w <= 7000; w += 10 {
		wave = append(wave, w)
		thr = append(thr, 1.0)
		vegaFlux = append(vegaFlux, 1.0)
		starFlux = append(starFlux, 0.5)
	}

	band, err := bandpass.New("V", wave, thr, bandpass.SystemVega)
	if err != nil {
		log.Fatal(err)
	}
	vega, err := synth.NewSpectrum("vega", wave, vegaFlux)
	if err != nil {
		log.Fatal(err)
	}
	star, err := synth.NewSpectrum("star", wave, starFlux)
	if err != nil {
		log.Fatal(err)
	}

	phot, err := synth.NewPhotometer(band, vega)
	if err != nil {
		log.Fatal(err)
	}

	// Vega defines the zero point, so it measures as magnitude zero;
	// a star at half its flux is 0.75 mag fainter.
	mv, _ := phot.Magnitude(vega)
	ms, _ := phot.Magnitude(star)
	fmt.Printf("vega: %.4f\n", mv)
	fmt.Printf("star: %.4f\n", ms)
	// Output:
	// vega: 0.0000
	// star: 0.7526
}
