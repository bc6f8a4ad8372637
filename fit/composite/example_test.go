package composite_test

import (
	"fmt"
	"log"

	"github.com/andrewmoore73/calibrimbore/fit/composite"
)

func ExampleFit() {
	// Synthetic template magnitudes in three reference bands, smooth
	// distinct functions of the template colour. The target band is an
	// exact copy of the middle one.
	var refs [][]float64
	var target, colors []float64
	for i := 0; i < 25; i++ {
		c := -0.2 + 1.7*float64(i)/24
		row := []float64{
			15.0 + 1.1*c + 0.05*c*c,
			14.6 + 0.4*c - 0.08*c*c,
			14.4 + 0.1*c + 0.12*c*c,
		}
		refs = append(refs, row)
		target = append(target, row[1])
		colors = append(colors, c)
	}

	res, err := composite.Fit(refs, target, colors, -0.5, 2, composite.WithClipSigma(0))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("middle-band weight: %.3f\n", res.Weights[1])
	fmt.Printf("templates used: %d\n", len(res.Used))
	// Output:
	// middle-band weight: 1.000
	// templates used: 25
}
