package slr_test

import (
	"fmt"
	"log"

	"github.com/andrewmoore73/calibrimbore/fit/slr"
)

func ExampleEngine_Fit() {
	// Thirty field stars on the reference locus, all shifted by
	// E(B-V) = 0.35 along the grizy reddening vector.
	const ebv = 0.35
	locus := slr.TonryLocus()
	var c1, c2 []float64
	for i := 0; i < 30; i++ {
		gr := -0.1 + 1.2*float64(i)/29
		c1 = append(c1, gr+1.028*ebv)
		c2 = append(c2, locus.Eval(gr)+0.677*ebv)
	}

	res, err := slr.New(locus).Fit(c1, c2)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("E(B-V) = %.2f\n", res.Reddening)
	fmt.Printf("stars used: %d\n", res.Active)
	// Output:
	// E(B-V) = 0.35
	// stars used: 30
}
