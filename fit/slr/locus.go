package slr

import (
	"errors"
	"fmt"
)

// ErrBadLocus indicates an invalid reference locus table.
var ErrBadLocus = errors.New("slr: invalid reference locus")

// Locus is a reference stellar locus: the curve traced by unreddened
// main-sequence stars in a colour-colour plane, sampled as an ascending
// table of (c1, c2) points and evaluated by linear interpolation with
// clamped ends.
type Locus struct {
	c1 []float64
	c2 []float64
}

// NewLocus builds a locus from a table sorted by c1.
func NewLocus(c1, c2 []float64) (*Locus, error) {
	if len(c1) != len(c2) {
		return nil, fmt.Errorf("%w: length mismatch %d vs %d", ErrBadLocus, len(c1), len(c2))
	}
	if len(c1) < 2 {
		return nil, fmt.Errorf("%w: need at least two points", ErrBadLocus)
	}
	for i := 1; i < len(c1); i++ {
		if c1[i] <= c1[i-1] {
			return nil, fmt.Errorf("%w: c1 not strictly ascending at %d", ErrBadLocus, i)
		}
	}
	return &Locus{
		c1: append([]float64(nil), c1...),
		c2: append([]float64(nil), c2...),
	}, nil
}

// Eval returns the locus c2 at colour c1, clamped to the table ends.
func (l *Locus) Eval(x float64) float64 {
	if x <= l.c1[0] {
		return l.c2[0]
	}
	n := len(l.c1)
	if x >= l.c1[n-1] {
		return l.c2[n-1]
	}
	j := 0
	for l.c1[j+1] < x {
		j++
	}
	frac := (x - l.c1[j]) / (l.c1[j+1] - l.c1[j])
	return l.c2[j] + frac*(l.c2[j+1]-l.c2[j])
}

// TonryLocus returns a g-r versus r-i main-sequence locus in the shape
// of the Tonry et al. (2012) griz y stellar locus.
func TonryLocus() *Locus {
	l, err := NewLocus(
		[]float64{-0.20, 0.00, 0.20, 0.40, 0.60, 0.80, 1.00, 1.10, 1.20, 1.30, 1.40, 1.50},
		[]float64{-0.12, -0.02, 0.07, 0.15, 0.23, 0.32, 0.44, 0.54, 0.70, 0.93, 1.18, 1.40},
	)
	if err != nil {
		panic(err) // table is static
	}
	return l
}
