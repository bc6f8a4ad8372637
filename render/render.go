// Package render prints fitted calibrations as human-readable
// equations and persists their coefficients to a plain-text format.
package render

import (
	"fmt"
	"strings"

	"github.com/andrewmoore73/calibrimbore/calib"
)

// CompositeEquation formats the weighted band sum of a model, e.g.
//
//	x = +0.2500*g +0.7500*r
func CompositeEquation(m *calib.Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s =", m.Target)
	for i, name := range m.Bands {
		fmt.Fprintf(&b, " %+.4f*%s", m.Weights[i], name)
	}
	return b.String()
}

// CubicEquation formats the residual colour correction as a polynomial
// in the fit colour.
func CubicEquation(m *calib.Model) string {
	c := m.ColorBands[0] + "-" + m.ColorBands[1]
	return "dm = " + polynomial(m.Cubic, c)
}

// REquation formats the extinction coefficient R as a polynomial in
// the fit colour.
func REquation(m *calib.Model) string {
	c := m.ColorBands[0] + "-" + m.ColorBands[1]
	return "R = " + polynomial(m.R, c)
}

// polynomial renders ascending-order coefficients against a named
// variable, omitting exact-zero terms beyond the constant.
func polynomial(coeffs []float64, variable string) string {
	var b strings.Builder
	for p, c := range coeffs {
		if p > 0 && c == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		switch p {
		case 0:
			fmt.Fprintf(&b, "%+.4f", c)
		case 1:
			fmt.Fprintf(&b, "%+.4f*(%s)", c, variable)
		default:
			fmt.Fprintf(&b, "%+.4f*(%s)^%d", c, variable, p)
		}
	}
	if b.Len() == 0 {
		return "+0.0000"
	}
	return b.String()
}
