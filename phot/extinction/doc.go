// Package extinction implements interstellar reddening laws and applies
// them to spectra.
//
// The only built-in law is [Fitzpatrick], the Fitzpatrick (1999)
// parameterization: an analytic Fitzpatrick & Massa curve in the
// ultraviolet joined to a cubic spline through R_V-dependent anchor
// points in the optical and infrared. Extinction amounts are expressed
// as E(B-V) in magnitudes.
package extinction
