// Package calib builds composite-filter calibrations against a
// reference photometric system and applies them to catalog sources.
//
// Build fits the linear band weights of a composite filter from a
// spectral template library, together with a polynomial colour
// correction to the fit residuals and a colour-dependent extinction
// coefficient R(c). The resulting Model converts reference-catalog
// magnitudes into magnitudes in the target bandpass.
//
// Estimator runs the model over sky positions: targets are grouped
// into fields, each field's reddening is fitted by stellar-locus
// regression on the surrounding catalog sources, and per-source
// magnitudes are produced concurrently with per-field error isolation.
package calib
