// Package composite fits the weight vector of a composite filter: the
// linear combination of reference-band synthetic magnitudes that best
// reproduces a target bandpass across a template library.
//
// The fit is ordinary least squares in magnitude space, restricted to
// the templates inside a colour window, with an optional single
// sigma-clipping refit pass and a configurable non-negativity policy.
// A rank-deficient design matrix is reported as [ErrSingular]; too few
// templates for the number of reference bands as [ErrUnderdetermined].
package composite
