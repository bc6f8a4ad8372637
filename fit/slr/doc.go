// Package slr implements stellar locus regression: estimating the
// interstellar reddening of a field by sliding its observed colour-colour
// stellar distribution along the reddening vector until it matches an
// unreddened reference locus.
//
// The fit is a bounded one-dimensional least-squares minimization over
// the scalar reddening amount, wrapped in deterministic, order-stable
// sigma-clipping iterations with an iteration cap.
package slr
