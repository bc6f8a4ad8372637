package calib

import "errors"

var (
	// ErrNoBands indicates that no reference bandpass overlaps the
	// target by more than the minimum fraction.
	ErrNoBands = errors.New("calib: no reference band overlaps the target")

	// ErrBadModel indicates a model with missing or inconsistent fields.
	ErrBadModel = errors.New("calib: incomplete model")

	// ErrNoMatch indicates that no catalog source lies within the match
	// radius of a requested position.
	ErrNoMatch = errors.New("calib: no catalog source within match radius")

	// ErrMissingBand indicates a matched source that lacks photometry
	// in a band the model requires.
	ErrMissingBand = errors.New("calib: source lacks a required band")
)
