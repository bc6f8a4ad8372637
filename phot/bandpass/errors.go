package bandpass

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCurve indicates a curve with fewer than two samples.
	ErrEmptyCurve = errors.New("bandpass: curve needs at least two samples")
	// ErrLengthMismatch indicates wavelength and transmission slices of different lengths.
	ErrLengthMismatch = errors.New("bandpass: wavelength and transmission must have same length")
	// ErrNotAscending indicates a wavelength grid that is not strictly increasing.
	ErrNotAscending = errors.New("bandpass: wavelength grid must be strictly ascending")
	// ErrOutOfRange indicates a transmission value outside [0,1].
	ErrOutOfRange = errors.New("bandpass: transmission out of range [0,1]")
	// ErrZeroArea indicates a curve whose integral is not positive.
	ErrZeroArea = errors.New("bandpass: transmission integral must be > 0")
)

func validateCurve(wave, throughput []float64) error {
	if len(wave) != len(throughput) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(wave), len(throughput))
	}
	if len(wave) < 2 {
		return ErrEmptyCurve
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] <= wave[i-1] {
			return fmt.Errorf("%w: wave[%d]=%g, wave[%d]=%g", ErrNotAscending, i-1, wave[i-1], i, wave[i])
		}
	}
	for i, v := range throughput {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: throughput[%d]=%g", ErrOutOfRange, i, v)
		}
	}
	return nil
}
