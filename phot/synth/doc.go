// Package synth computes synthetic photometry: magnitudes obtained by
// integrating a spectrum against a bandpass.
//
// Convention: the integral is photon-weighted. The mean flux density of
// a spectrum f (erg/s/cm^2/A) through a bandpass with throughput T is
//
//	<f> = integral(f * T * lambda) / integral(T * lambda)
//
// and the magnitude is m = -2.5*log10(<f>) + zp, with the zero point zp
// fixed by the bandpass's declared system: AB zero points are computed
// analytically from the pivot wavelength, Vega zero points from a
// caller-supplied Vega reference spectrum. The integration backend is
// the [Integrator] interface so it can be substituted without touching
// any fit logic.
package synth
