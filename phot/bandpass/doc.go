// Package bandpass models optical filter transmission curves.
//
// A [Bandpass] is a strictly ascending wavelength grid (Angstrom) with a
// transmission fraction in [0,1] at each sample. The package provides the
// curve-level primitives the fitting stack is built on:
//
//   - [Bandpass.Pivot]: the flux-weighted pivot wavelength
//   - [Bandpass.Overlap]: fractional area overlap between two curves
//   - [Regrid]: linear resampling onto a shared grid, zero outside the
//     native domain
//   - [Load] / [Parse]: the two-column bandpass file contract
package bandpass
