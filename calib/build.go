package calib

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/andrewmoore73/calibrimbore/fit/composite"
	"github.com/andrewmoore73/calibrimbore/internal/polyfit"
	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
	"github.com/andrewmoore73/calibrimbore/phot/extinction"
	"github.com/andrewmoore73/calibrimbore/phot/library"
	"github.com/andrewmoore73/calibrimbore/phot/synth"
)

type buildConfig struct {
	window     [2]float64
	colorBands [2]string
	colorCoeff float64
	cubicDeg   int
	rDeg       int
	rTrials    []float64
	minOverlap float64
	vega       *synth.Spectrum
	law        extinction.Law
	fitOpts    []composite.Option
	log        *zap.Logger
}

func defaultBuildConfig() buildConfig {
	return buildConfig{
		window:     [2]float64{-0.2, 1.2},
		colorBands: [2]string{"g", "r"},
		colorCoeff: 1.028,
		cubicDeg:   3,
		rDeg:       2,
		rTrials:    []float64{0.5, 1.0},
		minOverlap: 0.01,
		log:        zap.NewNop(),
	}
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithWindow sets the intrinsic colour window of the fit.
func WithWindow(lo, hi float64) BuildOption {
	return func(c *buildConfig) { c.window = [2]float64{lo, hi} }
}

// WithColorBands names the blue and red reference bands that define
// the fit colour (default g and r).
func WithColorBands(blue, red string) BuildOption {
	return func(c *buildConfig) { c.colorBands = [2]string{blue, red} }
}

// WithColorCoeff sets the reddening of the fit colour per unit E(B-V)
// (default 1.028, the g-r value for the reference system).
func WithColorCoeff(v float64) BuildOption {
	return func(c *buildConfig) { c.colorCoeff = v }
}

// WithCubicDegree sets the residual correction degree (default 3).
func WithCubicDegree(d int) BuildOption {
	return func(c *buildConfig) {
		if d >= 0 {
			c.cubicDeg = d
		}
	}
}

// WithRDegree sets the R(c) polynomial degree (default 2).
func WithRDegree(d int) BuildOption {
	return func(c *buildConfig) {
		if d >= 0 {
			c.rDeg = d
		}
	}
}

// WithRTrials sets the reddening amounts applied to the library when
// deriving R(c) (default 0.5 and 1.0 mag of E(B-V)).
func WithRTrials(trials ...float64) BuildOption {
	return func(c *buildConfig) {
		if len(trials) > 0 {
			c.rTrials = trials
		}
	}
}

// WithMinOverlap sets the fractional overlap below which a reference
// band is excluded from the composite (default 0.01).
func WithMinOverlap(v float64) BuildOption {
	return func(c *buildConfig) { c.minOverlap = v }
}

// WithVega supplies the Vega reference spectrum, required when the
// target or a reference bandpass is Vega calibrated.
func WithVega(s *synth.Spectrum) BuildOption {
	return func(c *buildConfig) { c.vega = s }
}

// WithExtinctionLaw substitutes the extinction law used for R(c)
// (default Fitzpatrick with R_V = 3.1).
func WithExtinctionLaw(law extinction.Law) BuildOption {
	return func(c *buildConfig) { c.law = law }
}

// WithFitOptions forwards options to the composite weight fit.
func WithFitOptions(opts ...composite.Option) BuildOption {
	return func(c *buildConfig) { c.fitOpts = append(c.fitOpts, opts...) }
}

// WithBuildLogger attaches a logger to the build pipeline.
func WithBuildLogger(log *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Build fits a composite-filter model for the target bandpass against
// the reference bands, using the template library for synthetic
// photometry. Reference bands whose overlap with the target falls
// below the minimum fraction are dropped automatically.
func Build(target *bandpass.Bandpass, refs []*bandpass.Bandpass, lib *library.Library, opts ...BuildOption) (*Model, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.law == nil {
		law, err := extinction.NewFitzpatrick(3.1)
		if err != nil {
			return nil, err
		}
		cfg.law = law
	}

	selected := selectBands(target, refs, cfg.minOverlap)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %s against %d candidates", ErrNoBands, target.Name, len(refs))
	}
	names := make([]string, len(selected))
	for i, b := range selected {
		names[i] = b.Name
	}
	cfg.log.Debug("selected reference bands",
		zap.String("target", target.Name),
		zap.Strings("bands", names))

	targetPhot, err := synth.NewPhotometer(target, cfg.vega)
	if err != nil {
		return nil, err
	}
	refPhots := make([]*synth.Photometer, len(selected))
	for i, b := range selected {
		if refPhots[i], err = synth.NewPhotometer(b, cfg.vega); err != nil {
			return nil, err
		}
	}

	templates, err := lib.Select(cfg.window[0], cfg.window[1])
	if err != nil {
		return nil, err
	}

	refMags := make([][]float64, len(templates))
	targetMags := make([]float64, len(templates))
	colors := make([]float64, len(templates))
	for i, tpl := range templates {
		targetMags[i], err = targetPhot.Magnitude(tpl.Spectrum)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", tpl.Spectrum.Name, err)
		}
		row := make([]float64, len(refPhots))
		for j, p := range refPhots {
			if row[j], err = p.Magnitude(tpl.Spectrum); err != nil {
				return nil, fmt.Errorf("template %s: %w", tpl.Spectrum.Name, err)
			}
		}
		refMags[i] = row
		colors[i] = tpl.Color
	}

	fit, err := composite.Fit(refMags, targetMags, colors, cfg.window[0], cfg.window[1], cfg.fitOpts...)
	if err != nil {
		return nil, err
	}
	cfg.log.Info("composite weights fitted",
		zap.String("target", target.Name),
		zap.Float64s("weights", fit.Weights),
		zap.Float64("rms", fit.RMS),
		zap.Int("clipped", fit.Clipped))

	usedColors := make([]float64, len(fit.Used))
	for i, idx := range fit.Used {
		usedColors[i] = colors[idx]
	}
	cubic, err := polyfit.Fit(usedColors, fit.Residuals, cfg.cubicDeg)
	if err != nil {
		return nil, fmt.Errorf("colour correction: %w", err)
	}

	rCoeffs, err := fitR(targetPhot, templates, cfg)
	if err != nil {
		return nil, fmt.Errorf("extinction coefficient: %w", err)
	}

	return &Model{
		Target:     target.Name,
		System:     target.System,
		Bands:      names,
		Weights:    fit.Weights,
		ColorBands: cfg.colorBands,
		ColorCoeff: cfg.colorCoeff,
		Window:     cfg.window,
		Cubic:      cubic,
		R:          rCoeffs,
		Fit:        fit,
	}, nil
}

func selectBands(target *bandpass.Bandpass, refs []*bandpass.Bandpass, minOverlap float64) []*bandpass.Bandpass {
	var out []*bandpass.Bandpass
	for _, b := range refs {
		if target.Overlap(b) > minOverlap {
			out = append(out, b)
		}
	}
	return out
}

// fitR derives R(c), the target-band extinction per unit E(B-V), by
// reddening every library template at the trial amounts and fitting the
// magnitude offsets against intrinsic colour.
func fitR(targetPhot *synth.Photometer, templates []library.Template, cfg buildConfig) ([]float64, error) {
	var xs, ys []float64
	for _, tpl := range templates {
		m0, err := targetPhot.Magnitude(tpl.Spectrum)
		if err != nil {
			return nil, err
		}
		for _, ebv := range cfg.rTrials {
			red := extinction.Apply(cfg.law, tpl.Spectrum, ebv)
			m1, err := targetPhot.Magnitude(red)
			if err != nil {
				return nil, err
			}
			xs = append(xs, tpl.Color)
			ys = append(ys, (m1-m0)/ebv)
		}
	}
	return polyfit.Fit(xs, ys, cfg.rDeg)
}
