package calib

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andrewmoore73/calibrimbore/catalog"
	"github.com/andrewmoore73/calibrimbore/fit/slr"
)

// Estimate is the result for one target position. When Err is set the
// numeric fields are unreliable except where noted.
type Estimate struct {
	// Magnitude is the de-reddened magnitude in the target bandpass.
	Magnitude float64
	// Sigma is the propagated magnitude uncertainty.
	Sigma float64
	// Color is the de-reddened colour used for the polynomial terms.
	Color float64

	// Reddening and ReddeningSigma are the field's fitted E(B-V).
	// They are filled whenever the field's locus fit produced a value,
	// even when Err records a per-source failure.
	Reddening      float64
	ReddeningSigma float64

	// OutOfDomain marks a colour outside the model's fitted window;
	// the magnitude is still computed with the colour clamped.
	OutOfDomain bool
	// Cancelled marks targets abandoned because the context ended.
	Cancelled bool

	Err error
}

// Estimator applies a Model over the sky. Targets are grouped into
// fields; each field runs one cone search and one reddening fit, and
// fields are processed concurrently. A failure in one field never
// affects another.
type Estimator struct {
	model *Model
	cat   catalog.Querier
	slr   *slr.Engine
	log   *zap.Logger

	fieldRadius  float64
	searchRadius float64
	matchRadius  float64
	concurrency  int
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithFieldRadius sets the grouping radius in degrees (default 0.2).
func WithFieldRadius(deg float64) EstimatorOption {
	return func(e *Estimator) {
		if deg > 0 {
			e.fieldRadius = deg
		}
	}
}

// WithSearchRadius sets the cone-search radius in degrees. It must
// cover the field radius; the default is the field radius plus 0.1.
func WithSearchRadius(deg float64) EstimatorOption {
	return func(e *Estimator) {
		if deg > 0 {
			e.searchRadius = deg
		}
	}
}

// WithMatchRadius sets the source match radius in degrees (default
// 1 arcsecond).
func WithMatchRadius(deg float64) EstimatorOption {
	return func(e *Estimator) {
		if deg > 0 {
			e.matchRadius = deg
		}
	}
}

// WithConcurrency caps the number of fields processed in parallel
// (default 4).
func WithConcurrency(n int) EstimatorOption {
	return func(e *Estimator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithSLR substitutes the locus-regression engine.
func WithSLR(engine *slr.Engine) EstimatorOption {
	return func(e *Estimator) {
		if engine != nil {
			e.slr = engine
		}
	}
}

// WithLogger attaches a logger to the estimator.
func WithLogger(log *zap.Logger) EstimatorOption {
	return func(e *Estimator) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEstimator validates the model and wires it to a catalog.
func NewEstimator(model *Model, cat catalog.Querier, opts ...EstimatorOption) (*Estimator, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	e := &Estimator{
		model:       model,
		cat:         cat,
		slr:         slr.New(slr.TonryLocus()),
		log:         zap.NewNop(),
		fieldRadius: 0.2,
		matchRadius: 1.0 / 3600,
		concurrency: 4,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.searchRadius < e.fieldRadius {
		e.searchRadius = e.fieldRadius + 0.1
	}
	return e, nil
}

// Estimate produces one Estimate per target, in input order. The error
// of a field (cone search, reddening) is recorded on each of its
// targets; other fields proceed. When ctx ends, unprocessed targets are
// marked Cancelled.
func (e *Estimator) Estimate(ctx context.Context, targets []Target) []Estimate {
	out := make([]Estimate, len(targets))
	fields := groupFields(targets, e.fieldRadius)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, f := range fields {
		f := f
		g.Go(func() error {
			e.processField(gctx, f, targets, out)
			return nil
		})
	}
	g.Wait()
	return out
}

func (e *Estimator) processField(ctx context.Context, f field, targets []Target, out []Estimate) {
	if ctx.Err() != nil {
		for _, i := range f.idx {
			out[i].Cancelled = true
			out[i].Err = ctx.Err()
		}
		return
	}

	sources, err := e.cat.ConeSearch(ctx, f.ra, f.dec, e.searchRadius)
	if err != nil {
		e.log.Warn("cone search failed",
			zap.Float64("ra", f.ra), zap.Float64("dec", f.dec), zap.Error(err))
		cancelled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		for _, i := range f.idx {
			out[i].Err = err
			out[i].Cancelled = cancelled
		}
		return
	}

	red, redSigma, redErr := e.fieldReddening(sources)
	if redErr != nil {
		e.log.Warn("field reddening fit failed",
			zap.Float64("ra", f.ra), zap.Float64("dec", f.dec), zap.Error(redErr))
	}

	for _, i := range f.idx {
		out[i] = e.estimateOne(targets[i], sources, red, redSigma)
		if out[i].Err == nil {
			out[i].Err = redErr
		}
	}
}

// fieldReddening fits E(B-V) from the good sources around a field. An
// insufficient-data failure degrades to zero reddening; the error is
// still reported so callers can tell.
func (e *Estimator) fieldReddening(sources []catalog.Source) (red, sigma float64, err error) {
	var c1, c2 []float64
	for _, s := range sources {
		if !s.Good() {
			continue
		}
		gr, ok1 := s.Color("g", "r")
		ri, ok2 := s.Color("r", "i")
		if !ok1 || !ok2 {
			continue
		}
		c1 = append(c1, gr)
		c2 = append(c2, ri)
	}
	res, err := e.slr.Fit(c1, c2)
	if err != nil && !errors.Is(err, slr.ErrNoConvergence) {
		return 0, 0, err
	}
	return res.Reddening, res.Sigma, err
}

func (e *Estimator) estimateOne(t Target, sources []catalog.Source, red, redSigma float64) Estimate {
	est := Estimate{Reddening: red, ReddeningSigma: redSigma}

	src, ok := nearest(sources, t, e.matchRadius)
	if !ok {
		est.Err = ErrNoMatch
		return est
	}

	mags := make(map[string]float64, len(src.Phot))
	errs := make(map[string]float64, len(src.Phot))
	for name, p := range src.Phot {
		mags[name] = p.Mag
		errs[name] = p.Err
	}

	comp, err := e.model.Composite(mags)
	if err != nil {
		est.Err = err
		return est
	}
	blue, okb := mags[e.model.ColorBands[0]]
	redMag, okr := mags[e.model.ColorBands[1]]
	if !okb || !okr {
		est.Err = ErrMissingBand
		return est
	}

	est.Color = (blue - redMag) - e.model.ColorCoeff*red
	est.OutOfDomain = !e.model.InDomain(est.Color)
	est.Magnitude = comp + e.model.Correction(est.Color) - e.model.RCoeff(est.Color)*red
	est.Sigma = e.model.Sigma(errs, est.Color, redSigma)
	return est
}

// nearest returns the closest source within radius degrees of t.
func nearest(sources []catalog.Source, t Target, radius float64) (catalog.Source, bool) {
	best := -1
	bestDist := radius
	for i, s := range sources {
		d := separation(t.RA, t.Dec, s.RA, s.Dec)
		if d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return catalog.Source{}, false
	}
	return sources[best], true
}
