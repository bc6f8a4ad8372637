package slr

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData indicates an active set below the minimum
	// source count, before or during clipping.
	ErrInsufficientData = errors.New("slr: not enough sources for a locus fit")
	// ErrNoConvergence indicates the clipping iteration cap was reached
	// before the active set stabilized.
	ErrNoConvergence = errors.New("slr: sigma clipping did not converge")
)

type config struct {
	minSources int
	maxIter    int
	clipSigma  float64
	vector     [2]float64
	maxRed     float64
}

func defaultConfig() config {
	return config{
		minSources: 10,
		maxIter:    20,
		clipSigma:  3,
		// E(g-r) and E(r-i) per unit E(B-V), from grizy extinction
		// coefficients (Schlafly & Finkbeiner 2011).
		vector: [2]float64{1.028, 0.677},
		maxRed: 2.0,
	}
}

// Option configures an Engine.
type Option func(*config)

// WithMinSources sets the minimum active-set size (default 10).
func WithMinSources(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.minSources = n
		}
	}
}

// WithMaxIterations caps the clipping iterations (default 20).
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithClipSigma sets the outlier rejection threshold (default 3).
func WithClipSigma(k float64) Option {
	return func(c *config) {
		if k > 0 {
			c.clipSigma = k
		}
	}
}

// WithReddeningVector sets the per-unit-reddening colour shifts
// (dc1, dc2) along which the locus translates.
func WithReddeningVector(dc1, dc2 float64) Option {
	return func(c *config) { c.vector = [2]float64{dc1, dc2} }
}

// WithMaxReddening bounds the search interval (default 2 mag of E(B-V)).
func WithMaxReddening(v float64) Option {
	return func(c *config) {
		if v > 0 {
			c.maxRed = v
		}
	}
}

// Result is a fitted field reddening.
type Result struct {
	// Reddening is the fitted scalar amount, in the units of the
	// configured reddening vector (E(B-V) by default).
	Reddening float64
	// Sigma is the 1-sigma uncertainty from the chi-square curvature of
	// the final fit.
	Sigma float64
	// Converged reports whether clipping stabilized within the cap.
	Converged bool
	// Iterations is the number of fit/clip rounds performed.
	Iterations int
	// Active is the final active-set size.
	Active int
}

// Engine fits per-field reddenings against a fixed reference locus.
// It is safe for concurrent use; each Fit owns its own scratch state.
type Engine struct {
	locus *Locus
	cfg   config
}

// New builds an Engine around a reference locus.
func New(locus *Locus, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Engine{locus: locus, cfg: cfg}
}

// Fit estimates the reddening of one field from the observed colours
// (c1[i], c2[i]) of its member stars.
func (e *Engine) Fit(c1, c2 []float64) (Result, error) {
	if len(c1) != len(c2) {
		return Result{}, fmt.Errorf("slr: colour slices differ: %d vs %d", len(c1), len(c2))
	}
	if len(c1) < e.cfg.minSources {
		return Result{}, fmt.Errorf("%w: %d sources, need %d", ErrInsufficientData, len(c1), e.cfg.minSources)
	}

	active := make([]int, len(c1))
	for i := range active {
		active[i] = i
	}

	var (
		red  float64
		res  Result
		iter int
	)
	for iter = 1; iter <= e.cfg.maxIter; iter++ {
		red = e.minimize(c1, c2, active)
		r := e.residuals(c1, c2, active, red)

		keep := clipIndices(active, r, e.cfg.clipSigma)
		if len(keep) < e.cfg.minSources {
			return Result{}, fmt.Errorf("%w: %d sources after clipping, need %d",
				ErrInsufficientData, len(keep), e.cfg.minSources)
		}
		if len(keep) == len(active) {
			res = Result{
				Reddening:  red,
				Sigma:      e.uncertainty(c1, c2, active, red),
				Converged:  true,
				Iterations: iter,
				Active:     len(active),
			}
			return res, nil
		}
		active = keep
	}

	res = Result{
		Reddening:  red,
		Sigma:      e.uncertainty(c1, c2, active, red),
		Converged:  false,
		Iterations: e.cfg.maxIter,
		Active:     len(active),
	}
	return res, ErrNoConvergence
}

// residuals computes, per active star, the c2 offset between the
// de-reddened observation and the reference locus.
func (e *Engine) residuals(c1, c2 []float64, active []int, red float64) []float64 {
	v := e.cfg.vector
	out := make([]float64, len(active))
	for i, idx := range active {
		out[i] = (c2[idx] - v[1]*red) - e.locus.Eval(c1[idx]-v[0]*red)
	}
	return out
}

func (e *Engine) sse(c1, c2 []float64, active []int, red float64) float64 {
	sum := 0.0
	for _, r := range e.residuals(c1, c2, active, red) {
		sum += r * r
	}
	return sum
}

// minimize performs a coarse scan followed by golden-section refinement
// of the scalar reddening on [0, maxRed].
func (e *Engine) minimize(c1, c2 []float64, active []int) float64 {
	const steps = 40
	bestE, bestV := 0.0, math.Inf(1)
	for i := 0; i <= steps; i++ {
		trial := e.cfg.maxRed * float64(i) / steps
		if v := e.sse(c1, c2, active, trial); v < bestV {
			bestE, bestV = trial, v
		}
	}
	step := e.cfg.maxRed / steps
	lo := math.Max(0, bestE-step)
	hi := math.Min(e.cfg.maxRed, bestE+step)

	const phi = 0.6180339887498949
	a, b := lo, hi
	x1 := b - phi*(b-a)
	x2 := a + phi*(b-a)
	f1 := e.sse(c1, c2, active, x1)
	f2 := e.sse(c1, c2, active, x2)
	for b-a > 1e-6 {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - phi*(b-a)
			f1 = e.sse(c1, c2, active, x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + phi*(b-a)
			f2 = e.sse(c1, c2, active, x2)
		}
	}
	return (a + b) / 2
}

// uncertainty estimates sigma(reddening) from the curvature of the
// chi-square at the minimum: var = 2*s^2 / chi''.
func (e *Engine) uncertainty(c1, c2 []float64, active []int, red float64) float64 {
	n := len(active)
	if n < 3 {
		return math.NaN()
	}
	const h = 1e-3
	f0 := e.sse(c1, c2, active, red)
	fp := e.sse(c1, c2, active, red+h)
	fm := e.sse(c1, c2, active, math.Max(0, red-h))
	curv := (fp - 2*f0 + fm) / (h * h)
	if curv <= 0 {
		return math.NaN()
	}
	s2 := f0 / float64(n-1)
	return math.Sqrt(2 * s2 / curv)
}

// clipTol is an absolute floor on the clip threshold, in colour
// magnitudes. Residual spreads below it are numerical noise from the
// minimizer tolerance, not outliers.
const clipTol = 1e-6

// clipIndices drops entries whose residual lies more than k robust
// sigmas from the median. Order is preserved.
func clipIndices(active []int, res []float64, k float64) []int {
	med := median(res)
	dev := make([]float64, len(res))
	for i, v := range res {
		dev[i] = math.Abs(v - med)
	}
	sigma := 1.4826 * median(dev)
	if sigma == 0 {
		return active
	}
	var keep []int
	for i, idx := range active {
		if dev[i] <= k*sigma+clipTol {
			keep = append(keep, idx)
		}
	}
	return keep
}

func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil)
}
