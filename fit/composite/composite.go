package composite

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnderdetermined indicates fewer in-window templates than
	// reference bands.
	ErrUnderdetermined = errors.New("composite: fewer templates than reference bands")
	// ErrSingular indicates an ill-conditioned design matrix, distinct
	// from under-determination.
	ErrSingular = errors.New("composite: near-singular design matrix")
	// ErrDimensions indicates mismatched input lengths.
	ErrDimensions = errors.New("composite: mismatched input dimensions")
)

// Policy selects the weight constraint mode.
type Policy int

const (
	// PolicyUnconstrained allows weights of any sign (default).
	PolicyUnconstrained Policy = iota
	// PolicyNonNegative constrains all weights to be >= 0.
	PolicyNonNegative
)

type config struct {
	policy    Policy
	clipSigma float64
	maxCond   float64
}

func defaultConfig() config {
	return config{clipSigma: 3, maxCond: 1e12}
}

// Option configures the fit.
type Option func(*config)

// WithPolicy selects the weight constraint policy.
func WithPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithClipSigma sets the sigma-clip threshold of the single robust
// refit pass. Zero or negative disables clipping.
func WithClipSigma(k float64) Option {
	return func(c *config) { c.clipSigma = k }
}

// WithMaxCondition sets the design-matrix condition number above which
// the fit fails with ErrSingular.
func WithMaxCondition(v float64) Option {
	return func(c *config) {
		if v > 0 {
			c.maxCond = v
		}
	}
}

// Result holds the fitted weights and residual statistics.
type Result struct {
	// Weights has one entry per reference band.
	Weights []float64
	// Used lists the input row indices that survived windowing and clipping.
	Used []int
	// Residuals are target minus composite magnitudes for the Used rows.
	Residuals []float64

	RMS    float64
	MaxAbs float64
	// Median, P16 and P84 summarize the residual distribution.
	Median float64
	P16    float64
	P84    float64

	// Cond is the condition number of the final design matrix.
	Cond float64
	// Clipped counts templates removed by the robust pass.
	Clipped int
}

// Predict returns the composite magnitude for one vector of reference
// magnitudes under the fitted weights.
func (r *Result) Predict(mags []float64) float64 {
	v := 0.0
	for i, w := range r.Weights {
		v += w * mags[i]
	}
	return v
}

// Fit solves for the composite weights.
//
// refs[i][j] is the synthetic magnitude of template i in reference band
// j, target[i] the template's magnitude through the target bandpass and
// colors[i] its intrinsic colour. Only rows with colour in [lo, hi]
// participate.
func Fit(refs [][]float64, target, colors []float64, lo, hi float64, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	m := len(refs)
	if len(target) != m || len(colors) != m {
		return nil, fmt.Errorf("%w: %d rows, %d targets, %d colours", ErrDimensions, m, len(target), len(colors))
	}
	if m == 0 {
		return nil, fmt.Errorf("%w: no templates", ErrUnderdetermined)
	}
	nb := len(refs[0])
	for i, row := range refs {
		if len(row) != nb {
			return nil, fmt.Errorf("%w: row %d has %d bands, want %d", ErrDimensions, i, len(row), nb)
		}
	}

	var sel []int
	for i, c := range colors {
		if c >= lo && c <= hi {
			sel = append(sel, i)
		}
	}
	if len(sel) < nb {
		return nil, fmt.Errorf("%w: %d templates in [%g, %g] for %d bands", ErrUnderdetermined, len(sel), lo, hi, nb)
	}

	weights, cond, err := solve(refs, target, sel, cfg)
	if err != nil {
		return nil, err
	}
	res := residuals(refs, target, sel, weights)

	clipped := 0
	if cfg.clipSigma > 0 {
		keep := clip(sel, res, cfg.clipSigma)
		if removed := len(sel) - len(keep); removed > 0 && len(keep) >= nb {
			w2, c2, err := solve(refs, target, keep, cfg)
			if err != nil {
				return nil, err
			}
			weights, cond = w2, c2
			clipped = removed
			sel = keep
			res = residuals(refs, target, sel, weights)
		}
	}

	out := &Result{
		Weights:   weights,
		Used:      sel,
		Residuals: res,
		Cond:      cond,
		Clipped:   clipped,
	}
	summarize(out)
	return out, nil
}

func solve(refs [][]float64, target []float64, rows []int, cfg config) ([]float64, float64, error) {
	nb := len(refs[rows[0]])
	a := mat.NewDense(len(rows), nb, nil)
	y := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		for j := 0; j < nb; j++ {
			a.Set(i, j, refs[r][j])
		}
		y.SetVec(i, target[r])
	}

	cond := mat.Cond(a, 2)
	if math.IsInf(cond, 0) || cond > cfg.maxCond {
		return nil, cond, fmt.Errorf("%w: condition number %.3g", ErrSingular, cond)
	}

	if cfg.policy == PolicyNonNegative {
		w, err := nnls(a, y)
		if err != nil {
			return nil, cond, err
		}
		return w, cond, nil
	}

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, y); err != nil {
		return nil, cond, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	w := make([]float64, nb)
	for j := 0; j < nb; j++ {
		w[j] = sol.AtVec(j)
		if math.IsNaN(w[j]) || math.IsInf(w[j], 0) {
			return nil, cond, ErrSingular
		}
	}
	return w, cond, nil
}

func residuals(refs [][]float64, target []float64, rows []int, weights []float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		pred := 0.0
		for j, w := range weights {
			pred += w * refs[r][j]
		}
		out[i] = target[r] - pred
	}
	return out
}

// clip returns the rows whose residual lies within k standard
// deviations of the mean, preserving input order.
func clip(rows []int, res []float64, k float64) []int {
	mean := stat.Mean(res, nil)
	sigma := stat.StdDev(res, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		return rows
	}
	var keep []int
	for i, r := range rows {
		if math.Abs(res[i]-mean) <= k*sigma {
			keep = append(keep, r)
		}
	}
	return keep
}

func summarize(r *Result) {
	sum := 0.0
	for _, v := range r.Residuals {
		sum += v * v
		if a := math.Abs(v); a > r.MaxAbs {
			r.MaxAbs = a
		}
	}
	r.RMS = math.Sqrt(sum / float64(len(r.Residuals)))

	sorted := append([]float64(nil), r.Residuals...)
	sort.Float64s(sorted)
	r.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	r.P16 = stat.Quantile(0.16, stat.Empirical, sorted, nil)
	r.P84 = stat.Quantile(0.84, stat.Empirical, sorted, nil)
}
