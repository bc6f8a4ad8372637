package calib

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewmoore73/calibrimbore/catalog"
	"github.com/andrewmoore73/calibrimbore/fit/slr"
	"github.com/andrewmoore73/calibrimbore/phot/bandpass"
)

func testModel() *Model {
	return &Model{
		Target:     "x",
		System:     bandpass.SystemAB,
		Bands:      []string{"r"},
		Weights:    []float64{1},
		ColorBands: [2]string{"g", "r"},
		ColorCoeff: 1.028,
		Window:     [2]float64{-0.2, 1.5},
		Cubic:      []float64{0},
		R:          []float64{2.5},
	}
}

// locusSources fabricates n unreddened field stars whose colours lie
// exactly on the reference locus, offset from the field centre so they
// never match a target position.
func locusSources(n int, ra, dec float64) []catalog.Source {
	locus := slr.TonryLocus()
	out := make([]catalog.Source, 0, n)
	for k := 0; k < n; k++ {
		gr := -0.1 + 1.4*float64(k)/float64(n-1)
		ri := locus.Eval(gr)
		rmag := 15.0 + 0.1*float64(k)
		out = append(out, catalog.Source{
			RA:  ra + 0.02 + 0.001*float64(k),
			Dec: dec + 0.02,
			Phot: map[string]catalog.Photometry{
				"g": {Mag: rmag + gr, Err: 0.01},
				"r": {Mag: rmag, Err: 0.01},
				"i": {Mag: rmag - ri, Err: 0.01},
			},
		})
	}
	return out
}

// memberSource places one locus star exactly at a target position.
func memberSource(ra, dec, rmag, gr float64) catalog.Source {
	ri := slr.TonryLocus().Eval(gr)
	return catalog.Source{
		RA: ra, Dec: dec,
		Phot: map[string]catalog.Photometry{
			"g": {Mag: rmag + gr, Err: 0.01},
			"r": {Mag: rmag, Err: 0.01},
			"i": {Mag: rmag - ri, Err: 0.01},
		},
	}
}

type fakeQuerier struct {
	fn func(ra, dec float64) ([]catalog.Source, error)
}

func (q fakeQuerier) ConeSearch(ctx context.Context, ra, dec, radius float64) ([]catalog.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return q.fn(ra, dec)
}

func TestEstimateUnreddenedField(t *testing.T) {
	target := Target{RA: 150.0, Dec: 2.2}
	q := fakeQuerier{fn: func(ra, dec float64) ([]catalog.Source, error) {
		return append(locusSources(20, ra, dec), memberSource(target.RA, target.Dec, 15.5, 0.5)), nil
	}}

	e, err := NewEstimator(testModel(), q)
	require.NoError(t, err)

	ests := e.Estimate(context.Background(), []Target{target})
	require.Len(t, ests, 1)
	est := ests[0]
	require.NoError(t, est.Err)
	require.False(t, est.OutOfDomain)
	require.False(t, est.Cancelled)
	require.InDelta(t, 0, est.Reddening, 1e-3)
	require.InDelta(t, 0.5, est.Color, 2e-3)
	require.InDelta(t, 15.5, est.Magnitude, 5e-3)
	require.InDelta(t, 0.01, est.Sigma, 1e-3)
}

func TestEstimateFieldIsolation(t *testing.T) {
	targets := []Target{
		{RA: 150.00, Dec: 2.20},
		{RA: 150.05, Dec: 2.20},
		{RA: 30.00, Dec: -5.00},
	}
	backendDown := errors.New("catalog backend down")
	q := fakeQuerier{fn: func(ra, dec float64) ([]catalog.Source, error) {
		if ra < 100 {
			return nil, backendDown
		}
		sources := locusSources(20, ra, dec)
		sources = append(sources,
			memberSource(targets[0].RA, targets[0].Dec, 15.5, 0.5),
			memberSource(targets[1].RA, targets[1].Dec, 15.8, 0.3))
		return sources, nil
	}}

	e, err := NewEstimator(testModel(), q)
	require.NoError(t, err)

	ests := e.Estimate(context.Background(), targets)
	require.Len(t, ests, 3)

	require.NoError(t, ests[0].Err)
	require.InDelta(t, 15.5, ests[0].Magnitude, 5e-3)
	require.NoError(t, ests[1].Err)
	require.InDelta(t, 15.8, ests[1].Magnitude, 5e-3)

	require.ErrorIs(t, ests[2].Err, backendDown)
	require.False(t, ests[2].Cancelled)
}

func TestEstimateNoMatch(t *testing.T) {
	q := fakeQuerier{fn: func(ra, dec float64) ([]catalog.Source, error) {
		return locusSources(20, ra, dec), nil
	}}
	e, err := NewEstimator(testModel(), q)
	require.NoError(t, err)

	ests := e.Estimate(context.Background(), []Target{{RA: 150, Dec: 2.2}})
	require.ErrorIs(t, ests[0].Err, ErrNoMatch)
	require.InDelta(t, 0, ests[0].Reddening, 1e-3)
}

func TestEstimateSparseFieldDegrades(t *testing.T) {
	target := Target{RA: 150.0, Dec: 2.2}
	q := fakeQuerier{fn: func(ra, dec float64) ([]catalog.Source, error) {
		return append(locusSources(3, ra, dec), memberSource(target.RA, target.Dec, 15.5, 0.5)), nil
	}}
	e, err := NewEstimator(testModel(), q)
	require.NoError(t, err)

	ests := e.Estimate(context.Background(), []Target{target})
	require.ErrorIs(t, ests[0].Err, slr.ErrInsufficientData)
	// The magnitude still comes out, computed at zero reddening.
	require.InDelta(t, 15.5, ests[0].Magnitude, 1e-9)
	require.Zero(t, ests[0].Reddening)
}

func TestEstimateCancelled(t *testing.T) {
	q := fakeQuerier{fn: func(ra, dec float64) ([]catalog.Source, error) {
		t.Fatal("querier must not run after cancellation")
		return nil, nil
	}}
	e, err := NewEstimator(testModel(), q)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ests := e.Estimate(ctx, []Target{{RA: 150, Dec: 2.2}, {RA: 30, Dec: -5}})
	for _, est := range ests {
		require.True(t, est.Cancelled)
		require.ErrorIs(t, est.Err, context.Canceled)
	}
}

func TestGroupFields(t *testing.T) {
	targets := []Target{
		{RA: 150.00, Dec: 2.20},
		{RA: 150.05, Dec: 2.20},
		{RA: 30.00, Dec: -5.00},
	}
	fields := groupFields(targets, 0.2)
	require.Len(t, fields, 2)
	require.Equal(t, []int{0, 1}, fields[0].idx)
	require.Equal(t, []int{2}, fields[1].idx)
	require.InDelta(t, 150.0, fields[0].ra, 1e-12)
}

func TestSeparation(t *testing.T) {
	require.InDelta(t, 1.0, separation(10, 0, 11, 0), 1e-12)
	require.InDelta(t, 1.0, separation(10, 60, 10, 61), 1e-12)
	// RA compresses with declination.
	require.Less(t, separation(10, 60, 11, 60), 0.6)
}
