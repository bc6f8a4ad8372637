package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sourcesJSON = `[
	{"ra": 150.01, "dec": 2.21,
	 "phot": {"g": {"mag": 15.2, "err": 0.01}, "r": {"mag": 14.9, "err": 0.01}},
	 "flags": 0}
]`

func newTestClient(url string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithRetryDelay(time.Millisecond),
		WithRateLimit(1000, 1000),
	}
	return NewClient(url, append(base, opts...)...)
}

func TestConeSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cone", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("ra"))
		w.Write([]byte(sourcesJSON))
	}))
	defer srv.Close()

	sources, err := newTestClient(srv.URL).ConeSearch(context.Background(), 150.01, 2.21, 0.2)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.InDelta(t, 15.2, sources[0].Phot["g"].Mag, 1e-12)
	require.True(t, sources[0].Good())

	c, ok := sources[0].Color("g", "r")
	require.True(t, ok)
	require.InDelta(t, 0.3, c, 1e-9)
}

func TestConeSearchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sourcesJSON))
	}))
	defer srv.Close()

	sources, err := newTestClient(srv.URL).ConeSearch(context.Background(), 150, 2.2, 0.2)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.EqualValues(t, 3, calls.Load())
}

func TestConeSearchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, WithMaxRetries(2)).ConeSearch(context.Background(), 150, 2.2, 0.2)
	require.ErrorIs(t, err, ErrUnavailable)
	require.EqualValues(t, 3, calls.Load())
}

func TestConeSearchBadQueryNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ConeSearch(context.Background(), 150, 2.2, 0.2)
	require.ErrorIs(t, err, ErrBadQuery)
	require.EqualValues(t, 1, calls.Load())
}

func TestConeSearchEmptyAndMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("ra") {
		case "1.000000":
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`{not json`))
		}
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ConeSearch(context.Background(), 1, 0, 0.2)
	require.ErrorIs(t, err, ErrEmpty)

	_, err = newTestClient(srv.URL).ConeSearch(context.Background(), 2, 0, 0.2)
	require.ErrorIs(t, err, ErrBadQuery)
}

type countingQuerier struct {
	calls atomic.Int32
}

func (q *countingQuerier) ConeSearch(ctx context.Context, ra, dec, radius float64) ([]Source, error) {
	q.calls.Add(1)
	return []Source{{
		RA: ra, Dec: dec,
		Phot: map[string]Photometry{"g": {Mag: 15, Err: 0.01}},
	}}, nil
}

func TestCacheServesRepeatQueries(t *testing.T) {
	inner := &countingQuerier{}
	cache, err := NewCache(filepath.Join(t.TempDir(), "cone.db"), inner)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	first, err := cache.ConeSearch(ctx, 150.0, 2.2, 0.2)
	require.NoError(t, err)
	second, err := cache.ConeSearch(ctx, 150.0, 2.2, 0.2)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, inner.calls.Load())

	// A different position goes back to the inner querier.
	_, err = cache.ConeSearch(ctx, 151.0, 2.2, 0.2)
	require.NoError(t, err)
	require.EqualValues(t, 2, inner.calls.Load())
}
