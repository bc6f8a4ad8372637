package catalog

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrBadQuery indicates a malformed query or response; not retryable.
	ErrBadQuery = errors.New("catalog: malformed query or response")
	// ErrUnavailable indicates a transient transport failure after all retries.
	ErrUnavailable = errors.New("catalog: service unavailable")
	// ErrEmpty indicates a query that matched no sources.
	ErrEmpty = errors.New("catalog: empty response")
)

// Photometry is one band's catalog measurement.
type Photometry struct {
	Mag float64 `json:"mag"`
	Err float64 `json:"err"`
}

// Source is one catalog entry with per-band photometry.
type Source struct {
	RA    float64               `json:"ra"`
	Dec   float64               `json:"dec"`
	Phot  map[string]Photometry `json:"phot"`
	Flags uint32                `json:"flags"`
}

// Good reports whether the source passes quality cuts: no flags set and
// finite magnitudes everywhere.
func (s Source) Good() bool {
	if s.Flags != 0 {
		return false
	}
	for _, p := range s.Phot {
		if math.IsNaN(p.Mag) || math.IsInf(p.Mag, 0) {
			return false
		}
	}
	return true
}

// Color returns the blue-red colour of the source, if both bands are present.
func (s Source) Color(blue, red string) (float64, bool) {
	b, okb := s.Phot[blue]
	r, okr := s.Phot[red]
	if !okb || !okr {
		return 0, false
	}
	return b.Mag - r.Mag, true
}

// Querier performs cone searches against a reference catalog.
// All angles are degrees.
type Querier interface {
	ConeSearch(ctx context.Context, ra, dec, radius float64) ([]Source, error)
}
