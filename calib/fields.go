package calib

import "math"

// Target is one sky position to estimate, in degrees.
type Target struct {
	RA  float64
	Dec float64
}

// field groups targets close enough to share one cone search and one
// reddening fit.
type field struct {
	ra, dec float64
	idx     []int
}

// groupFields assigns targets to fields greedily: each unassigned
// target seeds a field that absorbs every remaining target within
// radius degrees of it. Input order is preserved within a field.
func groupFields(targets []Target, radius float64) []field {
	assigned := make([]bool, len(targets))
	var fields []field
	for i, seed := range targets {
		if assigned[i] {
			continue
		}
		f := field{ra: seed.RA, dec: seed.Dec, idx: []int{i}}
		assigned[i] = true
		for j := i + 1; j < len(targets); j++ {
			if assigned[j] {
				continue
			}
			if separation(seed.RA, seed.Dec, targets[j].RA, targets[j].Dec) <= radius {
				f.idx = append(f.idx, j)
				assigned[j] = true
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// separation returns the flat-sky angular distance in degrees. Adequate
// for the sub-degree field scales used here.
func separation(ra1, dec1, ra2, dec2 float64) float64 {
	const degToRad = math.Pi / 180
	dra := (ra1 - ra2) * math.Cos((dec1+dec2)/2*degToRad)
	ddec := dec1 - dec2
	return math.Hypot(dra, ddec)
}
