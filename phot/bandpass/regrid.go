package bandpass

// Regrid linearly interpolates a sampled curve onto a target grid.
// Points outside the curve's native domain are zero, matching the
// bounds behaviour every fit in this module assumes. Both wave and
// grid must be ascending; wave and values must have equal length.
func Regrid(wave, values, grid []float64) []float64 {
	out := make([]float64, len(grid))
	if len(wave) == 0 {
		return out
	}
	j := 0
	for i, x := range grid {
		if x < wave[0] || x > wave[len(wave)-1] {
			continue
		}
		for j < len(wave)-2 && wave[j+1] < x {
			j++
		}
		// wave[j] <= x <= wave[j+1] except at the left edge, where the
		// scan has not advanced yet.
		for j > 0 && wave[j] > x {
			j--
		}
		w0, w1 := wave[j], wave[j+1]
		frac := (x - w0) / (w1 - w0)
		out[i] = values[j] + frac*(values[j+1]-values[j])
	}
	return out
}
