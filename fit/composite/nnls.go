package composite

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const nnlsTol = 1e-11

// nnls solves min ||a*x - y|| subject to x >= 0 with the Lawson-Hanson
// active-set method. Inner least-squares subproblems reuse gonum's QR.
func nnls(a *mat.Dense, y *mat.VecDense) ([]float64, error) {
	_, n := a.Dims()
	x := make([]float64, n)
	passive := make([]bool, n)

	for iter := 0; iter < 3*n+10; iter++ {
		// Gradient of the objective at x: w = A^T (y - A x).
		w := gradient(a, y, x)

		// Most violated inactive coordinate.
		j, best := -1, nnlsTol
		for k := 0; k < n; k++ {
			if !passive[k] && w[k] > best {
				j, best = k, w[k]
			}
		}
		if j < 0 {
			return x, nil
		}
		passive[j] = true

		for {
			z, err := solveSubset(a, y, passive)
			if err != nil {
				return nil, err
			}
			// Feasible step: accept outright.
			feasible := true
			for k := 0; k < n; k++ {
				if passive[k] && z[k] <= nnlsTol {
					feasible = false
					break
				}
			}
			if feasible {
				copy(x, z)
				break
			}
			// Back off along x -> z until the first coordinate hits zero,
			// then drop it from the passive set.
			alpha := math.Inf(1)
			for k := 0; k < n; k++ {
				if passive[k] && z[k] <= nnlsTol {
					if step := x[k] / (x[k] - z[k]); step < alpha {
						alpha = step
					}
				}
			}
			for k := 0; k < n; k++ {
				if passive[k] {
					x[k] += alpha * (z[k] - x[k])
					if x[k] <= nnlsTol {
						x[k] = 0
						passive[k] = false
					}
				}
			}
		}
	}
	return x, nil
}

func gradient(a *mat.Dense, y *mat.VecDense, x []float64) []float64 {
	m, n := a.Dims()
	r := make([]float64, m)
	for i := 0; i < m; i++ {
		pred := 0.0
		for j := 0; j < n; j++ {
			pred += a.At(i, j) * x[j]
		}
		r[i] = y.AtVec(i) - pred
	}
	w := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			w[j] += a.At(i, j) * r[i]
		}
	}
	return w
}

// solveSubset solves the unconstrained least squares restricted to the
// passive columns; inactive coordinates are zero.
func solveSubset(a *mat.Dense, y *mat.VecDense, passive []bool) ([]float64, error) {
	m, n := a.Dims()
	var cols []int
	for j := 0; j < n; j++ {
		if passive[j] {
			cols = append(cols, j)
		}
	}
	sub := mat.NewDense(m, len(cols), nil)
	for i := 0; i < m; i++ {
		for jj, j := range cols {
			sub.Set(i, jj, a.At(i, j))
		}
	}
	var qr mat.QR
	qr.Factorize(sub)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, y); err != nil {
		return nil, ErrSingular
	}
	z := make([]float64, n)
	for jj, j := range cols {
		z[j] = sol.AtVec(jj)
	}
	return z, nil
}
