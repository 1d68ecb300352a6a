package interp

import (
	"math"
	"math/cmplx"
)

// Weights holds the bilinear weights of the four corners of a cell.
type Weights struct {
	W00, W10, W01, W11 float64
}

// NewWeights returns the weights for the fractional offsets along x and y:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
func NewWeights(x, y Cell) Weights {
	t, u := x.Frac, y.Frac
	return Weights{
		W00: (1 - t) * (1 - u),
		W10: t * (1 - u),
		W01: (1 - t) * u,
		W11: t * u,
	}
}

// Corners holds complex values at the four corners of a cell:
// V00 at (x0, y0), V10 at (x1, y0), V01 at (x0, y1) and V11 at (x1, y1).
type Corners struct {
	V00, V10, V01, V11 complex128
}

// Bilinear interpolates the real and imaginary parts independently. Corners
// holding NaN are skipped and the remaining weights are renormalized. It
// returns the number of valid corners; if their total weight is zero the
// result is NaN.
func Bilinear(w Weights, c Corners) (complex128, int) {
	var (
		result complex128
		sumW   float64
		n      int
	)
	add := func(z complex128, weight float64) {
		if cmplx.IsNaN(z) || cmplx.IsInf(z) {
			return
		}
		result += z * complex(weight, 0)
		sumW += weight
		n++
	}
	add(c.V00, w.W00)
	add(c.V10, w.W10)
	add(c.V01, w.W01)
	add(c.V11, w.W11)

	if math.Abs(sumW) == 0 {
		return cmplx.NaN(), n
	}
	return result / complex(sumW, 0), n
}
