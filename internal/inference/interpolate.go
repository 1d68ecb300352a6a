package inference

import (
	"math"

	"go.ngs.io/tidegrid/internal/domain"
)

// interpolator estimates the admittance at x from three control points.
type interpolator func(x1 float64, y1 complex128, x2 float64, y2 complex128, x3 float64, y3 complex128, x float64) complex128

// linear is piecewise linear through the three controls, extrapolating from
// the nearest segment.
func linear(x1 float64, y1 complex128, x2 float64, y2 complex128, x3 float64, y3 complex128, x float64) complex128 {
	if x <= x2 {
		slope := (y2 - y1) / complex(x2-x1, 0)
		return y1 + slope*complex(x-x1, 0)
	}
	slope := (y3 - y2) / complex(x3-x2, 0)
	return y2 + slope*complex(x-x2, 0)
}

// fourier returns the Munk-Cartwright low order Fourier series through the
// (Q1, O1, K1) or (N2, M2, S2) admittances.
func fourier(a *[3][3]float64) interpolator {
	return func(_ float64, z1 complex128, _ float64, z2 complex128, _ float64, z3 complex128, x float64) complex128 {
		var c [3]complex128
		for i := 0; i < 3; i++ {
			c[i] = complex(a[i][0], 0)*z1 + complex(a[i][1], 0)*z2 + complex(a[i][2], 0)*z3
		}
		f := x * domain.Deg2Rad(48.0)
		return c[0] + c[1]*complex(math.Cos(f), 0) + c[2]*complex(math.Sin(f), 0)
	}
}

// nodeGamma2 is the tilt factor of the self-consistent equilibrium node tide.
const nodeGamma2 = 0.682

// NodeEquilibriumAdmittance is the admittance of the equilibrium 18.6 year
// node tide at latitude lat (degrees).
func NodeEquilibriumAdmittance(lat float64) float64 {
	s := math.Sin(domain.Deg2Rad(lat))
	p20 := 1.5*s*s - 0.5
	return -nodeGamma2 * math.Sqrt(5.0/(4.0*math.Pi)) * p20
}
