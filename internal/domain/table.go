package domain

import (
	"math"
	"math/cmplx"
)

// Wave is the state of one constituent while a tide is evaluated.
type Wave struct {
	// Tide is the complex harmonic constant, amplitude * exp(i*phase), in
	// meters.
	Tide complex128
	// Argument is the equilibrium argument V in degrees.
	Argument float64
	// Nodal is the nodal correction applied to the wave.
	Nodal NodalCorrection
	// Modeled is set when Tide comes from the tidal model.
	Modeled bool
	// Inferred is set when Tide was computed by admittance inference.
	Inferred bool
}

// Table holds one Wave per constituent, indexed by Constituent.
type Table [NumConstituents]Wave

// Reset marks every wave as absent with a zero harmonic constant.
func (t *Table) Reset() {
	for i := range t {
		t[i] = Wave{Nodal: IdentityCorrection}
	}
}

// Undefined reports whether any modeled wave carries a NaN constant.
func (t *Table) Undefined() bool {
	for i := range t {
		if t[i].Modeled && cmplx.IsNaN(t[i].Tide) {
			return true
		}
	}
	return false
}

// Defined reports whether the wave contributes to the tide.
func (w *Wave) Defined() bool {
	return w.Modeled || w.Inferred
}

// Height returns the contribution of the wave: f * A * cos(V + u - G), where
// Tide = A * exp(i*G).
func (w *Wave) Height() float64 {
	theta := Deg2Rad(w.Argument + w.Nodal.U)
	sin, cos := math.Sincos(theta)
	return w.Nodal.F * (real(w.Tide)*cos + imag(w.Tide)*sin)
}
