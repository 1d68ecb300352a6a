package inference

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/domain"
)

func TestParseInterpolationType(t *testing.T) {
	tests := []struct {
		in   string
		want InterpolationType
	}{
		{"", None},
		{"none", None},
		{"linear", LinearAdmittance},
		{"LINEAR_ADMITTANCE", LinearAdmittance},
		{"fourier", FourierAdmittance},
		{"fourier_admittance", FourierAdmittance},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterpolationType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseInterpolationType("spline")
	assert.True(t, errors.Is(err, ErrUnknownInterpolation))
}

func TestNew_InsufficientControls(t *testing.T) {
	_, err := New(LinearAdmittance, domain.NewSet(domain.M2, domain.K1, domain.O1))
	var ctlErr *InsufficientControlConstituentsError
	require.True(t, errors.As(err, &ctlErr))
	if diff := cmp.Diff([]domain.Constituent{domain.Q1, domain.N2, domain.S2}, ctlErr.Missing); diff != "" {
		t.Errorf("missing controls mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, err.Error(), "Q1")
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(None, domain.NewSet(domain.M2))
	assert.True(t, errors.Is(err, ErrUnknownInterpolation))
}

func TestNew_LongPeriodOnlyModel(t *testing.T) {
	inf, err := New(LinearAdmittance, domain.NewSet(domain.Mm, domain.Mf))
	require.NoError(t, err)
	for _, c := range inf.Inferred() {
		assert.Equal(t, domain.LongPeriod, c.Species(), c.Name())
	}
	assert.NotContains(t, inf.Inferred(), domain.Mm)
	assert.Contains(t, inf.Inferred(), domain.Node)
}

// equilibriumTable returns a table whose modeled controls have a unit
// admittance.
func equilibriumTable(modeled domain.Set) *domain.Table {
	var table domain.Table
	table.Reset()
	for _, c := range modeled.Slice() {
		amp, _ := Amplitude(c)
		if c.Species() == domain.ShortPeriod && c.SpeedDegPerHr() < 20 {
			amp *= domain.LoveNumbersPMM95b(c.SpeedDegPerHr()).Gamma2()
		}
		table[c] = domain.Wave{Tide: complex(amp, 0), Modeled: true}
	}
	return &table
}

func TestApply_UnitAdmittance(t *testing.T) {
	modeled := domain.NewSet(ShortPeriodControls...)
	for _, kind := range []InterpolationType{LinearAdmittance, FourierAdmittance} {
		t.Run(kind.String(), func(t *testing.T) {
			inf, err := New(kind, modeled)
			require.NoError(t, err)
			table := equilibriumTable(modeled)
			inf.Apply(table, 45)

			for c, amp := range semidiurnalAmplitudes {
				if modeled.Has(c) {
					continue
				}
				assert.True(t, table[c].Inferred, c.Name())
				assert.InDelta(t, amp, real(table[c].Tide), 1e-6, c.Name())
				assert.InDelta(t, 0, imag(table[c].Tide), 1e-12, c.Name())
			}
			for c, amp := range diurnalAmplitudes {
				if modeled.Has(c) {
					continue
				}
				want := amp * domain.LoveNumbersPMM95b(c.SpeedDegPerHr()).Gamma2()
				assert.InDelta(t, want, real(table[c].Tide), 1e-6, c.Name())
			}
		})
	}
}

func TestApply_NeverOverridesModel(t *testing.T) {
	modeled := domain.NewSet(append(ShortPeriodControls, domain.Nu2, domain.Mm)...)
	inf, err := New(LinearAdmittance, modeled)
	require.NoError(t, err)

	table := equilibriumTable(modeled)
	table[domain.Nu2].Tide = 0.5 - 0.25i
	table[domain.Mm].Tide = 0.01 + 0.02i
	inf.Apply(table, 10)

	assert.Equal(t, complex(0.5, -0.25), table[domain.Nu2].Tide)
	assert.False(t, table[domain.Nu2].Inferred)
	assert.Equal(t, complex(0.01, 0.02), table[domain.Mm].Tide)
	assert.NotContains(t, inf.Inferred(), domain.Nu2)
}

func TestApply_LongPeriodNodeEquilibrium(t *testing.T) {
	// No long-period wave in the model: only the equilibrium node tide
	// contributes, Mm and Mf anchor a zero admittance.
	modeled := domain.NewSet(ShortPeriodControls...)
	inf, err := New(LinearAdmittance, modeled)
	require.NoError(t, err)

	const lat = 59.195
	table := equilibriumTable(modeled)
	// Leftovers of a previous point must not leak into the controls.
	table[domain.Mm].Tide = 0.5
	table[domain.Mf].Tide = 0.5
	inf.Apply(table, lat)

	node := NodeEquilibriumAdmittance(lat)
	xNode := domain.Node.SpeedDegPerHr()
	xMm := domain.Mm.SpeedDegPerHr()
	for c, amp := range longPeriodAmplitudes {
		x := c.SpeedDegPerHr()
		want := 0.0
		if x <= xMm {
			want = node * (1 - (x-xNode)/(xMm-xNode)) * amp
		}
		assert.True(t, table[c].Inferred, c.Name())
		assert.InDelta(t, want, real(table[c].Tide), 1e-12, c.Name())
		assert.InDelta(t, 0, imag(table[c].Tide), 1e-12, c.Name())
	}
	assert.InDelta(t, node*longPeriodAmplitudes[domain.Node], real(table[domain.Node].Tide), 1e-12)
	assert.Equal(t, complex(0, 0), table[domain.Mf].Tide)
}

func TestApply_LongPeriodModeledNode(t *testing.T) {
	modeled := domain.NewSet(domain.Node, domain.Mm, domain.Mf)
	inf, err := New(LinearAdmittance, modeled)
	require.NoError(t, err)

	table := equilibriumTable(modeled)
	table[domain.Node].Tide = complex(2*longPeriodAmplitudes[domain.Node], 0)
	inf.Apply(table, 30)

	// Admittance 2 at Node, 1 at Mm: Sa lies on the first segment.
	xNode, xMm := domain.Node.SpeedDegPerHr(), domain.Mm.SpeedDegPerHr()
	frac := (domain.Sa.SpeedDegPerHr() - xNode) / (xMm - xNode)
	want := (2 - frac) * longPeriodAmplitudes[domain.Sa]
	assert.InDelta(t, want, real(table[domain.Sa].Tide), 1e-12)
}

func TestNodeEquilibriumAdmittance(t *testing.T) {
	norm := math.Sqrt(5 / (4 * math.Pi))
	assert.InDelta(t, 0.5*nodeGamma2*norm, NodeEquilibriumAdmittance(0), 1e-12)
	assert.InDelta(t, -nodeGamma2*norm, NodeEquilibriumAdmittance(90), 1e-12)
	// Zero of P20.
	assert.InDelta(t, 0, NodeEquilibriumAdmittance(math.Asin(math.Sqrt(1.0/3))*180/math.Pi), 1e-12)
}

func TestLinear(t *testing.T) {
	y := linear(1, 1, 2, 3, 4, 4, 1.5)
	assert.Equal(t, complex(2, 0), y)
	y = linear(1, 1, 2, 3, 4, 4, 3)
	assert.Equal(t, complex(3.5, 0), y)
	// Extrapolation from the nearest segment.
	y = linear(1, 1i, 2, 2i, 4, 4i, 0)
	assert.Equal(t, complex(0, 0), y)
}

func TestFourier_ReproducesControls(t *testing.T) {
	tests := []struct {
		name     string
		matrix   *[3][3]float64
		controls [3]domain.Constituent
	}{
		{"diurnal", &matrixDiurnal, [3]domain.Constituent{domain.Q1, domain.O1, domain.K1}},
		{"semidiurnal", &matrixSemidiurnal, [3]domain.Constituent{domain.N2, domain.M2, domain.S2}},
	}
	z := [3]complex128{0.2 + 0.1i, -0.3 + 0.4i, 0.7 - 0.2i}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fourier(tt.matrix)
			x := [3]float64{}
			for i, c := range tt.controls {
				x[i] = c.SpeedDegPerHr()
			}
			for i := range x {
				got := f(x[0], z[0], x[1], z[1], x[2], z[2], x[i])
				assert.Less(t, cmplx.Abs(got-z[i]), 1e-3, "control %d", i)
			}
		})
	}
}
