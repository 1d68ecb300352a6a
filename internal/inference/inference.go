// Package inference estimates minor constituents missing from a tidal model
// from the admittance of the major ones.
package inference

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.ngs.io/tidegrid/internal/domain"
)

// InterpolationType selects how admittances are interpolated.
type InterpolationType int

const (
	// None disables inference.
	None InterpolationType = iota
	// LinearAdmittance interpolates admittances piecewise linearly.
	LinearAdmittance
	// FourierAdmittance fits a Munk-Cartwright Fourier series.
	FourierAdmittance
)

// ErrUnknownInterpolation is returned for an unrecognized interpolation name.
var ErrUnknownInterpolation = errors.New("unknown interpolation type")

// ParseInterpolationType accepts "none", "linear" and "fourier", with or
// without the "_admittance" suffix.
func ParseInterpolationType(s string) (InterpolationType, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_admittance")
	switch name {
	case "", "none":
		return None, nil
	case "linear":
		return LinearAdmittance, nil
	case "fourier":
		return FourierAdmittance, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownInterpolation, s)
}

func (t InterpolationType) String() string {
	switch t {
	case None:
		return "none"
	case LinearAdmittance:
		return "linear"
	case FourierAdmittance:
		return "fourier"
	}
	return fmt.Sprintf("InterpolationType(%d)", int(t))
}

// ShortPeriodControls must all be modeled to infer short-period waves.
var ShortPeriodControls = []domain.Constituent{
	domain.Q1, domain.O1, domain.K1, domain.N2, domain.M2, domain.S2,
}

// LongPeriodControls anchor long-period inference. A missing Mm or Mf
// contributes nothing and a missing Node is replaced by its equilibrium tide.
var LongPeriodControls = []domain.Constituent{domain.Node, domain.Mm, domain.Mf}

// InsufficientControlConstituentsError reports missing control constituents.
type InsufficientControlConstituentsError struct {
	Missing []domain.Constituent
}

func (e *InsufficientControlConstituentsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = c.Name()
	}
	return "insufficient control constituents for inference, missing: " + strings.Join(names, ", ")
}

type target struct {
	c         domain.Constituent
	frequency float64
	amplitude float64
	gamma2    float64
}

// Inference fills the constituents absent from a model. It is immutable and
// safe for concurrent use.
type Inference struct {
	kind    InterpolationType
	modeled domain.Set

	diurnal, semidiurnal, longPeriod []target
	controls                         map[domain.Constituent]target

	interpolate1, interpolate2 interpolator
}

// New prepares the inference of every inferable constituent missing from
// modeled. Short-period inference is configured only when the model holds a
// short-period constituent, and then requires all ShortPeriodControls.
func New(kind InterpolationType, modeled domain.Set) (*Inference, error) {
	inf := &Inference{kind: kind, modeled: modeled, controls: map[domain.Constituent]target{}}
	switch kind {
	case LinearAdmittance:
		inf.interpolate1, inf.interpolate2 = linear, linear
	case FourierAdmittance:
		inf.interpolate1, inf.interpolate2 = fourier(&matrixDiurnal), fourier(&matrixSemidiurnal)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownInterpolation, kind)
	}

	hasShortPeriod := false
	for _, c := range modeled.Slice() {
		if c.Species() == domain.ShortPeriod {
			hasShortPeriod = true
			break
		}
	}
	if hasShortPeriod {
		var missing []domain.Constituent
		for _, c := range ShortPeriodControls {
			if !modeled.Has(c) {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return nil, &InsufficientControlConstituentsError{Missing: missing}
		}
		inf.diurnal = inf.targets(diurnalAmplitudes)
		inf.semidiurnal = inf.targets(semidiurnalAmplitudes)
	}
	inf.longPeriod = inf.targets(longPeriodAmplitudes)

	for _, table := range []map[domain.Constituent]float64{
		diurnalAmplitudes, semidiurnalAmplitudes, longPeriodAmplitudes,
	} {
		for c, amp := range table {
			inf.controls[c] = newTarget(c, amp)
		}
	}
	return inf, nil
}

func newTarget(c domain.Constituent, amp float64) target {
	freq := c.SpeedDegPerHr()
	return target{
		c:         c,
		frequency: freq,
		amplitude: amp,
		gamma2:    domain.LoveNumbersPMM95b(freq).Gamma2(),
	}
}

// targets lists the constituents of table absent from the model, sorted by
// frequency.
func (inf *Inference) targets(table map[domain.Constituent]float64) []target {
	out := make([]target, 0, len(table))
	for c, amp := range table {
		if inf.modeled.Has(c) {
			continue
		}
		out = append(out, newTarget(c, amp))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].frequency < out[j].frequency })
	return out
}

// Type returns the interpolation type.
func (inf *Inference) Type() InterpolationType { return inf.kind }

// Inferred returns the constituents filled by Apply, in catalog order.
func (inf *Inference) Inferred() []domain.Constituent {
	var s domain.Set
	for _, group := range [][]target{inf.diurnal, inf.semidiurnal, inf.longPeriod} {
		for _, t := range group {
			s.Add(t.c)
		}
	}
	return s.Slice()
}

// Apply computes the tide of every inferred constituent from the modeled
// controls in table. lat is the latitude of the point in degrees, used by
// the equilibrium node tide.
func (inf *Inference) Apply(table *domain.Table, lat float64) {
	if len(inf.diurnal) > 0 || len(inf.semidiurnal) > 0 {
		q1, o1, k1 := inf.controls[domain.Q1], inf.controls[domain.O1], inf.controls[domain.K1]
		n2, m2, s2 := inf.controls[domain.N2], inf.controls[domain.M2], inf.controls[domain.S2]

		y1 := table[domain.Q1].Tide / complex(q1.amplitude*q1.gamma2, 0)
		y2 := table[domain.O1].Tide / complex(o1.amplitude*o1.gamma2, 0)
		y3 := table[domain.K1].Tide / complex(k1.amplitude*k1.gamma2, 0)
		for _, t := range inf.diurnal {
			y := inf.interpolate1(q1.frequency, y1, o1.frequency, y2, k1.frequency, y3, t.frequency)
			setInferred(table, t.c, y*complex(t.gamma2*t.amplitude, 0))
		}

		y4 := table[domain.N2].Tide / complex(n2.amplitude, 0)
		y5 := table[domain.M2].Tide / complex(m2.amplitude, 0)
		y6 := table[domain.S2].Tide / complex(s2.amplitude, 0)
		for _, t := range inf.semidiurnal {
			y := inf.interpolate2(n2.frequency, y4, m2.frequency, y5, s2.frequency, y6, t.frequency)
			setInferred(table, t.c, y*complex(t.amplitude, 0))
		}
	}

	if len(inf.longPeriod) == 0 {
		return
	}
	var y [3]complex128
	for i, c := range LongPeriodControls {
		if inf.modeled.Has(c) {
			y[i] = table[c].Tide / complex(inf.controls[c].amplitude, 0)
		}
	}
	if !inf.modeled.Has(domain.Node) {
		y[0] = complex(NodeEquilibriumAdmittance(lat), 0)
	}
	node, mm, mf := inf.controls[domain.Node], inf.controls[domain.Mm], inf.controls[domain.Mf]
	for _, t := range inf.longPeriod {
		v := linear(node.frequency, y[0], mm.frequency, y[1], mf.frequency, y[2], t.frequency)
		setInferred(table, t.c, v*complex(t.amplitude, 0))
	}
}

func setInferred(table *domain.Table, c domain.Constituent, tide complex128) {
	w := &table[c]
	w.Tide = tide
	w.Inferred = true
}
