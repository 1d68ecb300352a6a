package domain

import "math"

// NodalCorrection is the amplitude factor f and phase correction u (degrees)
// applied to a constituent to account for the 18.6-year lunar nodal cycle.
type NodalCorrection struct {
	F float64
	U float64
}

// IdentityCorrection leaves a constituent unchanged.
var IdentityCorrection = NodalCorrection{F: 1.0, U: 0.0}

func fromTerms(term1, term2 float64) NodalCorrection {
	return NodalCorrection{
		F: math.Sqrt(term1*term1 + term2*term2),
		U: Rad2Deg(math.Atan2(term1, term2)),
	}
}

// nodalAngles caches the trigonometric terms of the standard corrections.
type nodalAngles struct {
	sinN, cosN, sin2N, cos2N float64
	sin2P, cos2P             float64
	sin2PN, cos2PN           float64 // 2p - omega
	sin2NP, cos2NP           float64 // 2(omega - p)
}

func newNodalAngles(omega, p float64) nodalAngles {
	n := Deg2Rad(omega)
	pr := Deg2Rad(p)
	return nodalAngles{
		sinN: math.Sin(n), cosN: math.Cos(n),
		sin2N: math.Sin(2 * n), cos2N: math.Cos(2 * n),
		sin2P: math.Sin(2 * pr), cos2P: math.Cos(2 * pr),
		sin2PN: math.Sin(Deg2Rad(2*p - omega)), cos2PN: math.Cos(Deg2Rad(2*p - omega)),
		sin2NP: math.Sin(Deg2Rad(2 * (omega - p))), cos2NP: math.Cos(Deg2Rad(2 * (omega - p))),
	}
}

// linearTerms returns the Schureman terms of a linear constituent. ok is
// false for constituents without a dedicated formula.
func (a nodalAngles) linearTerms(c Constituent) (term1, term2 float64, ok bool) {
	switch c {
	case Mm, MSm:
		return -0.0534*a.sin2P - 0.0219*a.sin2PN,
			1.0 - 0.1308*a.cosN - 0.0534*a.cos2P - 0.0219*a.cos2PN, true
	case Mf, MSqm, Mqm:
		return -0.04324*a.sin2P - 0.41465*a.sinN - 0.03873*a.sin2N,
			1.0 + 0.04324*a.cos2P + 0.41465*a.cosN + 0.03873*a.cos2N, true
	case MSf:
		// Linear tide, not the M2-S2 compound.
		return 0.137 * a.sinN, 1.0, true
	case Mtm:
		return -0.018*a.sin2P - 0.4145*a.sinN - 0.040*a.sin2N,
			1.0 + 0.018*a.cos2P + 0.4145*a.cosN + 0.040*a.cos2N, true
	case MStm:
		return -0.380*a.sin2P - 0.413*a.sinN - 0.037*a.sin2N,
			1.0 + 0.380*a.cos2P + 0.413*a.cosN + 0.037*a.cos2N, true
	case O1:
		return 0.1886*a.sinN - 0.0058*a.sin2N - 0.0065*a.sin2P,
			1.0 + 0.1886*a.cosN - 0.0058*a.cos2N - 0.0065*a.cos2P, true
	case TwoQ1, Q1, Rho1, Sigma1:
		return 0.1886 * a.sinN, 1.0 + 0.1886*a.cosN, true
	case Tau1:
		return 0.219 * a.sinN, 1.0 - 0.219*a.cosN, true
	case Beta1:
		return 0.226 * a.sinN, 1.0 + 0.226*a.cosN, true
	case M1:
		// Assumes the M1 argument includes p.
		return -0.2294*a.sinN - 0.3594*a.sin2P - 0.0664*a.sin2PN,
			1.0 + 0.1722*a.cosN + 0.3594*a.cos2P + 0.0664*a.cos2PN, true
	case Chi1:
		return -0.250 * a.sinN, 1.0 + 0.193*a.cosN, true
	case P1:
		return -0.0112 * a.sinN, 1.0 - 0.0112*a.cosN, true
	case K1:
		return -0.1554*a.sinN + 0.0031*a.sin2N,
			1.0 + 0.1158*a.cosN - 0.0028*a.cos2N, true
	case J1, Theta1:
		return -0.227 * a.sinN, 1.0 + 0.169*a.cosN, true
	case OO1, Ups1:
		return -0.640*a.sinN - 0.134*a.sin2N - 0.150*a.sin2P,
			1.0 + 0.640*a.cosN + 0.134*a.cos2N + 0.150*a.cos2P, true
	case M2, TwoN2, Mu2, N2, Nu2, Lambda2, MS4, Eps2, SN4, TwoSM6:
		return -0.03731*a.sinN + 0.00052*a.sin2N,
			1.0 - 0.03731*a.cosN + 0.00052*a.cos2N, true
	case L2:
		return -0.250*a.sin2P - 0.110*a.sin2PN - 0.037*a.sinN,
			1.0 - 0.250*a.cos2P - 0.110*a.cos2PN - 0.037*a.cosN, true
	case K2, SK4:
		return -0.3108*a.sinN - 0.0324*a.sin2N,
			1.0 + 0.2853*a.cosN + 0.0324*a.cos2N, true
	case Gamma2:
		return 0.147 * a.sin2NP, 1.0 + 0.147*a.cos2NP, true
	case Delta2:
		return 0.505*a.sin2P + 0.505*a.sinN - 0.165*a.sin2N,
			1.0 - 0.505*a.cos2P - 0.505*a.cosN + 0.165*a.cos2N, true
	case Eta2:
		return -0.436 * a.sinN, 1.0 + 0.436*a.cosN, true
	case S2:
		return 0.00225 * a.sinN, 1.0 + 0.00225*a.cosN, true
	case M3:
		return -0.05644 * a.sinN, 1.0 - 0.05644*a.cosN, true
	case M13:
		return -0.01815 * a.sinN, 1.0 - 0.27837*a.cosN, true
	}
	return 0, 1, false
}

func (a nodalAngles) linear(c Constituent) NodalCorrection {
	t1, t2, _ := a.linearTerms(c)
	return fromTerms(t1, t2)
}

func (a nodalAngles) correction(c Constituent) NodalCorrection {
	if t1, t2, ok := a.linearTerms(c); ok {
		return fromTerms(t1, t2)
	}
	// Compound tides derive from their parents.
	switch c {
	case SO1:
		o1 := a.linear(O1)
		return NodalCorrection{F: o1.F, U: -o1.U}
	case M4, MN4, N4, TwoMS2, MSN6, TwoMS6:
		m2 := a.linear(M2)
		return NodalCorrection{F: m2.F * m2.F, U: 2 * m2.U}
	case MSN2:
		m2 := a.linear(M2)
		return NodalCorrection{F: m2.F * m2.F, U: 0}
	case TwoMN2:
		m2 := a.linear(M2)
		return NodalCorrection{F: m2.F * m2.F * m2.F, U: m2.U}
	case TwoSM2:
		m2 := a.linear(M2)
		return NodalCorrection{F: m2.F, U: -m2.U}
	case M6, TwoMN6:
		m2 := a.linear(M2)
		return NodalCorrection{F: m2.F * m2.F * m2.F, U: 3 * m2.U}
	case M8:
		m2 := a.linear(M2)
		return NodalCorrection{F: math.Pow(m2.F, 4), U: 4 * m2.U}
	case MK4, MKS2:
		m2, k2 := a.linear(M2), a.linear(K2)
		return NodalCorrection{F: m2.F * k2.F, U: m2.U + k2.U}
	case MSK6:
		m2, k2 := a.linear(M2), a.linear(K2)
		return NodalCorrection{F: m2.F * k2.F, U: m2.U - k2.U}
	case TwoMK6:
		m2, k2 := a.linear(M2), a.linear(K2)
		return NodalCorrection{F: m2.F * m2.F * k2.F, U: 2*m2.U + k2.U}
	case MO3:
		m2, o1 := a.linear(M2), a.linear(O1)
		return NodalCorrection{F: m2.F * o1.F, U: m2.U + o1.U}
	case MK3:
		m2, k1 := a.linear(M2), a.linear(K1)
		return NodalCorrection{F: m2.F * k1.F, U: m2.U + k1.U}
	case TwoMK3:
		m2, k1 := a.linear(M2), a.linear(K1)
		return NodalCorrection{F: m2.F * m2.F * k1.F, U: 2*m2.U - k1.U}
	}
	return IdentityCorrection
}

// StandardNodalCorrections computes f and u for each constituent from omega,
// the longitude of the lunar node, and p, the longitude of the lunar perigee
// (both in degrees).
func StandardNodalCorrections(omega, p float64, constituents []Constituent) []NodalCorrection {
	a := newNodalAngles(omega, p)
	out := make([]NodalCorrection, len(constituents))
	for i, c := range constituents {
		out[i] = a.correction(c)
	}
	return out
}

// GroupNodalCorrections computes f and u including the modulations from the
// minor lines grouped with each main constituent. Angles are in degrees:
// perihelion is the longitude of the solar perigee, omega the longitude of
// the lunar node, perigee the longitude of the lunar perigee and hsolar the
// mean longitude of the Sun. Constituents without a group formula use the
// standard corrections.
func GroupNodalCorrections(perihelion, omega, perigee, hsolar float64, constituents []Constituent) []NodalCorrection {
	h := Deg2Rad(hsolar)
	p := Deg2Rad(perigee)
	o := -Deg2Rad(omega)
	pp := Deg2Rad(perihelion)
	std := newNodalAngles(omega, perigee)
	sin, cos := math.Sin, math.Cos

	out := make([]NodalCorrection, len(constituents))
	for i, c := range constituents {
		var term1, term2 float64
		switch c {
		case Mm:
			term1 = -0.0137*sin(-2*h+2*p-o) + 0.1912*sin(-2*h+2*p) -
				0.0125*sin(-2*h+2*p+o) - 0.0657*sin(-o) - 0.0653*sin(o) -
				0.0534*sin(2*p) - 0.0219*sin(2*p+o) - 0.0139*sin(2*h)
			term2 = 1.0 + 0.0137*cos(2*h-2*p-o) + 0.1912*cos(-2*h+2*p) -
				0.0125*cos(-2*h+2*p+o) - 0.1309*cos(o) - 0.0534*cos(2*p) -
				0.0219*cos(2*p+o) - 0.0139*cos(2*h)
		case Mf:
			term1 = 0.0875*sin(-2*h) + 0.0432*sin(-2*p) + 0.4145*sin(o) + 0.0387*sin(2*o)
			term2 = 1.0 + 0.0875*cos(2*h) + 0.0432*cos(2*p) + 0.4145*cos(o) + 0.0387*cos(2*o)
		case Mtm:
			term1 = 0.0721*sin(-2*h) + 0.1897*sin(-2*h+2*p) +
				0.0784*sin(-2*h+2*p+o) + 0.4146*sin(o)
			term2 = 1.0 + 0.0721*cos(2*h) + 0.1897*cos(-2*h+2*p) +
				0.0784*cos(-2*h+2*p+o) + 0.4146*cos(o)
		case Mqm:
			term1 = 1.207*sin(-2*h+2*p) + 0.497*sin(-2*h+2*p+o) + 0.414*sin(o)
			term2 = 1.0 + 1.207*cos(-2*h+2*p) + 0.497*cos(-2*h+2*p+o) + 0.414*cos(o)
		case TwoQ1:
			term1 = 0.1886*sin(-o) + 0.2274*sin(2*h-2*p-o) + 1.2086*sin(2*h-2*p)
			term2 = 1.0 + 0.1886*cos(o) + 0.2274*cos(2*h-2*p-o) + 1.2086*cos(2*h-2*p)
		case Sigma1:
			term1 = 0.1561*sin(-2*h+2*p-o) - 0.1882*sin(o) +
				0.7979*sin(-2*h+2*p) + 0.0815*sin(h-pp)
			term2 = 1.0 + 0.1561*cos(-2*h+2*p-o) + 0.1882*cos(o) +
				0.8569*cos(-2*h+2*p) + 0.0538*cos(h-pp)
		case Q1:
			term1 = 0.1886*sin(-o) + 0.0359*sin(2*h-2*p-o) + 0.1901*sin(2*h-2*p)
			term2 = 1.0 + 0.1886*cos(o) + 0.0359*cos(2*h-2*p-o) + 0.1901*cos(2*h-2*p)
		case O1:
			term1 = -0.0058*sin(-2*o) + 0.1886*sin(-o) - 0.0065*sin(2*p) - 0.0131*sin(2*h)
			term2 = 1.0 - 0.0058*cos(2*o) + 0.1886*cos(o) - 0.0065*cos(2*p) - 0.0131*cos(2*h)
		case M1:
			// Central line is 155.655.
			term1 = 0.0941*sin(-2*h) + 0.0664*sin(-2*p-o) + 0.3594*sin(-2*p) +
				0.2008*sin(o) + 0.1910*sin(2*h-2*p) + 0.0422*sin(2*h-2*p+o)
			term2 = 1.0 + 0.0941*cos(2*h) + 0.0664*cos(2*p+o) + 0.3594*cos(2*p) +
				0.2008*cos(o) + 0.1910*cos(2*h-2*p) + 0.0422*cos(2*h-2*p+o)
		case K1:
			term1 = -0.0184*sin(-3*h+pp) + 0.0036*sin(-2*h-o) + 0.3166*sin(2*h) -
				0.0026*sin(h+pp) + 0.0075*sin(-h+pp) + 0.1558*sin(o) -
				0.0030*sin(2*o) + 0.0049*sin(h-pp) + 0.0128*sin(2*h)
			term2 = 1.0 - 0.0184*cos(-3*h+pp) + 0.0036*cos(2*h+o) - 0.3166*cos(2*h) +
				0.0026*cos(h+pp) + 0.0075*cos(h-pp) + 0.1164*cos(o) -
				0.0030*cos(2*o) + 0.0049*cos(h-pp) + 0.0128*cos(2*h)
		case J1:
			term1 = 0.1922*sin(-2*h+2*p) + 0.0378*sin(-2*h+2*p+o) +
				0.2268*sin(o) - 0.0155*sin(2*p)
			term2 = 1.0 + 0.1922*cos(-2*h+2*p) + 0.0378*cos(-2*h+2*p+o) +
				0.1701*cos(o) - 0.0155*cos(2*p)
		case OO1:
			term1 = 0.3029*sin(-2*h) + 0.0593*sin(-2*h+o) + 0.1497*sin(-2*p) +
				0.6404*sin(o) + 0.1337*sin(2*o)
			term2 = 1.0 + 0.3029*cos(-2*h) + 0.0593*cos(-2*h+o) + 0.1497*cos(-2*p) +
				0.6404*cos(o) + 0.1337*cos(2*o)
		case Eps2:
			term1 = 0.385 * sin(-2*h+2*p)
			term2 = 1.0 + 0.385*cos(-2*h+2*p)
		case TwoN2:
			term1 = 0.0374*sin(o) + 1.2064*sin(2*h-2*p) - 0.0139*sin(-h+pp) -
				0.0170*sin(h-2*p+pp) - 0.0104*sin(h-p) + 0.0156*sin(h-pp) -
				0.0448*sin(2*h-2*p-o) + 0.0808*sin(3*h-2*p-4.939) +
				0.0369*sin(4*h-4*p)
			term2 = 1.0 - 0.0374*cos(o) + 1.2064*cos(2*h-2*p) - 0.0139*cos(-h+pp) -
				0.0170*cos(h-2*p+pp) - 0.0104*cos(h-p) + 0.0156*cos(h-pp) -
				0.0448*cos(2*h-2*p-o) + 0.0808*cos(3*h-2*p-4.939) +
				0.0369*cos(4*h-4*p)
		case Mu2:
			term1 = -0.0115*sin(-3*h+2*p+pp) - 0.0310*sin(-2*h+2*p-o) +
				0.8289*sin(-2*h+2*p) - 0.0140*sin(-h+pp) - 0.0086*sin(-h+p) +
				0.0130*sin(-h+2*p-pp) + 0.0371*sin(o) + 0.0670*sin(h-pp) +
				0.0306*sin(2*h-2*p)
			term2 = 1.0 - 0.0115*cos(-3*h+2*p+pp) - 0.0310*cos(-2*h+2*p-o) +
				0.8289*cos(-2*h+2*p) - 0.0140*cos(-h+pp) - 0.0086*cos(-h+p) +
				0.0130*cos(-h+2*p-pp) - 0.0371*cos(o) + 0.0670*cos(h-pp) +
				0.0306*cos(2*h-2*p)
		case N2:
			term1 = -0.0084*sin(-h+pp) - 0.0373*sin(-o) + 0.0093*sin(h-pp) +
				0.1899*sin(2*h-2*p) - 0.0071*sin(2*h-2*p-o)
			term2 = 1.0 - 0.0084*cos(-h+pp) - 0.0373*cos(o) + 0.0093*cos(h-pp) +
				0.1899*cos(2*h-2*p) - 0.0071*cos(2*h-2*p-o)
		case M2:
			term1 = -0.0030*sin(-2*h+2*p) - 0.0373*sin(-o) + 0.0065*sin(h-pp) + 0.0011*sin(2*h)
			term2 = 1.0 - 0.0030*cos(-2*h+2*p) - 0.0373*cos(o) - 0.0004*cos(h-pp) + 0.0011*cos(2*h)
		case L2:
			term1 = 0.2609*sin(-2*h+2*p) - 0.0370*sin(-o) - 0.2503*sin(2*p) -
				0.1103*sin(2*p+o) - 0.0491*sin(2*h) - 0.0230*sin(2*h+o)
			term2 = 1.0 + 0.2609*cos(-2*h+2*p) - 0.0370*cos(o) - 0.2503*cos(2*p) -
				0.1103*cos(2*p+o) - 0.0491*cos(2*h) - 0.0230*cos(2*h+o)
		case S2:
			term1 = 0.0585*sin(-h+pp) - 0.0084*sin(h-pp) + 0.2720*sin(2*h) +
				0.0811*sin(2*h+o) + 0.0088*sin(2*h+2*o)
			term2 = 1.0 + 0.0585*cos(-h+pp) - 0.0084*cos(h-pp) + 0.2720*cos(2*h) +
				0.0811*cos(2*h+o) + 0.0088*cos(2*h+2*o)
		default:
			out[i] = std.correction(c)
			continue
		}
		out[i] = fromTerms(term1, term2)
	}
	return out
}
