package domain

// LoveNumbers are the degree-2 Love numbers k, h and l.
type LoveNumbers struct {
	K float64
	H float64
	L float64
}

// Gamma2 returns the diminishing factor 1 + k - h.
func (n LoveNumbers) Gamma2() float64 {
	return 1.0 + n.K - n.H
}

// LoveNumbersPMM95b computes the Love numbers for a wave of the given speed
// (degrees per hour) with the abbreviated diurnal model of Mathews et al.
// (1995). Outside the diurnal band Wahr's (1981) numbers are returned.
// Latitude dependence and anelasticity are ignored.
func LoveNumbersPMM95b(frequency float64) LoveNumbers {
	if frequency < 5.0 {
		return LoveNumbers{K: 0.299, H: 0.606, L: 0.0840}
	}
	if frequency > 22.0 {
		return LoveNumbers{K: 0.302, H: 0.609, L: 0.0852}
	}
	const (
		fcn = 1.0023214 // Free core nutation, cycles per sidereal day.
		fK1 = 15.041068
		fO1 = 13.943036
	)
	f := frequency / fK1
	frac := (f - fO1/fK1) / (fcn - f)
	return LoveNumbers{
		K: 0.2962 - 0.00127*frac,
		H: 0.5994 - 0.002532*frac,
		L: 0.08378 + 0.00007932*frac,
	}
}
