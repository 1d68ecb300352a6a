package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDeltaTOutOfRange is returned for dates outside the delta-T polynomials.
var ErrDeltaTOutOfRange = errors.New("delta-T: year out of range")

const (
	// SecondsPerDay is the length of a day in seconds.
	SecondsPerDay = 86400.0
	// MicrosecondsPerDay is the length of a day in microseconds.
	MicrosecondsPerDay = 86400e6
	// ModifiedJulianEpoch is the Julian date of MJD 0.
	ModifiedJulianEpoch = 2400000.5
	// UnixEpochMJD is the modified Julian date of 1970-01-01T00:00:00Z.
	UnixEpochMJD = 40587.0
	// J2000 is the Julian date of 2000-01-01T12:00:00 TT.
	J2000 = 2451545.0
	// DaysPerCentury is the length of a Julian century.
	DaysPerCentury = 36525.0

	arcsecondsPerCircle = 1296000.0
)

// EpochToMJD converts microseconds since the Unix epoch to a modified Julian date.
func EpochToMJD(epochUS int64) float64 {
	return float64(epochUS)/MicrosecondsPerDay + UnixEpochMJD
}

// TimeToEpoch converts t to microseconds since the Unix epoch.
func TimeToEpoch(t time.Time) int64 {
	return t.UnixMicro()
}

// EpochToTime converts microseconds since the Unix epoch to a UTC time.
func EpochToTime(epochUS int64) time.Time {
	return time.UnixMicro(epochUS).UTC()
}

// Arguments are the lunisolar fundamental arguments in radians.
type Arguments struct {
	L     float64 // Mean anomaly of the Moon.
	LP    float64 // Mean anomaly of the Sun.
	F     float64 // Mean longitude of the Moon minus Omega.
	D     float64 // Mean elongation of the Moon from the Sun.
	Omega float64 // Mean longitude of the ascending node of the Moon.
}

// FundamentalArguments evaluates the Simon et al. (1994) series adopted by the
// IERS Conventions (2010). t is TT in Julian centuries since J2000.
func FundamentalArguments(t float64) Arguments {
	reduce := func(arcsec float64) float64 {
		return arcsec2Rad(math.Remainder(arcsec, arcsecondsPerCircle))
	}
	return Arguments{
		L:     reduce(horner(t, 485868.249036, 1717915923.2178, 31.8792, 0.051635, -0.00024470)),
		LP:    reduce(horner(t, 1287104.79305, 129596581.0481, -0.5532, 0.000136, -0.00001149)),
		F:     reduce(horner(t, 335779.526232, 1739527262.8478, -12.7512, -0.001037, 0.00000417)),
		D:     reduce(horner(t, 1072260.70369, 1602961601.2090, -6.3706, 0.006593, -0.00003169)),
		Omega: reduce(horner(t, 450160.398036, -6962890.5431, 7.4722, 0.007702, -0.00005939)),
	}
}

// CelestialVector holds Doodson's six astronomical variables in degrees,
// each in [-180, 180).
type CelestialVector [6]float64

// Tau is the mean lunar time.
func (v CelestialVector) Tau() float64 { return v[0] }

// S is the mean longitude of the Moon.
func (v CelestialVector) S() float64 { return v[1] }

// H is the mean longitude of the Sun.
func (v CelestialVector) H() float64 { return v[2] }

// P is the longitude of the lunar perigee.
func (v CelestialVector) P() float64 { return v[3] }

// NPrime is the negative longitude of the lunar ascending node.
func (v CelestialVector) NPrime() float64 { return v[4] }

// Ps is the longitude of the solar perigee.
func (v CelestialVector) Ps() float64 { return v[5] }

// NewCelestialVector evaluates the astronomical variables at mjd (UT) given
// delta-T in seconds.
func NewCelestialVector(mjd, deltaT float64) CelestialVector {
	tt := mjd + deltaT/SecondsPerDay
	centuries := (tt + ModifiedJulianEpoch - J2000) / DaysPerCentury
	a := FundamentalArguments(centuries)

	s := a.F + a.Omega
	h := a.F + a.Omega - a.D
	p := a.F + a.Omega - a.L
	nPrime := -a.Omega
	ps := -a.LP + a.F - a.D + a.Omega
	tau := (mjd-math.Trunc(mjd))*2*math.Pi - s + h

	var v CelestialVector
	for i, x := range [6]float64{tau, s, h, p, nPrime, ps} {
		v[i] = NormalizeDegrees(Rad2Deg(x))
	}
	return v
}

// DoodsonArgument returns the equilibrium argument of a wave, in degrees in
// [-180, 180).
func DoodsonArgument(v CelestialVector, d Doodson) float64 {
	arg := float64(d[6]) * 90.0
	for i := 0; i < 6; i++ {
		arg += float64(d[i]) * v[i]
	}
	return NormalizeDegrees(arg)
}

// TidalFrequency returns the angular speed of a wave in degrees per hour,
// derived from the rates of the astronomical variables at J2000.
func TidalFrequency(d Doodson) float64 {
	const (
		t0  = 51545.0
		del = 0.05
	)
	v0 := NewCelestialVector(t0, 0)
	v1 := NewCelestialVector(t0+del, 0)
	freq := 0.0
	for i := 0; i < 6; i++ {
		rate := NormalizeDegrees(v1[i]-v0[i]) / (24.0 * del)
		freq += rate * float64(d[i])
	}
	return freq
}

// DeltaT returns TT - UT in seconds for the Julian date jd, from the
// Espenak and Meeus polynomials.
func DeltaT(jd float64) (float64, error) {
	y := math.Round((jd-2415020.0)/365.25) + 1900
	if y < 1700 || y > 2150 {
		return 0, fmt.Errorf("%w: %.0f", ErrDeltaTOutOfRange, y)
	}
	switch {
	case y >= 2050:
		u := (y - 1820) / 100.0
		return -20.0 + 32.0*u*u - 0.5628*(2150-y), nil
	case y >= 2005:
		t := y - 2000
		return 62.92 + 0.32217*t + 5.5589e-3*t*t, nil
	case y >= 1986:
		t := y - 2000
		return horner(t, 63.86, 0.3345, -6.0374e-2, 1.7275e-3, 6.51814e-4, 2.373599e-5), nil
	case y >= 1961:
		t := y - 1975
		return 45.45 + 1.067*t - t*t/260.0 - t*t*t/718.0, nil
	case y >= 1941:
		t := y - 1950
		return 29.07 + 0.407*t - t*t/233.0 + t*t*t/2547.0, nil
	case y >= 1920:
		t := y - 1920
		return horner(t, 21.20, 0.84493, -0.0761, 2.0936e-3), nil
	case y >= 1900:
		t := y - 1900
		return horner(t, -2.79, 1.494119, -5.98939e-2, 6.1966e-3, -1.97e-4), nil
	case y >= 1860:
		t := y - 1860
		return horner(t, 7.62, 0.5737, -2.51754e-1, 1.680668e-2, -4.473624e-4, 4.28864e-6), nil
	case y >= 1800:
		t := y - 1800
		return horner(t, 13.72, -0.332447, 6.861e-3, 4.1116e-3, -3.7436e-4, 1.21272e-5, -1.699e-7, 8.75e-10), nil
	default:
		t := y - 1700
		return horner(t, 8.83, 1.603e-1, -5.9285e-3, 1.3336e-4, -8.518e-7), nil
	}
}
