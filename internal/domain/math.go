package domain

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// arcsec2Rad converts arcseconds to radians.
func arcsec2Rad(x float64) float64 {
	return x * math.Pi / (180.0 * 3600.0)
}

// Remainder returns the IEEE remainder of x/y shifted so that the result has
// the sign of y.
func Remainder(x, y float64) float64 {
	r := math.Remainder(x, y)
	if r != 0 && math.Signbit(r) != math.Signbit(y) {
		r += y
	}
	return r
}

// NormalizeAngle reduces x (degrees) to the range [lo, lo+circle).
func NormalizeAngle(x, lo, circle float64) float64 {
	return Remainder(x-lo, circle) + lo
}

// NormalizeDegrees reduces x to [-180, 180).
func NormalizeDegrees(x float64) float64 {
	return NormalizeAngle(x, -180.0, 360.0)
}

// IsSame reports whether a and b are equal within an absolute or relative
// tolerance of epsilon.
func IsSame(a, b, epsilon float64) bool {
	diff := math.Abs(a - b)
	if diff <= epsilon {
		return true
	}
	return diff < math.Max(math.Abs(a), math.Abs(b))*epsilon
}

// horner evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func horner(x float64, c ...float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
