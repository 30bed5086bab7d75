package weather

import "math"

const (
	kmhToMph   = 0.621371
	msToMph    = 2.236936
	knotsToMph = 1.150779
	mmToInches = 0.0393701
)

// CelsiusToFahrenheit converts a temperature reading.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// KmhToMph converts a speed in kilometres per hour.
func KmhToMph(kmh float64) float64 {
	return kmh * kmhToMph
}

// MetersPerSecondToMph converts a speed in metres per second.
func MetersPerSecondToMph(ms float64) float64 {
	return ms * msToMph
}

// KnotsToMph converts a speed in knots.
func KnotsToMph(kt float64) float64 {
	return kt * knotsToMph
}

// MillimetersToInches converts a precipitation amount.
func MillimetersToInches(mm float64) float64 {
	return mm * mmToInches
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// RainFlag derives will_it_rain from a precipitation probability.
func RainFlag(chance float64) int {
	if chance > 0 {
		return 1
	}
	return 0
}

// Float returns a pointer to v, used for optional record fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
