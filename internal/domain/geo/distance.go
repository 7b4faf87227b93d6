package geo

import (
	"fmt"
	"math"
)

// MilesPerMeter converts source distances (meters) to display miles.
const MilesPerMeter = 0.000621371

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters * MilesPerMeter
}

// FormatMiles renders meters as a one-decimal mile string, e.g. "1.0 mi".
func FormatMiles(meters float64) string {
	return fmt.Sprintf("%.1f mi", MetersToMiles(meters))
}

// ValidPoint reports whether latitude/longitude (degrees) are finite and in range.
func ValidPoint(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
