package ttcore

import "math"

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	LatDeg, LonDeg float64
}

// geocentricLatRad converts a geographic latitude (degrees) to
// geocentric latitude (radians), using the same tangent-scaling
// correction as the ellipticity co-latitude conversion (§4.4).
func geocentricLatRad(latDeg float64) float64 {
	geo := latDeg * math.Pi / 180
	return math.Atan(geocentricFactor * math.Tan(geo))
}

// DeltaAzimuth is the result of computeDeltaAzimuth: the surface-focus
// distance and azimuth from a source to a station, both geocentric
// (§9: replaces the legacy global-state version with an explicit,
// argument-only function).
type DeltaAzimuth struct {
	DeltaDeg   float64
	AzimuthDeg float64 // source-to-station, clockwise from geocentric north
}

// ComputeDeltaAzimuth returns the geocentric surface-focus distance and
// azimuth between a source and a station using the spherical law of
// cosines, after converting both latitudes to geocentric (§9).
func ComputeDeltaAzimuth(source, station GeoPoint) DeltaAzimuth {
	latS := geocentricLatRad(source.LatDeg)
	latR := geocentricLatRad(station.LatDeg)
	lonS := source.LonDeg * math.Pi / 180
	lonR := station.LonDeg * math.Pi / 180

	coLatS := math.Pi/2 - latS
	coLatR := math.Pi/2 - latR
	dLon := lonR - lonS

	cosDelta := math.Cos(coLatS)*math.Cos(coLatR) + math.Sin(coLatS)*math.Sin(coLatR)*math.Cos(dLon)
	cosDelta = math.Max(-1, math.Min(1, cosDelta))
	delta := math.Acos(cosDelta)

	y := math.Sin(dLon) * math.Sin(coLatR)
	x := math.Sin(coLatS)*math.Cos(coLatR) - math.Cos(coLatS)*math.Sin(coLatR)*math.Cos(dLon)
	az := math.Atan2(y, x)
	if az < 0 {
		az += 2 * math.Pi
	}

	return DeltaAzimuth{
		DeltaDeg:   delta * 180 / math.Pi,
		AzimuthDeg: az * 180 / math.Pi,
	}
}
