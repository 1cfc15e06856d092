package ttcore

import (
	"math"
	"testing"
)

func TestComputeDeltaAzimuthSamePoint(t *testing.T) {
	p := GeoPoint{LatDeg: 34.0, LonDeg: -118.0}
	da := ComputeDeltaAzimuth(p, p)
	if da.DeltaDeg > 1e-6 {
		t.Fatalf("delta for coincident points = %g, want ~0", da.DeltaDeg)
	}
}

func TestComputeDeltaAzimuthQuarterCircle(t *testing.T) {
	source := GeoPoint{LatDeg: 0, LonDeg: 0}
	station := GeoPoint{LatDeg: 0, LonDeg: 90}
	da := ComputeDeltaAzimuth(source, station)
	if math.Abs(da.DeltaDeg-90) > 0.1 {
		t.Fatalf("delta = %g, want ~90", da.DeltaDeg)
	}
	if math.Abs(da.AzimuthDeg-90) > 0.1 {
		t.Fatalf("azimuth = %g, want ~90 (due east)", da.AzimuthDeg)
	}
}

func TestComputeDeltaAzimuthNorth(t *testing.T) {
	source := GeoPoint{LatDeg: 0, LonDeg: 0}
	station := GeoPoint{LatDeg: 10, LonDeg: 0}
	da := ComputeDeltaAzimuth(source, station)
	if math.Abs(da.AzimuthDeg) > 0.5 && math.Abs(da.AzimuthDeg-360) > 0.5 {
		t.Fatalf("azimuth = %g, want ~0 (due north)", da.AzimuthDeg)
	}
}
