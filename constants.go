package ttcore

import "math"

// Tolerances used throughout the tau integrator and branch engine. Named
// to match the quantity they bound rather than the magic number itself.
const (
	// DTOL bounds a ray parameter or distance considered coincident with
	// a layer or branch endpoint.
	DTOL = 1e-7
	// XTOL bounds the acceptable mismatch when accepting a quadratic
	// solution for Δp against an interval's endpoint Δp.
	XTOL = 1e-6
	// minimum ray parameter treated as exactly zero (straight-through ray).
	pTolZero = 1e-9
)

// Default values for out-of-range phase statistics (§3, §4.4).
const (
	DEFBIAS    = 0.0
	DEFSPREAD  = 12.0
	DEFOBSERV  = 0.0
)

// Weights used by phase identification (§4.5).
const (
	GROUPWEIGHT  = 10.0
	TYPEWEIGHT   = 0.5
	NULLAFFINITY = 1.0
)

// otherWeight is the multiplier applied when an observed phase's group
// matches neither the theoretical arrival's primary nor auxiliary group.
const otherWeight = 0.2

// stickyWeight favors the pick's previously identified phase code when
// it coincides with the theoretical arrival under consideration.
const stickyWeight = 1.1

// Normalization holds the model-units converter: the constants that map
// between the dimensional (km, km/s, s) and normalized (earth-flattened,
// log-depth) representations used throughout the engine. Immutable for
// the lifetime of a loaded model.
type Normalization struct {
	XNorm        float64 // 1/surfaceRadius, km^-1
	PNorm        float64 // s
	TNorm        float64 // s
	VNorm        float64 // XNorm * PNorm, (km/s)^-1
	SurfaceRadius float64 // km
}

// NewNormalization builds the converter from the three scalars stored in
// the model header plus the surface radius.
func NewNormalization(xNorm, pNorm, tNorm, surfaceRadius float64) Normalization {
	return Normalization{
		XNorm:         xNorm,
		PNorm:         pNorm,
		TNorm:         tNorm,
		VNorm:         xNorm * pNorm,
		SurfaceRadius: surfaceRadius,
	}
}

// FlatZ returns the earth-flattened depth coordinate z = ln(xNorm*r) for
// a dimensional radius r (km).
func (n Normalization) FlatZ(r float64) float64 {
	return math.Log(n.XNorm * r)
}

// RealZ inverts FlatZ: r = exp(z)/xNorm.
func (n Normalization) RealZ(z float64) float64 {
	return math.Exp(z) / n.XNorm
}

// RealV returns the dimensional velocity (km/s) corresponding to a
// normalized slowness p at flattened depth z: v = exp(z)/(tNorm*p).
func (n Normalization) RealV(p, z float64) float64 {
	if p == 0 {
		return math.Inf(1)
	}
	return math.Exp(z) / (n.TNorm * p)
}

// FlatP returns the normalized slowness p = vNorm*r/v for a dimensional
// velocity v (km/s) at dimensional radius r (km).
func (n Normalization) FlatP(v, r float64) float64 {
	return n.VNorm * r / v
}

// DtDDeltaFactor is the constant that converts a normalized ray
// parameter into dT/dΔ expressed in s/deg: π/(180*vNorm).
func (n Normalization) DtDDeltaFactor() float64 {
	return math.Pi / (180.0 * n.VNorm)
}

// DegToKm converts a surface-focus angular distance in degrees to km
// along the surface of the reference sphere.
func (n Normalization) DegToKm(deg float64) float64 {
	return deg * math.Pi / 180.0 * n.SurfaceRadius
}
