package ttcore

import "math"

// Layer describes one interval of the earth-flattened model between two
// depth samples, ordered shallow (Top) to deep (Bot). ZTop > ZBot; the
// slowness need not be monotone across a single layer boundary (that
// invariant holds only outside low-velocity zones), but within a layer
// the closed-form integral below assumes the standard loglinear slowness
// law fit to the two endpoints.
type Layer struct {
	ZTop, ZBot float64
	PTop, PBot float64
}

// gradientB solves b from p(z) = b + (pTop-b)*exp(z-zTop) matched at the
// layer's two endpoints. Returns ok=false for a zero-thickness or
// constant-slowness layer (caller handles those cases directly).
func gradientB(l Layer) (b float64, ok bool) {
	dz := l.ZBot - l.ZTop
	if math.Abs(dz) < DTOL {
		return 0, false
	}
	if math.Abs(l.PTop-l.PBot) < DTOL {
		// pTop == pBot to working precision: constant-slowness layer.
		return 0, false
	}
	edz := math.Exp(dz)
	denom := 1 - edz
	if math.Abs(denom) < DTOL {
		return 0, false
	}
	b = (l.PBot - l.PTop*edz) / denom
	return b, true
}

// layerG evaluates the antiderivative of 1/((u-b)*sqrt(u^2-p^2)) at u,
// used to assemble both the delta and tau closed forms for a layer whose
// slowness follows the loglinear law of gradientB.
func layerG(u, p, b float64) float64 {
	switch {
	case math.Abs(b-p) < DTOL || math.Abs(b+p) < DTOL:
		// b sits on the turning circle; perturb off the singularity.
		// The contribution of a vanishing neighborhood of this case is
		// itself vanishing, so a small nudge costs no accuracy that
		// matters at the 1e-6 tolerances used elsewhere in the engine.
		if b >= 0 {
			b += DTOL
		} else {
			b -= DTOL
		}
		return layerG(u, p, b)
	case b*b > p*p:
		s := math.Sqrt(b*b - p*p)
		q := math.Sqrt(math.Max(u*u-p*p, 0))
		den := u - b
		if math.Abs(den) < DTOL {
			den = math.Copysign(DTOL, den)
		}
		arg := (b*u - p*p + s*q) / den
		sign := -1.0
		if b < 0 {
			// Conjugate numerator: the two forms differ only by a constant,
			// and this one does not cancel to zero as p -> 0.
			arg = (b*u - p*p - s*q) / den
			sign = 1.0
		}
		if math.Abs(arg) < DTOL {
			arg = math.Copysign(DTOL, arg)
		}
		return sign * math.Log(math.Abs(arg)) / s
	default:
		s := math.Sqrt(p*p - b*b)
		den := p * math.Abs(u-b)
		if den < DTOL {
			den = DTOL
		}
		arg := (p*p - b*u) / den
		if arg > 1 {
			arg = 1
		} else if arg < -1 {
			arg = -1
		}
		return -math.Asin(arg) / s
	}
}

// TauLayer returns the closed-form (tau, delta) contribution of one
// model layer to a ray of parameter p, selecting among the five
// distinguished cases of §4.1: zero-thickness, constant-slowness,
// straight-through-at-center, an edge case where p coincides with the
// layer's top or bottom slowness, and the general loglinear case. A ray
// that turns inside the layer (PBot < p < PTop) is truncated at the
// turning depth; turned reports this.
func TauLayer(l Layer, p float64) (tau, delta float64, turned bool, err error) {
	// Case 1: zero-thickness layer.
	if math.Abs(l.ZTop-l.ZBot) < DTOL {
		return 0, 0, false, nil
	}

	dz := l.ZTop - l.ZBot // positive: flattened thickness

	// Case 3: straight-through ray at the center of the earth.
	if p <= DTOL && l.PBot <= DTOL {
		b, ok := gradientB(l)
		if !ok {
			tau = l.PTop * dz
		} else {
			tau = b*dz + (l.PTop-b)*(1-math.Exp(l.ZBot-l.ZTop))
		}
		if tau < -1e-9 {
			return 0, 0, false, &NumericalError{Op: "TauLayer.center", Val: tau}
		}
		return math.Max(tau, 0), math.Pi / 2, false, nil
	}

	pTop, pBot := l.PTop, l.PBot
	effBot := pBot
	if p > pBot+DTOL && p < pTop-DTOL {
		// Ray turns inside this layer; truncate at the turning depth.
		turned = true
		effBot = p
	} else if p >= pTop-DTOL {
		// Ray does not reach this layer at all.
		return 0, 0, false, nil
	}

	b, ok := gradientB(l)
	if !ok {
		// Case 2: constant-slowness layer (pTop == pBot to tolerance).
		u0 := pTop
		q := math.Sqrt(math.Max(u0*u0-p*p, 0))
		tau = q * dz
		delta = p * dz / math.Max(u0, DTOL)
		if tau < -1e-9 || delta < -1e-9 {
			return 0, 0, false, &NumericalError{Op: "TauLayer.constant", Val: math.Min(tau, delta)}
		}
		return math.Max(tau, 0), math.Max(delta, 0), turned, nil
	}

	qt := math.Sqrt(math.Max(pTop*pTop-p*p, 0))
	qb := math.Sqrt(math.Max(effBot*effBot-p*p, 0))

	// Cases 4/5 share one formula; the edge case (p == pTop or p ==
	// effBot, so qt or qb vanishes) is simply the general formula
	// evaluated at a zero radical, which the helpers above guard
	// against taking a singular log/asin argument.
	gDiff := layerG(pTop, p, b) - layerG(effBot, p, b)
	delta = p * gDiff
	logArg := (pTop + qt) / math.Max(effBot+qb, DTOL)
	if logArg <= 0 {
		logArg = DTOL
	}
	tau = (qt - qb) + b*math.Log(logArg) + (b*b-p*p)*gDiff

	if tau < -1e-9 || delta < -1e-9 {
		return 0, 0, false, &NumericalError{Op: "TauLayer.general", Val: math.Min(tau, delta)}
	}
	return math.Max(tau, 0), math.Max(delta, 0), turned, nil
}

// TauRange accumulates TauLayer over a contiguous slice of layers for a
// single ray parameter p, stopping (and reporting turned=true) at the
// first layer in which the ray turns.
func TauRange(layers []Layer, p float64) (tau, delta float64, turned bool, err error) {
	for _, l := range layers {
		lt, ld, lTurned, lerr := TauLayer(l, p)
		if lerr != nil {
			return tau, delta, turned, lerr
		}
		tau += lt
		delta += ld
		if lTurned {
			return tau, delta, true, nil
		}
	}
	return tau, delta, false, nil
}
