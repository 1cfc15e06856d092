package ttcore

import "math"

// ModelHalf is the earth-flattened, normalized velocity model for one
// wave type: an ordered sequence of (z, p) samples from the surface
// downward, plus the index mapping each sample into the up-going table
// (§3). Slowness is non-increasing with depth except inside low-velocity
// zones (LVZs), where it momentarily increases going down before
// resuming its decrease.
type ModelHalf struct {
	Wave     WaveType
	Z        []float64 // flattened depth samples, surface (largest) downward
	P        []float64 // slowness at each Z sample
	UpIndex  []int     // Z[i] -> row in the up-going table
}

// lvzSpan reports the index range [lo,hi) of a low-velocity zone
// beginning at or after sample i, if any starts there, by scanning for a
// local increase in slowness followed by a resumed decrease.
func (m *ModelHalf) lvzSpan(i int) (lo, hi int, found bool) {
	n := len(m.P)
	if i+1 >= n {
		return 0, 0, false
	}
	if m.P[i+1] <= m.P[i]+DTOL {
		return 0, 0, false
	}
	lo = i
	hi = i + 1
	for hi+1 < n && m.P[hi+1] > m.P[hi]-DTOL {
		hi++
	}
	if hi+1 >= n {
		// The increase runs to the last sample without resuming its
		// decrease: not an LVZ.
		return 0, 0, false
	}
	return lo, hi, true
}

// SlownessAtDepth returns the source slowness pSource (the model's
// slowness interpolated at dSource) and pMax, the shallowest slowness
// between the surface and the source: equal to pSource except inside an
// LVZ, where it is the LVZ-top slowness (§4.2).
func (m *ModelHalf) SlownessAtDepth(norm Normalization, dSource float64) (pSource, pMax float64, err error) {
	n := len(m.Z)
	if n == 0 {
		return 0, 0, &TableIntegrityError{Table: "model", Msg: "empty model half"}
	}
	z := norm.FlatZ(norm.SurfaceRadius - dSource)
	if z < m.Z[n-1]-DTOL {
		return 0, 0, &InputRangeError{Field: "sourceDepth", Value: dSource, Low: 0, High: norm.SurfaceRadius - norm.RealZ(m.Z[n-1])}
	}

	// locate the bracketing samples (Z descending)
	lo := 0
	for lo < n-1 && m.Z[lo+1] > z {
		lo++
	}
	hi := lo + 1
	if hi >= n {
		return m.P[n-1], m.P[n-1], nil
	}
	frac := (m.Z[lo] - z) / (m.Z[lo] - m.Z[hi])
	pSource = m.P[lo] + frac*(m.P[hi]-m.P[lo])

	// Outside an LVZ slowness only decreases with depth, so the smallest
	// slowness above the source is pSource itself; inside one it is the
	// slowness at the LVZ top.
	pMax = pSource
	for i := 0; i <= lo; i++ {
		pMax = math.Min(pMax, m.P[i])
	}
	return pSource, pMax, nil
}

// LayersBetween builds the Layer slice spanning [zBot, zTop] (zTop >
// zBot) from the model's samples, for direct tau-integrator
// recomputation such as the shallow-source up-going replacement grid
// (§4.2).
func (m *ModelHalf) LayersBetween(zTop, zBot float64) []Layer {
	var layers []Layer
	n := len(m.Z)
	for i := 0; i < n-1; i++ {
		top, bot := m.Z[i], m.Z[i+1]
		if top <= zBot+DTOL || bot >= zTop-DTOL {
			continue
		}
		t := math.Min(top, zTop)
		b := math.Max(bot, zBot)
		pt := interp1([]float64{m.Z[i+1], m.Z[i]}, []float64{m.P[i+1], m.P[i]}, t)
		pb := interp1([]float64{m.Z[i+1], m.Z[i]}, []float64{m.P[i+1], m.P[i]}, b)
		layers = append(layers, Layer{ZTop: t, ZBot: b, PTop: pt, PBot: pb})
	}
	return layers
}

// CheckInvariant validates the non-increasing-except-in-LVZ slowness
// invariant (§3) and returns a TableIntegrityError describing the first
// violation, if any, beyond a run explainable as an LVZ.
func (m *ModelHalf) CheckInvariant() error {
	n := len(m.P)
	for i := 0; i < n-1; i++ {
		if m.P[i+1] > m.P[i]+DTOL {
			if _, _, ok := m.lvzSpan(i); !ok {
				return &TableIntegrityError{Table: "model", Msg: "slowness increases outside an LVZ"}
			}
		}
	}
	return nil
}
