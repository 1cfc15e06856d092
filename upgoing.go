package ttcore

import "math"

// EndIntegrals carries the three "last-point" anchors pre-computed at
// session start and shared by every branch's up-going correction (§4.2):
// the surface-to-source leg at pMax, the across-LVZ leg (zero if the
// source sits outside any low-velocity zone), and the converted-phase
// leg evaluated in the other wave type.
type EndIntegrals struct {
	TauEndUp, XEndUp   float64
	TauEndLvz, XEndLvz float64
	TauEndCnv, XEndCnv float64
}

// UpGoingTable is the pre-integrated τ/Δ table from the surface down to
// every discrete source-depth sample, for one wave type (§3). It is
// read-only after load; CorrectedUpGoing holds the per-session result of
// adjusting one depth sample to an exact source depth.
type UpGoingTable struct {
	Wave   WaveType
	Depths []float64 // tabulated source depths, km, ascending

	// TauUp[d] and the shared ray-parameter grid PGrid hold τUp(p) for
	// source-depth sample d.
	PGrid []float64
	TauUp [][]float64

	// XUp[d] holds distances at the (shorter) branch-end ray-parameter
	// grid PEndGrid for source-depth sample d.
	PEndGrid []float64
	XUp      [][]float64

	// ShallowKm is the depth threshold below which the native grid is
	// replaced entirely by a geometric grid (§4.2).
	ShallowKm float64
}

// nearestDepthIndex returns the index of the tabulated depth sample
// nearest dSource, and whether dSource is within the table's range.
func (t *UpGoingTable) nearestDepthIndex(dSource float64) (int, bool) {
	n := len(t.Depths)
	if n == 0 {
		return 0, false
	}
	if dSource < t.Depths[0]-DTOL || dSource > t.Depths[n-1]+DTOL {
		return 0, false
	}
	best, bestDiff := 0, math.Inf(1)
	for i, d := range t.Depths {
		if diff := math.Abs(d - dSource); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best, true
}

// CorrectedUpGoing is the per-session up-going table adjusted for an
// exact source depth. It satisfies the upLookup capability Branch.Correct
// needs (TauAt/XAt) via linear interpolation over its corrected grid.
type CorrectedUpGoing struct {
	P   []float64
	Tau []float64

	PEnd []float64
	X    []float64

	PSource float64
	PMax    float64
}

// TauAt linearly interpolates τUp at ray parameter p.
func (c *CorrectedUpGoing) TauAt(p float64) float64 {
	return interp1(c.P, c.Tau, p)
}

// XAt linearly interpolates the branch-end distance table at p.
func (c *CorrectedUpGoing) XAt(p float64) float64 {
	return interp1(c.PEnd, c.X, p)
}

func interp1(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if n == 1 || x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	frac := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + frac*(ys[hi]-ys[lo])
}

// shallowGrid builds the geometric ray-parameter grid used to replace a
// too-sparse native grid for shallow sources (§4.2): dp = 0.75*pMax /
// (n-2)^power, with n in [5,6] and power in {6,7}.
func shallowGrid(pMax float64, n int, power float64) []float64 {
	if n < 2 {
		n = 5
	}
	grid := make([]float64, n)
	grid[n-1] = pMax
	step := 0.75 * pMax / math.Pow(float64(n-2), power)
	for i := n - 2; i >= 0; i-- {
		k := float64(n - 1 - i)
		grid[i] = pMax - step*math.Pow(k, power)
		if grid[i] < 0 {
			grid[i] = 0
		}
	}
	return grid
}

// Correct adjusts table sample d (nearest to dSource) by one partial-
// layer integral between the sample depth and the exact source depth,
// replacing the ray-parameter grid entirely for shallow sources and
// decimating it for deep ones (§4.2). model supplies the layers needed
// for the direct tau-integrator recomputation at new or boundary grid
// points; norm converts dSource (km) to flattened z.
func (t *UpGoingTable) Correct(model *ModelHalf, norm Normalization, dSource, xMin float64) (*CorrectedUpGoing, error) {
	idx, ok := t.nearestDepthIndex(dSource)
	if !ok {
		return nil, &InputRangeError{Field: "sourceDepth", Value: dSource, Low: t.Depths[0], High: t.Depths[len(t.Depths)-1]}
	}

	pSource, pMax, err := model.SlownessAtDepth(norm, dSource)
	if err != nil {
		return nil, err
	}

	baseP := append([]float64(nil), t.PGrid...)
	baseTau := append([]float64(nil), t.TauUp[idx]...)

	zSample := norm.FlatZ(norm.SurfaceRadius - t.Depths[idx])
	zSource := norm.FlatZ(norm.SurfaceRadius - dSource)
	partial := model.LayersBetween(math.Max(zSample, zSource), math.Min(zSample, zSource))
	sign := 1.0
	if zSource > zSample {
		sign = -1.0
	}
	for i := range baseTau {
		dTau, _, _, lerr := TauRange(partial, baseP[i])
		if lerr == nil {
			baseTau[i] += sign * dTau
		}
	}

	var gridP, gridTau []float64
	if dSource <= t.ShallowKm {
		gridP = shallowGrid(pMax, 6, 6)
		gridTau = make([]float64, len(gridP))
		zTop := norm.FlatZ(norm.SurfaceRadius)
		zBot := norm.FlatZ(norm.SurfaceRadius - dSource)
		for i, p := range gridP {
			tau, _, _, err := TauRange(model.LayersBetween(zTop, zBot), p)
			if err != nil {
				return nil, err
			}
			gridTau[i] = tau
		}
	} else {
		gridP, gridTau = Decimate(baseP, baseTau, xMin)
	}

	pEnd := append([]float64(nil), t.PEndGrid...)
	x := append([]float64(nil), t.XUp[idx]...)

	return &CorrectedUpGoing{
		P:       gridP,
		Tau:     gridTau,
		PEnd:    pEnd,
		X:       x,
		PSource: pSource,
		PMax:    pMax,
	}, nil
}
