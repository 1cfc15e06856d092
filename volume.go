package ttcore

import (
	"math"
	"sync"
)

// TableSet is the immutable reference data shared read-only by every
// Volume: the model halves, up-going tables, branch references, the
// normalization converter, and the auxiliary data (§2, §3). It is built
// once when the model tables are loaded.
type TableSet struct {
	Norm Normalization

	ModelP, ModelS *ModelHalf
	UpP, UpS       *UpGoingTable

	Branches []*BranchReference

	Aux   *AuxData
	Ellip *EllipTable

	// XMinDecimate bounds the successive-distance spacing used when
	// decimating an up-going grid for sources deeper than the shallow
	// threshold (§4.2, §4.6).
	XMinDecimate float64

	// DTdDepthScale is the per-model constant the branch engine
	// multiplies into sqrt(|pSource^2-p^2|) to form dT/dz (§4.3); the
	// spec leaves its exact derivation to the model, so it is carried
	// here rather than hard-coded.
	DTdDepthScale float64
}

// Volume owns one session's worth of branch-volatile state over a
// shared TableSet (§2, §5). A Volume is not safe for concurrent use by
// more than one in-flight request; pool independent Volumes (poolsrv) or
// serialize access to a shared one.
type Volume struct {
	Tables *TableSet

	branches []*Branch

	corrP, corrS *CorrectedUpGoing
	endsP, endsS EndIntegrals

	sourceDepth float64
	ready       bool

	mu sync.Mutex
}

// Lock/Unlock let callers serialize access to one shared Volume instead
// of pooling independent ones (§5's option (b)): take the lock before
// NewSession, hold it through the GetTT calls of one request, release
// after.
func (v *Volume) Lock()   { v.mu.Lock() }
func (v *Volume) Unlock() { v.mu.Unlock() }

// NewVolume allocates a Volume's per-branch volatile state from a shared
// TableSet. Call NewSession before the first GetTT.
func NewVolume(ts *TableSet) *Volume {
	v := &Volume{Tables: ts, branches: make([]*Branch, len(ts.Branches))}
	for i, ref := range ts.Branches {
		v.branches[i] = &Branch{Ref: ref, Vol: NewBranchVolatile()}
	}
	return v
}

// lvzEndIntegral returns the tau/x contribution of a model half's
// low-velocity zone at the source's ray parameter, if the source depth
// falls inside one; both are zero otherwise (§4.2).
func lvzEndIntegral(model *ModelHalf, p float64, dSource float64, norm Normalization) (tau, x float64) {
	z := norm.FlatZ(norm.SurfaceRadius - dSource)
	for i := 0; i < len(model.Z)-1; i++ {
		if lo, hi, ok := model.lvzSpan(i); ok {
			if z <= model.Z[lo]+DTOL && z >= model.Z[hi]-DTOL {
				for _, l := range model.LayersBetween(model.Z[hi], model.Z[lo]) {
					t, d, _, err := TauLayer(l, p)
					if err == nil {
						tau += t
						x += d
					}
				}
			}
		}
	}
	return tau, x
}

// NewSession invalidates every branch's volatile state and rebuilds it
// for a new source depth (§4.2, §4.3, §5): loadOnce -> NewSession(depth)
// -> [GetTT]* is the required call order within one request.
func (v *Volume) NewSession(dSource float64) error {
	ts := v.Tables
	v.ready = false

	corrP, err := ts.UpP.Correct(ts.ModelP, ts.Norm, dSource, ts.XMinDecimate)
	if err != nil {
		return err
	}
	corrS, err := ts.UpS.Correct(ts.ModelS, ts.Norm, dSource, ts.XMinDecimate)
	if err != nil {
		return err
	}
	v.corrP, v.corrS = corrP, corrS

	lvzTauP, lvzXP := lvzEndIntegral(ts.ModelP, corrP.PMax, dSource, ts.Norm)
	lvzTauS, lvzXS := lvzEndIntegral(ts.ModelS, corrS.PMax, dSource, ts.Norm)

	v.endsP = EndIntegrals{
		TauEndUp: corrP.TauAt(corrP.PMax), XEndUp: corrP.XAt(corrP.PMax),
		TauEndLvz: lvzTauP, XEndLvz: lvzXP,
		TauEndCnv: corrS.TauAt(corrS.PMax), XEndCnv: corrS.XAt(corrS.PMax),
	}
	v.endsS = EndIntegrals{
		TauEndUp: corrS.TauAt(corrS.PMax), XEndUp: corrS.XAt(corrS.PMax),
		TauEndLvz: lvzTauS, XEndLvz: lvzXS,
		TauEndCnv: corrP.TauAt(corrP.PMax), XEndCnv: corrP.XAt(corrP.PMax),
	}

	for _, b := range v.branches {
		up, ends, pMax := v.upFor(b.Ref)
		if err := b.Correct(up, pMax, ends); err != nil {
			return err
		}
	}

	v.sourceDepth = dSource
	v.ready = true
	return nil
}

// upFor selects the corrected up-going table, end integrals, and pMax
// that apply to a branch's down-going leg.
func (v *Volume) upFor(ref *BranchReference) (upLookup, EndIntegrals, float64) {
	if ref.WaveSeq[1] == WaveS {
		return v.corrS, v.endsS, v.corrS.PMax
	}
	return v.corrP, v.endsP, v.corrP.PMax
}

// GetTT returns every arrival whose branch is viable at this session and
// whose distance envelope covers xs, the surface-focus distance
// expressed in one of three ways (§4.3): repr 0 is the fundamental
// distance, 1 is the wrap-around 2π-xs, 2 is the major-arc xs+2π. The
// spread/observability of each arrival is filled in from the auxiliary
// phase statistics.
func (v *Volume) GetTT(xs float64, repr int) ([]Arrival, error) {
	if !v.ready {
		return nil, &InputRangeError{Field: "session", Value: 0, Low: 0, High: 0}
	}

	var xsInternal, sign float64
	switch repr {
	case 1:
		xsInternal, sign = 2*math.Pi-xs, -1
	case 2:
		xsInternal, sign = xs-2*math.Pi, 1
	default:
		xsInternal, sign = xs, 1
	}

	pSource := v.corrP.PSource
	qp := queryParams{
		TNorm:          v.Tables.Norm.TNorm,
		DTdDeltaFactor: v.Tables.Norm.DtDDeltaFactor(),
		PSource:        pSource,
		DTdDepthScale:  v.Tables.DTdDepthScale,
	}

	var arrivals []Arrival
	for _, b := range v.branches {
		for _, arr := range b.Query(xs, xsInternal, sign, qp) {
			deltaDeg := xsInternal * 180 / math.Pi
			arr.Spread = v.Tables.Aux.Stats.GetSpread(arr.PhaseCode, deltaDeg)
			arr.Observability = v.Tables.Aux.Stats.GetObserv(arr.PhaseCode, deltaDeg)
			arr.Flags.Regional = v.Tables.Aux.IsRegional(arr.PhaseCode)
			arr.Flags.DownWeight = v.Tables.Aux.IsDownWeight(arr.PhaseCode)
			arr.Flags.DepthPhase = v.Tables.Aux.IsDepthPhase(arr.PhaseCode)
			arr.Flags.Usable = v.Tables.Aux.IsUsable(arr.PhaseCode)
			if arr.Flags.Diffracted {
				arr.Observability /= 2
			}
			arrivals = append(arrivals, arr)
		}
	}
	return arrivals, nil
}

// ApplyEllipticity adds the ellipticity time correction to every
// arrival that has one tabulated, given the source's geographic
// latitude (degrees), depth (km), and the station's surface-focus
// distance (degrees) and azimuth (radians) (§4.4). Arrivals for phases
// with no ellipticity table are left unchanged (§7, NotFound).
func (v *Volume) ApplyEllipticity(arrivals []Arrival, latDeg, depthKm, deltaDeg, azRad float64) {
	if v.Tables.Ellip == nil {
		return
	}
	latRad := latDeg * math.Pi / 180
	for i := range arrivals {
		if corr, ok := v.Tables.Ellip.Correction(arrivals[i].PhaseCode, latRad, depthKm, deltaDeg, azRad); ok {
			arrivals[i].Time += corr
		}
	}
}
