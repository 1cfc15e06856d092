package ttcore

import (
	"math"
)

// WaveType distinguishes P and S legs of a branch's travel path.
type WaveType int

const (
	WaveP WaveType = iota
	WaveS
)

// CausticKind flags how a branch interval's distance function behaves:
// monotone (none), or folding back on itself at a minimum or maximum of
// distance (a caustic, where dΔ/dp = 0 and interpolation in Δ would be
// singular).
type CausticKind int

const (
	CausticNone CausticKind = iota
	CausticMin
	CausticMax
)

// AddOnKind enumerates the secondary arrivals derived from a base phase.
type AddOnKind int

const (
	AddOnPKPpre AddOnKind = iota
	AddOnPwP
	AddOnLg
	AddOnLR
)

// AddOnPhase describes a secondary arrival coincident with, or derived
// from, a base phase (§4.3, glossary). Lg and LR are surface-wave
// group-velocity arrivals with a fixed dT/dΔ and no depth derivative;
// PKPpre and pwP are emitted as an extra sample at the base phase's ray
// parameter. Every kind is emitted only inside [MinDist, MaxDist]; the
// source depth is not checked, so MaxSourceDep has no effect on emit.
type AddOnPhase struct {
	Code          string
	Kind          AddOnKind
	GroupVelocity float64 // km/s, used by Lg/LR only
	MaxSourceDep  float64 // km; loaded with the add-on, not checked by emit
	MinDist       float64
	MaxDist       float64
}

// DiffractedContinuation describes the diffracted extension of a branch
// along a discontinuity past its geometrical distance limit.
type DiffractedContinuation struct {
	PhaseCode string
	PEnd      float64 // ray parameter of the diffracting branch's endpoint
	XDiff0    float64
	XDiff1    float64
}

// BranchReference is the immutable, surface-focus description of one
// phase branch, built once when the model tables are loaded (§3).
type BranchReference struct {
	PhaseCode   string
	SegmentCode string
	WaveSeq     [3]WaveType // initial, down-going, up-coming
	SignSeg     float64     // +1, -1 or a conversion factor
	CountSeg    int
	HasLVZ      bool

	P0, P1 float64
	X0, X1 float64

	P   []float64 // surface-focus ray parameter samples
	Tau []float64 // surface-focus tau samples, same length as P

	Basis [5][]float64 // BuildBasis(P, P[len(P)-1])

	IsUpGoing  bool
	Diffracted *DiffractedContinuation
	AddOn      *AddOnPhase
}

// lastTau combines the up-going/LVZ/converted end integrals into the
// last-point tau anchor for this branch, per its wave-type sequence and
// traversal count (§4.2, §4.3).
func (ref *BranchReference) lastTau(ends EndIntegrals) float64 {
	base := ends.TauEndUp
	if ref.WaveSeq[0] != ref.WaveSeq[2] {
		base = ends.TauEndCnv
	}
	t := float64(ref.CountSeg) * base
	if ref.HasLVZ {
		t += ends.TauEndLvz
	}
	return t
}

// lastX mirrors lastTau for the distance anchor.
func (ref *BranchReference) lastX(ends EndIntegrals) float64 {
	base := ends.XEndUp
	if ref.WaveSeq[0] != ref.WaveSeq[2] {
		base = ends.XEndCnv
	}
	x := float64(ref.CountSeg) * base
	if ref.HasLVZ {
		x += ends.XEndLvz
	}
	return x
}

// BranchVolatile holds the per-session, depth-corrected state of one
// branch (§3). It is allocated once per branch at session start and
// overwritten by every newSession call; it is read-only to getTT.
type BranchVolatile struct {
	Compute bool
	Exists  bool

	EffectivePhaseCode string

	P   []float64 // corrected (p,tau), truncated at pMax
	Tau []float64

	XBrn []float64 // solved distance at every sample

	Poly [4][]float64 // a0..a3 per interval, len(P)-1
	XLim [2][]float64 // [0]=min, [1]=max per interval
	Caustic []CausticKind

	CausticCount int
	PCaustic     float64
}

// NewBranchVolatile allocates the volatile state for one branch. Called
// once per branch when a Volume is constructed.
func NewBranchVolatile() *BranchVolatile {
	return &BranchVolatile{PCaustic: math.Inf(1)}
}

// Branch pairs a branch's immutable reference with its per-session
// volatile state.
type Branch struct {
	Ref *BranchReference
	Vol *BranchVolatile
}

// upLookup is the minimal capability Branch.Correct needs from an
// up-going table: interpolated tau/x at a ray parameter.
type upLookup interface {
	TauAt(p float64) float64
	XAt(p float64) float64
}

// Correct rebuilds the volatile state of a branch for a new source
// depth (§4.2, §4.3): truncate at pMax, apply the up-going correction to
// every sample, solve for interior distances via the tridiagonal
// spline system, and build the per-interval cubic-in-sqrt polynomials.
func (b *Branch) Correct(up upLookup, pMax float64, ends EndIntegrals) error {
	vol := b.Vol
	ref := b.Ref

	vol.Compute = true
	vol.Exists = false
	vol.EffectivePhaseCode = ref.PhaseCode
	vol.CausticCount = 0
	vol.PCaustic = math.Inf(1)

	if ref.P0 > pMax+DTOL {
		// The branch's shallowest ray parameter is deeper than the
		// source can reach; it does not exist this session.
		return nil
	}

	n := 0
	for n < len(ref.P) && ref.P[n] <= pMax+DTOL {
		n++
	}
	if n < 2 {
		return nil
	}

	p := append([]float64(nil), ref.P[:n]...)
	tau := make([]float64, n)
	for i := 0; i < n; i++ {
		tau[i] = ref.Tau[i] + ref.SignSeg*up.TauAt(p[i])
	}

	x0 := ref.X0 + ref.SignSeg*up.XAt(p[0])
	x1 := ref.X1 + ref.SignSeg*ref.lastX(ends)
	tau[n-1] += ref.SignSeg * ref.lastTau(ends)

	vol.P = p
	vol.Tau = tau
	vol.Exists = true

	xBrn, err := solveDistances(p, ref.Basis, tau, x0, x1, n)
	if err != nil {
		return err
	}
	vol.XBrn = xBrn

	for r := 0; r < 4; r++ {
		vol.Poly[r] = make([]float64, n-1)
	}
	vol.XLim[0] = make([]float64, n-1)
	vol.XLim[1] = make([]float64, n-1)
	vol.Caustic = make([]CausticKind, n-1)

	pEnd := p[n-1]
	for i := 0; i < n-1; i++ {
		dp0 := pEnd - p[i]
		dp1 := pEnd - p[i+1]
		a0, a1, a2, a3 := intervalPoly(dp0, dp1, tau[i], tau[i+1], xBrn[i], xBrn[i+1])
		vol.Poly[0][i], vol.Poly[1][i], vol.Poly[2][i], vol.Poly[3][i] = a0, a1, a2, a3

		lo, hi := xBrn[i], xBrn[i+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		kind := CausticNone
		if math.Abs(a2) > DTOL {
			root := -0.375 * a3 / a2
			if root > 0 {
				dpc := root * root
				if dpc > dp1+DTOL && dpc < dp0-DTOL {
					sc := math.Sqrt(dpc)
					xc := a1 + 2*a2*dpc + 1.5*a3*sc
					if xc < lo {
						lo = xc
						kind = CausticMin
					} else if xc > hi {
						hi = xc
						kind = CausticMax
					}
					if kind != CausticNone {
						vol.CausticCount++
						pc := pEnd - dpc
						if pc < vol.PCaustic {
							vol.PCaustic = pc
						}
					}
				}
			}
		}
		vol.XLim[0][i] = lo
		vol.XLim[1][i] = hi
		vol.Caustic[i] = kind
	}

	return nil
}

// solveDistances assembles and solves the tridiagonal system of §4.3
// (Thomas algorithm) for the spline coefficients, then reconstructs every
// interior distance
// from the solved spline coefficients g. Endpoints are the given xRange.
func solveDistances(p []float64, basis [5][]float64, tau []float64, x0, x1 float64, n int) ([]float64, error) {
	u := make([]float64, n)
	pEnd := p[n-1]
	for i, pv := range p {
		u[i] = math.Sqrt(math.Max(pEnd-pv, 0))
	}
	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = u[i] - u[i+1]
		if h[i] < DTOL {
			h[i] = DTOL
		}
	}

	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	rhs := make([]float64, n)

	diag[0] = 2 * h[0]
	sup[0] = h[0]
	rhs[0] = 6*((tau[1]-tau[0])/h[0] - x0)

	diag[n-1] = 2 * h[n-2]
	sub[n-1] = h[n-2]
	rhs[n-1] = 6*(x1 - (tau[n-1]-tau[n-2])/h[n-2])

	for i := 1; i < n-1; i++ {
		hPrev, hNext := h[i-1], h[i]
		denom := 2 * (hPrev + hNext)
		sub[i] = basis[0][i]
		diag[i] = 1
		sup[i] = basis[1][i]
		rhs[i] = (6 * ((tau[i+1]-tau[i])/hNext - (tau[i]-tau[i-1])/hPrev)) / denom
	}

	g, err := solveTridiagonal(sub, diag, sup, rhs)
	if err != nil {
		return nil, err
	}

	x := make([]float64, n)
	x[0] = x0
	x[n-1] = x1
	for i := 1; i < n-1; i++ {
		x[i] = basis[2][i]*g[i-1] + basis[3][i]*g[i] + basis[4][i]*g[i+1]
	}
	return x, nil
}

// solveTridiagonal runs the Thomas algorithm: forward elimination of the
// lower triangle followed by back-substitution.
func solveTridiagonal(sub, diag, sup, rhs []float64) ([]float64, error) {
	n := len(diag)
	cp := make([]float64, n)
	dp := make([]float64, n)

	if math.Abs(diag[0]) < DTOL {
		return nil, &NumericalError{Op: "solveTridiagonal", Val: diag[0]}
	}
	cp[0] = sup[0] / diag[0]
	dp[0] = rhs[0] / diag[0]

	for i := 1; i < n; i++ {
		m := diag[i] - sub[i]*cp[i-1]
		if math.Abs(m) < DTOL {
			m = math.Copysign(DTOL, m)
		}
		if i < n-1 {
			cp[i] = sup[i] / m
		}
		dp[i] = (rhs[i] - sub[i]*dp[i-1]) / m
	}

	g := make([]float64, n)
	g[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		g[i] = dp[i] - cp[i]*g[i+1]
	}
	return g, nil
}

// queryParams bundles the normalization-derived scale factors Query
// needs so it doesn't have to import Normalization directly.
type queryParams struct {
	TNorm          float64
	DTdDeltaFactor float64
	PSource        float64
	DTdDepthScale  float64
}

// Query evaluates getTT for one branch at an internal (fundamental-frame)
// distance xsInternal, emitting one Arrival per accepted interval
// solution (§4.3). xsRaw is the caller's original distance (possibly the
// wrap-around or major-arc form) used verbatim in the travel-time
// formula; sign flips dT/dΔ according to which representation xsRaw is.
func (b *Branch) Query(xsRaw, xsInternal, sign float64, qp queryParams) []Arrival {
	vol := b.Vol
	ref := b.Ref
	if !vol.Exists {
		return nil
	}

	var out []Arrival
	n := len(vol.P)
	pEnd := vol.P[n-1]

	for i := 0; i < n-1; i++ {
		if xsInternal < vol.XLim[0][i]-XTOL || xsInternal > vol.XLim[1][i]+XTOL {
			continue
		}
		dp0 := pEnd - vol.P[i]
		dp1 := pEnd - vol.P[i+1]
		a0, a1, a2, a3 := vol.Poly[0][i], vol.Poly[1][i], vol.Poly[2][i], vol.Poly[3][i]

		for _, t := range solveSqrtQuadratic(2*a2, 1.5*a3, a1-xsInternal) {
			if t < 0 {
				continue
			}
			dp := t * t
			if dp < dp1-XTOL || dp > dp0+XTOL {
				continue
			}
			p := pEnd - dp
			sq := t
			if sq < XTOL {
				sq = XTOL
			}

			arr := Arrival{
				PhaseCode: vol.EffectivePhaseCode,
				Time:      qp.TNorm * (a0 + dp*(a1+dp*a2+t*a3) + p*xsRaw),
				DTdD:      sign * p * qp.DTdDeltaFactor,
				DTdZ:      ref.SignSeg * qp.DTdDepthScale * sqrtAbs(qp.PSource*qp.PSource-p*p),
				DXdP:      -(2*a2 + 0.75*a3/sq) / qp.TNorm,
			}

			if code, relabeled := RelabelCaustic(arr.PhaseCode); relabeled && p < vol.PCaustic {
				arr.PhaseCode = code
			}
			out = append(out, arr)
		}
	}

	if ref.Diffracted != nil && xsInternal >= ref.Diffracted.XDiff0 && xsInternal <= ref.Diffracted.XDiff1 {
		out = append(out, Arrival{
			PhaseCode: ref.Diffracted.PhaseCode,
			Time:      qp.TNorm * (lastPolyTau(vol) + ref.Diffracted.PEnd*xsRaw),
			DTdD:      sign * ref.Diffracted.PEnd * qp.DTdDeltaFactor,
			Flags:     ArrivalFlags{Diffracted: true},
		})
	}

	if ref.AddOn != nil && len(out) > 0 {
		if addOn, ok := ref.AddOn.emit(out[0], xsInternal, qp); ok {
			out = append(out, addOn)
		}
	}

	return out
}

// lastPolyTau returns the tau value at the branch's last sample, used as
// the anchor for a diffracted continuation's flat extension.
func lastPolyTau(vol *BranchVolatile) float64 {
	if len(vol.Tau) == 0 {
		return 0
	}
	return vol.Tau[len(vol.Tau)-1]
}

// emit builds the add-on arrival derived from a base arrival when
// xsInternal lies within [MinDist, MaxDist] (§4.3). The source depth is
// not checked.
func (a *AddOnPhase) emit(base Arrival, xsInternal float64, qp queryParams) (Arrival, bool) {
	if xsInternal < a.MinDist || xsInternal > a.MaxDist {
		return Arrival{}, false
	}
	switch a.Kind {
	case AddOnLg, AddOnLR:
		return Arrival{
			PhaseCode: a.Code,
			Time:      base.Time,
			DTdD:      degToKmPerSec(a.GroupVelocity),
		}, true
	default: // PKPpre, pwP: coincident with the base phase's ray parameter
		return Arrival{
			PhaseCode: a.Code,
			Time:      base.Time,
			DTdD:      base.DTdD,
			DTdZ:      base.DTdZ,
		}, true
	}
}

func degToKmPerSec(groupVel float64) float64 {
	if groupVel <= 0 {
		return 0
	}
	const deg2km = 111.195
	return deg2km / groupVel
}

func sqrtAbs(v float64) float64 {
	if v < 0 {
		v = -v
	}
	return math.Sqrt(v)
}

// solveSqrtQuadratic solves A*t^2 + B*t + C = 0 for real t, returning up
// to two roots.
func solveSqrtQuadratic(a, b, c float64) []float64 {
	if math.Abs(a) < DTOL {
		if math.Abs(b) < DTOL {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

// intervalPoly fits a0..a3 of τ(p) = a0 + a1·Δp + a2·Δp² + a3·Δp·√Δp over
// one interval so that both τ and x = -dτ/dp match at the two endpoints
// (§4.3).
func intervalPoly(dp0, dp1, tau0, tau1, x0, x1 float64) (a0, a1, a2, a3 float64) {
	dp0 = math.Max(dp0, 0)
	dp1 = math.Max(dp1, 0)
	s0 := math.Sqrt(dp0)
	s1 := math.Sqrt(dp1)

	A1 := 2 * (dp0 - dp1)
	B1 := 1.5 * (s0 - s1)
	C1 := x0 - x1

	A2 := dp0*dp0 - dp1*dp1 - 2*dp0*(dp0-dp1)
	B2 := dp0*s0 - dp1*s1 - 1.5*s0*(dp0-dp1)
	C2 := (tau0 - tau1) - x0*(dp0-dp1)

	det := A1*B2 - A2*B1
	if math.Abs(det) < 1e-12 {
		det = math.Copysign(1e-12, det)
	}
	a2 = (C1*B2 - C2*B1) / det
	a3 = (A1*C2 - A2*C1) / det
	a1 = x0 - 2*a2*dp0 - 1.5*a3*s0
	a0 = tau0 - a1*dp0 - a2*dp0*dp0 - a3*dp0*s0
	return
}
