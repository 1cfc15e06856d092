package ttcore

import (
	"math"
	"sort"
)

// PhaseGroups is the forest of named phase-code groups described in §4.4:
// four singleton flags (regional, depth, downWeight, canUse) plus
// primary/auxiliary pairs such as P<->PKP. Built once at load time from
// phgrp.dat and shared read-only thereafter.
type PhaseGroups struct {
	members    map[string][]string // group name -> ordered phase codes
	memberOf   map[string]string   // phase code -> primary group it was declared in
	complement map[string]string   // group name -> its paired group, if any

	regional, depthFlag, downWeight, canUse map[string]bool
}

// NewPhaseGroups builds an empty forest; callers populate it with AddGroup
// and the singleton-flag setters as the phgrp.dat tables package parses
// records.
func NewPhaseGroups() *PhaseGroups {
	return &PhaseGroups{
		members:    map[string][]string{},
		memberOf:   map[string]string{},
		complement: map[string]string{},
		regional:   map[string]bool{},
		depthFlag:  map[string]bool{},
		downWeight: map[string]bool{},
		canUse:     map[string]bool{},
	}
}

// AddGroup records group -> codes, overwriting membership pointers so
// findGroup resolves each code to its most recently declared group.
func (g *PhaseGroups) AddGroup(name string, codes []string) {
	g.members[name] = append(g.members[name], codes...)
	for _, c := range codes {
		g.memberOf[c] = name
	}
}

// Pair declares a and b as each other's complementary group (e.g. P<->PKP).
func (g *PhaseGroups) Pair(a, b string) {
	g.complement[a] = b
	g.complement[b] = a
}

// MarkRegional, MarkDepth, MarkDownWeight, and MarkCanUse populate the
// four singleton categorical flags.
func (g *PhaseGroups) MarkRegional(code string)   { g.regional[code] = true }
func (g *PhaseGroups) MarkDepth(code string)       { g.depthFlag[code] = true }
func (g *PhaseGroups) MarkDownWeight(code string)  { g.downWeight[code] = true }
func (g *PhaseGroups) MarkCanUse(code string)      { g.canUse[code] = true }

// FindGroup returns the group name a phase code belongs to; the empty
// code maps to "all", and "P" maps to "Ploc" when isAuto is true (§4.4).
func (g *PhaseGroups) FindGroup(phase string, isAuto bool) string {
	if phase == "" {
		return "all"
	}
	if phase == "P" && isAuto {
		return "Ploc"
	}
	if grp, ok := g.memberOf[phase]; ok {
		return grp
	}
	return phase
}

// CompGroup returns the complementary group for name, or name unchanged
// if it has none.
func (g *PhaseGroups) CompGroup(name string) string {
	if c, ok := g.complement[name]; ok {
		return c
	}
	return name
}

func (g *PhaseGroups) IsRegional(code string) bool   { return g.regional[code] }
func (g *PhaseGroups) IsDepthPhase(code string) bool  { return g.depthFlag[code] }
func (g *PhaseGroups) IsDownWeight(code string) bool { return g.downWeight[code] }
func (g *PhaseGroups) IsUsable(code string) bool     { return g.canUse[code] }

// StatBin is one raw 1deg-spaced observation (§4.4).
type StatBin struct {
	Delta         float64
	Bias          float64
	Spread        float64
	Observability float64
	Break         bool
}

// statSegment is one maximal run between breaks, fit by least squares.
type statSegment struct {
	loDelta, hiDelta float64
	slope, offset    float64
}

func (s statSegment) valueAt(delta float64) float64 {
	return s.offset + s.slope*delta
}

// PhaseStat is the piecewise-linear bias/spread/observability curve for
// one phase code, built from raw bins and patched so adjacent segments
// meet at their actual line-line intersection (§4.4, invariant 7).
type PhaseStat struct {
	MinDelta, MaxDelta float64
	biasSeg            []statSegment
	spreadSeg          []statSegment
	observSeg          []statSegment
}

// fitSegments splits bins into maximal break-delimited runs and
// least-squares fits (slope, offset) to the non-NaN values of accessor
// within each run, then patches consecutive boundaries to their actual
// intersection.
func fitSegments(bins []StatBin, accessor func(StatBin) float64) []statSegment {
	if len(bins) == 0 {
		return nil
	}
	var segs []statSegment
	start := 0
	for i := 0; i <= len(bins); i++ {
		atEnd := i == len(bins)
		brk := atEnd || bins[i].Break
		if !brk {
			continue
		}
		run := bins[start : i+boolToInt(!atEnd)]
		if len(run) > 0 {
			segs = append(segs, fitLine(run, accessor))
		}
		start = i + 1
	}
	for i := 1; i < len(segs); i++ {
		if x, ok := intersect(segs[i-1], segs[i]); ok {
			segs[i-1].hiDelta = x
			segs[i].loDelta = x
		}
	}
	return segs
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fitLine(run []StatBin, accessor func(StatBin) float64) statSegment {
	var n, sx, sy, sxx, sxy float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range run {
		lo = math.Min(lo, b.Delta)
		hi = math.Max(hi, b.Delta)
		v := accessor(b)
		if math.IsNaN(v) {
			continue
		}
		n++
		sx += b.Delta
		sy += v
		sxx += b.Delta * b.Delta
		sxy += b.Delta * v
	}
	seg := statSegment{loDelta: lo, hiDelta: hi}
	denom := n*sxx - sx*sx
	if n < 2 || math.Abs(denom) < DTOL {
		if n > 0 {
			seg.offset = sy / n
		}
		return seg
	}
	seg.slope = (n*sxy - sx*sy) / denom
	seg.offset = (sy - seg.slope*sx) / n
	return seg
}

// intersect returns the distance at which two segments' fitted lines
// cross, if the lines aren't parallel.
func intersect(a, b statSegment) (float64, bool) {
	denom := a.slope - b.slope
	if math.Abs(denom) < DTOL {
		return 0, false
	}
	return (b.offset - a.offset) / denom, true
}

func segmentValue(segs []statSegment, delta, def float64) float64 {
	if len(segs) == 0 {
		return def
	}
	i := sort.Search(len(segs), func(i int) bool { return segs[i].hiDelta >= delta })
	if i == len(segs) {
		i = len(segs) - 1
	}
	return segs[i].valueAt(delta)
}

// NewPhaseStat fits a phase's three piecewise-linear curves from its raw
// bins, one curve per variable. Each bin carries a single Break flag
// shared by all three variables (the `*`-annotated text format), so all
// three curves are split at the same bins.
func NewPhaseStat(bins []StatBin) *PhaseStat {
	ps := &PhaseStat{MinDelta: math.Inf(1), MaxDelta: math.Inf(-1)}
	for _, b := range bins {
		ps.MinDelta = math.Min(ps.MinDelta, b.Delta)
		ps.MaxDelta = math.Max(ps.MaxDelta, b.Delta)
	}
	ps.biasSeg = fitSegments(bins, func(b StatBin) float64 { return b.Bias })
	ps.spreadSeg = fitSegments(bins, func(b StatBin) float64 { return b.Spread })
	ps.observSeg = fitSegments(bins, func(b StatBin) float64 { return b.Observability })
	return ps
}

// PhaseStats is the per-phase-code collection of fitted statistics,
// falling back to the package defaults for unknown codes (§7, NotFound).
type PhaseStats struct {
	byCode map[string]*PhaseStat
}

func NewPhaseStats() *PhaseStats {
	return &PhaseStats{byCode: map[string]*PhaseStat{}}
}

func (s *PhaseStats) Add(code string, stat *PhaseStat) { s.byCode[code] = stat }

func (s *PhaseStats) GetBias(code string, delta float64) float64 {
	if st, ok := s.byCode[code]; ok {
		return segmentValue(st.biasSeg, delta, DEFBIAS)
	}
	return DEFBIAS
}

func (s *PhaseStats) GetSpread(code string, delta float64) float64 {
	if st, ok := s.byCode[code]; ok {
		return segmentValue(st.spreadSeg, delta, DEFSPREAD)
	}
	return DEFSPREAD
}

func (s *PhaseStats) GetObserv(code string, delta float64) float64 {
	if st, ok := s.byCode[code]; ok {
		return segmentValue(st.observSeg, delta, DEFOBSERV)
	}
	return DEFOBSERV
}

// AuxData bundles the phase-group forest and fitted statistics loaded
// from the plain-text auxiliary tables (§4.4, §6), shared read-only by
// every Volume built on the same TableSet.
type AuxData struct {
	Groups *PhaseGroups
	Stats  *PhaseStats
}

func (a *AuxData) IsRegional(code string) bool   { return a.Groups.IsRegional(code) }
func (a *AuxData) IsDownWeight(code string) bool { return a.Groups.IsDownWeight(code) }
func (a *AuxData) IsDepthPhase(code string) bool { return a.Groups.IsDepthPhase(code) }
func (a *AuxData) IsUsable(code string) bool     { return a.Groups.IsUsable(code) }
