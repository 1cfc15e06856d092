package ttcore

import "math"

// TheoreticalArrival is the subset of Arrival plus group-lookup fields
// phase identification needs beyond what Volume.GetTT returns directly:
// the primary and auxiliary group names a pick's observed code is
// compared against (§4.4, §4.5).
type TheoreticalArrival struct {
	Arrival
	PrimaryGroup   string
	AuxiliaryGroup string
	IsDiffracted   bool // "dis" flag: theoretical observability is halved
	IsP, IsS       bool // wave type, for the analyst type-weighting rule
}

// prob is the Gaussian-like residual probability centered on the
// theoretical arrival time (§4.5): exp(-0.5*(dt/spread)^2), spread
// floored away from zero.
func prob(dt, spread float64) float64 {
	s := math.Max(spread, DTOL)
	z := dt / s
	return math.Exp(-0.5 * z * z)
}

// amp computes the theoretical-amplitude weight for one (pick, theory)
// pair per the rules in §4.5, returning the weight and the trial
// affinity that should replace the pick's affinity if this pair wins.
func amp(pick *Pick, theory TheoreticalArrival) (weight, trialAffinity float64) {
	weight = theory.Observability
	if theory.IsDiffracted {
		weight /= 2
	}

	observedGroup := pick.phGroup
	codesMatch := pick.ObservedPhase == theory.PhaseCode

	if (!codesMatch || pick.generic) && observedGroup != "all" {
		if observedGroup == theory.PrimaryGroup || observedGroup == theory.AuxiliaryGroup {
			weight *= GROUPWEIGHT
		} else {
			weight *= otherWeight
		}
		if pick.Author.IsAnalyst() && theory.IsP != isPType(pick.ObservedPhase) {
			weight *= TYPEWEIGHT
		}
	}

	if codesMatch {
		weight *= pick.Affinity
		trialAffinity = pick.Affinity
	} else {
		trialAffinity = NULLAFFINITY
	}

	if pick.IdentificationCode == theory.PhaseCode {
		weight *= stickyWeight
	}

	return weight, trialAffinity
}

// isPType is a crude lexical classifier for an observed phase's wave
// type, used when no richer table is available to compare against a
// theoretical arrival's P/S flag.
func isPType(code string) bool {
	return len(code) > 0 && (code[0] == 'P' || code[0] == 'p')
}

// IdentifyPick evaluates every theoretical arrival against one pick,
// returning the winning arrival's index (or -1 if theories is empty)
// and the figure of merit that won (§4.5).
func IdentifyPick(pick *Pick, theories []TheoreticalArrival, groups *PhaseGroups, isAuto bool) (bestIdx int, bestFOM float64) {
	if pick.phGroup == "" {
		pick.phGroup = groups.FindGroup(pick.ObservedPhase, isAuto)
		pick.generic = pick.ObservedPhase == "" || pick.ObservedPhase == "P" || pick.ObservedPhase == "S"
	}

	bestIdx = -1
	bestFOM = math.Inf(-1)
	var bestAffinity float64

	for i, theory := range theories {
		dt := pick.ArrivalTimeSec - theory.Time
		p := prob(dt, theory.Spread)
		w, trialAffinity := amp(pick, theory)
		fom := p * w
		if fom > bestFOM {
			bestFOM = fom
			bestIdx = i
			bestAffinity = trialAffinity
		}
	}

	if bestIdx >= 0 {
		pick.IdentificationCode = theories[bestIdx].PhaseCode
		pick.Affinity = bestAffinity
		pick.TheoreticalTime = theories[bestIdx].Time
		pick.FigureOfMerit = bestFOM
	}
	return bestIdx, bestFOM
}

// NewTheoreticalArrival wraps a Volume.GetTT arrival with the group and
// wave-type bookkeeping IdentifyPick needs, resolved from the shared
// phase-group forest (§4.4, §4.5).
func NewTheoreticalArrival(arr Arrival, groups *PhaseGroups) TheoreticalArrival {
	primary := groups.FindGroup(arr.PhaseCode, false)
	return TheoreticalArrival{
		Arrival:        arr,
		PrimaryGroup:   primary,
		AuxiliaryGroup: groups.CompGroup(primary),
		IsDiffracted:   arr.Flags.Diffracted,
		IsP:            isPType(arr.PhaseCode),
		IsS:            !isPType(arr.PhaseCode),
	}
}

// ResetCache clears a pick's cached group lookup, forcing the next
// IdentifyPick call to recompute it; call when moving to a new pick
// object in a sequential traversal (§4.5, "cancellation").
func (p *Pick) ResetCache() {
	p.phGroup = ""
	p.generic = false
}
