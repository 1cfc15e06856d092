package ttcore

import (
	"math"
	"testing"
)

func TestPhaseGroupsFindGroupDefaults(t *testing.T) {
	g := NewPhaseGroups()
	if got := g.FindGroup("", false); got != "all" {
		t.Fatalf("FindGroup(\"\") = %q, want \"all\"", got)
	}
	if got := g.FindGroup("P", true); got != "Ploc" {
		t.Fatalf("FindGroup(\"P\", isAuto=true) = %q, want \"Ploc\"", got)
	}
	if got := g.FindGroup("P", false); got != "P" {
		t.Fatalf("FindGroup(\"P\", isAuto=false) = %q, want \"P\" (unknown code falls back to itself)", got)
	}
}

func TestPhaseGroupsMembershipAndPairing(t *testing.T) {
	g := NewPhaseGroups()
	g.AddGroup("P", []string{"P", "Pn", "Pg"})
	g.AddGroup("PKP", []string{"PKPab", "PKPbc", "PKPdf"})
	g.Pair("P", "PKP")

	if got := g.FindGroup("Pn", false); got != "P" {
		t.Fatalf("FindGroup(\"Pn\") = %q, want \"P\"", got)
	}
	if got := g.CompGroup("P"); got != "PKP" {
		t.Fatalf("CompGroup(\"P\") = %q, want \"PKP\"", got)
	}
	if got := g.CompGroup("PKP"); got != "P" {
		t.Fatalf("CompGroup(\"PKP\") = %q, want \"P\"", got)
	}
	if got := g.CompGroup("S"); got != "S" {
		t.Fatalf("CompGroup for an unpaired group should return itself, got %q", got)
	}
}

func TestPhaseGroupsFlags(t *testing.T) {
	g := NewPhaseGroups()
	g.MarkRegional("Pg")
	g.MarkDownWeight("PP")
	g.MarkDepth("pP")
	g.MarkCanUse("P")
	if !g.IsRegional("Pg") {
		t.Fatal("Pg should be marked regional")
	}
	if g.IsRegional("Pn") {
		t.Fatal("Pn should not be marked regional")
	}
	if !g.IsDownWeight("PP") {
		t.Fatal("PP should be marked down-weighted")
	}
	if !g.IsDepthPhase("pP") {
		t.Fatal("pP should be marked a depth phase")
	}
	if g.IsDepthPhase("P") {
		t.Fatal("P should not be marked a depth phase")
	}
	if !g.IsUsable("P") {
		t.Fatal("P should be marked usable")
	}
	if g.IsUsable("PP") {
		t.Fatal("PP should not be marked usable when never marked")
	}
}

func TestAuxDataDepthAndUsableDelegate(t *testing.T) {
	g := NewPhaseGroups()
	g.MarkDepth("pP")
	g.MarkCanUse("P")
	aux := &AuxData{Groups: g, Stats: NewPhaseStats()}
	if !aux.IsDepthPhase("pP") {
		t.Fatal("AuxData.IsDepthPhase should delegate to PhaseGroups")
	}
	if !aux.IsUsable("P") {
		t.Fatal("AuxData.IsUsable should delegate to PhaseGroups")
	}
}

func TestPhaseStatPiecewiseLinearContinuity(t *testing.T) {
	// Two maximal runs (a break after the 3rd bin) whose fitted lines
	// should be patched to meet exactly at the break (invariant: no
	// discontinuity in the piecewise-linear curve, §4.4 invariant 7).
	bins := []StatBin{
		{Delta: 0, Bias: 0, Spread: 1, Observability: 1},
		{Delta: 10, Bias: 1, Spread: 1, Observability: 1},
		{Delta: 20, Bias: 2, Spread: 1, Observability: 1, Break: true},
		{Delta: 30, Bias: 10, Spread: 2, Observability: 1},
		{Delta: 40, Bias: 14, Spread: 2, Observability: 1},
	}
	ps := NewPhaseStat(bins)

	stats := NewPhaseStats()
	stats.Add("P", ps)

	// Evaluate the bias curve just either side of the break distance and
	// confirm there's no large jump (the two segments share an
	// intersection point, not necessarily 20 itself, but should be close
	// given these inputs are already near-continuous).
	left := stats.GetBias("P", 19.9)
	right := stats.GetBias("P", 20.1)
	if math.Abs(left-right) > 1.0 {
		t.Fatalf("bias jumps from %g to %g across the break; expected near-continuity", left, right)
	}
}

func TestPhaseStatsFallsBackToDefaults(t *testing.T) {
	stats := NewPhaseStats()
	if got := stats.GetBias("unknown", 30); got != DEFBIAS {
		t.Fatalf("GetBias for unknown phase = %g, want %g", got, DEFBIAS)
	}
	if got := stats.GetSpread("unknown", 30); got != DEFSPREAD {
		t.Fatalf("GetSpread for unknown phase = %g, want %g", got, DEFSPREAD)
	}
	if got := stats.GetObserv("unknown", 30); got != DEFOBSERV {
		t.Fatalf("GetObserv for unknown phase = %g, want %g", got, DEFOBSERV)
	}
}
