package ttcore

import (
	"math"
	"testing"
)

func TestProbPeaksAtZeroResidual(t *testing.T) {
	if got := prob(0, 1.0); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("prob(0, spread) = %g, want 1.0", got)
	}
	if got := prob(10, 1.0); got >= 1e-3 {
		t.Fatalf("prob(10, 1.0) = %g, want near 0", got)
	}
}

func TestProbFloorsSpread(t *testing.T) {
	// A zero spread must not divide by zero.
	got := prob(0, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("prob with zero spread = %v, want a finite value", got)
	}
}

func TestIsPType(t *testing.T) {
	cases := map[string]bool{"P": true, "Pn": true, "pP": true, "S": false, "ScS": false, "": false}
	for code, want := range cases {
		if got := isPType(code); got != want {
			t.Errorf("isPType(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestIdentifyPickChoosesClosestTimeMatch(t *testing.T) {
	groups := NewPhaseGroups()
	groups.AddGroup("P", []string{"P"})

	pick := &Pick{ObservedPhase: "P", ArrivalTimeSec: 100.0, Affinity: 1.0}

	theories := []TheoreticalArrival{
		NewTheoreticalArrival(Arrival{PhaseCode: "P", Time: 99.8, Spread: 1.0, Observability: 1.0}, groups),
		NewTheoreticalArrival(Arrival{PhaseCode: "P", Time: 150.0, Spread: 1.0, Observability: 1.0}, groups),
	}

	idx, fom := IdentifyPick(pick, theories, groups, false)
	if idx != 0 {
		t.Fatalf("IdentifyPick chose index %d, want 0 (closer in time)", idx)
	}
	if fom <= 0 {
		t.Fatalf("winning figure of merit = %g, want > 0", fom)
	}
	if pick.IdentificationCode != "P" {
		t.Fatalf("pick.IdentificationCode = %q, want \"P\"", pick.IdentificationCode)
	}
}

func TestIdentifyPickEmptyTheories(t *testing.T) {
	groups := NewPhaseGroups()
	pick := &Pick{ObservedPhase: "P", ArrivalTimeSec: 100.0}
	idx, _ := IdentifyPick(pick, nil, groups, false)
	if idx != -1 {
		t.Fatalf("IdentifyPick with no theories returned %d, want -1", idx)
	}
}

func TestResetCacheClearsGroupLookup(t *testing.T) {
	groups := NewPhaseGroups()
	pick := &Pick{ObservedPhase: "P"}
	_, _ = IdentifyPick(pick, nil, groups, false)
	if pick.phGroup == "" {
		t.Fatal("phGroup should be cached after the first IdentifyPick call")
	}
	pick.ResetCache()
	if pick.phGroup != "" {
		t.Fatal("ResetCache should clear the cached phGroup")
	}
}
