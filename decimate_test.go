package ttcore

import "testing"

func TestDecimateKeepsEndpoints(t *testing.T) {
	p := []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}
	tau := []float64{5.0, 4.5, 3.8, 2.9, 1.8, 0.5}
	pOut, tauOut := Decimate(p, tau, 10.0)
	if pOut[0] != p[0] || pOut[len(pOut)-1] != p[len(p)-1] {
		t.Fatalf("Decimate dropped an endpoint: got %v", pOut)
	}
	if tauOut[0] != tau[0] || tauOut[len(tauOut)-1] != tau[len(tau)-1] {
		t.Fatalf("Decimate dropped a tau endpoint: got %v", tauOut)
	}
}

func TestDecimateShortGridUnchanged(t *testing.T) {
	p := []float64{0, 0.1}
	tau := []float64{1.0, 0.9}
	pOut, tauOut := Decimate(p, tau, 0.001)
	if len(pOut) != 2 || len(tauOut) != 2 {
		t.Fatalf("a grid with fewer than 3 samples should pass through unchanged, got %v", pOut)
	}
}

func TestDecimateZeroXMinReturnsCopy(t *testing.T) {
	p := []float64{0, 0.1, 0.2}
	tau := []float64{1.0, 0.9, 0.7}
	pOut, _ := Decimate(p, tau, 0)
	if len(pOut) != len(p) {
		t.Fatalf("xMin <= 0 should return every sample unchanged, got %d of %d", len(pOut), len(p))
	}
}

func TestDecimateReducesDenseGrid(t *testing.T) {
	// A finely sampled, smoothly varying tau(p) should be reducible once
	// xMin is set well above the grid's native spacing.
	n := 50
	p := make([]float64, n)
	tau := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = float64(i) * 0.01
		tau[i] = 10.0 - 0.5*p[i]*p[i]
	}
	pOut, tauOut := Decimate(p, tau, 50.0)
	if len(pOut) >= n {
		t.Fatalf("Decimate with a large xMin should drop samples, kept %d of %d", len(pOut), n)
	}
	if len(pOut) != len(tauOut) {
		t.Fatalf("pOut/tauOut length mismatch: %d vs %d", len(pOut), len(tauOut))
	}
}

func TestThreePointDistanceSingleSample(t *testing.T) {
	x := threePointDistance([]float64{0.1}, []float64{1.0})
	if len(x) != 1 || x[0] != 0 {
		t.Fatalf("threePointDistance with one sample = %v, want [0]", x)
	}
}
