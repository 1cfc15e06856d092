package ttcore

import (
	"math"
	"testing"
)

func monotoneModel() *ModelHalf {
	norm := NewNormalization(1.0/6371.0, 6371.0, 1.0, 6371.0)
	z := make([]float64, 5)
	p := make([]float64, 5)
	depths := []float64{0, 100, 300, 600, 1000}
	for i, d := range depths {
		z[i] = norm.FlatZ(norm.SurfaceRadius - d)
		p[i] = 0.5 - float64(i)*0.05 // strictly decreasing with depth
	}
	return &ModelHalf{Wave: WaveP, Z: z, P: p, UpIndex: []int{0, 1, 2, 3, 4}}
}

func TestModelHalfCheckInvariantPassesOnMonotone(t *testing.T) {
	m := monotoneModel()
	if err := m.CheckInvariant(); err != nil {
		t.Fatalf("CheckInvariant on a strictly decreasing model: %v", err)
	}
}

func TestModelHalfCheckInvariantCatchesViolation(t *testing.T) {
	m := monotoneModel()
	// Force an increase in slowness with depth outside any detectable LVZ
	// span (a single isolated bump that never resumes decreasing).
	m.P[4] = m.P[3] + 1.0
	if err := m.CheckInvariant(); err == nil {
		t.Fatal("expected CheckInvariant to flag a non-LVZ slowness increase")
	}
}

func TestModelHalfLvzSpanDetectsBump(t *testing.T) {
	m := monotoneModel()
	// Introduce a low-velocity zone: P increases then resumes its decrease.
	m.P[2] = m.P[1] + 0.1
	lo, hi, ok := m.lvzSpan(1)
	if !ok {
		t.Fatal("expected an LVZ span to be detected")
	}
	if lo != 1 || hi != 2 {
		t.Fatalf("lvzSpan = (%d, %d), want (1, 2)", lo, hi)
	}
}

func TestModelHalfSlownessAtDepthInterpolates(t *testing.T) {
	norm := NewNormalization(1.0/6371.0, 6371.0, 1.0, 6371.0)
	m := monotoneModel()

	pSource, pMax, err := m.SlownessAtDepth(norm, 200) // halfway between the 100 and 300 samples
	if err != nil {
		t.Fatalf("SlownessAtDepth: %v", err)
	}
	if pSource <= m.P[2] || pSource >= m.P[1] {
		t.Fatalf("pSource = %g, want strictly between P[2]=%g and P[1]=%g", pSource, m.P[2], m.P[1])
	}
	if pMax != pSource {
		t.Fatalf("pMax = %g, want pSource (%g) outside any LVZ", pMax, pSource)
	}
}

func TestModelHalfSlownessAtDepthOutOfRange(t *testing.T) {
	norm := NewNormalization(1.0/6371.0, 6371.0, 1.0, 6371.0)
	m := monotoneModel()
	if _, _, err := m.SlownessAtDepth(norm, 5000); err == nil {
		t.Fatal("expected an out-of-range error for a source depth beyond the model's deepest sample")
	}
}

func TestModelHalfLayersBetweenCoversRequestedSpan(t *testing.T) {
	m := monotoneModel()
	layers := m.LayersBetween(m.Z[0], m.Z[len(m.Z)-1])
	if len(layers) == 0 {
		t.Fatal("expected at least one layer spanning the full model")
	}
	for _, l := range layers {
		if l.ZTop <= l.ZBot {
			t.Fatalf("layer has ZTop=%g <= ZBot=%g, want ZTop > ZBot", l.ZTop, l.ZBot)
		}
		if math.IsNaN(l.PTop) || math.IsNaN(l.PBot) {
			t.Fatalf("layer has a NaN slowness endpoint: %+v", l)
		}
	}
}
