package ttcore

import "testing"

func TestBuildBasisShortGrid(t *testing.T) {
	basis := BuildBasis([]float64{0.1}, 0.5)
	for r := 0; r < 5; r++ {
		if len(basis[r]) != 1 {
			t.Fatalf("row %d: len = %d, want 1", r, len(basis[r]))
		}
	}
}

func TestBuildBasisEndpointsFinite(t *testing.T) {
	pGrid := []float64{0.0, 0.1, 0.2, 0.3, 0.4}
	pEnd := 0.5
	basis := BuildBasis(pGrid, pEnd)

	for r := 0; r < 5; r++ {
		if len(basis[r]) != len(pGrid) {
			t.Fatalf("row %d: len = %d, want %d", r, len(basis[r]), len(pGrid))
		}
	}

	// The two endpoint columns carry one-sided derivative weights and
	// must never be zero for a well-formed grid (§4.3).
	if basis[1][0] == 0 {
		t.Fatal("basis[1][0] must be non-zero")
	}
	if basis[0][len(pGrid)-1] == 0 {
		t.Fatal("basis[0][n-1] must be non-zero")
	}
}

func TestBuildBasisInteriorRowsSumToHalf(t *testing.T) {
	// Rows 0/1 are hPrev and hNext over 2*(hPrev+hNext), the off-diagonal
	// terms of a middle row whose diagonal is 1, so they sum to 1/2.
	pGrid := []float64{0.0, 0.1, 0.2, 0.3, 0.4}
	basis := BuildBasis(pGrid, 0.5)
	for i := 1; i < len(pGrid)-1; i++ {
		sum := basis[0][i] + basis[1][i]
		if sum < 0.499 || sum > 0.501 {
			t.Fatalf("row 0+1 at interior node %d sums to %g, want ~0.5", i, sum)
		}
	}
}
