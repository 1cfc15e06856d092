package ttcore

import "math"

// BuildBasis constructs the 5-row spline basis used by the branch engine
// to interpolate τ(p) and recover distance (§4.3). Each column i holds
// the coefficients of five local cubic functions evaluated at p_i. The
// construction works in u = sqrt(pEnd-p) rather than p directly so that
// interpolation stays well conditioned near p = pEnd, where Δ = -dτ/dp
// is singular for a surface-focus ray. The basis depends only on the
// grid, never on the sampled τ values.
func BuildBasis(pGrid []float64, pEnd float64) (basis [5][]float64) {
	n := len(pGrid)
	for r := 0; r < 5; r++ {
		basis[r] = make([]float64, n)
	}
	if n < 2 {
		return basis
	}

	u := make([]float64, n)
	for i, p := range pGrid {
		u[i] = math.Sqrt(math.Max(pEnd-p, 0))
	}

	// h[i] = u[i] - u[i+1], the (positive) spacing of the i'th interval
	// in the transformed coordinate; u decreases monotonically toward
	// the branch end where u[n-1] == 0.
	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = u[i] - u[i+1]
	}

	for i := 1; i < n-1; i++ {
		hPrev, hNext := h[i-1], h[i]
		denom := 2 * (hPrev + hNext)
		if denom < DTOL {
			denom = DTOL
		}
		// Rows 0/1: the off-diagonal coefficients of the tridiagonal
		// τ''-continuity system (§4.3): basis[0][i]*g[i-1] + g[i] +
		// basis[1][i]*g[i+1] on the middle rows of A.
		basis[0][i] = hPrev / denom
		basis[1][i] = hNext / denom

		// Rows 2-4: the weights that reconstruct an interior distance
		// sample from the solved spline coefficients g, averaging the
		// left- and right-piece first-derivative estimates of the
		// cubic segments meeting at node i.
		basis[2][i] = hPrev / 12
		basis[3][i] = (hPrev - hNext) / 6
		basis[4][i] = -hNext / 12
	}

	// The two endpoint columns carry the one-sided derivative weights
	// used by the branch engine's top/bottom rows of A (§4.3); the
	// endpoints themselves are given directly as xRange, not solved.
	if n >= 2 {
		basis[1][0] = 1.0 / h[0]
		basis[4][0] = -1.0 / (2 * h[0])
		basis[0][n-1] = 1.0 / h[n-2]
		basis[2][n-1] = 1.0 / (2 * h[n-2])
	}

	return basis
}
