package ttcore

import "math"

// threePointDistance estimates the surface-focus distance Δ = -dτ/dp at
// each interior sample of a (p, τ) grid using a centered 3-point
// derivative, with one-sided differences at the endpoints.
func threePointDistance(p, tau []float64) []float64 {
	n := len(p)
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case n == 1:
			x[i] = 0
		case i == 0:
			x[i] = -(tau[1] - tau[0]) / (p[1] - p[0])
		case i == n-1:
			x[i] = -(tau[n-1] - tau[n-2]) / (p[n-1] - p[n-2])
		default:
			x[i] = -(tau[i+1] - tau[i-1]) / (p[i+1] - p[i-1])
		}
	}
	return x
}

// Decimate thins a (p, τ) grid so that the distance implied by a 3-point
// derivative of τ with respect to p between successive kept samples
// never exceeds xMin (§4.6). The grid is scanned from the last sample
// backward; every time a run of samples all fall within xMin of the
// last kept point, the one in the run whose spacing is closest to xMin
// is kept and the rest are dropped. The first and last samples are
// always retained.
func Decimate(p, tau []float64, xMin float64) (pOut, tauOut []float64) {
	n := len(p)
	if n < 3 || xMin <= 0 {
		return append([]float64(nil), p...), append([]float64(nil), tau...)
	}

	x := threePointDistance(p, tau)
	keep := make([]bool, n)
	keep[n-1] = true
	keep[0] = true

	last := n - 1
	i := n - 2
	for i >= 1 {
		bestIdx := -1
		bestDiff := math.Inf(1)
		j := i
		for j >= 1 {
			gap := math.Abs(x[j] - x[last])
			if gap > xMin {
				break
			}
			diff := math.Abs(xMin - gap)
			if diff < bestDiff {
				bestDiff = diff
				bestIdx = j
			}
			j--
		}
		if bestIdx == -1 {
			keep[i] = true
			last = i
			i--
			continue
		}
		keep[bestIdx] = true
		last = bestIdx
		i = bestIdx - 1
	}

	pOut = make([]float64, 0, n)
	tauOut = make([]float64, 0, n)
	for k := 0; k < n; k++ {
		if keep[k] {
			pOut = append(pOut, p[k])
			tauOut = append(tauOut, tau[k])
		}
	}
	return pOut, tauOut
}
