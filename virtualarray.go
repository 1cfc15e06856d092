package ttcore

import "math"

// VirtualArray is the capability a bilinear interpolator needs from one
// axis: map a value to a fractional index and back (§9 design note). Any
// concrete axis — evenly-spaced longitude, evenly-spaced latitude, the
// explicit EllipDels distance grid, or an explicit depth array — can
// satisfy it without the interpolator knowing which.
type VirtualArray interface {
	// Index returns the fractional position of v within the array, for
	// use as a bilinear interpolation weight.
	Index(v float64) float64
	// Value returns the array's value at integer index i.
	Value(i int) float64
	// Len returns the number of samples.
	Len() int
}

// EvenlySpaced is a VirtualArray over a uniform grid given by its first
// value and step; used for longitude and latitude axes on the
// topography grid.
type EvenlySpaced struct {
	First, Step float64
	N           int
}

func (e EvenlySpaced) Index(v float64) float64 { return (v - e.First) / e.Step }
func (e EvenlySpaced) Value(i int) float64      { return e.First + float64(i)*e.Step }
func (e EvenlySpaced) Len() int                 { return e.N }

// ExplicitArray is a VirtualArray over an arbitrary ascending list of
// samples, located by linear interpolation between bracketing indices;
// used for the fixed 6-point ellipticity depth grid.
type ExplicitArray struct {
	Values []float64
}

func (a ExplicitArray) Index(v float64) float64 {
	n := len(a.Values)
	if n == 0 {
		return 0
	}
	if v <= a.Values[0] {
		return 0
	}
	if v >= a.Values[n-1] {
		return float64(n - 1)
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if a.Values[mid] <= v {
			lo = mid
		} else {
			hi = mid
		}
	}
	frac := (v - a.Values[lo]) / (a.Values[hi] - a.Values[lo])
	return float64(lo) + frac
}

func (a ExplicitArray) Value(i int) float64 { return a.Values[i] }
func (a ExplicitArray) Len() int            { return len(a.Values) }

// EllipDels returns one ellipticity phase's own 5deg-spaced surface-focus
// distance axis, starting at that phase's deltaMin and holding n rows
// (§3, §4.4). Each phase table spans only its own (deltaMin, deltaMax)
// range, not the full 0..180deg — the spacing is implicit in the table
// format, so only the first row's distance and the row count are needed
// to place the rest.
func EllipDels(deltaMin float64, n int) VirtualArray {
	return EvenlySpaced{First: deltaMin, Step: 5, N: n}
}

// Bilinear2 interpolates a row-major grid[row][col] over axes (rows,
// cols), clamping fractional indices to the grid's bounds.
func Bilinear2(grid [][]float64, rows, cols VirtualArray, rowV, colV float64) float64 {
	ri := clampIndex(rows.Index(rowV), rows.Len())
	ci := clampIndex(cols.Index(colV), cols.Len())
	r0 := int(math.Floor(ri))
	c0 := int(math.Floor(ci))
	r1 := minInt(r0+1, rows.Len()-1)
	c1 := minInt(c0+1, cols.Len()-1)
	fr := ri - float64(r0)
	fc := ci - float64(c0)

	v00 := grid[r0][c0]
	v01 := grid[r0][c1]
	v10 := grid[r1][c0]
	v11 := grid[r1][c1]

	top := v00 + fc*(v01-v00)
	bot := v10 + fc*(v11-v10)
	return top + fr*(bot-top)
}

func clampIndex(i float64, n int) float64 {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i > float64(n-1) {
		return float64(n - 1)
	}
	return i
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
