// Package topo reads the Fortran-unformatted ETOPObase.smth bathymetry/
// elevation grid and exposes it through the ttcore.VirtualArray bilinear
// interpolation capability (§4.8, §9). Grounded on the teacher's
// columnar-array-of-structs table idiom (svp.go) adapted from a
// variable-length sound-velocity profile to a fixed dense short-integer
// grid, reusing the tables package's VFS stream helper for the binary
// read.
package topo

import (
	"encoding/binary"

	ttcore "github.com/usgs/traveltime"
	"github.com/usgs/traveltime/tables"
)

const (
	gridCols = 1080 // longitude samples, 1/3 degree spacing over 360 degrees
	gridRows = 540  // latitude samples, 1/3 degree spacing over 180 degrees

	lonStep = 360.0 / float64(gridCols)
	latStep = 180.0 / float64(gridRows)
)

// Grid is the loaded elevation surface plus the two evenly spaced axes
// that locate a (lat, lon) pair within it.
type Grid struct {
	elevationM [][]float64 // [row][col], row 0 at latitude +90
	Lon        ttcore.VirtualArray
	Lat        ttcore.VirtualArray
}

// Load reads a 1080x540 grid of big-endian int16 elevation samples
// (meters) from a Fortran-unformatted file, framed the same
// length-prefixed way as the model tables (tables.OpenVFS).
func Load(uri, configURI string) (*Grid, error) {
	stream, cleanup, err := tables.OpenVFS(uri, configURI)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	raw := make([]int16, gridRows*gridCols)
	if err := binary.Read(stream, binary.BigEndian, raw); err != nil {
		return nil, &ttcore.TableIntegrityError{Table: "topo", Msg: "short read: " + err.Error()}
	}

	elev := make([][]float64, gridRows)
	for r := 0; r < gridRows; r++ {
		row := make([]float64, gridCols)
		for c := 0; c < gridCols; c++ {
			row[c] = float64(raw[r*gridCols+c])
		}
		elev[r] = row
	}

	return &Grid{
		elevationM: elev,
		Lon:        ttcore.EvenlySpaced{First: -180, Step: lonStep, N: gridCols},
		Lat:        ttcore.EvenlySpaced{First: -90, Step: latStep, N: gridRows},
	}, nil
}

// ElevationM returns the bilinearly interpolated elevation, in meters,
// at the given geographic latitude/longitude (§4.8).
func (g *Grid) ElevationM(latDeg, lonDeg float64) float64 {
	for lonDeg < -180 {
		lonDeg += 360
	}
	for lonDeg >= 180 {
		lonDeg -= 360
	}
	return ttcore.Bilinear2(g.elevationM, g.Lat, g.Lon, latDeg, lonDeg)
}
