package tables

import (
	"encoding/binary"

	ttcore "github.com/usgs/traveltime"
)

// LoadTbl reads the .tbl file: for every stored source depth, a
// fixed-size P record followed by an S record, each carrying that
// depth's full τUp(pGrid) and xUp(pEndGrid) vectors (§6). It fills in
// the Depths/TauUp/XUp fields of the two up-going table skeletons built
// by LoadHed.
//
// The record size in bytes is taken from each table's grid lengths
// rather than re-derived from a stored record-length field: the legacy
// format's Fortran unformatted-record markers required a x4 byte-count
// correction that the original source applied ad hoc at read time (§9
// design note); here the record shape is simply computed from the
// already-known grid sizes and forgotten about thereafter.
func LoadTbl(s Stream, upP, upS *ttcore.UpGoingTable) error {
	nTauP, nXP := len(upP.PGrid), len(upP.PEndGrid)
	nTauS, nXS := len(upS.PGrid), len(upS.PEndGrid)

	var depths []float64
	var tauP, xP, tauS, xS [][]float64

	for {
		var depth float64
		if err := binary.Read(s, binary.LittleEndian, &depth); err != nil {
			break // clean EOF at a record boundary ends the table
		}

		rowTauP := make([]float64, nTauP)
		rowXP := make([]float64, nXP)
		if err := binary.Read(s, binary.LittleEndian, &rowTauP); err != nil {
			return &ttcore.TableIntegrityError{Table: "tbl", Msg: "truncated P tauUp row"}
		}
		if err := binary.Read(s, binary.LittleEndian, &rowXP); err != nil {
			return &ttcore.TableIntegrityError{Table: "tbl", Msg: "truncated P xUp row"}
		}

		var depthS float64
		if err := binary.Read(s, binary.LittleEndian, &depthS); err != nil {
			return &ttcore.TableIntegrityError{Table: "tbl", Msg: "missing paired S record"}
		}
		rowTauS := make([]float64, nTauS)
		rowXS := make([]float64, nXS)
		if err := binary.Read(s, binary.LittleEndian, &rowTauS); err != nil {
			return &ttcore.TableIntegrityError{Table: "tbl", Msg: "truncated S tauUp row"}
		}
		if err := binary.Read(s, binary.LittleEndian, &rowXS); err != nil {
			return &ttcore.TableIntegrityError{Table: "tbl", Msg: "truncated S xUp row"}
		}

		depths = append(depths, depth)
		tauP = append(tauP, rowTauP)
		xP = append(xP, rowXP)
		tauS = append(tauS, rowTauS)
		xS = append(xS, rowXS)
	}

	if len(depths) == 0 {
		return &ttcore.TableIntegrityError{Table: "tbl", Msg: "no source-depth records found"}
	}

	upP.Depths, upP.TauUp, upP.XUp = depths, tauP, xP
	upS.Depths, upS.TauUp, upS.XUp = depths, tauS, xS
	return nil
}
