package tables

import (
	"bytes"
	"encoding/binary"

	ttcore "github.com/usgs/traveltime"
)

// section reads one length-prefixed record: a little-endian uint32 byte
// count followed by that many payload bytes, mirroring the teacher's
// header-then-payload record idiom (record.go's DecodeRecordHdr) adapted
// from GSF's big-endian bit-packed header to the .hed format's simpler
// framing (§6).
func section(s Stream) (*bytes.Reader, error) {
	var n uint32
	if err := binary.Read(s, binary.LittleEndian, &n); err != nil {
		return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated section length"}
	}
	buf := make([]byte, n)
	if err := binary.Read(s, binary.LittleEndian, &buf); err != nil {
		return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated section payload"}
	}
	return bytes.NewReader(buf), nil
}

// hedScalars is record (1) of the .hed file: normalization constants,
// surface radius, and the section counts needed to size every later
// read (§6).
type hedScalars struct {
	XNorm, PNorm, TNorm float64
	SurfaceRadius       float64
	NumModelP, NumModelS uint32
	NumUpP, NumUpS       uint32
	NumBranches          uint32
	NumDisc              uint32
}

func readScalars(r *bytes.Reader) (hedScalars, error) {
	var h hedScalars
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, &ttcore.TableIntegrityError{Table: "hed", Msg: "malformed scalar-limits record"}
	}
	return h, nil
}

// branchHeader is one fixed-width entry of record (4): a phase code plus
// the slowness/distance range and grid-index bounds into the shared
// ray-parameter grid of record (5).
type branchHeader struct {
	Code          [8]byte
	SegCode       [8]byte
	WaveSeq       [3]int32
	SignSeg       float64
	CountSeg      int32
	HasLVZ        int32
	P0, P1        float64
	X0, X1        float64
	GridLo, GridHi int32
}

func codeString(b [8]byte) string {
	n := bytes.IndexByte(b[:], 0)
	if n < 0 {
		n = len(b)
	}
	return string(bytes.TrimRight(b[:n], " "))
}

// LoadHed reads the .hed binary header and returns the Normalization,
// both model halves, the two up-going table skeletons (without their
// per-depth τUp/xUp bodies, which come from .tbl), and the branch
// reference list with its spline basis pre-built (§6).
func LoadHed(s Stream) (ttcore.Normalization, *ttcore.ModelHalf, *ttcore.ModelHalf, *ttcore.UpGoingTable, *ttcore.UpGoingTable, []*ttcore.BranchReference, error) {
	zero := ttcore.Normalization{}

	limitsR, err := section(s)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	h, err := readScalars(limitsR)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	norm := ttcore.NewNormalization(h.XNorm, h.PNorm, h.TNorm, h.SurfaceRadius)

	modelR, err := section(s)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	modelP, modelS, err := readModelHalves(modelR, int(h.NumModelP), int(h.NumModelS))
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}

	upGridR, err := section(s)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	upP, upS, err := readUpGrids(upGridR, int(h.NumUpP), int(h.NumUpS))
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}

	branchR, err := section(s)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	headers, err := readBranchHeaders(branchR, int(h.NumBranches))
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}

	gridR, err := section(s)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	pSpec, tauSpec, err := readSharedGrid(gridR)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}

	basisR, err := section(s)
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}
	basis, err := readBasisRows(basisR, len(pSpec))
	if err != nil {
		return zero, nil, nil, nil, nil, nil, err
	}

	branches := make([]*ttcore.BranchReference, len(headers))
	for i, bh := range headers {
		lo, hi := int(bh.GridLo), int(bh.GridHi)
		if lo < 0 || hi > len(pSpec) || lo > hi {
			return zero, nil, nil, nil, nil, nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "branch grid index out of range"}
		}
		p := append([]float64(nil), pSpec[lo:hi]...)
		tau := append([]float64(nil), tauSpec[lo:hi]...)
		var br [5][]float64
		for r := 0; r < 5; r++ {
			br[r] = append([]float64(nil), basis[r][lo:hi]...)
		}
		branches[i] = &ttcore.BranchReference{
			PhaseCode:   codeString(bh.Code),
			SegmentCode: codeString(bh.SegCode),
			WaveSeq:     [3]ttcore.WaveType{ttcore.WaveType(bh.WaveSeq[0]), ttcore.WaveType(bh.WaveSeq[1]), ttcore.WaveType(bh.WaveSeq[2])},
			SignSeg:     bh.SignSeg,
			CountSeg:    int(bh.CountSeg),
			HasLVZ:      bh.HasLVZ != 0,
			P0:          bh.P0, P1: bh.P1,
			X0: bh.X0, X1: bh.X1,
			P: p, Tau: tau,
			Basis: br,
		}
	}

	return norm, modelP, modelS, upP, upS, branches, nil
}

func readModelHalves(r *bytes.Reader, nP, nS int) (*ttcore.ModelHalf, *ttcore.ModelHalf, error) {
	readHalf := func(wave ttcore.WaveType, n int) (*ttcore.ModelHalf, error) {
		z := make([]float64, n)
		p := make([]float64, n)
		idx := make([]int32, n)
		if err := binary.Read(r, binary.LittleEndian, &z); err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated model depths"}
		}
		if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated model slownesses"}
		}
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated model row indices"}
		}
		up := make([]int, n)
		for i, v := range idx {
			up[i] = int(v)
		}
		return &ttcore.ModelHalf{Wave: wave, Z: z, P: p, UpIndex: up}, nil
	}

	mP, err := readHalf(ttcore.WaveP, nP)
	if err != nil {
		return nil, nil, err
	}
	mS, err := readHalf(ttcore.WaveS, nS)
	if err != nil {
		return nil, nil, err
	}
	return mP, mS, nil
}

func readUpGrids(r *bytes.Reader, nP, nS int) (*ttcore.UpGoingTable, *ttcore.UpGoingTable, error) {
	readGrid := func(wave ttcore.WaveType, n int) (*ttcore.UpGoingTable, error) {
		pTauUp := make([]float64, n)
		pXUp := make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, &pTauUp); err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated pTauUp grid"}
		}
		if err := binary.Read(r, binary.LittleEndian, &pXUp); err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated pXUp grid"}
		}
		return &ttcore.UpGoingTable{Wave: wave, PGrid: pTauUp, PEndGrid: pXUp, ShallowKm: 30}, nil
	}
	uP, err := readGrid(ttcore.WaveP, nP)
	if err != nil {
		return nil, nil, err
	}
	uS, err := readGrid(ttcore.WaveS, nS)
	if err != nil {
		return nil, nil, err
	}
	return uP, uS, nil
}

func readBranchHeaders(r *bytes.Reader, n int) ([]branchHeader, error) {
	headers := make([]branchHeader, n)
	for i := range headers {
		if err := binary.Read(r, binary.LittleEndian, &headers[i]); err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated branch header"}
		}
	}
	return headers, nil
}

func readSharedGrid(r *bytes.Reader) ([]float64, []float64, error) {
	remaining := r.Len() / 8 / 2
	p := make([]float64, remaining)
	tau := make([]float64, remaining)
	if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
		return nil, nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated pSpec grid"}
	}
	if err := binary.Read(r, binary.LittleEndian, &tau); err != nil {
		return nil, nil, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated surface-focus tau"}
	}
	return p, tau, nil
}

func readBasisRows(r *bytes.Reader, n int) ([5][]float64, error) {
	var basis [5][]float64
	for row := 0; row < 5; row++ {
		basis[row] = make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, &basis[row]); err != nil {
			return basis, &ttcore.TableIntegrityError{Table: "hed", Msg: "truncated spline basis row"}
		}
	}
	return basis, nil
}
