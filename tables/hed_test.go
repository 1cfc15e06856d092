package tables

import (
	"bytes"
	"encoding/binary"
	"testing"

	ttcore "github.com/usgs/traveltime"
)

// buildSection wraps a fixed-size payload with the little-endian uint32
// length prefix LoadHed expects, mirroring section()'s own framing.
func buildSection(t *testing.T, write func(buf *bytes.Buffer)) []byte {
	t.Helper()
	var payload bytes.Buffer
	write(&payload)

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, uint32(payload.Len())); err != nil {
		t.Fatalf("writing section length: %v", err)
	}
	out.Write(payload.Bytes())
	return out.Bytes()
}

// buildHed assembles a minimal but structurally complete .hed byte
// stream: one P-wave model sample, one P up-going sample, and one
// single-point branch over a one-entry shared grid.
func buildHed(t *testing.T) []byte {
	t.Helper()
	var all bytes.Buffer

	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		binary.Write(buf, binary.LittleEndian, hedScalars{
			XNorm: 1.0 / 6371.0, PNorm: 6371.0, TNorm: 1.0,
			SurfaceRadius: 6371.0,
			NumModelP:     1, NumModelS: 0,
			NumUpP: 1, NumUpS: 0,
			NumBranches: 1,
			NumDisc:     0,
		})
	}))

	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		// P model: Z, P, UpIndex, each length 1.
		binary.Write(buf, binary.LittleEndian, []float64{10.0})
		binary.Write(buf, binary.LittleEndian, []float64{0.05})
		binary.Write(buf, binary.LittleEndian, []int32{0})
		// S model: all zero-length, nothing to write.
	}))

	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		// P up-going grid: pTauUp, pXUp, each length 1.
		binary.Write(buf, binary.LittleEndian, []float64{1.5})
		binary.Write(buf, binary.LittleEndian, []float64{2.5})
	}))

	var code, segCode [8]byte
	copy(code[:], "P")
	copy(segCode[:], "P")
	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		binary.Write(buf, binary.LittleEndian, branchHeader{
			Code: code, SegCode: segCode,
			WaveSeq:  [3]int32{int32(ttcore.WaveP), int32(ttcore.WaveP), int32(ttcore.WaveP)},
			SignSeg:  1,
			CountSeg: 1,
			HasLVZ:   0,
			P0: 0.05, P1: 0.05,
			X0: 10, X1: 20,
			GridLo: 0, GridHi: 1,
		})
	}))

	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		// Shared grid: pSpec, tauSpec, each length 1 (remaining = len/8/2).
		binary.Write(buf, binary.LittleEndian, []float64{0.05})
		binary.Write(buf, binary.LittleEndian, []float64{12.3})
	}))

	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		for row := 0; row < 5; row++ {
			binary.Write(buf, binary.LittleEndian, []float64{0.2})
		}
	}))

	return all.Bytes()
}

func TestLoadHedParsesMinimalStream(t *testing.T) {
	raw := buildHed(t)
	norm, modelP, modelS, upP, upS, branches, err := LoadHed(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadHed: %v", err)
	}

	if norm.SurfaceRadius != 6371.0 {
		t.Fatalf("norm.SurfaceRadius = %g, want 6371.0", norm.SurfaceRadius)
	}
	if norm.VNorm != norm.XNorm*norm.PNorm {
		t.Fatalf("norm.VNorm = %g, want XNorm*PNorm", norm.VNorm)
	}

	if len(modelP.Z) != 1 || modelP.Z[0] != 10.0 {
		t.Fatalf("modelP.Z = %v, want [10.0]", modelP.Z)
	}
	if len(modelS.Z) != 0 {
		t.Fatalf("modelS.Z = %v, want empty", modelS.Z)
	}

	if len(upP.PGrid) != 1 || upP.PGrid[0] != 1.5 {
		t.Fatalf("upP.PGrid = %v, want [1.5]", upP.PGrid)
	}
	if len(upS.PGrid) != 0 {
		t.Fatalf("upS.PGrid = %v, want empty", upS.PGrid)
	}

	if len(branches) != 1 {
		t.Fatalf("len(branches) = %d, want 1", len(branches))
	}
	br := branches[0]
	if br.PhaseCode != "P" {
		t.Fatalf("branches[0].PhaseCode = %q, want P", br.PhaseCode)
	}
	if len(br.P) != 1 || br.P[0] != 0.05 {
		t.Fatalf("branches[0].P = %v, want [0.05]", br.P)
	}
	if len(br.Tau) != 1 || br.Tau[0] != 12.3 {
		t.Fatalf("branches[0].Tau = %v, want [12.3]", br.Tau)
	}
	if br.Basis[2][0] != 0.2 {
		t.Fatalf("branches[0].Basis[2][0] = %g, want 0.2", br.Basis[2][0])
	}
}

func TestLoadHedRejectsOutOfRangeGridIndex(t *testing.T) {
	var all bytes.Buffer

	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		binary.Write(buf, binary.LittleEndian, hedScalars{
			XNorm: 1, PNorm: 1, TNorm: 1, SurfaceRadius: 6371,
			NumModelP: 0, NumModelS: 0, NumUpP: 0, NumUpS: 0,
			NumBranches: 1, NumDisc: 0,
		})
	}))
	all.Write(buildSection(t, func(buf *bytes.Buffer) {}))
	all.Write(buildSection(t, func(buf *bytes.Buffer) {}))
	var code, segCode [8]byte
	copy(code[:], "P")
	all.Write(buildSection(t, func(buf *bytes.Buffer) {
		binary.Write(buf, binary.LittleEndian, branchHeader{
			Code: code, SegCode: segCode,
			GridLo: 0, GridHi: 5, // out of range: shared grid below is empty
		})
	}))
	all.Write(buildSection(t, func(buf *bytes.Buffer) {}))
	all.Write(buildSection(t, func(buf *bytes.Buffer) {}))

	_, _, _, _, _, _, err := LoadHed(bytes.NewReader(all.Bytes()))
	if err == nil {
		t.Fatal("expected an out-of-range grid index error")
	}
}

func TestCodeStringTrimsNulAndSpace(t *testing.T) {
	var b [8]byte
	copy(b[:], "PKPdf ")
	if got := codeString(b); got != "PKPdf" {
		t.Fatalf("codeString = %q, want PKPdf", got)
	}
}
