package tables

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	ttcore "github.com/usgs/traveltime"
)

// ellipDepths is the fixed 6-point depth grid every ellipticity phase
// block is tabulated over (§3, §4.4).
var ellipDepths = []float64{0, 100, 200, 300, 500, 700}

// LoadEllipticity parses tau.table: one phase block per header line,
// then nDelta rows each holding a distance followed by three 6-element
// tau vectors (t0, t1, t2) at the fixed depth grid (§6).
func LoadEllipticity(r io.Reader) (*ttcore.EllipTable, error) {
	table := ttcore.NewEllipTable()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		header := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(header) == 0 {
			continue
		}
		code := header[0]
		nDelta, err := strconv.Atoi(header[1])
		if err != nil {
			return nil, &ttcore.TableIntegrityError{Table: "tau.table", Msg: "malformed phase block header"}
		}

		phase := &ttcore.EllipPhase{
			Depths: append([]float64(nil), ellipDepths...),
			T0:     make([][]float64, nDelta),
			T1:     make([][]float64, nDelta),
			T2:     make([][]float64, nDelta),
		}

		for i := 0; i < nDelta; i++ {
			if !scanner.Scan() {
				return nil, &ttcore.TableIntegrityError{Table: "tau.table", Msg: "truncated distance row"}
			}
			fields := strings.Fields(strings.TrimSpace(scanner.Text()))
			if len(fields) < 1+3*len(ellipDepths) {
				return nil, &ttcore.TableIntegrityError{Table: "tau.table", Msg: "short distance row"}
			}
			// fields[0] is the row's own distance; the block's distance
			// axis is this phase's own 5deg grid starting at the first
			// row, which may cover any (deltaMin, deltaMax) sub-range of
			// 0..180deg rather than the full range.
			dist, derr := strconv.ParseFloat(fields[0], 64)
			if derr != nil {
				return nil, &ttcore.TableIntegrityError{Table: "tau.table", Msg: "non-numeric distance"}
			}
			if i == 0 {
				phase.DeltaMin = dist
			}
			vals := make([]float64, len(fields)-1)
			for j, f := range fields[1:] {
				v, perr := strconv.ParseFloat(f, 64)
				if perr != nil {
					return nil, &ttcore.TableIntegrityError{Table: "tau.table", Msg: "non-numeric tau value"}
				}
				vals[j] = v
			}
			n := len(ellipDepths)
			phase.T0[i] = append([]float64(nil), vals[0:n]...)
			phase.T1[i] = append([]float64(nil), vals[n:2*n]...)
			phase.T2[i] = append([]float64(nil), vals[2*n:3*n]...)
		}

		table.Add(code, phase)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ttcore.TableIntegrityError{Table: "tau.table", Msg: err.Error()}
	}
	return table, nil
}
