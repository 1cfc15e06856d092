package tables

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	ttcore "github.com/usgs/traveltime"
)

// LoadPhaseStats parses ttstats.lis: one phase block at a time, a header
// line `code minDelta maxDelta` followed by triples `delta residual
// spread observability`, each optionally suffixed by one or more `*`
// break-flag markers (§6).
func LoadPhaseStats(r io.Reader) (*ttcore.PhaseStats, error) {
	stats := ttcore.NewPhaseStats()
	scanner := bufio.NewScanner(r)

	var code string
	var bins []ttcore.StatBin

	flush := func() {
		if code != "" && len(bins) > 0 {
			stats.Add(code, ttcore.NewPhaseStat(bins))
		}
		bins = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		if isHeaderLine(fields) {
			flush()
			code = fields[0]
			continue
		}

		if len(fields) < 4 {
			continue
		}
		brk := strings.Contains(line, "*")
		delta, e1 := strconv.ParseFloat(fields[0], 64)
		bias, e2 := strconv.ParseFloat(fields[1], 64)
		spread, e3 := strconv.ParseFloat(trimStar(fields[2]), 64)
		observ, e4 := strconv.ParseFloat(trimStar(fields[3]), 64)
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			continue
		}
		bins = append(bins, ttcore.StatBin{Delta: delta, Bias: bias, Spread: spread, Observability: observ, Break: brk})
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, &ttcore.TableIntegrityError{Table: "ttstats", Msg: err.Error()}
	}
	return stats, nil
}

// isHeaderLine distinguishes a `code minDelta maxDelta` block header
// from a data triple by checking whether the first token parses as a
// number: phase codes never do.
func isHeaderLine(fields []string) bool {
	if len(fields) != 3 {
		return false
	}
	_, err := strconv.ParseFloat(fields[0], 64)
	return err != nil
}

func trimStar(tok string) string {
	return strings.TrimRight(tok, "*")
}
