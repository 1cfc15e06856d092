package tables

import (
	"bufio"
	"io"
	"strings"

	ttcore "github.com/usgs/traveltime"
)

// LoadPhaseGroups parses phgrp.dat: tokens separated by spaces/colons,
// `group: ph1 ph2 ...` lines terminated by a trailing "-" delimiter
// (§6). The four singleton categorical groups (regional, depth,
// downWeight, canUse) are recognized by name and routed to the matching
// flag setter instead of AddGroup; remaining groups are paired
// primary/auxiliary by declaration order (P then PKP, etc.), matching
// §4.4's "groups come in primary/auxiliary pairs".
func LoadPhaseGroups(r io.Reader) (*ttcore.PhaseGroups, error) {
	groups := ttcore.NewPhaseGroups()
	scanner := bufio.NewScanner(r)

	var pendingPrimary string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(strings.TrimSpace(line), "-")
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		codes := strings.Fields(parts[1])

		switch name {
		case "regional":
			for _, c := range codes {
				groups.MarkRegional(c)
			}
			continue
		case "depth":
			for _, c := range codes {
				groups.MarkDepth(c)
			}
			continue
		case "downWeight":
			for _, c := range codes {
				groups.MarkDownWeight(c)
			}
			continue
		case "canUse":
			for _, c := range codes {
				groups.MarkCanUse(c)
			}
			continue
		}

		groups.AddGroup(name, codes)
		if pendingPrimary == "" {
			pendingPrimary = name
		} else {
			groups.Pair(pendingPrimary, name)
			pendingPrimary = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ttcore.TableIntegrityError{Table: "phgrp", Msg: err.Error()}
	}
	return groups, nil
}
