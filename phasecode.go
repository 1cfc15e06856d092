package ttcore

import "strings"

// knownDecorations lists the branch-family suffixes this engine knows how
// to substitute between (§9 design note: phase-code arithmetic goes
// through one structured helper, not raw string splicing).
var knownDecorations = []string{"ab", "bc", "ac", "df", "diff"}

// PhaseCode is the structured (segment, decoration) view of a phase
// string such as "PKPab" -> {Segment: "PKP", Decoration: "ab"}. Codes
// with no recognized decoration keep the whole string as Segment.
type PhaseCode struct {
	Segment    string
	Decoration string
}

// ParsePhaseCode splits a raw phase code into its segment and (possibly
// empty) decoration.
func ParsePhaseCode(code string) PhaseCode {
	for _, dec := range knownDecorations {
		if strings.HasSuffix(code, dec) {
			return PhaseCode{Segment: strings.TrimSuffix(code, dec), Decoration: dec}
		}
	}
	return PhaseCode{Segment: code}
}

// String reassembles the phase code.
func (pc PhaseCode) String() string {
	return pc.Segment + pc.Decoration
}

// WithDecoration returns a copy of pc carrying a different decoration,
// e.g. relabeling "PKPab" to "PKPbc" when an emitted arrival's ray
// parameter falls below the branch's caustic slowness (§4.3).
func (pc PhaseCode) WithDecoration(dec string) PhaseCode {
	return PhaseCode{Segment: pc.Segment, Decoration: dec}
}

// HasDecoration reports whether code carries the given suffix.
func HasDecoration(code, dec string) bool {
	return strings.HasSuffix(code, dec)
}

// RelabelCaustic implements the "ab" -> "bc" relabeling rule: if code
// carries the "ab" decoration, return the corresponding "bc" code and
// true; otherwise return code unchanged and false.
func RelabelCaustic(code string) (string, bool) {
	pc := ParsePhaseCode(code)
	if pc.Decoration != "ab" {
		return code, false
	}
	return pc.WithDecoration("bc").String(), true
}
