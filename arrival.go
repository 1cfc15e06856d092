package ttcore

// ArrivalFlags carries the diffracted/regional/down-weight/depth-phase/
// usable status of a theoretical arrival, sourced from the phase-flags
// singleton groups of §4.4.
type ArrivalFlags struct {
	Diffracted bool
	Regional   bool
	DownWeight bool
	DepthPhase bool
	Usable     bool
}

// Arrival is one theoretical arrival returned by Volume.GetTT (§3).
type Arrival struct {
	PhaseCode string
	Time      float64 // seconds
	DTdD      float64 // s/deg
	DTdZ      float64 // s/km
	DXdP      float64 // deg*s
	Spread    float64
	Observability float64
	Flags     ArrivalFlags
}
