package ttcore

// AuthorType classifies who produced a pick, per §6's author-code table.
type AuthorType int

const (
	AuthorAutomaticNonLocal AuthorType = 1
	AuthorAutomaticLocal    AuthorType = 2
	AuthorAnalystNonLocal   AuthorType = 3
	AuthorAnalystLocal      AuthorType = 4
)

// DefaultAffinity returns the standard starting affinity for an author
// type (§3, §6): automatic picks default to 1.0, analyst picks to 1.5
// (non-local) or 3.0 (local).
func DefaultAffinity(a AuthorType) float64 {
	switch a {
	case AuthorAutomaticNonLocal:
		return 1.0
	case AuthorAutomaticLocal:
		return 1.0
	case AuthorAnalystNonLocal:
		return 1.5
	case AuthorAnalystLocal:
		return 3.0
	default:
		return 1.0
	}
}

// IsAnalyst reports whether a is one of the analyst author types, used
// by phase identification's type-weighting rule (§4.5).
func (a AuthorType) IsAnalyst() bool {
	return a == AuthorAnalystNonLocal || a == AuthorAnalystLocal
}

// Station is a reporting site's location, used to compute delta/azimuth
// against the source (§6).
type Station struct {
	Code        string
	Network     string
	Location    string
	Channel     string
	Point       GeoPoint
	ElevationKm float64
}

// Pick is one observed arrival at a station, carrying both its original
// report and the mutable identification state phase identification
// updates in place (§3).
type Pick struct {
	DBID           string
	Station        Station
	ArrivalTimeSec float64 // epoch seconds
	Quality        float64
	Use            bool
	ObservedPhase  string
	CurrentPhase   string
	Author         AuthorType
	Affinity       float64

	// Identification state, written by phase identification (§4.5).
	IdentificationCode string
	Residual           float64
	TheoreticalTime    float64
	FigureOfMerit      float64

	// phGroup/generic cache the pick's group lookup across consecutive
	// FOM evaluations for the same pick (§4.5, "cancellation").
	phGroup string
	generic bool
}

// BayesianDepth is an external prior on depth (mean, spread km).
type BayesianDepth struct {
	Depth  float64
	Spread float64
}

// Hypocenter is the source location and origin time under estimation.
type Hypocenter struct {
	Point          GeoPoint
	DepthKm        float64
	OriginTimeSec  float64
	IsLocationHeld bool
	IsDepthHeld    bool
	IsDepthAnalyst bool
}

// Event bundles a hypocenter, its bayesian depth prior, and the full
// set of reported picks (§6).
type Event struct {
	Hypocenter    Hypocenter
	Bayesian      BayesianDepth
	UseBayesian   bool
	UseSVD        bool
	IsLocationNew bool
	Picks         []*Pick
}

// Quality summarizes one location result (§8's end-to-end scenario
// fields).
type Quality struct {
	RMS                  float64
	Gap                  float64
	MinimumDistance      float64
	NumberOfUsedStations int
	NumberOfUsedPhases   int
}
