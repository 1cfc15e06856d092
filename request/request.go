// Package request implements the two external location-request formats
// named in §6: the plain-text whitespace-separated event file, and the
// programmatic JSON-shaped request used by the service façade.
// WriteJSON is grounded on the teacher's WriteJson
// (encode/json.go), generalized from writing decoded GSF metadata to
// writing a location response.
package request

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/soniakeys/meeus/v3/julian"

	ttcore "github.com/usgs/traveltime"
)

// parseOriginTime accepts either a raw epoch-seconds float or the
// "yyyy/ddd hh:mm:ss" day-of-year form used elsewhere in the ecosystem
// for reference timestamps, returning epoch seconds either way.
func parseOriginTime(field, clock string) (float64, error) {
	if clock == "" {
		secs, err := strconv.ParseFloat(field, 64)
		return secs, err
	}

	parts := strings.SplitN(field, "/", 2)
	if len(parts) != 2 {
		return 0, &ttcore.TableIntegrityError{Table: "event", Msg: "malformed origin date " + field}
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	doy, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	month, day := julian.DayOfYearToCalendar(doy, julian.LeapYearGregorian(year))

	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, &ttcore.TableIntegrityError{Table: "event", Msg: "malformed origin clock " + clock}
	}
	hour, _ := strconv.Atoi(hms[0])
	min, _ := strconv.Atoi(hms[1])
	sec, _ := strconv.Atoi(hms[2])

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return float64(t.Unix()), nil
}

// PickInput is one pick record of the programmatic JSON request (§6).
type PickInput struct {
	ID             string  `json:"ID"`
	Site           string  `json:"Site"`
	Source         string  `json:"Source"`
	Time           float64 `json:"Time"`
	Affinity       float64 `json:"Affinity"`
	Quality        float64 `json:"Quality"`
	Use            bool    `json:"Use"`
	CurrentPhase   string  `json:"CurrentPhase"`
	ObservedPhase  string  `json:"ObservedPhase"`

	// Derived output fields, populated by the location engine.
	IdentificationCode string  `json:"IdentificationCode"`
	Residual           float64 `json:"Residual"`
	Distance           float64 `json:"Distance"`
	Azimuth            float64 `json:"Azimuth"`
	Weight             float64 `json:"Weight"`
	Importance         float64 `json:"Importance"`
}

// LocationRequest is the JSON-shaped programmatic request (§6).
type LocationRequest struct {
	SourceLatitude   float64 `json:"SourceLatitude"`
	SourceLongitude  float64 `json:"SourceLongitude"`
	SourceDepth      float64 `json:"SourceDepth"`
	SourceOriginTime float64 `json:"SourceOriginTime"`

	IsLocationNew   bool `json:"IsLocationNew"`
	IsLocationHeld  bool `json:"IsLocationHeld"`
	IsDepthHeld     bool `json:"IsDepthHeld"`
	IsBayesianDepth bool `json:"IsBayesianDepth"`

	BayesianDepth  float64 `json:"BayesianDepth"`
	BayesianSpread float64 `json:"BayesianSpread"`

	UseSVD bool `json:"UseSVD"`

	InputData []PickInput `json:"InputData"`
}

// LocationResponse is the JSON-shaped result: the resolved hypocenter,
// overall quality, and every pick's updated derived fields (§6, §8).
type LocationResponse struct {
	Hypocenter ttcore.Hypocenter `json:"Hypocenter"`
	Quality    ttcore.Quality    `json:"Quality"`
	InputData  []PickInput       `json:"InputData"`
}

// ParseJSON decodes a LocationRequest from r.
func ParseJSON(r io.Reader) (*LocationRequest, error) {
	var req LocationRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ToEvent converts a JSON request into the ttcore.Event the location
// engine consumes.
func (req *LocationRequest) ToEvent() *ttcore.Event {
	ev := &ttcore.Event{
		Hypocenter: ttcore.Hypocenter{
			Point:          ttcore.GeoPoint{LatDeg: req.SourceLatitude, LonDeg: req.SourceLongitude},
			DepthKm:        req.SourceDepth,
			OriginTimeSec:  req.SourceOriginTime,
			IsLocationHeld: req.IsLocationHeld,
			IsDepthHeld:    req.IsDepthHeld,
		},
		Bayesian:      ttcore.BayesianDepth{Depth: req.BayesianDepth, Spread: req.BayesianSpread},
		UseBayesian:   req.IsBayesianDepth,
		UseSVD:        req.UseSVD,
		IsLocationNew: req.IsLocationNew,
	}
	for _, in := range req.InputData {
		ev.Picks = append(ev.Picks, &ttcore.Pick{
			DBID:          in.ID,
			Station:       ttcore.Station{Code: in.Site},
			ArrivalTimeSec: in.Time,
			Affinity:      in.Affinity,
			Quality:       in.Quality,
			Use:           in.Use,
			CurrentPhase:  in.CurrentPhase,
			ObservedPhase: in.ObservedPhase,
		})
	}
	return ev
}

// WriteJSON serializes v as indented JSON to a URI through TileDB's
// VFS, so results can be written locally or to an object store with no
// code path difference (§4.10, grounded on encode/json.go's WriteJson).
func WriteJSON(uri, configURI string, v any) (int, error) {
	var (
		config *tiledb.Config
		err    error
	)
	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return 0, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, err
	}
	defer vfs.Free()

	stream, err := vfs.Open(uri, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	body, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return 0, err
	}
	return stream.Write(body)
}

// ParseEventFile parses the whitespace-separated text event format of
// §6: an origin line, then one pick line per arrival.
func ParseEventFile(r io.Reader) (*ttcore.Event, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, io.ErrUnexpectedEOF
	}
	origin := strings.Fields(scanner.Text())
	if len(origin) < 10 {
		return nil, &ttcore.TableIntegrityError{Table: "event", Msg: "short origin line"}
	}
	if strings.Contains(origin[0], "/") && len(origin) < 11 {
		return nil, &ttcore.TableIntegrityError{Table: "event", Msg: "short origin line"}
	}

	// The origin time is either a single epoch-seconds field, or a
	// "yyyy/ddd hh:mm:ss" pair (§6), which shifts every later field
	// along by one token.
	shift := 0
	var originTime float64
	var err error
	if strings.Contains(origin[0], "/") {
		originTime, err = parseOriginTime(origin[0], origin[1])
		shift = 1
	} else {
		originTime, err = parseOriginTime(origin[0], "")
	}
	if err != nil {
		return nil, err
	}

	lat, _ := strconv.ParseFloat(origin[1+shift], 64)
	lon, _ := strconv.ParseFloat(origin[2+shift], 64)
	depth, _ := strconv.ParseFloat(origin[3+shift], 64)
	bayesDepth, _ := strconv.ParseFloat(origin[7+shift], 64)
	bayesSpread, _ := strconv.ParseFloat(origin[8+shift], 64)

	ev := &ttcore.Event{
		Hypocenter: ttcore.Hypocenter{
			Point:          ttcore.GeoPoint{LatDeg: lat, LonDeg: lon},
			DepthKm:        depth,
			OriginTimeSec:  originTime,
			IsLocationHeld: origin[4+shift] == "T",
			IsDepthHeld:    origin[5+shift] == "T",
			IsDepthAnalyst: origin[6+shift] == "T",
		},
		Bayesian:    ttcore.BayesianDepth{Depth: bayesDepth, Spread: bayesSpread},
		UseBayesian: true,
	}

	// Pick line layout (§6): dbID station channel network location
	// staLat staLon staElev quality currentPhase arrivalTime useFlag
	// authorCode observedPhase affinity
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 15 {
			continue
		}
		staLat, _ := strconv.ParseFloat(fields[5], 64)
		staLon, _ := strconv.ParseFloat(fields[6], 64)
		staElev, _ := strconv.ParseFloat(fields[7], 64)
		quality, _ := strconv.ParseFloat(fields[8], 64)
		arrivalTime, _ := strconv.ParseFloat(fields[10], 64)
		authorCode, _ := strconv.Atoi(fields[12])
		author := ttcore.AuthorType(authorCode)

		// A missing affinity is conventionally written as 0 or a
		// negative sentinel; fall back to the author type's standard
		// starting affinity (§3, §6).
		affinity, afferr := strconv.ParseFloat(fields[14], 64)
		if afferr != nil || affinity <= 0 {
			affinity = ttcore.DefaultAffinity(author)
		}

		ev.Picks = append(ev.Picks, &ttcore.Pick{
			DBID: fields[0],
			Station: ttcore.Station{
				Code:        fields[1],
				Channel:     fields[2],
				Network:     fields[3],
				Location:    fields[4],
				Point:       ttcore.GeoPoint{LatDeg: staLat, LonDeg: staLon},
				ElevationKm: staElev,
			},
			Quality:        quality,
			ArrivalTimeSec: arrivalTime,
			Use:            fields[11] == "T",
			CurrentPhase:   fields[9],
			ObservedPhase:  fields[13],
			Author:         author,
			Affinity:       affinity,
		})
	}
	return ev, nil
}
