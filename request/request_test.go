package request

import (
	"strings"
	"testing"
)

func TestParseEventFileEpochOrigin(t *testing.T) {
	src := `1000000000.0 34.05 -118.25 10.0 F F F 10.0 5.0 F F
P001 STA HHZ NN -- 34.1 -118.3 0.5 1.0 P 1000000010.5 T 2 P 1.5
`
	ev, err := ParseEventFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseEventFile: %v", err)
	}
	if ev.Hypocenter.Point.LatDeg != 34.05 || ev.Hypocenter.Point.LonDeg != -118.25 {
		t.Fatalf("hypocenter location = %+v, want (34.05, -118.25)", ev.Hypocenter.Point)
	}
	if ev.Hypocenter.DepthKm != 10.0 {
		t.Fatalf("depth = %g, want 10.0", ev.Hypocenter.DepthKm)
	}
	if len(ev.Picks) != 1 {
		t.Fatalf("len(Picks) = %d, want 1", len(ev.Picks))
	}
	p := ev.Picks[0]
	if p.Station.Code != "STA" || p.Station.Network != "NN" {
		t.Fatalf("station = %+v, want Code=STA Network=NN", p.Station)
	}
	if !p.Use {
		t.Fatal("pick Use flag should be true")
	}
	if p.ObservedPhase != "P" || p.Affinity != 1.5 {
		t.Fatalf("pick ObservedPhase/Affinity = %q/%g, want P/1.5", p.ObservedPhase, p.Affinity)
	}
}

func TestParseEventFileMissingAffinityFallsBackToAuthorDefault(t *testing.T) {
	// authorCode 4 = analyst, local (DefaultAffinity 3.0); the pick line's
	// trailing affinity field is the 0 sentinel for "not supplied".
	src := `1000000000.0 34.05 -118.25 10.0 F F F 10.0 5.0 F F
P001 STA HHZ NN -- 34.1 -118.3 0.5 1.0 P 1000000010.5 T 4 P 0
`
	ev, err := ParseEventFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseEventFile: %v", err)
	}
	if got := ev.Picks[0].Affinity; got != 3.0 {
		t.Fatalf("Affinity = %g, want 3.0 (DefaultAffinity for an analyst-local author with affinity omitted)", got)
	}
}

func TestParseEventFileDayOfYearOrigin(t *testing.T) {
	src := `2020/060 12:00:00 34.05 -118.25 10.0 F F F 10.0 5.0 F F
`
	ev, err := ParseEventFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseEventFile: %v", err)
	}
	// 2020 is a leap year; day 60 is Feb 29.
	if ev.Hypocenter.OriginTimeSec <= 0 {
		t.Fatalf("origin time = %g, want a positive epoch-seconds value", ev.Hypocenter.OriginTimeSec)
	}
}

func TestParseEventFileShortOriginLine(t *testing.T) {
	_, err := ParseEventFile(strings.NewReader("1000000000.0 34.05\n"))
	if err == nil {
		t.Fatal("expected an error for a short origin line")
	}
}

func TestParseOriginTimeEpoch(t *testing.T) {
	secs, err := parseOriginTime("12345.5", "")
	if err != nil {
		t.Fatalf("parseOriginTime: %v", err)
	}
	if secs != 12345.5 {
		t.Fatalf("parseOriginTime = %g, want 12345.5", secs)
	}
}

func TestParseOriginTimeDayOfYear(t *testing.T) {
	secs, err := parseOriginTime("2021/001", "00:00:00")
	if err != nil {
		t.Fatalf("parseOriginTime: %v", err)
	}
	if secs <= 0 {
		t.Fatalf("parseOriginTime(2021/001) = %g, want a positive epoch value", secs)
	}
}

func TestLocationRequestToEvent(t *testing.T) {
	req := &LocationRequest{
		SourceLatitude:  10,
		SourceLongitude: 20,
		SourceDepth:     30,
		InputData: []PickInput{
			{ID: "p1", Site: "STA", Time: 100, Affinity: 1.0, ObservedPhase: "P"},
		},
	}
	ev := req.ToEvent()
	if ev.Hypocenter.Point.LatDeg != 10 || ev.Hypocenter.DepthKm != 30 {
		t.Fatalf("ToEvent hypocenter = %+v", ev.Hypocenter)
	}
	if len(ev.Picks) != 1 || ev.Picks[0].Station.Code != "STA" {
		t.Fatalf("ToEvent picks = %+v", ev.Picks)
	}
}
