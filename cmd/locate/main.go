// Command locate is the CLI entry point wiring table loading, volume
// sessions, phase identification, and result storage together (§4.11).
// Grounded directly on the teacher's cmd/main.go: same urfave/cli/v2
// two-command shape (a single-item command and a directory-trawl
// command backed by a pond pool), generalized from GSF-to-TileDB
// conversion to event-file-to-location-response resolution.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	ttcore "github.com/usgs/traveltime"
	"github.com/usgs/traveltime/poolsrv"
	"github.com/usgs/traveltime/request"
	"github.com/usgs/traveltime/search"
	"github.com/usgs/traveltime/store"
	"github.com/usgs/traveltime/tables"
)

func modelPaths(cCtx *cli.Context) tables.ModelPaths {
	return tables.ModelPaths{
		HedURI:        cCtx.String("hed-uri"),
		TblURI:        cCtx.String("tbl-uri"),
		PhGrpURI:      cCtx.String("phgrp-uri"),
		StatsURI:      cCtx.String("stats-uri"),
		EllipURI:      cCtx.String("ellip-uri"),
		ConfigURI:     cCtx.String("config-uri"),
		XMinDecimate:  cCtx.Float64("xmin-decimate"),
		DTdDepthScale: cCtx.Float64("dtddepth-scale"),
	}
}

// resolveEvent loads one event from a text event file, or from a JSON
// LocationRequest when the path ends in ".json".
func resolveEvent(path string) (*ttcore.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if filepath.Ext(path) == ".json" {
		req, err := request.ParseJSON(f)
		if err != nil {
			return nil, err
		}
		return req.ToEvent(), nil
	}
	return request.ParseEventFile(f)
}

// locateOne runs a full single-session location for one event against a
// borrowed Volume: new session at the event's depth, query every station,
// identify each pick's phase, and compute residuals (§4.2-§4.5).
func locateOne(v *ttcore.Volume, ev *ttcore.Event) (*request.LocationResponse, error) {
	if err := v.NewSession(ev.Hypocenter.DepthKm); err != nil {
		return nil, err
	}

	groups := v.Tables.Aux.Groups
	resp := &request.LocationResponse{Hypocenter: ev.Hypocenter}

	var sumSqResidual float64
	usedPhases := 0
	usedStations := map[string]bool{}
	minDistance := 0.0

	for i, pick := range ev.Picks {
		pick.ResetCache()
		da := ttcore.ComputeDeltaAzimuth(ev.Hypocenter.Point, pick.Station.Point)

		arrivals, err := v.GetTT(da.DeltaDeg*math.Pi/180, 0)
		if err != nil {
			return nil, err
		}
		v.ApplyEllipticity(arrivals, ev.Hypocenter.Point.LatDeg, ev.Hypocenter.DepthKm, da.DeltaDeg, da.AzimuthDeg*math.Pi/180)

		theories := make([]ttcore.TheoreticalArrival, len(arrivals))
		for j, a := range arrivals {
			theories[j] = ttcore.NewTheoreticalArrival(a, groups)
		}

		idx, fom := ttcore.IdentifyPick(pick, theories, groups, !pick.Author.IsAnalyst())
		out := request.PickInput{
			ID:            pick.DBID,
			Site:          pick.Station.Code,
			Time:          pick.ArrivalTimeSec,
			Affinity:      pick.Affinity,
			Quality:       pick.Quality,
			Use:           pick.Use,
			CurrentPhase:  pick.CurrentPhase,
			ObservedPhase: pick.ObservedPhase,
			Distance:      da.DeltaDeg,
			Azimuth:       da.AzimuthDeg,
			Importance:    fom,
		}
		if idx >= 0 {
			out.IdentificationCode = pick.IdentificationCode
			out.Residual = pick.ArrivalTimeSec - pick.TheoreticalTime
			sumSqResidual += out.Residual * out.Residual
			usedPhases++
			usedStations[pick.Station.Code] = true
			if i == 0 || da.DeltaDeg < minDistance {
				minDistance = da.DeltaDeg
			}
		}
		resp.InputData = append(resp.InputData, out)
	}

	if usedPhases > 0 {
		resp.Quality.RMS = math.Sqrt(sumSqResidual / float64(usedPhases))
	}
	resp.Quality.NumberOfUsedPhases = usedPhases
	resp.Quality.NumberOfUsedStations = len(usedStations)
	resp.Quality.MinimumDistance = minDistance

	return resp, nil
}

func runLocate(cCtx *cli.Context) error {
	ts, err := tables.LoadModel(modelPaths(cCtx))
	if err != nil {
		return err
	}

	ev, err := resolveEvent(cCtx.String("event-uri"))
	if err != nil {
		return err
	}

	v := ttcore.NewVolume(ts)
	resp, err := locateOne(v, ev)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		return err
	}
	log.Println(string(body))

	if out := cCtx.String("out-uri"); out != "" {
		if _, err := request.WriteJSON(out, cCtx.String("config-uri"), resp); err != nil {
			return err
		}
	}

	if storeURI := cCtx.String("store-uri"); storeURI != "" {
		if err := writeResiduals(storeURI, cCtx.String("config-uri"), resp); err != nil {
			return err
		}
	}
	return nil
}

// writeResiduals persists a location response's per-pick residuals to a
// TileDB array (§4.10).
func writeResiduals(uri, configURI string, resp *request.LocationResponse) error {
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
		return err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return err
	}
	defer ctx.Free()

	rows := lo.Map(resp.InputData, func(p request.PickInput, _ int) store.ResidualRow {
		return store.ResidualRow{
			Station:            p.Site,
			ObservedPhase:      p.ObservedPhase,
			IdentificationCode: p.IdentificationCode,
			Residual:           p.Residual,
			Distance:           p.Distance,
			Azimuth:            p.Azimuth,
			Weight:             p.Importance,
			Affinity:           p.Affinity,
		}
	})
	return store.WriteResiduals(uri, ctx, rows)
}

func runLocateBatch(cCtx *cli.Context) error {
	ts, err := tables.LoadModel(modelPaths(cCtx))
	if err != nil {
		return err
	}

	log.Println("Searching uri:", cCtx.String("uri"))
	items, err := search.FindEventFiles(cCtx.String("uri"), cCtx.String("pattern"), cCtx.String("config-uri"))
	if err != nil {
		return err
	}
	log.Println("Number of event files to process:", len(items))

	ctxCancel, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := poolsrv.New(ts, 0)
	defer pool.Close()

	outdir := cCtx.String("outdir-uri")

	// Chunk the trawled paths so a very large directory listing is
	// submitted to the pool in waves rather than all at once.
	chunks := lo.Chunk(items, 1000)

	var failures []error
	for _, chunk := range chunks {
		results := make(chan error, len(chunk))
		for _, path := range chunk {
			path := path
			ch := pool.Submit(ctxCancel, func(v *ttcore.Volume) error {
				ev, err := resolveEvent(path)
				if err != nil {
					return err
				}
				resp, err := locateOne(v, ev)
				if err != nil {
					return err
				}
				if outdir != "" {
					out := filepath.Join(outdir, filepath.Base(path)+"-result.json")
					if _, err := request.WriteJSON(out, cCtx.String("config-uri"), resp); err != nil {
						return err
					}
				}
				return nil
			})
			go func() { results <- <-ch }()
		}
		for range chunk {
			if err := <-results; err != nil {
				failures = append(failures, err)
			}
		}
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}
	return nil
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "hed-uri", Usage: "URI or pathname to the .hed model header file."},
		&cli.StringFlag{Name: "tbl-uri", Usage: "URI or pathname to the .tbl up-going replacement table."},
		&cli.StringFlag{Name: "phgrp-uri", Usage: "URI or pathname to the phase-group text table."},
		&cli.StringFlag{Name: "stats-uri", Usage: "URI or pathname to the phase-statistics text table."},
		&cli.StringFlag{Name: "ellip-uri", Usage: "URI or pathname to the ellipticity coefficient table."},
		&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
		&cli.Float64Flag{Name: "xmin-decimate", Usage: "Minimum successive-distance spacing for up-going decimation.", Value: 0.1},
		&cli.Float64Flag{Name: "dtddepth-scale", Usage: "Per-model dT/dz scale constant.", Value: 1.0},
	}
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "locate",
				Usage: "Locate a single event from a text or JSON event file.",
				Flags: append(sharedFlags(),
					&cli.StringFlag{Name: "event-uri", Usage: "URI or pathname to an event file (text or .json)."},
					&cli.StringFlag{Name: "out-uri", Usage: "URI or pathname to write the LocationResponse JSON."},
					&cli.StringFlag{Name: "store-uri", Usage: "URI to a TileDB array for per-pick residuals."},
				),
				Action: runLocate,
			},
			{
				Name:  "locate-batch",
				Usage: "Trawl a directory for event files and locate each one concurrently.",
				Flags: append(sharedFlags(),
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing event files."},
					&cli.StringFlag{Name: "pattern", Usage: "Basename glob for event files.", Value: "*.evt"},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory for results."},
				),
				Action: runLocateBatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
