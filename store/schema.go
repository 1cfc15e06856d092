package store

import (
	"errors"
	"reflect"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

var ErrCreateSchema = errors.New("error creating tiledb schema")
var ErrWriteArray = errors.New("error writing tiledb array")

// ArrivalRow is one theoretical arrival emitted during a location
// request, shaped for columnar storage the way the teacher shapes one
// beam sample per row (§3, §4.10).
type ArrivalRow struct {
	EventID       string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	OriginTime    time.Time `tiledb:"dtype=datetime_ns,ftype=attr" filters:"zstd(level=16)"`
	Station       string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	PhaseCode     string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	TravelTime    float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	DTdD          float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	DTdZ          float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Spread        float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Observability float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

// ResidualRow is one identified pick's residual after location,
// generalizing the teacher's per-ping QA row to per-pick location QA
// (§3, §4.10).
type ResidualRow struct {
	EventID            string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	Station             string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	ObservedPhase        string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	IdentificationCode string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
	Residual            float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Distance            float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Azimuth             float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Weight              float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Affinity            float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

// schemaAttrs walks t's struct tags and adds one TileDB attribute per
// field, mirroring the teacher's schemaAttrs (schema.go) exactly in
// shape: every field here is `ftype=attr` (no dimension fields), since
// the row index itself is the dimension.
func schemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()
	filterDefs, _ := stgpsr.ParseStruct(t, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name
		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}
		if err := CreateAttr(name, filterDefs[name], fieldTdbDefs, schema, ctx); err != nil {
			return errors.Join(ErrCreateSchema, err)
		}
	}
	return nil
}

// denseRowSchema builds a one-dimensional dense schema over nrows rows,
// with the field layout of sample taken from its struct tags (§4.10;
// mirrors svp_tiledb_array's single-dimension row-id approach).
func denseRowSchema(ctx *tiledb.Context, sample any, nrows uint64) (*tiledb.ArraySchema, error) {
	if nrows == 0 {
		nrows = 1
	}
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	defer domain.Free()

	dim, err := tiledb.NewDimension(ctx, "row", tiledb.TILEDB_UINT64, []uint64{0, nrows - 1}, nrows)
	if err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	defer dim.Free()

	if err := domain.AddDimensions(dim); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetDomain(domain); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}

	if err := schemaAttrs(sample, schema, ctx); err != nil {
		return nil, err
	}
	return schema, nil
}

// WriteArrivals writes a slice of ArrivalRow to a new TileDB array at
// uri, one row per arrival (§4.10).
func WriteArrivals(uri string, ctx *tiledb.Context, rows []ArrivalRow) error {
	schema, err := denseRowSchema(ctx, &ArrivalRow{}, uint64(len(rows)))
	if err != nil {
		return err
	}
	defer schema.Free()

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer array.Free()
	if err := array.Create(schema); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	eventID := make([]byte, 0)
	eventOff := make([]uint64, len(rows))
	station := make([]byte, 0)
	stationOff := make([]uint64, len(rows))
	phase := make([]byte, 0)
	phaseOff := make([]uint64, len(rows))
	originTime := make([]int64, len(rows))
	travelTime := make([]float64, len(rows))
	dtdd := make([]float64, len(rows))
	dtdz := make([]float64, len(rows))
	spread := make([]float64, len(rows))
	observ := make([]float64, len(rows))

	for i, r := range rows {
		eventOff[i] = uint64(len(eventID))
		eventID = append(eventID, r.EventID...)
		stationOff[i] = uint64(len(station))
		station = append(station, r.Station...)
		phaseOff[i] = uint64(len(phase))
		phase = append(phase, r.PhaseCode...)
		originTime[i] = r.OriginTime.UnixNano()
		travelTime[i] = r.TravelTime
		dtdd[i] = r.DTdD
		dtdz[i] = r.DTdZ
		spread[i] = r.Spread
		observ[i] = r.Observability
	}

	setVar := func(name string, offsets []uint64, data any) error {
		_, err := query.SetBufferVar(name, offsets, data)
		return err
	}
	setFixed := func(name string, data any) error {
		_, err := query.SetBuffer(name, data)
		return err
	}

	if err := setVar("EventID", eventOff, eventID); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setVar("Station", stationOff, station); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setVar("PhaseCode", phaseOff, phase); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("OriginTime", originTime); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("TravelTime", travelTime); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("DTdD", dtdd); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("DTdZ", dtdz); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Spread", spread); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Observability", observ); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	return query.Finalize()
}

// WriteResiduals writes a slice of ResidualRow to a new TileDB array at
// uri, one row per identified pick (§4.10).
func WriteResiduals(uri string, ctx *tiledb.Context, rows []ResidualRow) error {
	schema, err := denseRowSchema(ctx, &ResidualRow{}, uint64(len(rows)))
	if err != nil {
		return err
	}
	defer schema.Free()

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer array.Free()
	if err := array.Create(schema); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	eventID := make([]byte, 0)
	eventOff := make([]uint64, len(rows))
	station := make([]byte, 0)
	stationOff := make([]uint64, len(rows))
	observed := make([]byte, 0)
	observedOff := make([]uint64, len(rows))
	identified := make([]byte, 0)
	identifiedOff := make([]uint64, len(rows))
	residual := make([]float64, len(rows))
	distance := make([]float64, len(rows))
	azimuth := make([]float64, len(rows))
	weight := make([]float64, len(rows))
	affinity := make([]float64, len(rows))

	for i, r := range rows {
		eventOff[i] = uint64(len(eventID))
		eventID = append(eventID, r.EventID...)
		stationOff[i] = uint64(len(station))
		station = append(station, r.Station...)
		observedOff[i] = uint64(len(observed))
		observed = append(observed, r.ObservedPhase...)
		identifiedOff[i] = uint64(len(identified))
		identified = append(identified, r.IdentificationCode...)
		residual[i] = r.Residual
		distance[i] = r.Distance
		azimuth[i] = r.Azimuth
		weight[i] = r.Weight
		affinity[i] = r.Affinity
	}

	setVar := func(name string, offsets []uint64, data any) error {
		_, err := query.SetBufferVar(name, offsets, data)
		return err
	}
	setFixed := func(name string, data any) error {
		_, err := query.SetBuffer(name, data)
		return err
	}

	if err := setVar("EventID", eventOff, eventID); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setVar("Station", stationOff, station); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setVar("ObservedPhase", observedOff, observed); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setVar("IdentificationCode", identifiedOff, identified); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Residual", residual); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Distance", distance); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Azimuth", azimuth); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Weight", weight); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := setFixed("Affinity", affinity); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	return query.Finalize()
}
