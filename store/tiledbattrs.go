// Package store persists location results — per-pick arrival and
// residual rows — to TileDB arrays, using the same reflection-plus-
// struct-tag schema builder the teacher uses for its beam/SVP arrays
// (§4.10).
package store

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

var ErrCreateAttribute = errors.New("error creating tiledb attribute")

// zstdFilter builds the single-filter pipeline this package standardizes
// on: zstandard at the level given in the field's `filters` tag.
// CreateAttr supports only "zstd" because every ArrivalRow/ResidualRow
// field uses it; the teacher's CreateAttr supports a wider filter
// vocabulary (gzip, lz4, rle, bzip2, bit-width reduction) for its beam
// arrays, which carry more varied dtypes than this package's rows do.
func zstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// dtypeFor maps a `tiledb:"dtype=..."` tag value to its TileDB datatype.
func dtypeFor(dtype string) (tiledb.Datatype, error) {
	switch dtype {
	case "int32":
		return tiledb.TILEDB_INT32, nil
	case "int64":
		return tiledb.TILEDB_INT64, nil
	case "uint64":
		return tiledb.TILEDB_UINT64, nil
	case "float64":
		return tiledb.TILEDB_FLOAT64, nil
	case "datetime_ns":
		return tiledb.TILEDB_DATETIME_NS, nil
	case "string":
		return tiledb.TILEDB_STRING_UTF8, nil
	default:
		return 0, errors.Join(ErrCreateAttribute, errors.New("unsupported dtype: "+dtype))
	}
}

// CreateAttr creates one TileDB attribute from its struct-tag
// definitions, with a zstd compression filter at the level its
// `filters` tag names (§4.10; mirrors the teacher's CreateAttr in
// shape, trimmed to the one filter this package's rows need).
func CreateAttr(fieldName string, filterDefs []stgpsr.Definition, tiledbDefs map[string]stgpsr.Definition, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	def, ok := tiledbDefs["dtype"]
	if !ok {
		return errors.Join(ErrCreateAttribute, errors.New("dtype tag not found for "+fieldName))
	}
	dtypeAttr, _ := def.Attribute("dtype")
	dtype, err := dtypeFor(dtypeAttr.(string))
	if err != nil {
		return err
	}

	attr, err := tiledb.NewAttribute(ctx, fieldName, dtype)
	if err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	defer attr.Free()

	if dtypeAttr == "string" {
		if err := attr.SetCellValNum(tiledb.TILEDB_VAR_NUM); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}

	filters, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	defer filters.Free()

	for _, f := range filterDefs {
		if f.Name() != "zstd" {
			continue
		}
		levelAttr, ok := f.Attribute("level")
		if !ok {
			return errors.Join(ErrCreateAttribute, errors.New("zstd level not defined for "+fieldName))
		}
		filt, err := zstdFilter(ctx, int32(levelAttr.(int64)))
		if err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		defer filt.Free()
		if err := filters.AddFilter(filt); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}

	if err := attr.SetFilterList(filters); err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	return schema.AddAttributes(attr)
}
