// Package search recursively locates event-input files under a URI,
// local or object-store, via TileDB's VFS (§4.11). Grounded directly on
// the teacher's search.go (trawl/FindGsf), generalized from *.gsf
// bathymetry files to the text/JSON event-input files named in §6.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively walks uri, collecting every file whose basename
// matches pattern.
func trawl(vfs *tiledb.VFS, pattern, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindEventFiles recursively searches for event-input files matching
// pattern (e.g. "*.evt" or "*.json") under uri. configURI selects a
// TileDB config for object stores requiring credentials; an empty
// string uses a generic config, matching the teacher's FindGsf.
func FindEventFiles(uri, pattern, configURI string) ([]string, error) {
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
		return nil, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	return trawl(vfs, pattern, uri, make([]string, 0))
}
