// Package tables loads the model table files described in SPEC_FULL.md
// §6 — the binary .hed/.tbl pair and the plain-text auxiliary tables —
// into the read-only ttcore.TableSet a Volume is built from.
package tables

import (
	"bytes"
	"encoding/binary"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Stream is the generic reader capability the loaders need: a file on
// local disk, an object store via TileDB's VFS, or an in-memory byte
// buffer for tests.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// Tell reports the current position within a stream.
func Tell(s Stream) (int64, error) {
	return s.Seek(0, 1)
}

// OpenVFS opens uri for reading through TileDB's VFS, so model tables can
// live on local disk or an object store with no code path difference
// (§6 describes the files only by format, not by location).
func OpenVFS(uri, configURI string) (Stream, func(), error) {
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
		return nil, nil, err
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, nil, err
	}
	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, nil, err
	}
	fh, err := vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, nil, err
	}

	size, err := vfs.FileSize(uri)
	if err != nil {
		fh.Close()
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, nil, err
	}

	buf := make([]byte, size)
	if err := binary.Read(fh, binary.LittleEndian, &buf); err != nil {
		fh.Close()
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, nil, err
	}

	cleanup := func() {
		fh.Close()
		vfs.Free()
		ctx.Free()
		config.Free()
	}
	return bytes.NewReader(buf), cleanup, nil
}
