package tables

import (
	"os"

	ttcore "github.com/usgs/traveltime"
)

// ModelPaths names the files a full model load reads, each grounded on
// a specific format described in §6: two binary files and three
// plain-text sidecar files.
type ModelPaths struct {
	HedURI   string
	TblURI   string
	PhGrpURI string
	StatsURI string
	EllipURI string

	ConfigURI string // TileDB config, for VFS-backed URIs; "" for local files

	// XMinDecimate and DTdDepthScale are model-specific constants §4.2/
	// §4.3 leave to the loaded model rather than hard-coding.
	XMinDecimate  float64
	DTdDepthScale float64
}

// LoadModel opens every file named in paths and assembles a complete,
// read-only ttcore.TableSet (§6, §2). It is the single entry point
// poolsrv and cmd/locate call at startup.
func LoadModel(paths ModelPaths) (*ttcore.TableSet, error) {
	hed, cleanupHed, err := OpenVFS(paths.HedURI, paths.ConfigURI)
	if err != nil {
		return nil, err
	}
	defer cleanupHed()

	norm, modelP, modelS, upP, upS, branches, err := LoadHed(hed)
	if err != nil {
		return nil, err
	}

	tbl, cleanupTbl, err := OpenVFS(paths.TblURI, paths.ConfigURI)
	if err != nil {
		return nil, err
	}
	defer cleanupTbl()

	if err := LoadTbl(tbl, upP, upS); err != nil {
		return nil, err
	}

	if err := modelP.CheckInvariant(); err != nil {
		return nil, err
	}
	if err := modelS.CheckInvariant(); err != nil {
		return nil, err
	}

	phgrpFile, err := os.Open(paths.PhGrpURI)
	if err != nil {
		return nil, err
	}
	defer phgrpFile.Close()
	groups, err := LoadPhaseGroups(phgrpFile)
	if err != nil {
		return nil, err
	}

	statsFile, err := os.Open(paths.StatsURI)
	if err != nil {
		return nil, err
	}
	defer statsFile.Close()
	stats, err := LoadPhaseStats(statsFile)
	if err != nil {
		return nil, err
	}

	var ellip *ttcore.EllipTable
	if paths.EllipURI != "" {
		ellipFile, err := os.Open(paths.EllipURI)
		if err != nil {
			return nil, err
		}
		defer ellipFile.Close()
		ellip, err = LoadEllipticity(ellipFile)
		if err != nil {
			return nil, err
		}
	}
	return &ttcore.TableSet{
		Norm:          norm,
		ModelP:        modelP,
		ModelS:        modelS,
		UpP:           upP,
		UpS:           upS,
		Branches:      branches,
		Aux:           &ttcore.AuxData{Groups: groups, Stats: stats},
		Ellip:         ellip,
		XMinDecimate:  paths.XMinDecimate,
		DTdDepthScale: paths.DTdDepthScale,
	}, nil
}
