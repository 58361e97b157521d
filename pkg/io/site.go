package io

import (
	"bytes"
	"cmp"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wayfinder/pkg/cache"
	"github.com/matzehuels/wayfinder/pkg/config"
	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
)

// LoadSite loads the campus and buildings described by cfg.
//
// Without explicit [[buildings]] entries every directory B under the data
// directory holding a B/B.json file is loaded as building B. The site's
// Revision is a hash of every file read. A nil logger uses log.Default().
func LoadSite(cfg config.Config, logger *log.Logger) (*graph.Site, error) {
	if logger == nil {
		logger = log.Default()
	}

	campusPath := cfg.Resolve(cfg.Campus.File)
	raw, err := readFile(campusPath, "campus")
	if err != nil {
		return nil, err
	}
	d, err := DecodeCampus(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	campus, err := d.Campus(cfg.CampusName(), graph.WithCanonical(cfg.Campus.Canonical))
	if err != nil {
		return nil, err
	}
	logger.Debug("campus loaded", "name", campus.Name(), "nodes", campus.Len(), "file", campusPath)
	chunks := [][]byte{[]byte(campus.Name()), raw}

	buildings := cfg.Buildings
	if len(buildings) == 0 {
		if buildings, err = discoverBuildings(cfg.DataDir); err != nil {
			return nil, err
		}
	}

	site := graph.NewSite(campus)
	for _, bc := range buildings {
		path := cfg.Resolve(bc.File)
		raw, err := readFile(path, "building")
		if err != nil {
			return nil, err
		}
		b, err := ReadBuilding(bytes.NewReader(raw), bc.Name)
		if err != nil {
			return nil, err
		}
		if err := site.AddBuilding(b); err != nil {
			return nil, err
		}
		chunks = append(chunks, []byte(bc.Name), raw)
		logger.Debug("building loaded", "name", b.Name(), "floors", b.Floors(), "nodes", b.Len(), "entrances", len(b.Entrances()))
	}
	site.Revision = cache.HashAll(chunks...)
	logger.Info("site loaded", "campus", campus.Name(), "buildings", len(buildings), "revision", site.Revision[:12])
	return site, nil
}

func readFile(path, kind string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s file %s does not exist", kind, path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}

func discoverBuildings(dataDir string) ([]config.BuildingConfig, error) {
	entries, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "data directory %s does not exist", dataDir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", dataDir)
	}
	var out []config.BuildingConfig
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		file := filepath.Join(e.Name(), e.Name()+".json")
		if _, err := os.Stat(filepath.Join(dataDir, file)); err == nil {
			out = append(out, config.BuildingConfig{Name: e.Name(), File: file})
		}
	}
	slices.SortFunc(out, func(a, b config.BuildingConfig) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}
