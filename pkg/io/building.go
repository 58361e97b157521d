package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
)

type neighbor struct {
	ID        string          `json:"id"`
	Weight    float64         `json:"weight"`
	Direction graph.Direction `json:"direction"`
}

// ReadBuilding decodes a building description from r and returns the sealed
// building graph named name.
//
// Floors are loaded in ascending numeric order, not in file order, since
// JSON object keys carry no order once decoded. A stair, lift or entrance
// listed on several floors therefore belongs to its lowest floor and takes
// its name and attributes from that floor's entry. Rooms keep the order of
// the description within their floor. ReadBuilding does not close r.
func ReadBuilding(r io.Reader, name string) (*graph.Building, error) {
	var raw map[string][]map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode building %s", name)
	}

	floors := make([]graph.FloorSpec, 0, len(raw))
	for key, rooms := range raw {
		floor, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "building %s: floor key %q is not a number", name, key)
		}
		fs := graph.FloorSpec{Floor: floor, Rooms: make([]graph.NodeSpec, 0, len(rooms))}
		for i, room := range rooms {
			spec, err := decodeRoom(room)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "building %s: floor %d: room %d", name, floor, i)
			}
			fs.Rooms = append(fs.Rooms, spec)
		}
		floors = append(floors, fs)
	}

	b := graph.NewBuilding(name)
	if err := b.Load(floors); err != nil {
		return nil, err
	}
	if err := b.Seal(); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeRoom(fields map[string]json.RawMessage) (graph.NodeSpec, error) {
	var spec graph.NodeSpec
	for key, value := range fields {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(value, &spec.ID)
		case "name":
			err = json.Unmarshal(value, &spec.Name)
		case "neighbors":
			var nbs []neighbor
			if err = json.Unmarshal(value, &nbs); err == nil {
				spec.Neighbors = make([]graph.NeighborSpec, len(nbs))
				for i, nb := range nbs {
					spec.Neighbors[i] = graph.NeighborSpec{ID: nb.ID, Weight: nb.Weight, Direction: nb.Direction}
				}
			}
		default:
			var v any
			if err = json.Unmarshal(value, &v); err == nil {
				if spec.Attrs == nil {
					spec.Attrs = graph.Metadata{}
				}
				spec.Attrs[key] = v
			}
		}
		if err != nil {
			return graph.NodeSpec{}, fmt.Errorf("%s: %w", key, err)
		}
	}
	if spec.ID == "" {
		return graph.NodeSpec{}, fmt.Errorf("missing id")
	}
	return spec, nil
}

// ReadBuildingFile reads the building description at path. The building is
// named after the file, so "plans/P1/P1.json" yields building "P1".
func ReadBuildingFile(path string) (*graph.Building, error) {
	raw, err := readFile(path, "building")
	if err != nil {
		return nil, err
	}
	return ReadBuilding(bytes.NewReader(raw), baseName(path))
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
