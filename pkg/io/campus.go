package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
)

// CampusDescription is an editable campus file.
type CampusDescription struct {
	Name  string
	Nodes []CampusNode
}

// CampusNode is one outdoor node of a [CampusDescription]. Attrs holds every
// key other than id, latitude, longitude and neighbors.
type CampusNode struct {
	ID        string
	Latitude  float64
	Longitude float64
	Neighbors []CampusNeighbor
	Attrs     graph.Metadata
}

// CampusNeighbor is one outgoing outdoor edge.
type CampusNeighbor struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

type campusNode struct {
	ID        string           `json:"id"`
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Neighbors []CampusNeighbor `json:"neighbors"`
}

// UnmarshalJSON decodes the known fields and keeps the rest in Attrs.
func (n *CampusNode) UnmarshalJSON(data []byte) error {
	var known campusNode
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"id", "latitude", "longitude", "neighbors"} {
		delete(all, k)
	}
	*n = CampusNode{
		ID:        known.ID,
		Latitude:  known.Latitude,
		Longitude: known.Longitude,
		Neighbors: known.Neighbors,
	}
	if len(all) > 0 {
		n.Attrs = all
	}
	return nil
}

// MarshalJSON encodes the node with its extra attributes inlined.
func (n CampusNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Attrs)+4)
	maps.Copy(out, n.Attrs)
	out["id"] = n.ID
	out["latitude"] = n.Latitude
	out["longitude"] = n.Longitude
	nbs := n.Neighbors
	if nbs == nil {
		nbs = []CampusNeighbor{}
	}
	out["neighbors"] = nbs
	return json.Marshal(out)
}

// DecodeCampus reads a campus description without building a graph.
func DecodeCampus(r io.Reader) (*CampusDescription, error) {
	var raw map[string][]CampusNode
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode campus")
	}
	if len(raw) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "campus file must hold exactly one campus, found %d", len(raw))
	}
	d := &CampusDescription{}
	for name, nodes := range raw {
		d.Name, d.Nodes = name, nodes
	}
	return d, nil
}

// Specs converts the description into node specs for [graph.Campus.Load].
func (d *CampusDescription) Specs() []graph.NodeSpec {
	specs := make([]graph.NodeSpec, len(d.Nodes))
	for i, n := range d.Nodes {
		nbs := make([]graph.NeighborSpec, len(n.Neighbors))
		for j, nb := range n.Neighbors {
			nbs[j] = graph.NeighborSpec{ID: nb.ID, Weight: nb.Weight}
		}
		specs[i] = graph.NodeSpec{
			ID:        n.ID,
			Lat:       n.Latitude,
			Lon:       n.Longitude,
			Neighbors: nbs,
			Attrs:     n.Attrs,
		}
	}
	return specs
}

// Campus builds the sealed campus graph named name from the description.
func (d *CampusDescription) Campus(name string, opts ...graph.CampusOption) (*graph.Campus, error) {
	c := graph.NewCampus(name, opts...)
	if err := c.Load(d.Specs()); err != nil {
		return nil, err
	}
	if err := c.Seal(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadCampus decodes a campus description from r and returns the sealed
// campus graph named name. ReadCampus does not close r.
func ReadCampus(r io.Reader, name string, opts ...graph.CampusOption) (*graph.Campus, error) {
	d, err := DecodeCampus(r)
	if err != nil {
		return nil, err
	}
	return d.Campus(name, opts...)
}

// ReadCampusFile reads the campus description at path. The campus graph is
// named after the file.
func ReadCampusFile(path string, opts ...graph.CampusOption) (*graph.Campus, error) {
	d, err := DecodeCampusFile(path)
	if err != nil {
		return nil, err
	}
	return d.Campus(baseName(path), opts...)
}

// DecodeCampusFile reads the campus description at path.
func DecodeCampusFile(path string) (*CampusDescription, error) {
	raw, err := readFile(path, "campus")
	if err != nil {
		return nil, err
	}
	return DecodeCampus(bytes.NewReader(raw))
}

// WriteCampus encodes d in the campus file format.
func WriteCampus(w io.Writer, d *CampusDescription) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string][]CampusNode{d.Name: d.Nodes}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportCampus writes d to the file at path.
func ExportCampus(d *CampusDescription, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCampus(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RecomputeWeights sets every edge weight to the geodesic distance between
// its endpoints in meters, rounded to the centimeter. It returns the number
// of weights that changed.
func RecomputeWeights(d *CampusDescription) (int, error) {
	pos := make(map[string]graph.LatLon, len(d.Nodes))
	for _, n := range d.Nodes {
		pos[n.ID] = graph.LatLon{Lat: n.Latitude, Lon: n.Longitude}
	}
	changed := 0
	for i := range d.Nodes {
		n := &d.Nodes[i]
		for j := range n.Neighbors {
			nb := &n.Neighbors[j]
			to, ok := pos[nb.ID]
			if !ok {
				return changed, errors.New(errors.ErrCodeCorruptGraph, "%s: neighbor %s of %s is not declared", d.Name, nb.ID, n.ID)
			}
			w := math.Round(graph.Geodesic(pos[n.ID], to)*100) / 100
			if w != nb.Weight {
				nb.Weight = w
				changed++
			}
		}
	}
	return changed, nil
}
