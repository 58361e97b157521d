package io

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wayfinder/pkg/config"
	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
)

func TestReadBuildingFile(t *testing.T) {
	b, err := ReadBuildingFile(filepath.Join("testdata", "P1", "P1.json"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "P1" || b.Len() != 6 || b.Floors() != 2 {
		t.Fatalf("got %s with %d nodes on %d floors", b.Name(), b.Len(), b.Floors())
	}
	if !b.Sealed() {
		t.Error("building is not sealed")
	}
	if got := b.Entrances(); !slices.Equal(got, []string{"eP1_1"}) {
		t.Errorf("Entrances() = %v", got)
	}
	lab, ok := b.Node("E101_0")
	if !ok || lab.Name != "Lab 101" || lab.Meta["area"] != float64(42) {
		t.Errorf("E101_0 = %+v", lab)
	}
	if floor, _ := b.Floor("S1"); floor != 0 {
		t.Errorf("S1 floor = %d, want the first declared floor 0", floor)
	}
	e, ok := b.Edge("H1_0", "E101_0")
	if !ok {
		t.Fatal("missing edge H1_0 -> E101_0")
	}
	if turn, _ := e.Direction.Resolve("eP1_1"); turn != graph.TurnRight {
		t.Errorf("direction after eP1_1 = %v, want right", turn)
	}
	if _, ok := b.Edge("S1", "H2_1"); !ok {
		t.Error("missing edge S1 -> H2_1 declared on floor 1")
	}
}

func TestReadBuildingSharedNodesTakeLowestFloor(t *testing.T) {
	desc := `{
		"3": [
			{"id": "S1", "name": "Upper stairs", "neighbors": [{"id": "H3", "weight": 2, "direction": "straight"}]},
			{"id": "H3", "neighbors": [{"id": "S1", "weight": 2, "direction": "straight"}]}
		],
		"1": [
			{"id": "S1", "name": "Lower stairs", "neighbors": [{"id": "H1", "weight": 2, "direction": "straight"}]},
			{"id": "H1", "neighbors": [{"id": "S1", "weight": 2, "direction": "straight"}]}
		]
	}`
	b, err := ReadBuilding(strings.NewReader(desc), "T")
	if err != nil {
		t.Fatal(err)
	}
	s, ok := b.Node("S1")
	if !ok || s.Floor != 1 || s.Name != "Lower stairs" {
		t.Errorf("S1 = %+v, want floor 1 named Lower stairs", s)
	}
	if _, ok := b.Edge("S1", "H3_3"); !ok {
		t.Error("missing edge S1 -> H3_3 declared on floor 3")
	}
}

func TestReadBuildingErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want errors.Code
	}{
		{"malformed", `{"0": [`, errors.ErrCodeInvalidInput},
		{"floor key", `{"ground": []}`, errors.ErrCodeInvalidInput},
		{"missing id", `{"0": [{"name": "x"}]}`, errors.ErrCodeInvalidInput},
		{"bad direction", `{"0": [{"id": "H1", "neighbors": [{"id": "H2", "weight": 1, "direction": 3}]}]}`, errors.ErrCodeInvalidInput},
		{"unknown prefix", `{"0": [{"id": "X1"}]}`, errors.ErrCodeUnknownNodeType},
		{"stair to lift", `{"0": [{"id": "S1", "neighbors": [{"id": "L1", "weight": 1, "direction": "straight"}]}, {"id": "L1"}]}`, errors.ErrCodeCorruptGraph},
		{"dangling", `{"0": [{"id": "H1", "neighbors": [{"id": "H2", "weight": 1, "direction": "left"}]}]}`, errors.ErrCodeCorruptGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadBuilding(strings.NewReader(tt.json), "B"); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}

	if _, err := ReadBuildingFile(filepath.Join("testdata", "nope.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestReadCampusFile(t *testing.T) {
	c, err := ReadCampusFile(filepath.Join("testdata", "general", "campus.json"), graph.WithCanonical(true))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "campus" || c.Len() != 2 || !c.Literal() {
		t.Errorf("got %s with %d nodes, literal %v", c.Name(), c.Len(), c.Literal())
	}
	door, ok := c.Node("eP1_1")
	if !ok || door.Name != "Entry 1 of building P1" || door.Meta["note"] != "main door" {
		t.Errorf("eP1_1 = %+v", door)
	}
	if p, _ := c.Coordinates("c1"); p != (graph.LatLon{Lat: 50.812, Lon: 4.38}) {
		t.Errorf("c1 at %v", p)
	}
}

func TestDecodeCampusErrors(t *testing.T) {
	for _, in := range []string{`{}`, `{"A": [], "B": []}`, `[`} {
		if _, err := DecodeCampus(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("DecodeCampus(%s) error = %v", in, err)
		}
	}
}

func TestRecomputeWeights(t *testing.T) {
	d, err := DecodeCampusFile(filepath.Join("testdata", "general", "campus.json"))
	if err != nil {
		t.Fatal(err)
	}
	changed, err := RecomputeWeights(d)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	want := math.Round(graph.Geodesic(graph.LatLon{Lat: 50.812, Lon: 4.38}, graph.LatLon{Lat: 50.8125, Lon: 4.381})*100) / 100
	for _, n := range d.Nodes {
		if got := n.Neighbors[0].Weight; got != want {
			t.Errorf("%s weight = %v, want %v", n.ID, got, want)
		}
	}
	if changed, _ := RecomputeWeights(d); changed != 0 {
		t.Errorf("second pass changed %d weights", changed)
	}

	d.Nodes[0].Neighbors = append(d.Nodes[0].Neighbors, CampusNeighbor{ID: "c404"})
	if _, err := RecomputeWeights(d); !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("unknown neighbor error = %v", err)
	}
}

func TestWriteCampusKeepsAttributes(t *testing.T) {
	d, err := DecodeCampusFile(filepath.Join("testdata", "general", "campus.json"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCampus(&buf, d); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{\n  \"Solbosch\": [") {
		t.Errorf("unexpected layout:\n%s", buf.String())
	}
	back, err := DecodeCampus(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, d) {
		t.Errorf("rewritten description differs:\n got %+v\nwant %+v", back, d)
	}
}

func TestLoadSite(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "testdata"
	cfg.Campus.File = "general/campus.json"
	logger := log.New(io.Discard)

	site, err := LoadSite(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if got := site.BuildingNames(); !slices.Equal(got, []string{"P1"}) {
		t.Errorf("BuildingNames() = %v", got)
	}
	if site.Campus.Name() != "solbosch_map_updated" || !site.Campus.Literal() {
		t.Errorf("campus %s, literal %v", site.Campus.Name(), site.Campus.Literal())
	}

	if len(site.Revision) != 64 {
		t.Errorf("Revision = %q", site.Revision)
	}
	again, err := LoadSite(cfg, logger)
	if err != nil || again.Revision != site.Revision {
		t.Errorf("reloading the same files changed the revision: %v", err)
	}

	cfg.Buildings = []config.BuildingConfig{{Name: "Main", File: "P1/P1.json"}}
	renamed, err := LoadSite(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := renamed.Building("Main"); err != nil {
		t.Error(err)
	}
	if renamed.Revision == site.Revision {
		t.Error("renaming a building kept the revision")
	}

	cfg.Buildings = []config.BuildingConfig{{Name: "K", File: "K/K.json"}}
	if _, err := LoadSite(cfg, logger); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing building error = %v", err)
	}
}
