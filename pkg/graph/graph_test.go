package graph

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

func straight() Direction { return Constant(TurnStraight) }

func TestBuildingClassify(t *testing.T) {
	b := NewBuilding("P1")
	tests := []struct {
		id      string
		want    NodeType
		wantErr bool
	}{
		{"H1", TypeHallway, false},
		{"E214", TypeClassroom, false},
		{"T3_1", TypeToilet, false},
		{"U9", TypeUnknown, false},
		{"S1", TypeStair, false},
		{"L2", TypeLift, false},
		{"eP1_1", TypeEntrance, false},
		{"X1", "", true},
		{"", "", true},
		{"h1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := b.Classify(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Classify(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeUnknownNodeType) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnknownNodeType)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestBuildingQualify(t *testing.T) {
	b := NewBuilding("P1")
	tests := []struct {
		raw   string
		floor int
		want  string
	}{
		{"H1", 0, "H1_0"},
		{"E214", 3, "E214_3"},
		{"S1", 3, "S1"},
		{"L1", 2, "L1"},
		{"eP1_1", 0, "eP1_1"},
	}
	for _, tt := range tests {
		if got := b.Qualify(tt.raw, tt.floor); got != tt.want {
			t.Errorf("Qualify(%q, %d) = %q, want %q", tt.raw, tt.floor, got, tt.want)
		}
	}
}

func TestShaftToShaftRejected(t *testing.T) {
	for _, pair := range [][2]string{{"S1", "L1"}, {"S1", "S2"}, {"L1", "L2"}} {
		b := NewBuilding("P1")
		err := b.AddNode(0, NodeSpec{
			ID:        pair[0],
			Neighbors: []NeighborSpec{{ID: pair[1], Weight: 1, Direction: straight()}},
		})
		if !errors.Is(err, errors.ErrCodeCorruptGraph) {
			t.Errorf("%s -> %s: error = %v, want CORRUPT_GRAPH", pair[0], pair[1], err)
		}
	}
}

func TestNegativeWeightRejected(t *testing.T) {
	b := NewBuilding("P1")
	err := b.AddNode(0, NodeSpec{
		ID:        "H1",
		Neighbors: []NeighborSpec{{ID: "H2", Weight: -1, Direction: straight()}},
	})
	if !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("error = %v, want CORRUPT_GRAPH", err)
	}
}

func TestUnknownTargetType(t *testing.T) {
	b := NewBuilding("P1")
	err := b.AddNode(0, NodeSpec{
		ID:        "H1",
		Neighbors: []NeighborSpec{{ID: "Z2", Weight: 1, Direction: straight()}},
	})
	if !errors.Is(err, errors.ErrCodeUnknownNodeType) {
		t.Errorf("error = %v, want UNKNOWN_NODE_TYPE", err)
	}
}

func TestSealRejectsDanglingEdge(t *testing.T) {
	b := NewBuilding("P1")
	if err := b.AddNode(0, NodeSpec{
		ID:        "H1",
		Neighbors: []NeighborSpec{{ID: "H2", Weight: 1, Direction: straight()}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.Seal(); !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("Seal() error = %v, want CORRUPT_GRAPH", err)
	}
}

func TestSealedGraphIsReadOnly(t *testing.T) {
	b := NewBuilding("P1")
	if err := b.AddNode(0, NodeSpec{ID: "H1"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Seal(); err != nil {
		t.Fatal(err)
	}
	if err := b.AddNode(0, NodeSpec{ID: "H2"}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("AddNode after Seal error = %v, want INTERNAL_ERROR", err)
	}
	if !b.Sealed() {
		t.Error("Sealed() = false")
	}
}

func TestShaftSharedAcrossFloors(t *testing.T) {
	b := NewBuilding("P1")
	err := b.Load([]FloorSpec{
		{Floor: 1, Rooms: []NodeSpec{
			{ID: "S1", Neighbors: []NeighborSpec{{ID: "H1", Weight: 2, Direction: straight()}}},
			{ID: "H1"},
		}},
		{Floor: 0, Rooms: []NodeSpec{
			{ID: "S1", Neighbors: []NeighborSpec{{ID: "H1", Weight: 3, Direction: straight()}}},
			{ID: "H1"},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Seal(); err != nil {
		t.Fatal(err)
	}

	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
	if b.Floors() != 2 {
		t.Errorf("Floors() = %d, want 2", b.Floors())
	}
	if floor, _ := b.Floor("S1"); floor != 0 {
		t.Errorf("Floor(S1) = %d, want 0 (first declared)", floor)
	}
	var targets []string
	for _, e := range b.Edges("S1") {
		targets = append(targets, e.To)
	}
	if want := []string{"H1_0", "H1_1"}; !slices.Equal(targets, want) {
		t.Errorf("Edges(S1) = %v, want %v", targets, want)
	}
}

func TestDuplicateRoomRejected(t *testing.T) {
	b := NewBuilding("P1")
	if err := b.AddNode(0, NodeSpec{ID: "H1"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddNode(0, NodeSpec{ID: "H1"}); !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("error = %v, want CORRUPT_GRAPH", err)
	}
}

func TestPredecessorKeysQualified(t *testing.T) {
	b := NewBuilding("P1")
	err := b.AddNode(2, NodeSpec{
		ID: "H1",
		Neighbors: []NeighborSpec{{
			ID:     "E5",
			Weight: 1,
			Direction: ByPredecessor(map[string]Turn{
				NoPredecessor: TurnLeft,
				"H2":          TurnRight,
				"S1":          TurnStraight,
			}),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	e, ok := b.Edge("H1_2", "E5_2")
	if !ok {
		t.Fatal("edge H1_2 -> E5_2 missing")
	}
	if want := []string{"H2_2", "S1", "null"}; !slices.Equal(e.Direction.Predecessors(), want) {
		t.Errorf("Predecessors() = %v, want %v", e.Direction.Predecessors(), want)
	}
	if turn, _ := e.Direction.Resolve("H2_2"); turn != TurnRight {
		t.Errorf("Resolve(H2_2) = %v, want right", turn)
	}
}

func TestEntrancesAndNames(t *testing.T) {
	b := NewBuilding("P1")
	err := b.Load([]FloorSpec{{Floor: 0, Rooms: []NodeSpec{
		{ID: "eP1_2"},
		{ID: "E1", Name: "Auditorium"},
		{ID: "eP1_1"},
		{ID: "E2", Name: "Auditorium"},
	}}})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"eP1_2", "eP1_1"}; !slices.Equal(b.Entrances(), want) {
		t.Errorf("Entrances() = %v, want %v", b.Entrances(), want)
	}
	if id, _ := b.FindByName("Auditorium"); id != "E1_0" {
		t.Errorf("FindByName = %q, want E1_0", id)
	}
	if id, _ := b.FindByName("E2"); id != "" {
		t.Errorf("FindByName(E2) = %q, want no match for a named room", id)
	}
	if n, _ := b.Node("eP1_1"); n.Name != "eP1_1" {
		t.Errorf("default name = %q, want raw id", n.Name)
	}
}

func TestCampusDisplayName(t *testing.T) {
	c := NewCampus("solbosch")
	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"c172", "Road 172", false},
		{"eR_2", "Entry 2 of building R", false},
		{"eP1_1", "Entry 1 of building P1", false},
		{"eR", "", true},
		{"x1", "", true},
	}
	for _, tt := range tests {
		got, err := c.DisplayName(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("DisplayName(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func countingCampus(t *testing.T, nodes []NodeSpec) (*Campus, *int) {
	t.Helper()
	c := NewCampus("solbosch")
	if err := c.Load(nodes); err != nil {
		t.Fatal(err)
	}
	calls := 0
	c.measure = func(a, b LatLon) float64 {
		calls++
		return Geodesic(a, b)
	}
	return c, &calls
}

func TestNearestReturnsEarly(t *testing.T) {
	c, calls := countingCampus(t, []NodeSpec{
		{ID: "c1", Lat: 50.8200, Lon: 4.3819},
		{ID: "c2", Lat: 50.81262, Lon: 4.3819},
		{ID: "c3", Lat: 50.8126, Lon: 4.3819},
		{ID: "c4", Lat: 50.8300, Lon: 4.3819},
	})

	got, err := c.Nearest(LatLon{Lat: 50.8126, Lon: 4.3819})
	if err != nil {
		t.Fatal(err)
	}
	if got != "c2" {
		t.Errorf("Nearest = %q, want c2 (first within tolerance)", got)
	}
	if *calls != 2 {
		t.Errorf("distance computed %d times, want 2", *calls)
	}
}

func TestNearestGlobalMinimum(t *testing.T) {
	c, calls := countingCampus(t, []NodeSpec{
		{ID: "c1", Lat: 50.8226, Lon: 4.3819},
		{ID: "c2", Lat: 50.8135, Lon: 4.3819},
		{ID: "c3", Lat: 50.8146, Lon: 4.3819},
	})

	got, err := c.Nearest(LatLon{Lat: 50.8126, Lon: 4.3819})
	if err != nil {
		t.Fatal(err)
	}
	if got != "c2" {
		t.Errorf("Nearest = %q, want c2", got)
	}
	if *calls != 3 {
		t.Errorf("distance computed %d times, want 3", *calls)
	}
}

func TestNearestEmptyCampus(t *testing.T) {
	_, err := NewCampus("empty").Nearest(LatLon{Lat: 50, Lon: 4})
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestCampusDistance(t *testing.T) {
	c := NewCampus("solbosch")
	// One thousandth of a degree of latitude along the meridian at 50.8 N.
	// A sphere of equatorial radius would give 111.32 m.
	d := c.Distance(LatLon{Lat: 50.812, Lon: 4.38}, LatLon{Lat: 50.813, Lon: 4.38})
	if math.Abs(d-111.245) > 0.01 {
		t.Errorf("Distance = %.3f, want 111.245", d)
	}
	if d := c.Distance(LatLon{Lat: 50.812, Lon: 4.38}, LatLon{Lat: 50.812, Lon: 4.38}); d != 0 {
		t.Errorf("Distance to self = %f", d)
	}
}

func TestCampusBound(t *testing.T) {
	c := NewCampus("solbosch")
	if err := c.Load([]NodeSpec{
		{ID: "c1", Lat: 50.8130, Lon: 4.3790},
		{ID: "c2", Lat: 50.8110, Lon: 4.3830},
		{ID: "eR_1", Lat: 50.8120, Lon: 4.3810},
	}); err != nil {
		t.Fatal(err)
	}
	b := c.Bound()
	if b.Min.Lat() != 50.8110 || b.Min.Lon() != 4.3790 || b.Max.Lat() != 50.8130 || b.Max.Lon() != 4.3830 {
		t.Errorf("Bound = %v", b)
	}
}

func TestDirectionJSON(t *testing.T) {
	tests := []struct {
		in       string
		constant bool
		pred     string
		want     Turn
		wantErr  bool
	}{
		{`"left"`, true, NoPredecessor, TurnLeft, false},
		{`{"null": "right", "H2": "straight"}`, false, "H2", TurnStraight, false},
		{`{"null": "right"}`, false, NoPredecessor, TurnRight, false},
		{`42`, false, "", "", true},
	}
	for _, tt := range tests {
		var d Direction
		err := json.Unmarshal([]byte(tt.in), &d)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		if d.IsConstant() != tt.constant {
			t.Errorf("%s: IsConstant = %v, want %v", tt.in, d.IsConstant(), tt.constant)
		}
		if got, _ := d.Resolve(tt.pred); got != tt.want {
			t.Errorf("%s: Resolve(%q) = %v, want %v", tt.in, tt.pred, got, tt.want)
		}
		out, err := json.Marshal(d)
		if err != nil {
			t.Fatal(err)
		}
		var back Direction
		if err := json.Unmarshal(out, &back); err != nil {
			t.Fatal(err)
		}
		if back.String() != d.String() {
			t.Errorf("round trip %s -> %s", d, back)
		}
	}
}

func TestSite(t *testing.T) {
	s := NewSite(NewCampus("solbosch"))
	if err := s.AddBuilding(NewBuilding("P2")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBuilding(NewBuilding("P1")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBuilding(NewBuilding("P1")); err == nil {
		t.Error("duplicate building accepted")
	}
	if want := []string{"P1", "P2"}; !slices.Equal(s.BuildingNames(), want) {
		t.Errorf("BuildingNames() = %v, want %v", s.BuildingNames(), want)
	}
	if _, err := s.Building("K"); !errors.Is(err, errors.ErrCodeUnknownBuilding) {
		t.Errorf("Building(K) error = %v, want UNKNOWN_BUILDING", err)
	}
}

func TestParseRoomRef(t *testing.T) {
	ref, err := ParseRoomRef("P1:E214_3")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Building != "P1" || ref.Room != "E214_3" {
		t.Errorf("ParseRoomRef = %+v", ref)
	}
	if ref.String() != "P1:E214_3" {
		t.Errorf("String() = %q", ref.String())
	}
	if _, err := ParseRoomRef("E214_3"); !errors.Is(err, errors.ErrCodeInvalidQuery) {
		t.Errorf("missing building error = %v, want INVALID_QUERY", err)
	}
}
