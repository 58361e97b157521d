package guide

import (
	"slices"
	"testing"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
)

func edge(id string, w float64, t graph.Turn) graph.NeighborSpec {
	return graph.NeighborSpec{ID: id, Weight: w, Direction: graph.Constant(t)}
}

func keyed(id string, w float64, m map[string]graph.Turn) graph.NeighborSpec {
	return graph.NeighborSpec{ID: id, Weight: w, Direction: graph.ByPredecessor(m)}
}

// tower is a two-floor building joined by stairs S1 and lift L1. The
// entrance eX_1 opens on both floors, which lets a walk change floor
// without a shaft.
func tower(t *testing.T) *graph.Building {
	t.Helper()
	const (
		s = graph.TurnStraight
		l = graph.TurnLeft
		r = graph.TurnRight
	)
	b := graph.NewBuilding("X")
	err := b.Load([]graph.FloorSpec{
		{Floor: 0, Rooms: []graph.NodeSpec{
			{ID: "H1", Neighbors: []graph.NeighborSpec{edge("H2", 3, s)}},
			{ID: "H2", Neighbors: []graph.NeighborSpec{
				edge("E1", 2, l),
				keyed("S1", 4, map[string]graph.Turn{graph.NoPredecessor: s, "H1": r}),
				keyed("E2", 2, map[string]graph.Turn{"H1": l, "E1": r}),
				edge("E3", 2, s),
				edge("L1", 1, s),
				edge("eX_1", 5, s),
			}},
			{ID: "E1", Name: "Lab 1", Neighbors: []graph.NeighborSpec{edge("H2", 2, s)}},
			{ID: "E2", Name: "Office"},
			{ID: "E3", Name: "2.14"},
			{ID: "S1", Neighbors: []graph.NeighborSpec{edge("H2", 4, s)}},
			{ID: "L1", Neighbors: []graph.NeighborSpec{edge("H2", 1, s)}},
			{ID: "eX_1", Neighbors: []graph.NeighborSpec{edge("H2", 5, s)}},
		}},
		{Floor: 1, Rooms: []graph.NodeSpec{
			{ID: "S1", Neighbors: []graph.NeighborSpec{edge("H5", 2, l)}},
			{ID: "L1", Neighbors: []graph.NeighborSpec{edge("H5", 1, s)}},
			{ID: "eX_1", Neighbors: []graph.NeighborSpec{edge("H5", 1, s)}},
			{ID: "H5", Neighbors: []graph.NeighborSpec{edge("S1", 2, s), edge("L1", 1, s), edge("E10", 1, r)}},
			{ID: "E10", Name: "Lab 10"},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Seal(); err != nil {
		t.Fatal(err)
	}
	return b
}

func kinds(in Instructions) []Kind {
	out := make([]Kind, len(in.Steps))
	for i, s := range in.Steps {
		out[i] = s.Kind
	}
	return out
}

func TestStraightLineArrival(t *testing.T) {
	got, err := Synthesize(tower(t), []string{"H1_0", "H2_0", "E3_0"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []Kind{Straight, Arrived}; !slices.Equal(kinds(got), want) {
		t.Fatalf("kinds = %v, want %v", kinds(got), want)
	}
	want := []string{"Go straight ahead", "Room 2.14 is in front of you"}
	if !slices.Equal(got.Texts(), want) {
		t.Errorf("Texts() = %q, want %q", got.Texts(), want)
	}
}

func TestStairsBetweenFloors(t *testing.T) {
	tests := []struct {
		name string
		path []string
		text string
	}{
		{"up", []string{"H2_0", "S1", "H5_1"}, "Take the stairs up to floor 1"},
		{"down", []string{"H5_1", "S1", "H2_0"}, "Take the stairs down to floor 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Synthesize(tower(t), tt.path)
			if err != nil {
				t.Fatal(err)
			}
			var stairs []Step
			for _, s := range got.Steps {
				if s.Kind == Stairs {
					stairs = append(stairs, s)
				}
			}
			if len(stairs) != 1 {
				t.Fatalf("got %d stairs steps in %v, want 1", len(stairs), kinds(got))
			}
			if stairs[0].Text != tt.text {
				t.Errorf("text = %q, want %q", stairs[0].Text, tt.text)
			}
			if stairs[0].Icon != DefaultIconDir+"take_stairs"+DefaultIconExt {
				t.Errorf("icon = %q", stairs[0].Icon)
			}
			if last := got.Steps[len(got.Steps)-1]; last.Kind != Stairs {
				t.Errorf("floor change was rewritten to %v", last.Kind)
			}
		})
	}
}

func TestElevator(t *testing.T) {
	got, err := Synthesize(tower(t), []string{"H2_0", "L1", "H5_1"})
	if err != nil {
		t.Fatal(err)
	}
	last := got.Steps[len(got.Steps)-1]
	if last.Kind != Elevator || last.Text != "Take the elevator up to floor 1" {
		t.Errorf("last step = %+v", last)
	}
	if last.Icon != DefaultIconDir+"take_lift"+DefaultIconExt {
		t.Errorf("icon = %q", last.Icon)
	}
}

func TestFullWalk(t *testing.T) {
	got, err := Synthesize(tower(t), []string{"H1_0", "H2_0", "S1", "H5_1", "E10_1"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Go straight ahead",
		"Turn right",
		"Take the stairs up to floor 1",
		"Room Lab 10 is on your right",
	}
	if !slices.Equal(got.Texts(), want) {
		t.Errorf("Texts() = %q, want %q", got.Texts(), want)
	}
	icons := got.Icons()
	if len(icons) != len(want) || icons[3] != DefaultIconDir+"arrived"+DefaultIconExt {
		t.Errorf("Icons() = %v", icons)
	}
}

func TestPredecessorDependentDirection(t *testing.T) {
	b := tower(t)
	fromHall, err := Synthesize(b, []string{"H1_0", "H2_0", "E2_0"})
	if err != nil {
		t.Fatal(err)
	}
	fromLab, err := Synthesize(b, []string{"E1_0", "H2_0", "E2_0"})
	if err != nil {
		t.Fatal(err)
	}
	if got := fromHall.Steps[1].Text; got != "Room Office is on your left" {
		t.Errorf("from H1: %q", got)
	}
	if got := fromLab.Steps[1].Text; got != "Room Office is on your right" {
		t.Errorf("from E1: %q", got)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	b := tower(t)
	tests := []struct {
		name string
		path []string
		want errors.Code
	}{
		{"no predecessor entry", []string{"H2_0", "E2_0"}, errors.ErrCodeCorruptGraph},
		{"floor change outside a shaft", []string{"H2_0", "eX_1", "H5_1"}, errors.ErrCodeCorruptGraph},
		{"missing edge", []string{"H1_0", "E10_1"}, errors.ErrCodeInvalidQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Synthesize(b, tt.path); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestShortPaths(t *testing.T) {
	for _, path := range [][]string{nil, {"H1_0"}} {
		got, err := Synthesize(tower(t), path)
		if err != nil || got.Len() != 0 {
			t.Errorf("Synthesize(%v) = %v, %v; want no steps", path, got, err)
		}
	}
}

func TestLocaleAndIcons(t *testing.T) {
	fr, err := Lookup("fr")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Synthesize(tower(t), []string{"H1_0", "H2_0", "S1", "H5_1", "E10_1"},
		WithPhrasebook(fr), WithIcons("/static/icons/", ".svg"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Allez tout droit",
		"Tournez à droite",
		"Montez les escaliers jusqu'à l'étage 1",
		"La salle Lab 10 est sur votre droite",
	}
	if !slices.Equal(got.Texts(), want) {
		t.Errorf("Texts() = %q, want %q", got.Texts(), want)
	}
	if got.Steps[0].Icon != "/static/icons/go_straight.svg" {
		t.Errorf("icon = %q", got.Steps[0].Icon)
	}

	if _, err := Lookup("de"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Lookup(de) error = %v, want INVALID_INPUT", err)
	}
	if p, _ := Lookup(""); p != English {
		t.Error("Lookup(\"\") is not English")
	}
}

func TestCoordinates(t *testing.T) {
	c := graph.NewCampus("campus")
	_ = c.Load([]graph.NodeSpec{
		{ID: "c1", Lat: 50.1, Lon: 4.1},
		{ID: "c2", Lat: 50.2, Lon: 4.2},
	})
	got, err := Coordinates(c, []string{"c2", "c1"})
	if err != nil {
		t.Fatal(err)
	}
	want := []graph.LatLon{{Lat: 50.2, Lon: 4.2}, {Lat: 50.1, Lon: 4.1}}
	if !slices.Equal(got, want) {
		t.Errorf("Coordinates = %v, want %v", got, want)
	}
	if _, err := Coordinates(c, []string{"c9"}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("error = %v, want NODE_NOT_FOUND", err)
	}
}
