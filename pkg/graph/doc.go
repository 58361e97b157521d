// Package graph provides the campus navigation graph model.
//
// Two graph kinds share one capability set:
//
//   - [Building]: the indoor graph of one building. Nodes are rooms, hallway
//     segments, shafts (stairs and lifts) and entrances, spread over floors.
//     Edges carry a weight in meters and a [Direction] telling the walker
//     which way to turn.
//   - [Campus]: the outdoor graph of the grounds. Nodes are road segments
//     and building exits with WGS84 coordinates; edges carry a weight only.
//
// A [Site] bundles one campus with the buildings standing on it. The only
// link between the outdoor graph and an indoor graph is a shared id: a
// building entrance "eP1_1" is the same id as the campus exit it opens onto.
//
// # Node Ids
//
// Ids start with a type prefix (see [Building.Classify], [Campus.Classify]).
// Indoor ids are floor-qualified by [Building.Qualify]: hallway "H3" on
// floor 2 becomes "H3_2". Stairs, lifts and entrances keep their raw id
// because one physical shaft or door spans every floor.
//
// # Lifecycle
//
// Graphs are built once with AddNode/AddNeighbors (or Load), then sealed.
// Sealing validates edge endpoints and freezes the graph. Sealed graphs
// are read-only and safe to share between goroutines without locking:
//
//	b := graph.NewBuilding("P1")
//	_ = b.Load(floors)           // []graph.FloorSpec decoded by pkg/io
//	if err := b.Seal(); err != nil {
//	    // CORRUPT_GRAPH
//	}
//
// # Directions
//
// An edge's turn may depend on where the walker came from. [Direction] is
// either a constant [Turn] or a table keyed by the predecessor of the edge's
// source, with [NoPredecessor] standing for "the walk starts here".
package graph
