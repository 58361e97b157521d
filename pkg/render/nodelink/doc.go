// Package nodelink draws building and campus graphs as Graphviz diagrams.
//
// [ToDOT] emits DOT source with nodes filled in their type color, edge
// weights as labels and, for buildings, one cluster per floor. A route
// passed in [Options.Path] is drawn in red on top of the graph:
//
//	dot := nodelink.ToDOT(building, nodelink.Options{Path: res.Path})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [RenderSVG] runs Graphviz through its WebAssembly build, so no dot
// binary is needed.
package nodelink
