// Package pkg provides the core libraries for Wayfinder campus navigation.
//
// # Overview
//
// Wayfinder answers "how do I walk to room 2.14 of building P1?" on a
// university campus. The grounds are one outdoor graph of roads and
// building entrances; every building is an indoor graph of floors joined
// by stairs and lifts. The two kinds of graph share only the entrance
// nodes, which is where a route crosses from one to the other.
//
// # Architecture
//
// The typical data flow:
//
//	campus + building JSON files
//	         ↓
//	    [io] package (decode, validate, seal)
//	         ↓
//	    [graph] package (Site: campus + buildings)
//	         ↓
//	    [compose] package (one shortest path per entrance, keep the cheapest)
//	         ↓
//	    [guide] package (turn-by-turn instructions, coordinates)
//	         ↓
//	    [navigator] package (queries, caching) → CLI / HTTP
//
// # Quick Start
//
//	cfg, _ := config.Load("wayfinder.toml")
//	site, _ := io.LoadSite(cfg, nil)
//
//	r := navigator.NewRunner(compose.New(site), nil, nil, nil)
//	res, _ := r.Execute(ctx, navigator.Query{
//	    At: &graph.LatLon{Lat: 50.8125, Lon: 4.3810},
//	    To: "P1:2.14",
//	})
//	for _, step := range res.Steps() {
//	    fmt.Println(step.Text)
//	}
//
// # Main Packages
//
// [graph] - Indoor and outdoor graphs, node type prefixes, turn directions
// and the Site that ties them together.
//
// [route] - Dijkstra over any graph, backed by the indexed heap in [pqueue].
//
// [compose] - Route composition through building entrances, evaluating
// candidate entrances concurrently.
//
// [guide] - Instruction synthesis in English and French.
//
// [navigator] - Query validation and cache-aside execution.
//
// [io] - Campus and building description formats.
//
// [render/nodelink] - Graphviz diagrams with a route highlighted.
//
// ## Infrastructure
//
// [cache] - Route cache backends (file, Redis, none).
//
// [store] - Saved route results for the web client (memory, Redis, MongoDB).
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors shared by every layer.
//
// [observability] - Hooks for tracing and metrics.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/graph
// [route]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/route
// [pqueue]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/pqueue
// [compose]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/compose
// [guide]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/guide
// [navigator]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/navigator
// [io]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/wayfinder/pkg/observability
package pkg
