// Package route finds shortest walking paths in a single graph.
//
// [ShortestPath] runs Dijkstra over any [graph.Graph] using the indexed heap
// of pkg/pqueue. It stops as soon as the target is popped, because the
// composer calls it once per candidate entrance.
//
// An unreachable target is not an error: the result carries an infinite
// distance and a nil path, and [Result.Reachable] reports false.
package route

import (
	"math"
	"slices"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/pqueue"
)

// Result is the outcome of one shortest-path query.
type Result struct {
	Distance float64  `json:"distance"`
	Path     []string `json:"path"`
}

// Unreachable is the result for a target that cannot be reached.
func Unreachable() Result { return Result{Distance: math.Inf(1)} }

// Reachable reports whether a path was found.
func (r Result) Reachable() bool { return !math.IsInf(r.Distance, 1) }

// Resolve maps a caller-supplied node reference to a node id. Literal ids
// are returned as is; otherwise the graph's display names are searched,
// unless the graph declares its ids to be always literal.
func Resolve(g graph.Graph, ref string) (string, error) {
	if ref == "" {
		return "", errors.New(errors.ErrCodeInvalidQuery, "node reference cannot be empty")
	}
	if _, ok := g.Node(ref); ok {
		return ref, nil
	}
	if !g.Literal() {
		if id, ok := g.FindByName(ref); ok {
			return id, nil
		}
	}
	return "", errors.New(errors.ErrCodeNodeNotFound, "no node %q in %s", ref, g.Name())
}

// ShortestPath returns the cheapest path from source to target.
//
// Ties between equal-distance frontier nodes are broken by the order in
// which they were first queued, so repeated calls return identical paths.
func ShortestPath(g graph.Graph, source, target string) (Result, error) {
	if source == "" || target == "" {
		return Result{}, errors.New(errors.ErrCodeInvalidQuery, "source and target are required")
	}
	src, err := Resolve(g, source)
	if err != nil {
		return Result{}, err
	}
	trg, err := Resolve(g, target)
	if err != nil {
		return Result{}, err
	}

	dist := map[string]float64{src: 0}
	prev := make(map[string]string)
	queue := pqueue.New[string]()
	_ = queue.Push(src, 0)

	distance := func(id string) float64 {
		if d, ok := dist[id]; ok {
			return d
		}
		return math.Inf(1)
	}

	found := false
	for queue.Len() > 0 {
		node, d, _ := queue.Pop()
		if node == trg {
			found = true
			break
		}
		for _, e := range g.Edges(node) {
			alt := d + e.Weight
			if alt < distance(e.To) {
				dist[e.To] = alt
				prev[e.To] = node
				queue.PushOrUpdate(e.To, alt)
			}
		}
	}
	if !found {
		return Unreachable(), nil
	}

	path := []string{trg}
	for at := trg; at != src; {
		at = prev[at]
		path = append(path, at)
	}
	slices.Reverse(path)
	return Result{Distance: dist[trg], Path: path}, nil
}

// PathWeight sums the edge weights along path. Consecutive nodes must be
// joined by an edge.
func PathWeight(g graph.Graph, path []string) (float64, error) {
	if len(path) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidQuery, "empty path")
	}
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		w, ok := edgeWeight(g, path[i], path[i+1])
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidQuery,
				"%s has no edge %s -> %s", g.Name(), path[i], path[i+1])
		}
		total += w
	}
	return total, nil
}

func edgeWeight(g graph.Graph, from, to string) (float64, bool) {
	for _, e := range g.Edges(from) {
		if e.To == to {
			return e.Weight, true
		}
	}
	return 0, false
}
