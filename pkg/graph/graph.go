package graph

import (
	"fmt"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

// Graph is the read-only capability set shared by [Building] and [Campus].
// The solver and renderers only depend on this interface.
type Graph interface {
	// Name identifies the graph: the building name or the campus file name.
	Name() string
	Kind() Kind
	// Node returns the node with the given id.
	Node(id string) (*Node, bool)
	// Edges returns the outgoing edges of id in insertion order.
	Edges(id string) []Edge
	// FindByName returns the id of the first node whose display name is name.
	FindByName(name string) (string, bool)
	// Literal reports that ids given to this graph are always literal, so
	// callers must not fall back to display-name lookup.
	Literal() bool
	// Nodes returns every node in insertion order.
	Nodes() []*Node
	Len() int
}

// store holds the nodes and adjacency shared by both graph kinds.
// It is not safe for concurrent mutation; sealed stores are read-only.
type store struct {
	name   string
	nodes  map[string]*Node
	order  []string
	out    map[string][]Edge
	byName map[string]string
	sealed bool
}

func newStore(name string) store {
	return store{
		name:   name,
		nodes:  make(map[string]*Node),
		out:    make(map[string][]Edge),
		byName: make(map[string]string),
	}
}

// Name returns the graph name.
func (s *store) Name() string { return s.name }

// Node returns the node with the given id.
func (s *store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Edges returns the outgoing edges of id. The slice must not be modified.
func (s *store) Edges(id string) []Edge { return s.out[id] }

// Edge returns the edge from -> to.
func (s *store) Edge(from, to string) (Edge, bool) {
	for _, e := range s.out[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// FindByName returns the id of the first node declared with display name.
func (s *store) FindByName(name string) (string, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Nodes returns all nodes in insertion order.
func (s *store) Nodes() []*Node {
	out := make([]*Node, len(s.order))
	for i, id := range s.order {
		out[i] = s.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (s *store) Len() int { return len(s.order) }

// EdgeCount returns the number of directed edges.
func (s *store) EdgeCount() int {
	n := 0
	for _, es := range s.out {
		n += len(es)
	}
	return n
}

// Sealed reports whether the graph is frozen.
func (s *store) Sealed() bool { return s.sealed }

func (s *store) checkMutable() error {
	if s.sealed {
		return errors.New(errors.ErrCodeInternal, "graph %s is sealed", s.name)
	}
	return nil
}

// put inserts n or, when the id is already known, keeps the existing node
// and returns it. The boolean reports whether n was new.
func (s *store) put(n *Node) (*Node, bool) {
	if existing, ok := s.nodes[n.ID]; ok {
		return existing, false
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	if n.Name != "" {
		if _, taken := s.byName[n.Name]; !taken {
			s.byName[n.Name] = n.ID
		}
	}
	return n, true
}

// link adds e, replacing an earlier edge with the same endpoints in place.
func (s *store) link(e Edge) error {
	if e.Weight < 0 {
		return errors.New(errors.ErrCodeCorruptGraph,
			"%s: edge %s -> %s has negative weight %v", s.name, e.From, e.To, e.Weight)
	}
	edges := s.out[e.From]
	for i := range edges {
		if edges[i].To == e.To {
			edges[i] = e
			return nil
		}
	}
	s.out[e.From] = append(edges, e)
	return nil
}

// seal verifies that every edge points at a declared node and freezes the
// store.
func (s *store) seal() error {
	if s.sealed {
		return nil
	}
	for _, id := range s.order {
		for _, e := range s.out[id] {
			if _, ok := s.nodes[e.To]; !ok {
				return errors.New(errors.ErrCodeCorruptGraph,
					"%s: edge %s -> %s points at an undeclared node", s.name, e.From, e.To)
			}
		}
	}
	for from := range s.out {
		if _, ok := s.nodes[from]; !ok {
			return errors.New(errors.ErrCodeCorruptGraph,
				"%s: edges declared for unknown node %s", s.name, from)
		}
	}
	s.sealed = true
	return nil
}

func (s *store) String() string {
	return fmt.Sprintf("%s (%d nodes, %d edges)", s.name, s.Len(), s.EdgeCount())
}
