package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wayfinder/pkg/graph"
)

// HighlightColor draws the route passed in [Options.Path].
const HighlightColor = "#D62728"

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node type and metadata to labels.
	Detailed bool
	// Path is a route through the graph to highlight.
	Path []string
}

// floored is implemented by building graphs.
type floored interface {
	Floor(id string) (int, bool)
}

// ToDOT converts g to Graphviz DOT source.
func ToDOT(g graph.Graph, opts Options) string {
	onPath := make(map[string]bool, len(opts.Path))
	for _, id := range opts.Path {
		onPath[id] = true
	}
	pathEdges := make(map[[2]string]bool, len(opts.Path))
	for i := 0; i+1 < len(opts.Path); i++ {
		pathEdges[[2]string{opts.Path[i], opts.Path[i+1]}] = true
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", g.Name())
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [fontsize=9, color=\"#888888\"];\n")
	buf.WriteString("\n")

	floors := map[int][]*graph.Node{}
	var loose []*graph.Node
	fl, isBuilding := g.(floored)
	for _, n := range g.Nodes() {
		if isBuilding && !n.Type.IsShaft() && n.Type != graph.TypeEntrance {
			f, _ := fl.Floor(n.ID)
			floors[f] = append(floors[f], n)
			continue
		}
		loose = append(loose, n)
	}

	for _, f := range slices.Sorted(maps.Keys(floors)) {
		fmt.Fprintf(&buf, "  subgraph \"cluster_floor_%d\" {\n", f)
		fmt.Fprintf(&buf, "    label=\"Floor %d\";\n    style=dashed;\n", f)
		for _, n := range floors[f] {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed, onPath[n.ID]), ", "))
		}
		buf.WriteString("  }\n")
	}
	for _, n := range loose {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed, onPath[n.ID]), ", "))
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		for _, e := range g.Edges(n.ID) {
			attrs := []string{fmt.Sprintf("label=%q", strconv.FormatFloat(e.Weight, 'f', -1, 64))}
			if pathEdges[[2]string{e.From, e.To}] {
				attrs = append(attrs, "color=\""+HighlightColor+"\"", "penwidth=3")
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.ID
	if n.Name != "" && n.Name != n.ID {
		label += "\n" + n.Name
	}
	if !detailed {
		return label
	}
	parts := []string{"type: " + string(n.Type)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, detailed, highlighted bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", graph.Color(n.Type)),
	}
	if highlighted {
		attrs = append(attrs, "color=\""+HighlightColor+"\"", "penwidth=3")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
