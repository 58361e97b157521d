package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/render/nodelink"
	"github.com/matzehuels/wayfinder/pkg/route"
)

// campusGraph selects the outdoor graph in graph subcommands.
const campusGraph = "campus"

// graphCommand creates the graph inspection command.
func (c *CLI) graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect the campus and building graphs",
	}

	cmd.AddCommand(c.graphCheckCommand())
	cmd.AddCommand(c.graphDotCommand())

	return cmd
}

// graphCheckCommand creates the "graph check" subcommand.
func (c *CLI) graphCheckCommand() *cobra.Command {
	var name, path string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load every graph and report problems",
		Long: `Load the campus and every building, which validates node ids, edges and
shafts. Entrances missing from the campus graph are reported as warnings.

With --path, also print the weight of a walk through one graph.`,
		Example: `  wayfinder graph check
  wayfinder graph check --graph P1 --path eP1_1,H1_0,E101_0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			site, err := c.loadSite(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			printKeyValue("Campus", fmt.Sprintf("%s (%d nodes, %d edges)",
				site.Campus.Name(), site.Campus.Len(), site.Campus.EdgeCount()))
			bound := site.Campus.Bound()
			printKeyValue("Bounds", fmt.Sprintf("%.5f,%.5f to %.5f,%.5f",
				bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon()))
			warnings := 0
			for _, bn := range site.BuildingNames() {
				b, err := site.Building(bn)
				if err != nil {
					return err
				}
				printKeyValue(bn, fmt.Sprintf("%d floors, %d nodes, %d edges, %d entrances",
					b.Floors(), b.Len(), b.EdgeCount(), len(b.Entrances())))
				if len(b.Entrances()) == 0 {
					printWarning("%s has no entrances and cannot be reached from outside", bn)
					warnings++
				}
				for _, e := range b.Entrances() {
					if _, ok := site.Campus.Node(e); !ok {
						printWarning("%s: entrance %s is not on the campus graph", bn, e)
						warnings++
					}
				}
			}

			if path != "" {
				g, err := graphByName(site, name)
				if err != nil {
					return err
				}
				w, err := route.PathWeight(g, splitIDs(path))
				if err != nil {
					return err
				}
				printKeyValue("Path", formatMeters(w))
			}

			if warnings > 0 {
				printInfo("%d warnings", warnings)
				return nil
			}
			printSuccess("All graphs are consistent")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "graph", "g", campusGraph, "graph for --path: a building name or \"campus\"")
	cmd.Flags().StringVar(&path, "path", "", "comma-separated node ids to weigh")

	return cmd
}

// graphDotCommand creates the "graph dot" subcommand.
func (c *CLI) graphDotCommand() *cobra.Command {
	var (
		output   string
		path     string
		svg      bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot <building|campus>",
		Short: "Render a graph as Graphviz DOT or SVG",
		Example: `  wayfinder graph dot P1 --path eP1_1,H1_0,E101_0 --svg -o p1.svg
  wayfinder graph dot campus > campus.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			site, err := c.loadSite(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			g, err := graphByName(site, args[0])
			if err != nil {
				return err
			}

			opts := nodelink.Options{Detailed: detailed}
			if path != "" {
				opts.Path = splitIDs(path)
				if _, err := route.PathWeight(g, opts.Path); err != nil {
					return err
				}
			}
			data := []byte(nodelink.ToDOT(g, opts))
			if svg {
				if data, err = nodelink.RenderSVG(cmd.Context(), string(data)); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			printSuccess("Rendered %s", g.Name())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&path, "path", "", "comma-separated node ids to highlight")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show node types and attributes")

	return cmd
}

// graphByName returns the campus for "campus" or its own name, otherwise
// the named building.
func graphByName(site *graph.Site, name string) (graph.Graph, error) {
	if name == campusGraph || name == site.Campus.Name() {
		return site.Campus, nil
	}
	return site.Building(name)
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
