package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/navigator"
)

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	from    string // origin room "<building>:<room>"
	at      string // origin position "lat,lon"
	to      string // destination room "<building>:<room>"
	locale  string // instruction language
	json    bool   // print the result as JSON
	tui     bool   // step through the instructions interactively
	refresh bool   // recompute even if cached
	noCache bool   // disable the cache entirely
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Give walking directions to a room",
		Long: `Route from a room (--from) or a campus position (--at) to a room (--to).

Rooms are written <building>:<room>, where room is a node id such as
E214_2 or a display name such as 2.14.`,
		Example: `  wayfinder route --at 50.8125,4.3810 --to P1:2.14
  wayfinder route --from K:E7_0 --to P1:2.14 --locale fr --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "origin room <building>:<room>")
	cmd.Flags().StringVar(&opts.at, "at", "", "origin position lat,lon")
	cmd.Flags().StringVar(&opts.to, "to", "", "destination room <building>:<room>")
	cmd.Flags().StringVarP(&opts.locale, "locale", "l", "", "instruction language (en, fr; default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "step through the instructions interactively")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the route cache")
	cmd.MarkFlagsMutuallyExclusive("from", "at")
	cmd.MarkFlagsOneRequired("from", "at")
	cmd.MarkFlagsMutuallyExclusive("json", "tui")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (c *CLI) runRoute(cmd *cobra.Command, opts routeOpts) error {
	ctx := cmd.Context()

	q, err := opts.query()
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if q.Locale == "" {
		q.Locale = cfg.Locale
	}

	site, err := c.loadSite(ctx, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, site, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	var spinner *Spinner
	if !opts.json {
		spinner = newSpinnerWithContext(ctx, "Routing...")
		spinner.Start()
	}
	res, err := runner.Execute(ctx, q)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case opts.tui:
		_, err := tea.NewProgram(newStepModel(res), tea.WithContext(ctx)).Run()
		return err
	}
	writeRoute(cmd.OutOrStdout(), res)
	printStats(res.Stats, res.CacheHit)
	return nil
}

// query converts the flags into a navigator query.
func (o routeOpts) query() (navigator.Query, error) {
	q := navigator.Query{From: o.from, To: o.to, Locale: o.locale, Refresh: o.refresh}
	if o.at != "" {
		p, err := parseLatLon(o.at)
		if err != nil {
			return q, err
		}
		q.At = &p
	}
	return q, nil
}

// parseLatLon parses "lat,lon" in decimal degrees.
func parseLatLon(s string) (graph.LatLon, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return graph.LatLon{}, errors.New(errors.ErrCodeInvalidInput, "position %q must be lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return graph.LatLon{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return graph.LatLon{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "longitude %q", lonStr)
	}
	if err := errors.ValidateCoordinates(lat, lon); err != nil {
		return graph.LatLon{}, err
	}
	return graph.LatLon{Lat: lat, Lon: lon}, nil
}
