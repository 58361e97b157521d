package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wayfinder/internal/server"
	"github.com/matzehuels/wayfinder/pkg/store"
)

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve routes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cfg.Server.Locale == "" {
				cfg.Server.Locale = cfg.Locale
			}

			site, err := c.loadSite(ctx, cfg)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, site, false)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			st, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			printKeyValue("Buildings", strconv.Itoa(len(site.BuildingNames())))
			printKeyValue("Cache", cfg.Cache.Backend)
			printKeyValue("Store", cfg.Store.Backend)
			printKeyValue("Locale", cfg.Server.Locale)
			printDetail("Listening on %s", cfg.Server.Addr)

			return server.New(runner, st, cfg.Server, cfg.Store.TTL, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
