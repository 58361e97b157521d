package cli

import (
	"github.com/spf13/cobra"

	wio "github.com/matzehuels/wayfinder/pkg/io"
)

// weightsCommand creates the command that rewrites outdoor edge weights.
func (c *CLI) weightsCommand() *cobra.Command {
	var (
		output string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Recompute campus edge weights from node coordinates",
		Long: `Set every outdoor edge weight to the great-circle distance between its
endpoints, in meters rounded to the centimeter, and write the campus file
back. Node attributes are preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			src := cfg.Resolve(cfg.Campus.File)
			d, err := wio.DecodeCampusFile(src)
			if err != nil {
				return err
			}
			changed, err := wio.RecomputeWeights(d)
			if err != nil {
				return err
			}
			logger.Debug("weights recomputed", "file", src, "nodes", len(d.Nodes), "changed", changed)

			if dryRun {
				printInfo("%d weights would change", changed)
				return nil
			}
			dst := output
			if dst == "" {
				dst = src
			}
			if err := wio.ExportCampus(d, dst); err != nil {
				return err
			}
			printSuccess("Updated %d weights", changed)
			printFile(dst)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the campus file)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report how many weights would change")

	return cmd
}
