package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/spf13/cobra"
)

func newPlatformsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List supported platforms and their post types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configs := make([]postcraft.PlatformConfig, 0, len(postcraft.Platforms))
			for _, p := range postcraft.Platforms {
				cfg, _ := postcraft.Config(p)
				configs = append(configs, cfg)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), configs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PLATFORM\tTHEME\tPOST TYPES")
			for _, cfg := range configs {
				types := make([]string, 0, len(cfg.PostTypes))
				for _, t := range cfg.PostTypes {
					types = append(types, string(t))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", cfg.Name, cfg.Theme, strings.Join(types, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}
