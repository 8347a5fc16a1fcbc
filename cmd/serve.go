package cmd

import (
	"time"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/connect"
	"github.com/blacktop/postcraft/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var (
		addr         string
		connectDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation and connection API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			studio := postcraft.NewStudio(newGenerator())
			if !studio.Configured() {
				logutil.Warnf("%s", studio.ConfigWarning())
			}

			flow := connect.NewFlow(connect.Options{
				Delay: connectDelay,
				OnChange: func(s connect.Session) {
					logutil.Infof("connection %s: %s", s.Platform, s.Step)
				},
			})

			return server.New(studio, flow).Start(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().DurationVar(&connectDelay, "connect-delay", connect.DefaultDelay, "Simulated provider latency for each connection step")
	return cmd
}
