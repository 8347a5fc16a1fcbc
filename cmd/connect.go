package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/connect"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newConnectCommand() *cobra.Command {
	var (
		assumeYes bool
		delay     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "connect <platform>",
		Short: "Walk through the (simulated) account connection flow",
		Long: "connect demonstrates linking a LinkedIn, X or Instagram account. " +
			"No credentials are requested or stored; the outcome is simulated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := postcraft.ParsePlatform(args[0])
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if file, ok := in.(*os.File); ok && !term.IsTerminal(int(file.Fd())) && !assumeYes {
				return errors.New("stdin is not a terminal: rerun with --yes to grant permissions automatically")
			}
			return runConnect(cmd, platform, bufio.NewReader(in), assumeYes, delay)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Grant permissions without asking")
	cmd.Flags().DurationVar(&delay, "delay", connect.DefaultDelay, "Simulated provider latency for each step")
	return cmd
}

func runConnect(cmd *cobra.Command, platform postcraft.Platform, in *bufio.Reader, assumeYes bool, delay time.Duration) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	changes := make(chan connect.Session, 8)
	flow := connect.NewFlow(connect.Options{
		Delay:    delay,
		OnChange: func(s connect.Session) { changes <- s },
	})

	if _, err := flow.Connect(platform); err != nil {
		return err
	}

	for {
		var s connect.Session
		select {
		case <-ctx.Done():
			flow.Cancel()
			return ctx.Err()
		case s = <-changes:
		}

		switch s.Step {
		case connect.Connecting:
			fmt.Fprintf(out, "Connecting to %s...\n", s.Platform)

		case connect.Permissions:
			fmt.Fprintf(out, "%s is asking for permission to read your profile and post on your behalf.\n", s.Platform)
			if assumeYes || confirm(out, in, "Allow access?") {
				if _, err := flow.Allow(); err != nil {
					return err
				}
				continue
			}
			if _, err := flow.Cancel(); err != nil {
				return err
			}

		case connect.Connected:
			fmt.Fprintf(out, "Connected to %s.\n", s.Platform)
			_, err := flow.Close()
			return err

		case connect.Error:
			fmt.Fprintf(out, "Could not connect to %s.\n", s.Platform)
			if !assumeYes && confirm(out, in, "Retry?") {
				if _, err := flow.Retry(); err != nil {
					return err
				}
				continue
			}
			flow.Back()
			return fmt.Errorf("connect %s: simulated authorization failed", s.Platform)

		case connect.Idle:
			fmt.Fprintln(out, "Connection cancelled.")
			return nil
		}
	}
}

func confirm(out io.Writer, in *bufio.Reader, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
