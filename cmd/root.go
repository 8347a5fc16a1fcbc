/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/gemini"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	modelFlag   string
)

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postcraft [idea]",
		Short: "Draft platform-specific social posts with AI",
		Long: "postcraft turns a loose idea into a LinkedIn, X or Instagram post. " +
			"Provide the idea as an argument or on stdin, pick a platform and post type, " +
			"and optionally add a writing sample, style references and a source link.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: setup,
		RunE:              runGenerate,
		Example: `  postcraft "We just shipped dark mode" --platform linkedin
  postcraft "5 lessons from our migration" -p x -t thread --export
  echo "Behind the scenes of our studio" | postcraft -p instagram -t reel`,
	}

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Gemini model to generate with (default $POSTCRAFT_GEMINI_MODEL or gemini-2.5-flash)")
	addGenerateFlags(cmd)
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newPlatformsCommand())
	cmd.AddCommand(newConnectCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCompletionCommand())

	return cmd
}

func setup(cmd *cobra.Command, _ []string) error {
	logutil.SetVerbose(verboseFlag)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// newGenerator returns the configured generator, or the reason there is none.
// A missing API key is reported as a warning, not a failure, so callers can still run.
func newGenerator() (postcraft.Generator, error) {
	client, err := gemini.New(gemini.Config{Model: modelFlag})
	if err != nil {
		if gemini.IsConfigError(err) {
			logutil.Warnf("%v", err)
		}
		return nil, err
	}
	logutil.Debugf("using %s model %s", client.Name(), client.Model())
	return client, nil
}
