package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/twitter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	platformFlag  string
	postTypeFlag  string
	sampleFlag    string
	sampleFile    string
	stylesFlag    string
	sourceURLFlag string
	jsonOutput    bool
	dryRun        bool
	exportFlag    bool
)

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "linkedin", "Target platform (linkedin, x, instagram)")
	cmd.Flags().StringVarP(&postTypeFlag, "type", "t", "", "Post type for the platform (e.g. text, image, tweet, thread, post, story, reel)")
	cmd.Flags().StringVar(&sampleFlag, "sample", "", "A sample of your own writing to match")
	cmd.Flags().StringVar(&sampleFile, "sample-file", "", "Read the writing sample from a file")
	cmd.Flags().StringVar(&stylesFlag, "styles", "", "Influencers or styles to draw inspiration from")
	cmd.Flags().StringVar(&sourceURLFlag, "source-url", "", "Link to an article or video to base the post on")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the generated post as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the prompt without calling the AI provider")
	cmd.Flags().BoolVar(&exportFlag, "export", false, "Also print the X API payloads for X posts")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	idea, err := resolveIdea(cmd, args)
	if err != nil {
		return err
	}

	platform, err := postcraft.ParsePlatform(platformFlag)
	if err != nil {
		return err
	}
	postType, err := postcraft.ParsePostType(platform, postTypeFlag)
	if err != nil {
		return err
	}

	sample, err := resolveSample()
	if err != nil {
		return err
	}

	input := postcraft.ContentInput{
		MainIdea:          idea,
		UserWritingSample: sample,
		InfluencerStyles:  strings.TrimSpace(stylesFlag),
		SourceURL:         strings.TrimSpace(sourceURLFlag),
		PostType:          postType,
	}

	if dryRun {
		req, err := postcraft.BuildRequest(platform, input)
		if err != nil {
			return errors.New(postcraft.UserMessage(err))
		}
		fmt.Fprintf(out, "[dry-run] %s %s (grounding: %t)\n\n%s\n", req.Platform, req.PostType, req.Grounding, req.Prompt)
		return nil
	}

	studio := postcraft.NewStudio(newGenerator())
	post, err := studio.Generate(ctx, platform, input)
	if err != nil {
		logutil.Debugf("generate failed: %v", err)
		return errors.New(postcraft.UserMessage(err))
	}

	if jsonOutput {
		if err := writeJSON(out, post); err != nil {
			return err
		}
	} else {
		renderPost(out, post)
	}

	if exportFlag && post.Platform == postcraft.X {
		drafts, err := twitter.Export(post)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintln(out)
		for _, d := range drafts {
			fmt.Fprintf(out, "[export] tweet %d (%d chars, reply to %d): %s\n", d.Index+1, d.Chars, d.ReplyTo+1, d.Payload)
		}
	}
	return nil
}

func resolveIdea(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	var idea string
	if file, ok := cmd.InOrStdin().(*os.File); ok && !term.IsTerminal(int(file.Fd())) {
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		idea = strings.TrimSpace(string(data))
	}

	if idea == "" {
		return "", errors.New("an idea is required")
	}
	return idea, nil
}

func resolveSample() (string, error) {
	if sampleFile == "" {
		return strings.TrimSpace(sampleFlag), nil
	}
	if sampleFlag != "" {
		return "", errors.New("provide the writing sample either with --sample or --sample-file, not both")
	}
	data, err := os.ReadFile(sampleFile)
	if err != nil {
		return "", fmt.Errorf("read sample: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func renderPost(out io.Writer, post postcraft.DisplayPost) {
	fmt.Fprintf(out, "Generated %s %s\n\n", post.Platform, post.PostType)

	if post.Image != nil {
		fmt.Fprintf(out, "[image %dx%d] %s\n\n", post.Image.Width, post.Image.Height, post.Image.URL)
	}

	if len(post.Segments) > 1 {
		for i, seg := range post.Segments {
			fmt.Fprintf(out, "Tweet %d\n%s\n\n", i+1, seg)
		}
	} else {
		fmt.Fprintf(out, "%s\n", post.Text)
	}

	if len(post.Citations) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, c := range post.Citations {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			fmt.Fprintf(out, "  - %s (%s)\n", title, c.URI)
		}
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
