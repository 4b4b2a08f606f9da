package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/htmlclean"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <url | html-file>",
		Short: "Strip scripts, styles and empty tags from a page",
		Long: `Clean reduces a page to its content: script and style elements,
comments, style attributes and elements without text are removed.

The input is fetched when it is a URL and read from disk otherwise.

Examples:
  aptscout clean https://www.otodom.pl/pl/oferta/mieszkanie-ID4abc -o ad.html
  aptscout clean saved.html`,
		Args: cobra.ExactArgs(1),
		RunE: runCleanCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Write the cleaned page to this file instead of stdout")

	return cmd
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	target, err := env.cfg.Target()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var body []byte
	if isURL(target) {
		fetcher, release, err := newFetcher(ctx, env, target)
		if err != nil {
			return err
		}
		body, err = fetcher.Fetch(ctx, target)
		release()
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", target, err)
		}
	} else {
		body, err = os.ReadFile(filepath.Clean(target))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", target, err)
		}
	}

	cleaned, err := htmlclean.CleanBytes(body)
	if err != nil {
		return err
	}
	env.logger.Debug("page cleaned", "before", len(body), "after", len(cleaned))

	return writeOutput(output, cmd.OutOrStdout(), []byte(cleaned))
}
