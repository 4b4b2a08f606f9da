package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/config"
	"github.com/nao1215/aptscout/internal/listing"
	"github.com/nao1215/aptscout/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <search-url>",
		Short: "Collect listing URLs from paginated search results",
		Long: `Scan walks the result pages of a search URL and prints every listing URL
it finds, one per line, in discovery order.

The walk advances the "page" query parameter and stops at the first page
without listings, at the "no results" marker, or after --max-pages pages.
A search URL without a page parameter is scanned as a single page.

Discovered URLs are also recorded in the listing store unless --no-store
is given.

Examples:
  # Print listing URLs of a search
  aptscout scan "https://www.otodom.pl/pl/wyniki/wynajem/mieszkanie/mazowieckie/warszawa?page=1"

  # Save the list for "aptscout parse"
  aptscout scan -o urls.txt "https://www.otodom.pl/pl/wyniki/wynajem/mieszkanie/warszawa?page=1"`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of result pages to visit")
	cmd.Flags().StringP("output", "o", "",
		"Write URLs to this file instead of stdout")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	if env.cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return err
	}
	if err := env.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	// URLs found before an early stop are still written; a scan that
	// found nothing leaves an existing output file alone.
	var buf bytes.Buffer
	err = runScan(ctx, env, &buf)
	if err == nil || buf.Len() > 0 {
		if werr := writeOutput(output, cmd.OutOrStdout(), buf.Bytes()); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// runScan walks the search results and writes the URLs found to out. URLs
// found before an early stop are still written and stored.
func runScan(ctx context.Context, env *runtimeEnv, out io.Writer) error {
	target, err := env.cfg.Target()
	if err != nil {
		return err
	}
	logger := env.logger

	fetcher, release, err := newFetcher(ctx, env, target)
	if err != nil {
		return err
	}
	defer release()

	db, err := openStore(env)
	if err != nil {
		return err
	}
	var scanID string
	if db != nil {
		defer db.Close()
		if scanID, err = db.BeginScan(ctx, target); err != nil {
			return err
		}
	}

	pages := 0
	walker := listing.NewWalker(fetcher,
		listing.WithMaxPages(env.cfg.MaxPages),
		listing.WithLogger(logger),
		listing.WithPageFunc(func(page int, pageURL string, links []string) {
			pages++
			logger.Info("result page done", "page", page, "links", len(links), "url", pageURL)
		}),
	)

	found, walkErr := walker.Walk(ctx, target)
	urls := found.URLs()
	if _, err := report.NewURLListWriter(out).Write(urls); err != nil {
		return fmt.Errorf("failed to write urls: %w", err)
	}

	if db != nil {
		// The walk may have been cancelled; record what was found anyway.
		storeCtx := context.WithoutCancel(ctx)
		added, err := db.RecordURLs(storeCtx, scanID, urls)
		if err != nil {
			return err
		}
		if err := db.FinishScan(storeCtx, scanID, pages, len(urls)); err != nil {
			return err
		}
		logger.Info("urls recorded", "scan", scanID, "total", len(urls), "new", added)
	}

	switch {
	case walkErr == nil:
		return nil
	case errors.Is(walkErr, listing.ErrMaxPages):
		logger.Warn("stopped at the page limit, results may be incomplete", "max_pages", env.cfg.MaxPages)
		return nil
	default:
		return fmt.Errorf("scan stopped early after %d page(s): %w", pages, walkErr)
	}
}
