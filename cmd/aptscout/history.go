package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show scans and listings recorded in the listing store",
		Long: `History shows what earlier runs recorded in the listing store.

By default every scan is listed with its start URL, page count and number of
listing URLs found. Use --urls to list every known listing URL with the time
it was first and last seen, or --ads to list the parsed listings.

Examples:
  aptscout history
  aptscout history --urls
  aptscout history --ads`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("urls", "u", false, "List known listing URLs")
	cmd.Flags().BoolP("ads", "a", false, "List parsed listings")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listURLs, err := cmd.Flags().GetBool("urls")
	if err != nil {
		return err
	}
	listAds, err := cmd.Flags().GetBool("ads")
	if err != nil {
		return err
	}
	if listURLs && listAds {
		return errors.New("--urls and --ads cannot be used together")
	}

	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	if env.noStore {
		return errors.New("history needs the listing store; remove --no-store")
	}
	db, err := openStore(env)
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("listing store directory is not set")
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case listURLs:
		return printURLs(ctx, db, out)
	case listAds:
		return printAds(ctx, db, out)
	default:
		return printScans(ctx, db, out)
	}
}

func printScans(ctx context.Context, db *store.DB, out io.Writer) error {
	scans, err := db.ListScans(ctx)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}
	if len(scans) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		fmt.Fprintln(out, "\nUse 'aptscout scan <search-url>' to discover listings.")
		return nil
	}

	fmt.Fprintf(out, "Scan history (%d scans):\n\n", len(scans))
	fmt.Fprintf(out, "  %-20s  %-9s  %5s  %5s  %s\n", "Started", "Duration", "Pages", "URLs", "Start URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, sc := range scans {
		fmt.Fprintf(out, "  %-20s  %-9s  %5d  %5d  %s\n",
			sc.StartedAt.Local().Format(timeLayout),
			scanDuration(sc),
			sc.Pages,
			sc.URLCount,
			sc.StartURL,
		)
	}
	return nil
}

// scanDuration formats how long a scan ran, or "-" if it never finished.
func scanDuration(sc store.Scan) string {
	if sc.FinishedAt.IsZero() {
		return "-"
	}
	return sc.FinishedAt.Sub(sc.StartedAt).Round(time.Second).String()
}

func printURLs(ctx context.Context, db *store.DB, out io.Writer) error {
	urls, err := db.ListURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get listing urls: %w", err)
	}
	if len(urls) == 0 {
		fmt.Fprintln(out, "No listing URLs recorded.")
		return nil
	}

	scans := len(lo.Uniq(lo.Map(urls, func(u store.ListingURL, _ int) string { return u.ScanID })))
	fmt.Fprintf(out, "%d listing URLs from %d scans:\n\n", len(urls), scans)
	fmt.Fprintf(out, "  %-20s  %-20s  %s\n", "First seen", "Last seen", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, u := range urls {
		fmt.Fprintf(out, "  %-20s  %-20s  %s\n",
			u.FirstSeen.Local().Format(timeLayout),
			u.LastSeen.Local().Format(timeLayout),
			u.URL,
		)
	}
	return nil
}

func printAds(ctx context.Context, db *store.DB, out io.Writer) error {
	ads, err := db.ListAds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get listings: %w", err)
	}
	if len(ads) == 0 {
		fmt.Fprintln(out, "No listings recorded.")
		fmt.Fprintln(out, "\nUse 'aptscout parse <url>' to parse listings.")
		return nil
	}

	fmt.Fprintf(out, "%d listings:\n\n", len(ads))
	fmt.Fprintf(out, "  %-20s  %-14s  %-40s  %s\n", "Updated", "Price", "Title", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, ad := range ads {
		fmt.Fprintf(out, "  %-20s  %-14s  %-40s  %s\n",
			ad.UpdatedAt.Local().Format(timeLayout),
			ad.Price,
			shorten(ad.Title, 40),
			ad.URL,
		)
	}
	return nil
}

// shorten cuts s to at most n runes, marking the cut with "...".
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
