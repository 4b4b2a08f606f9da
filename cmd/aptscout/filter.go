package main

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/nao1215/aptscout/internal/config"
	"github.com/nao1215/aptscout/internal/price"
	"github.com/nao1215/aptscout/internal/report"
)

// Output formats of the filter command.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatText     = "text"
)

// NewFilterCmd creates the filter command.
func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <dir>",
		Short: "Keep summaries whose total monthly price is within a limit",
		Long: `Filter reads every *.ai.json summary in a directory, adds up rent,
administrative fee and parking, and keeps the listings whose total is at
most the limit, cheapest first.

Each kept summary gains "path" and "totalPrice" keys. A summary without the
Price object or one of its three components is logged and skipped; a
component that is not a number counts as zero.

Examples:
  # JSON array on stdout
  aptscout filter gpt

  # Markdown report with a limit of 2500
  aptscout filter gpt -l 2500 -f markdown -o report.md`,
		Args: cobra.ExactArgs(1),
		RunE: runFilterCmd,
	}

	cmd.Flags().Float64P("limit", "l", config.DefaultPriceLimit, "Upper limit for the total price")
	cmd.Flags().StringP("output", "o", "", "Write the result to this file instead of stdout")
	cmd.Flags().StringP("format", "f", formatJSON, "Output format: json, markdown or text")
	cmd.Flags().String("lang", "pl", "Language used to format amounts in the markdown report")

	return cmd
}

func runFilterCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if env.cfg.PriceLimit, err = flags.GetFloat64("limit"); err != nil {
		return err
	}
	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	lang, err := flags.GetString("lang")
	if err != nil {
		return err
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}

	dir, err := env.cfg.Target()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	env.logger.Info("filtering ads by total price", "dir", dir, "limit", env.cfg.PriceLimit)
	records, err := price.LoadDir(ctx, dir, env.logger)
	if err != nil {
		return err
	}
	kept := price.Filter(records, env.cfg.PriceLimit)
	env.logger.Debug("filtered list ready", "kept", len(kept), "loaded", len(records))

	var buf bytes.Buffer
	w, err := newReportWriter(format, &buf, tag)
	if err != nil {
		return err
	}
	if _, err := w.Write(&report.FilterReport{
		Dir:         dir,
		Limit:       env.cfg.PriceLimit,
		Loaded:      len(records),
		Records:     kept,
		GeneratedAt: time.Now(),
	}); err != nil {
		return err
	}
	return writeOutput(output, cmd.OutOrStdout(), buf.Bytes())
}

func newReportWriter(format string, out io.Writer, tag language.Tag) (report.Writer, error) {
	switch format {
	case formatJSON:
		return report.NewJSONWriter(out), nil
	case formatMarkdown, "md":
		return report.NewMarkdownWriter(out, report.WithLanguage(tag)), nil
	case formatText:
		return report.NewTextWriter(out), nil
	default:
		return nil, fmt.Errorf("unknown format %q: use json, markdown or text", format)
	}
}
