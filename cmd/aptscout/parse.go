package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/pipeline"
)

// NewParseCmd creates the parse command.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <url | url-list-file>",
		Short: "Parse listing pages into JSON records",
		Long: `Parse fetches listing pages and converts them into canonical JSON records.

With a URL, the record is printed and, when --output is given, also written
to that file.

With a file, every non-blank line is a listing URL or a path on the base URL
(https://www.otodom.pl unless configured otherwise). Records are written to
<output>/<index>.json, where index is the position of the URL in the list
starting at 0. Existing files are skipped unless --force is given. A listing
that fails is logged and the rest are still processed.

Examples:
  # Print one record
  aptscout parse https://www.otodom.pl/pl/oferta/mieszkanie-ID4abc

  # Parse a list produced by "aptscout scan"
  aptscout parse urls.txt -o ads`,
		Args: cobra.ExactArgs(1),
		RunE: runParseCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output file for a single URL, or output directory for a list (default: ads)")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing record files")

	return cmd
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	target, err := env.cfg.Target()
	if err != nil {
		return err
	}
	if isURL(target) {
		return parseSingle(ctx, env, target, output, cmd.OutOrStdout())
	}
	if output == "" {
		output = env.cfg.AdsDir
	}
	return parseList(ctx, env, target, output, force)
}

func parseSingle(ctx context.Context, env *runtimeEnv, url, output string, echo io.Writer) error {
	env.logger.Info("parsing single ad", "url", url)

	fetcher, release, err := newFetcher(ctx, env, url)
	if err != nil {
		return err
	}
	defer release()

	db, err := openStore(env)
	if err != nil {
		return err
	}
	opts := pipeline.ParseOptions{Fetcher: fetcher, Echo: echo, Force: true, Logger: env.logger}
	if db != nil {
		defer db.Close()
		opts.Store = db
	}

	job := &pipeline.Job{URL: url, OutputPath: output}
	return pipeline.NewParsePipeline(opts).Execute(ctx, job)
}

func parseList(ctx context.Context, env *runtimeEnv, path, outputDir string, force bool) error {
	env.logger.Info("parsing ads from url list file", "path", path)

	lines, err := readLines(path)
	if err != nil {
		return fmt.Errorf("failed to read url list: %w", err)
	}
	base := env.cfg.Site(env.cfg.BaseURL).BaseURL
	urls := resolveListURLs(base, lines)
	if len(urls) == 0 {
		env.logger.Warn("url list is empty", "path", path)
		return nil
	}

	fetcher, release, err := newFetcher(ctx, env, urls[0])
	if err != nil {
		return err
	}
	defer release()

	db, err := openStore(env)
	if err != nil {
		return err
	}
	opts := pipeline.ParseOptions{Fetcher: fetcher, Force: force, Logger: env.logger}
	if db != nil {
		defer db.Close()
		opts.Store = db
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return pipeline.NewParsePipeline(opts) },
		pipeline.WithConcurrency(env.cfg.Concurrency),
		pipeline.WithBatchLogger(env.logger),
	)
	result, err := bp.ProcessBatch(ctx, pipeline.ParseJobs(urls, outputDir))
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		env.logger.Warn("some listings failed", "failed", result.Failed, "total", result.Total)
	}
	return nil
}
