package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/config"
	"github.com/nao1215/aptscout/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parsed listings and summaries over HTTP",
		Long: `Serve starts a small HTTP server for browsing collected listings.

Endpoints:
  GET /data              every record in the ads directory paired with its
                         summary: [{"ad": {...}, "gpt": {...}}]
  GET /fetch-html?url=U  the page at U, fetched with the configured fetcher

With --static, files in that directory are served on every other path.

Examples:
  aptscout serve
  aptscout serve --addr :8080 --ads ads --gpt gpt --static web`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultListenAddress, "Listen address")
	cmd.Flags().String("ads", config.DefaultAdsDir, "Directory with listing records")
	cmd.Flags().String("gpt", config.DefaultSummaryDir, "Directory with summaries")
	cmd.Flags().String("static", "", "Directory with static files to serve")

	return cmd
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if env.cfg.ListenAddress, err = flags.GetString("addr"); err != nil {
		return err
	}
	if env.cfg.AdsDir, err = flags.GetString("ads"); err != nil {
		return err
	}
	if env.cfg.SummaryDir, err = flags.GetString("gpt"); err != nil {
		return err
	}
	static, err := flags.GetString("static")
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	fetcher, release, err := newFetcher(ctx, env, env.cfg.BaseURL)
	if err != nil {
		return err
	}
	defer release()

	opts := []server.Option{server.WithLogger(env.logger)}
	if static != "" {
		opts = append(opts, server.WithStaticDir(static))
	}
	srv := server.New(env.cfg.AdsDir, env.cfg.SummaryDir, fetcher, opts...)

	env.logger.Info("serving listings", "addr", env.cfg.ListenAddress,
		"ads", env.cfg.AdsDir, "gpt", env.cfg.SummaryDir)
	return srv.ListenAndServe(ctx, env.cfg.ListenAddress)
}
