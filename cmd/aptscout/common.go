package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/config"
	"github.com/nao1215/aptscout/internal/fetch"
	applog "github.com/nao1215/aptscout/internal/log"
	"github.com/nao1215/aptscout/internal/store"
)

// runtimeEnv carries what every command needs after flag parsing.
type runtimeEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	noStore bool
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the masking structured logger used by every command.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return applog.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// prepare builds the configuration from defaults, .env, the environment,
// the config file and flags, then validates it and sets up logging.
func prepare(cmd *cobra.Command, args []string) (*runtimeEnv, error) {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	noStore, err := cmd.Flags().GetBool("no-store")
	if err != nil {
		return nil, err
	}
	return &runtimeEnv{cfg: cfg, logger: logger, noStore: noStore}, nil
}

// buildConfig creates a Config from the command's flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	envFile, err := flags.GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(envFile, envFile != ""); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(nil)

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	explicitConfigPath := cfg.ConfigFilePath != ""
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.RenderMode, err = flags.GetString("render"); err != nil {
		return nil, err
	}
	if cfg.RequestRate, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}

	// These flags override the environment only when given.
	for name, dst := range map[string]*string{
		"proxy":       &cfg.ProxyAddress,
		"chrome-path": &cfg.ChromePath,
		"user-agent":  &cfg.UserAgent,
		"db-dir":      &cfg.DBDir,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	cfg.Targets = args
	return cfg, nil
}

// newFetcher returns the fetcher for pages of siteURL's host and a func
// that releases it.
func newFetcher(ctx context.Context, env *runtimeEnv, siteURL string) (fetch.Fetcher, func(), error) {
	cfg := env.cfg
	site := cfg.Site(siteURL)

	switch site.RenderMode {
	case config.RenderModeHTTP:
		client, err := fetch.NewHTTPClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		opts := []fetch.HTTPOption{
			fetch.WithCookie(site.Cookie),
			fetch.WithHeaders(site.Headers),
			fetch.WithMaxBodySize(cfg.MaxBodySize),
			fetch.WithRateLimit(cfg.RequestRate, 1),
			fetch.WithHTTPLogger(env.logger),
		}
		if site.UserAgent != "" {
			opts = append(opts, fetch.WithUserAgent(site.UserAgent))
		}
		return fetch.NewHTTPFetcher(client, opts...), func() {}, nil

	case config.RenderModeBrowser, "":
		if site.Cookie != "" || len(site.Headers) > 0 {
			env.logger.Debug("cookie and headers are only sent in http render mode", "site", siteURL)
		}
		opts := []fetch.BrowserOption{
			fetch.WithExecPath(cfg.ChromePath),
			fetch.WithRenderTimeout(cfg.Timeout),
			fetch.WithScroll(cfg.ScrollPause, cfg.MaxScrolls),
			fetch.WithBrowserLogger(env.logger),
		}
		if site.UserAgent != "" {
			opts = append(opts, fetch.WithBrowserUserAgent(site.UserAgent))
		}
		if cfg.ProxyAddress != "" {
			opts = append(opts, fetch.WithBrowserProxy(browserProxy(cfg.ProxyAddress)))
		}
		b := fetch.NewBrowserFetcher(ctx, opts...)
		return b, func() {
			if err := b.Close(); err != nil {
				env.logger.Warn("failed to close browser", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidRenderMode, site.RenderMode)
	}
}

// browserProxy turns "host:port" into a proxy server URL for Chrome.
func browserProxy(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	return "socks5://" + address
}

// openStore opens the listing store unless it is disabled.
func openStore(env *runtimeEnv) (*store.DB, error) {
	if env.noStore || env.cfg.DBDir == "" {
		return nil, nil //nolint:nilnil // a disabled store is not an error
	}
	db, err := store.Open(env.cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open listing store: %w", err)
	}
	env.logger.Debug("listing store opened", "path", db.Path())
	return db, nil
}

// isURL reports whether s is an http or https URL rather than a path.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readLines returns the lines of the file at path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// resolveListURLs turns URL list lines into absolute URLs. Blank lines are
// dropped, absolute URLs are kept and paths are appended to baseURL.
func resolveListURLs(baseURL string, lines []string) []string {
	base := strings.TrimRight(baseURL, "/")
	urls := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case isURL(line):
			urls = append(urls, line)
		case strings.HasPrefix(line, "/"):
			urls = append(urls, base+line)
		default:
			urls = append(urls, base+"/"+line)
		}
	}
	return urls
}

// writeOutput writes data to path, or to fallback when path is empty. The
// file is replaced atomically through a temporary file in the same
// directory, so a failed write leaves an existing file untouched.
func writeOutput(path string, fallback io.Writer, data []byte) error {
	if path == "" {
		_, err := fallback.Write(data)
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Clean(path)); err != nil {
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}
