package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Default rendering settings.
const (
	// DefaultScrollPause is how long the page may load new content after
	// each scroll to the bottom.
	DefaultScrollPause = 2 * time.Second

	// DefaultMaxScrolls bounds the settle loop for pages that keep growing.
	DefaultMaxScrolls = 30
)

// BrowserFetcher renders pages in headless Chrome. One browser process is
// shared by all fetches; each fetch opens its own tab.
type BrowserFetcher struct {
	execPath    string
	userAgent   string
	proxy       string
	timeout     time.Duration
	scrollPause time.Duration
	maxScrolls  int
	logger      *slog.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
	started     bool
	closed      bool
}

// BrowserOption configures a BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithExecPath sets the Chrome binary. By default it is looked up with
// FindChromeBinary.
func WithExecPath(path string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.execPath = path
	}
}

// WithBrowserUserAgent sets the browser's User-Agent.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *BrowserFetcher) {
		if ua != "" {
			b.userAgent = ua
		}
	}
}

// WithBrowserProxy routes the browser through a proxy server, for example
// "socks5://127.0.0.1:9050".
func WithBrowserProxy(proxy string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.proxy = proxy
	}
}

// WithRenderTimeout bounds each page render, scrolling included.
func WithRenderTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithScroll sets the pause after each scroll and the maximum number of
// scrolls before the page is taken as it is.
func WithScroll(pause time.Duration, maxScrolls int) BrowserOption {
	return func(b *BrowserFetcher) {
		b.scrollPause = pause
		if maxScrolls > 0 {
			b.maxScrolls = maxScrolls
		}
	}
}

// WithBrowserLogger sets the logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(b *BrowserFetcher) {
		b.logger = logger
	}
}

// NewBrowserFetcher prepares a headless browser. The browser process starts
// lazily on the first Fetch and lives until Close or until ctx is done.
func NewBrowserFetcher(ctx context.Context, opts ...BrowserOption) *BrowserFetcher {
	b := &BrowserFetcher{
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		scrollPause: DefaultScrollPause,
		maxScrolls:  DefaultMaxScrolls,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.execPath == "" {
		b.execPath = FindChromeBinary()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	b.browserCtx = browserCtx
	b.cancelAlloc = cancelAlloc
	b.cancelTab = cancelTab
	return b
}

func (b *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "pl-PL"),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	if b.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxy))
	}
	return opts
}

// Fetch implements Fetcher. It navigates to pageURL, scrolls until the page
// height stops changing, and returns the rendered document.
func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := b.start(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	b.logger.Debug("rendering page", "url", pageURL)
	if err := chromedp.Run(tabCtx, chromedp.Navigate(pageURL)); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}

	if err := b.settle(tabCtx, func(ctx context.Context) (int64, error) {
		var height int64
		err := chromedp.Run(ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(b.scrollPause),
			chromedp.Evaluate(`document.body.scrollHeight`, &height),
		)
		return height, err
	}); err != nil {
		return nil, fmt.Errorf("failed to scroll %s: %w", pageURL, err)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to read rendered html of %s: %w", pageURL, err)
	}
	return []byte(html), nil
}

// start launches the browser once so later tabs share its process.
func (b *BrowserFetcher) start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrowserClosed
	}
	if b.started {
		return nil
	}
	if err := chromedp.Run(b.browserCtx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	b.started = true
	return nil
}

// settle calls scroll until two consecutive calls report the same page
// height or maxScrolls is reached. The first call only establishes the
// starting height.
func (b *BrowserFetcher) settle(ctx context.Context, scroll func(context.Context) (int64, error)) error {
	last, err := scroll(ctx)
	if err != nil {
		return err
	}
	for i := 1; i < b.maxScrolls; i++ {
		height, err := scroll(ctx)
		if err != nil {
			return err
		}
		if height == last {
			return nil
		}
		last = height
	}
	b.logger.Warn("page height still changing, using partially loaded page", "scrolls", b.maxScrolls)
	return nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancelTab()
	b.cancelAlloc()
	return nil
}

// FindChromeBinary returns the Chrome or Chromium binary to use: $CHROME_BIN
// if set, otherwise the first known binary on PATH or in a standard
// location. It returns "" when none is found, leaving the choice to chromedp.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
