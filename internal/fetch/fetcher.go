package fetch

import (
	"context"
	"errors"
	"time"
)

// Default fetch settings.
const (
	// DefaultTimeout bounds a single page fetch, rendering included.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultUserAgent mimics a desktop browser; listing sites serve a
	// reduced page to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage is sent with every request.
	DefaultAcceptLanguage = "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7"
)

// Fetcher returns the markup of the page at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

var (
	// ErrUnexpectedStatus is returned when a server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// ErrInvalidProxyAddress is returned for a proxy address that is neither
	// "host:port" nor a socks5:// URL.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port or socks5://[user:pass@]host:port")

	// ErrBrowserClosed is returned by BrowserFetcher.Fetch after Close.
	ErrBrowserClosed = errors.New("browser fetcher is closed")
)
