package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/aptscout/internal/extract"
	"github.com/nao1215/aptscout/internal/model"
)

// DefaultMaxPages caps the number of result pages a Walker visits.
const DefaultMaxPages = 500

// ErrMaxPages is returned with the collected URLs when a walk stops at the
// page cap while pages still had results.
var ErrMaxPages = errors.New("maximum number of result pages reached")

// Fetcher returns the rendered markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PageFunc is called after every fetched results page.
type PageFunc func(page int, pageURL string, links []string)

// Walker follows paginated search results and collects listing URLs.
type Walker struct {
	fetcher  Fetcher
	maxPages int
	onPage   PageFunc
	logger   *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaxPages sets the page cap. Zero or a negative value disables it.
func WithMaxPages(n int) WalkerOption {
	return func(w *Walker) {
		w.maxPages = n
	}
}

// WithPageFunc registers a callback run after each results page.
func WithPageFunc(fn PageFunc) WalkerOption {
	return func(w *Walker) {
		w.onPage = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker returns a Walker that fetches pages with fetcher.
func NewWalker(fetcher Fetcher, opts ...WalkerOption) *Walker {
	w := &Walker{
		fetcher:  fetcher,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ScrapPage fetches one results page and returns its listing links.
func (w *Walker) ScrapPage(ctx context.Context, pageURL string) ([]string, error) {
	body, err := w.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := extract.ParseHTMLBytes(body)
	if err != nil {
		return nil, err
	}
	return ExtractLinks(doc), nil
}

// Walk visits startURL and the pages after it, stopping at the first page
// that yields no links. It also stops when the URL cannot be advanced, when
// the page cap is reached, or when ctx is done. The URLs collected so far
// are returned in every case, together with the error that ended the walk
// early, if any.
func (w *Walker) Walk(ctx context.Context, startURL string) (*model.URLSet, error) {
	found := model.NewURLSet()
	pageURL := startURL

	for visited := 1; ; visited++ {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		page := PageNumber(pageURL)
		w.logger.Info("scraping result page", "page", page, "url", pageURL)

		links, err := w.ScrapPage(ctx, pageURL)
		if err != nil {
			return found, fmt.Errorf("failed to scrap result page %d: %w", page, err)
		}
		added := found.AddAll(links)
		w.logger.Debug("result page scraped", "page", page, "links", len(links), "new", added)
		if w.onPage != nil {
			w.onPage(page, pageURL, links)
		}

		if len(links) == 0 {
			return found, nil
		}

		next, ok := NextPageURL(pageURL)
		if !ok {
			w.logger.Warn("search url has no page parameter to advance, stopping", "url", pageURL)
			return found, nil
		}
		if w.maxPages > 0 && visited >= w.maxPages {
			return found, fmt.Errorf("%w (%d)", ErrMaxPages, w.maxPages)
		}
		pageURL = next
	}
}
