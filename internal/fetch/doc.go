// Package fetch retrieves listing and search pages.
//
// Two Fetcher implementations are provided. HTTPFetcher performs a plain GET,
// optionally through a SOCKS5 proxy and under a request-rate limit.
// BrowserFetcher renders the page in headless Chrome via chromedp and
// scrolls until the page height settles, which search results need because
// their items are loaded by JavaScript.
//
// Neither fetcher retries: a failed fetch is reported to the caller, which
// decides whether to skip the item.
package fetch
