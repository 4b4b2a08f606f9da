package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// PageParam is the query parameter carrying the results page number.
const PageParam = "page"

// PageNumber returns the first page query value of rawURL as an integer.
// A missing or unparseable value counts as page 1.
func PageNumber(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}
	values, ok := u.Query()[PageParam]
	if !ok || len(values) == 0 {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil {
		return 1
	}
	return n
}

// NextPageURL returns rawURL with its page parameter advanced by one.
//
// Only the first page parameter changes; every other parameter keeps its
// position and encoding. When the URL carries no page parameter, or its
// value is not the canonical form of the page number, the URL is returned
// unchanged with ok set to false.
func NextPageURL(rawURL string) (next string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL, false
	}

	current := PageNumber(rawURL)
	segments := strings.Split(u.RawQuery, "&")
	for i, seg := range segments {
		key, value, _ := strings.Cut(seg, "=")
		if unescaped, err := url.QueryUnescape(key); err != nil || unescaped != PageParam {
			continue
		}
		if value != strconv.Itoa(current) {
			return rawURL, false
		}
		segments[i] = key + "=" + strconv.Itoa(current+1)
		return replaceQuery(rawURL, strings.Join(segments, "&")), true
	}
	return rawURL, false
}

// replaceQuery swaps the query of rawURL for query, leaving the scheme, host,
// path and fragment byte-for-byte intact.
func replaceQuery(rawURL, query string) string {
	start := strings.Index(rawURL, "?")
	end := len(rawURL)
	if hash := strings.Index(rawURL[start:], "#"); hash >= 0 {
		end = start + hash
	}
	return rawURL[:start+1] + query + rawURL[end:]
}
