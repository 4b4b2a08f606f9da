package listing

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"golang.org/x/net/html"

	"github.com/nao1215/aptscout/internal/extract"
)

// Selectors of the search results markup.
const (
	NoResultsSelector = `div[data-cy="no-search-results"]`
	PromotedSelector  = `div[data-cy="search.listing.promoted"]`
	OrganicSelector   = `div[data-cy="search.listing.organic"]`
	ListingLinkMarker = "listing-item-link"
)

// HasNoResults reports whether doc carries the no-search-results marker.
func HasNoResults(doc *html.Node) bool {
	if doc == nil {
		return true
	}
	return goquery.NewDocumentFromNode(doc).Find(NoResultsSelector).Length() > 0
}

// ExtractLinks returns the listing links of a search results page: the
// hrefs of listing-item-link anchors inside the promoted container followed
// by those inside the organic container, without duplicates. A page with
// the no-results marker yields nothing. Missing containers contribute
// nothing and anchors without href are skipped.
func ExtractLinks(doc *html.Node) []string {
	links := make([]string, 0)
	if HasNoResults(doc) {
		return links
	}

	root := goquery.NewDocumentFromNode(doc)
	for _, selector := range []string{PromotedSelector, OrganicSelector} {
		links = append(links, containerLinks(root.Find(selector).First())...)
	}
	return lo.Uniq(links)
}

func containerLinks(container *goquery.Selection) []string {
	if container.Length() == 0 {
		return nil
	}
	var hrefs []string
	anchors := extract.FindTagsWithAttribute(container.Get(0), extract.MarkerAttribute, "a", []string{ListingLinkMarker})
	for _, a := range anchors {
		if href, ok := extract.Attr(a, "href"); ok {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs
}
