package extract

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML parses an HTML document.
func ParseHTML(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// ParseHTMLBytes parses an HTML document held in memory.
func ParseHTMLBytes(body []byte) (*html.Node, error) {
	return ParseHTML(bytes.NewReader(body))
}

// FindTagsWithAttribute returns the element descendants of root that carry
// attribute, in depth-first pre-order.
//
// When element is non-empty only elements with that tag name match. When
// valueFilter is non-nil only elements whose attribute value equals one of
// its entries match. A nil root yields no elements.
func FindTagsWithAttribute(root *html.Node, attribute, element string, valueFilter []string) []*html.Node {
	var found []*html.Node
	if root == nil {
		return found
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && matches(c, attribute, element, valueFilter) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(root)
	return found
}

func matches(n *html.Node, attribute, element string, valueFilter []string) bool {
	value, ok := Attr(n, attribute)
	if !ok {
		return false
	}
	if element != "" && n.Data != element {
		return false
	}
	if valueFilter != nil && !slices.Contains(valueFilter, value) {
		return false
	}
	return true
}

// Attr returns the value of attribute key on n and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// NextElement returns the first element that follows n in document order:
// its first element child if it has one, otherwise the nearest following
// element among its siblings and its ancestors' siblings. It returns nil
// when n is the last element of the document.
func NextElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if c := firstElementInside(n); c != nil {
		return c
	}
	for cur := n; cur != nil; cur = cur.Parent {
		for s := cur.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == html.ElementNode {
				return s
			}
			if c := firstElementInside(s); c != nil {
				return c
			}
		}
	}
	return nil
}

func firstElementInside(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
		if found := firstElementInside(c); found != nil {
			return found
		}
	}
	return nil
}

// Text returns the concatenated text of n and its descendants, leaving
// whitespace untouched. Contents of script and style elements are skipped.
func Text(n *html.Node) string {
	var b strings.Builder
	collectText(n, func(s string) { b.WriteString(s) })
	return b.String()
}

// TextStrip returns the text of n with every text node trimmed and empty
// nodes dropped, joined without a separator.
func TextStrip(n *html.Node) string {
	var b strings.Builder
	collectText(n, func(s string) {
		b.WriteString(strings.TrimSpace(s))
	})
	return b.String()
}

func collectText(n *html.Node, emit func(string)) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		emit(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, emit)
	}
}
