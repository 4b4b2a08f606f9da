// Package htmlclean strips a page down to its visible content so it can be
// inspected or fed to other tools.
package htmlclean

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Clean parses r and returns the markup with script and style elements,
// comments, elements without visible text and style attributes removed.
// The html and body elements are always kept.
func Clean(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style").Remove()
	removeComments(doc.Nodes[0])
	removeEmpty(doc.Selection)
	doc.Find("[style]").RemoveAttr("style")

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return out, nil
}

// CleanBytes is Clean for an in-memory page.
func CleanBytes(body []byte) (string, error) {
	return Clean(bytes.NewReader(body))
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

func removeEmpty(root *goquery.Selection) {
	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "html" || goquery.NodeName(s) == "body" {
			return
		}
		if s.Get(0).Parent == nil {
			return
		}
		if strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})
}
