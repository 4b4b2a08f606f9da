// Package report writes aptscout results.
//
// Filter results are written by a Writer:
//   - JSONWriter: the sorted JSON array of annotated summaries
//   - MarkdownWriter: a GitHub Flavored Markdown table with a cost chart
//   - TextWriter: one line per listing for terminal display
//
// Crawl results are written by URLListWriter as newline-delimited URLs.
package report
