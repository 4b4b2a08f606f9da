package report

import (
	"io"
	"math"
	"path/filepath"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/aptscout/internal/price"
)

// MarkdownWriter outputs filter results as GitHub Flavored Markdown.
// Amounts are formatted for the configured language.
type MarkdownWriter struct {
	baseWriter
	printer *message.Printer
}

// MarkdownOption configures a MarkdownWriter.
type MarkdownOption func(*MarkdownWriter)

// WithLanguage formats amounts for tag. The default is Polish.
func WithLanguage(tag language.Tag) MarkdownOption {
	return func(w *MarkdownWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.Polish),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *MarkdownWriter) Write(report *FilterReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeListings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *FilterReport) {
	md.H1("aptscout Listings")
	md.PlainText("")

	generated := "-"
	if !report.GeneratedAt.IsZero() {
		generated = report.GeneratedAt.Format("2006-01-02 15:04:05 MST")
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Summary Directory", "`" + report.Dir + "`"},
			{"Price Limit", w.amount(report.Limit)},
			{"Summaries Loaded", strconv.Itoa(report.Loaded)},
			{"Listings Kept", strconv.Itoa(len(report.Records))},
			{"Generated", generated},
		},
	})
	md.PlainText("")

	if len(report.Records) == 0 {
		md.Note("No listing fits within the price limit.")
	} else {
		md.Tip(w.printer.Sprintf("%d listing(s) fit within %s per month.", len(report.Records), w.amount(report.Limit)))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeListings(md *markdown.Markdown, report *FilterReport) {
	if len(report.Records) == 0 {
		return
	}

	md.H2("Listings")
	md.PlainText("")

	rows := make([][]string, len(report.Records))
	var rent, admin, parking float64
	for i, r := range report.Records {
		c := componentsOf(r)
		rent += c.rent
		admin += c.administrative
		parking += c.parking

		rows[i] = []string{
			strconv.Itoa(i + 1),
			listingLink(r),
			truncateString(stringField(r.Summary, "Location"), 40),
			w.amount(c.rent),
			w.amount(c.administrative),
			w.amount(c.parking),
			"**" + w.amount(r.Total) + "**",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Listing", "Location", "Rent", "Administrative", "Parking", "Total"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, rent, admin, parking)
	w.writeComments(md, report)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, rent, admin, parking float64) {
	if rent+admin+parking <= 0 {
		return
	}
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Monthly Cost Breakdown"),
		piechart.WithShowData(true),
	)
	for _, part := range []struct {
		label string
		value float64
	}{
		{"Rent", rent},
		{"Administrative", admin},
		{"Parking", parking},
	} {
		if part.value > 0 {
			chart.LabelAndIntValue(part.label, uint64(math.Round(part.value)))
		}
	}

	md.H2("Cost Breakdown")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeComments(md *markdown.Markdown, report *FilterReport) {
	wrote := false
	for _, r := range report.Records {
		comments := stringField(r.Summary, "Comments")
		if comments == "" {
			continue
		}
		if !wrote {
			md.H2("Comments")
			md.PlainText("")
			wrote = true
		}
		md.Details(titleOf(r), comments)
	}
	if wrote {
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [aptscout](https://github.com/nao1215/aptscout)*")
}

func (w *MarkdownWriter) amount(v float64) string {
	return w.printer.Sprintf("%.2f", v)
}

type components struct {
	rent, administrative, parking float64
}

func componentsOf(r price.Record) components {
	breakdown, _ := r.Summary[price.KeyPrice].(map[string]any)
	return components{
		rent:           price.Sanitize(breakdown[price.KeyRent]),
		administrative: price.Sanitize(breakdown[price.KeyAdministrative]),
		parking:        price.Sanitize(breakdown[price.KeyParking]),
	}
}

func stringField(summary map[string]any, key string) string {
	s, _ := summary[key].(string)
	return s
}

func titleOf(r price.Record) string {
	if title := stringField(r.Summary, "Title"); title != "" {
		return title
	}
	return filepath.Base(r.Path)
}

func listingLink(r price.Record) string {
	title := truncateString(titleOf(r), 50)
	if u := stringField(r.Summary, "URL"); u != "" && u != "#" {
		return "[" + title + "](" + u + ")"
	}
	return title
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
