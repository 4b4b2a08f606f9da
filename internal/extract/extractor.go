package extract

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/aptscout/internal/model"
)

// LocationSelector locates the address anchor of a listing page.
const LocationSelector = `a[aria-label="Adres"]`

// Extractor turns a listing page into ordered tagged pairs.
type Extractor struct {
	classifier Classifier
	attribute  string
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClassifier replaces the default marker classifier. attribute is the
// attribute whose presence makes an element a candidate.
func WithClassifier(c Classifier, attribute string) Option {
	return func(e *Extractor) {
		e.classifier = c
		e.attribute = attribute
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor returns an Extractor using the data-cy marker classifier.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		classifier: NewMarkerClassifier(),
		attribute:  MarkerAttribute,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the tagged pairs of every kept marked element in document
// order, followed by a Location pair when the page has an address anchor.
// A page without marked elements yields an empty result.
func (e *Extractor) Extract(doc *html.Node) []model.TaggedPair {
	pairs := make([]model.TaggedPair, 0)
	for _, n := range FindTagsWithAttribute(doc, e.attribute, "", nil) {
		c, ok := e.classifier.Classify(n)
		if !ok {
			continue
		}
		pairs = append(pairs, model.TaggedPair{
			Classification: c,
			Payload:        e.classifier.ExtractPayload(n, c),
		})
	}

	if location, ok := Location(doc); ok {
		pairs = append(pairs, model.TaggedPair{
			Classification: ClassLocation,
			Payload:        model.TextPayload(location),
		})
	} else {
		e.logger.Debug("no location anchor on page")
	}

	e.logger.Debug("extracted tagged pairs", "count", len(pairs))
	return pairs
}

// Location returns the unstripped text of the address anchor, if present.
func Location(doc *html.Node) (string, bool) {
	if doc == nil {
		return "", false
	}
	sel := goquery.NewDocumentFromNode(doc).Find(LocationSelector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return Text(sel.Get(0)), true
}
