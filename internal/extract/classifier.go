package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/aptscout/internal/model"
)

// MarkerAttribute is the attribute otodom uses to tag semantic elements.
const MarkerAttribute = "data-cy"

// Well-known classifications.
const (
	ClassLabeledRow  model.Classification = "table-label-content"
	ClassDescription model.Classification = "adPageAdDescription"
	ClassTitle       model.Classification = "adPageAdTitle"
	ClassPrice       model.Classification = "adPageHeaderPrice"
	ClassLocation    model.Classification = "Location"
)

// DefaultDenylist holds substrings that disqualify a classification.
// Matching is by substring, so any value containing "button" is dropped,
// including ones that carry real listing data.
var DefaultDenylist = []string{
	"navbar",
	"button",
	"AdUnit",
	"ad-page-ad-remote-service-tile",
}

// Classifier decides which marked elements are relevant and how their
// payload is read.
type Classifier interface {
	// Classify returns the classification of n and whether n should be kept.
	Classify(n *html.Node) (model.Classification, bool)
	// ExtractPayload reads the payload of a kept element.
	ExtractPayload(n *html.Node, c model.Classification) model.Payload
}

// MarkerClassifier classifies elements by the value of a marker attribute
// and rejects values containing any denylisted substring.
type MarkerClassifier struct {
	attribute string
	denylist  []string
}

// NewMarkerClassifier returns a classifier for the data-cy attribute with
// DefaultDenylist.
func NewMarkerClassifier() *MarkerClassifier {
	return &MarkerClassifier{attribute: MarkerAttribute, denylist: DefaultDenylist}
}

// Attribute returns the marker attribute name.
func (m *MarkerClassifier) Attribute() string {
	return m.attribute
}

// Classify implements Classifier.
func (m *MarkerClassifier) Classify(n *html.Node) (model.Classification, bool) {
	value, ok := Attr(n, m.attribute)
	if !ok {
		return "", false
	}
	if IsDenied(value, m.denylist) {
		return "", false
	}
	return model.Classification(value), true
}

// ExtractPayload implements Classifier. Labeled rows pair the element's own
// text with the text of the next element in document order; every other
// classification, the description included, uses the element's stripped text.
func (m *MarkerClassifier) ExtractPayload(n *html.Node, c model.Classification) model.Payload {
	switch c {
	case ClassLabeledRow:
		label := TextStrip(n)
		content := ""
		if next := NextElement(n); next != nil {
			content = TextStrip(next)
		}
		return model.LabeledPayload(label, content)
	default:
		return model.TextPayload(TextStrip(n))
	}
}

// IsDenied reports whether value contains any of the denylisted substrings.
func IsDenied(value string, denylist []string) bool {
	for _, d := range denylist {
		if strings.Contains(value, d) {
			return true
		}
	}
	return false
}
