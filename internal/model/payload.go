package model

// Classification is the value of the marker attribute of a DOM element,
// for example "adPageAdTitle" or "table-label-content".
type Classification string

// Payload is the data extracted from one marked element.
// It is either plain text or a (label, text) pair for labeled table rows.
type Payload struct {
	// Label is the row label of a labeled payload. Empty for plain text.
	Label string
	// Text is the element text, or the content text of a labeled row.
	Text string

	labeled bool
}

// TextPayload returns a plain text payload.
func TextPayload(text string) Payload {
	return Payload{Text: text}
}

// LabeledPayload returns a (label, text) payload.
func LabeledPayload(label, text string) Payload {
	return Payload{Label: label, Text: text, labeled: true}
}

// IsLabeled reports whether p was produced from a labeled table row.
func (p Payload) IsLabeled() bool {
	return p.labeled
}

// TaggedPair is a classification together with the payload extracted from
// the element that carried it. Extractors return pairs in document order.
type TaggedPair struct {
	Classification Classification
	Payload        Payload
}

// GroupedMap maps keys to the values seen for them, preserving both the
// first-seen order of keys and the order of values per key.
type GroupedMap[K comparable, V any] struct {
	keys   []K
	values map[K][]V
}

// NewGroupedMap returns an empty GroupedMap.
func NewGroupedMap[K comparable, V any]() *GroupedMap[K, V] {
	return &GroupedMap[K, V]{values: make(map[K][]V)}
}

// Add appends v to the values of key.
func (g *GroupedMap[K, V]) Add(key K, v V) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = append(g.values[key], v)
}

// Keys returns the keys in first-seen order.
func (g *GroupedMap[K, V]) Keys() []K {
	out := make([]K, len(g.keys))
	copy(out, g.keys)
	return out
}

// Values returns the values recorded for key in insertion order.
func (g *GroupedMap[K, V]) Values(key K) []V {
	return g.values[key]
}

// Len returns the number of distinct keys.
func (g *GroupedMap[K, V]) Len() int {
	return len(g.keys)
}
