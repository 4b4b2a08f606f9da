// Package extract walks parsed HTML documents and pulls out the elements
// that listing pages tag with a marker attribute (data-cy on otodom).
//
// Extraction is a pure function of the document tree: it performs no I/O
// and returns (classification, payload) pairs in document order.
//
//	doc, err := extract.ParseHTML(body)
//	pairs := extract.NewExtractor().Extract(doc)
package extract
