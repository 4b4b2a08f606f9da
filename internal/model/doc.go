// Package model defines the data shared by the aptscout packages: tagged
// pairs produced by extraction, the Field variant and AdRecord produced by
// normalization, the URLSet accumulated by the crawl, and the Summary schema
// returned by the language model.
package model
