// Package store provides SQLite-based storage for aptscout.
//
// The store keeps:
//   - scans: one row per crawl of a search-results URL
//   - listing_urls: every listing URL discovered, with first and last sighting
//   - ads: the latest normalized record per listing and its content hash
//
// The database is a single file opened through modernc.org/sqlite, so no cgo
// is needed.
package store
