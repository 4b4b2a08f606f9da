// Package listing discovers listing URLs on paginated search results.
//
// ExtractLinks reads one results page; Walker follows the page query
// parameter from page to page until a page yields no links, accumulating a
// deduplicated URL set.
package listing
