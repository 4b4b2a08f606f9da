// Package main provides the entry point for the aptscout CLI.
//
// aptscout collects apartment listings: it walks paginated search results,
// parses listing pages into canonical JSON records, asks a language model
// for structured summaries and filters them by total monthly price.
//
// Usage:
//
//	aptscout scan <search-url>
//	aptscout parse <url | url-list-file> [-o output]
//	aptscout summarize <file | dir> [-o output]
//	aptscout filter <dir> [-l limit]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
