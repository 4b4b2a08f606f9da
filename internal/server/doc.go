// Package server provides the viewer API: the parsed listings joined with
// their summaries, and a page-rendering proxy for the viewer front end.
//
//	GET /data             [{"ad": {...}, "gpt": {...}}, ...]
//	GET /fetch-html?url=  rendered markup of url
package server
