package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.Target. Callers compare them with errors.Is.
var (
	// ErrNoTarget is returned when a command needs a URL or path argument.
	ErrNoTarget = errors.New("no target specified: provide a URL or a path")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidRequestRate is returned when the request rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRequestRate = errors.New("invalid request rate: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidScroll is returned when the scroll pause or count is negative.
	ErrInvalidScroll = errors.New("invalid scroll settings: must be non-negative")

	// ErrInvalidRenderMode is returned for an unknown render mode.
	ErrInvalidRenderMode = errors.New("invalid render mode: must be \"browser\" or \"http\"")
)
