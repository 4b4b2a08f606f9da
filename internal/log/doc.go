// Package log provides slog construction for aptscout with masking of
// credentials (model API keys, cookies, authorization headers and proxy
// passwords) in every log attribute.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("summarizing", "model", "gpt-4o-mini", "api_key", key) // api_key is masked
package log
